package entities

import (
	"time"

	"github.com/google/uuid"
)

// EmotionalRating is one participant's sentiment toward another.
type EmotionalRating struct {
	TargetParticipantID uuid.UUID `json:"targetParticipantId"`
	EmotionalScale      float64   `json:"emotionalScale"`
	IsToxic             bool      `json:"isToxic"`
}

// EmotionalEvaluation is a participant's emotional_evaluation submission.
type EmotionalEvaluation struct {
	ParticipantID uuid.UUID         `json:"participantId"`
	Evaluations   []EmotionalRating `json:"evaluations"`
	SubmittedAt   time.Time         `json:"submittedAt"`
}

// ContributionShare attributes a share of the work to a participant.
type ContributionShare struct {
	ParticipantID          uuid.UUID `json:"participantId"`
	ContributionPercentage float64   `json:"contributionPercentage"`
}

// UnderstandingContribution is a participant's understanding_contribution submission.
type UnderstandingContribution struct {
	ParticipantID      uuid.UUID           `json:"participantId"`
	UnderstandingScore float64             `json:"understandingScore"`
	Contributions      []ContributionShare `json:"contributions"`
	SubmittedAt        time.Time           `json:"submittedAt"`
}

// TaskPlanning is a participant's task_planning submission. Approval lives on the
// companion Task row and is joined in at read time.
type TaskPlanning struct {
	ParticipantID                  uuid.UUID `json:"participantId"`
	TaskDescription                string    `json:"taskDescription"`
	CommonQuestion                 string    `json:"commonQuestion"`
	Deadline                       time.Time `json:"deadline"`
	ExpectedContributionPercentage float64   `json:"expectedContributionPercentage"`
	SubmittedAt                    time.Time `json:"submittedAt"`
}

// TaskImportance scores the task authored by TaskAuthorID.
type TaskImportance struct {
	TaskAuthorID    uuid.UUID `json:"taskAuthorId"`
	ImportanceScore float64   `json:"importanceScore"`
}

// TaskEvaluation is a participant's task_evaluation submission.
type TaskEvaluation struct {
	ParticipantID   uuid.UUID        `json:"participantId"`
	TaskEvaluations []TaskImportance `json:"taskEvaluations"`
	SubmittedAt     time.Time        `json:"submittedAt"`
}

// Submitter implementations key every ledger by participant.
func (e EmotionalEvaluation) Submitter() uuid.UUID       { return e.ParticipantID }
func (e UnderstandingContribution) Submitter() uuid.UUID { return e.ParticipantID }
func (e TaskPlanning) Submitter() uuid.UUID              { return e.ParticipantID }
func (e TaskEvaluation) Submitter() uuid.UUID            { return e.ParticipantID }

type ledgerEntry interface {
	Submitter() uuid.UUID
}

// replaceEntry drops any entry by the same submitter and appends entry.
func replaceEntry[S ~[]E, E ledgerEntry](ledger S, entry E) S {
	out := make(S, 0, len(ledger)+1)
	for _, existing := range ledger {
		if existing.Submitter() != entry.Submitter() {
			out = append(out, existing)
		}
	}
	return append(out, entry)
}

func findEntry[S ~[]E, E ledgerEntry](ledger S, participantID uuid.UUID) (E, bool) {
	for _, existing := range ledger {
		if existing.Submitter() == participantID {
			return existing, true
		}
	}
	var zero E
	return zero, false
}

// SubmitEmotionalEvaluation replaces the caller's emotional evaluation.
func (m *Meeting) SubmitEmotionalEvaluation(e EmotionalEvaluation) {
	m.EmotionalEvaluations = replaceEntry(m.EmotionalEvaluations, e)
}

// SubmitUnderstandingContribution replaces the caller's understanding/contribution entry.
func (m *Meeting) SubmitUnderstandingContribution(e UnderstandingContribution) {
	m.UnderstandingContributions = replaceEntry(m.UnderstandingContributions, e)
}

// SubmitTaskPlanning replaces the caller's task plan.
func (m *Meeting) SubmitTaskPlanning(e TaskPlanning) {
	m.TaskPlannings = replaceEntry(m.TaskPlannings, e)
}

// SubmitTaskEvaluation replaces the caller's task evaluation. Every referenced author must
// already have a task plan in this meeting; otherwise nothing is written.
func (m *Meeting) SubmitTaskEvaluation(e TaskEvaluation) error {
	for _, item := range e.TaskEvaluations {
		if _, ok := m.TaskPlanningBy(item.TaskAuthorID); !ok {
			return &UnknownTaskAuthorError{AuthorID: item.TaskAuthorID}
		}
	}
	m.TaskEvaluations = replaceEntry(m.TaskEvaluations, e)
	return nil
}

// EmotionalEvaluationBy returns participantID's emotional evaluation, if any.
func (m *Meeting) EmotionalEvaluationBy(participantID uuid.UUID) (EmotionalEvaluation, bool) {
	return findEntry(m.EmotionalEvaluations, participantID)
}

// UnderstandingContributionBy returns participantID's understanding entry, if any.
func (m *Meeting) UnderstandingContributionBy(participantID uuid.UUID) (UnderstandingContribution, bool) {
	return findEntry(m.UnderstandingContributions, participantID)
}

// TaskPlanningBy returns participantID's task plan, if any.
func (m *Meeting) TaskPlanningBy(participantID uuid.UUID) (TaskPlanning, bool) {
	return findEntry(m.TaskPlannings, participantID)
}

// TaskEvaluationBy returns participantID's task evaluation, if any.
func (m *Meeting) TaskEvaluationBy(participantID uuid.UUID) (TaskEvaluation, bool) {
	return findEntry(m.TaskEvaluations, participantID)
}

// SubmittedIDs returns the submitters recorded in the ledger for phase.
// finished has no ledger and yields an empty list.
func (m *Meeting) SubmittedIDs(phase MeetingPhase) []uuid.UUID {
	var ids []uuid.UUID
	switch phase {
	case PhaseEmotionalEvaluation:
		for _, e := range m.EmotionalEvaluations {
			ids = append(ids, e.ParticipantID)
		}
	case PhaseUnderstandingContribution:
		for _, e := range m.UnderstandingContributions {
			ids = append(ids, e.ParticipantID)
		}
	case PhaseTaskPlanning:
		for _, e := range m.TaskPlannings {
			ids = append(ids, e.ParticipantID)
		}
	case PhaseTaskEvaluation:
		for _, e := range m.TaskEvaluations {
			ids = append(ids, e.ParticipantID)
		}
	}
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

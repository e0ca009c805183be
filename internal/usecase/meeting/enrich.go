package meeting

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// directory resolves user ids referenced by a meeting to display fields
type directory map[uuid.UUID]*entities.User

func (d directory) ref(id uuid.UUID) ParticipantRef {
	ref := ParticipantRef{ID: id}
	if u, ok := d[id]; ok {
		ref.FullName = u.FullName
		ref.Email = u.Email
	}
	return ref
}

func (d directory) refs(ids []uuid.UUID) []ParticipantRef {
	out := make([]ParticipantRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.ref(id))
	}
	return out
}

// directory loads every user the meeting mentions in one query
func (s *MeetingService) directory(ctx context.Context, m *entities.Meeting) (directory, error) {
	seen := map[uuid.UUID]struct{}{m.CreatorID: {}}
	add := func(id uuid.UUID) { seen[id] = struct{}{} }

	for _, id := range m.ParticipantIDs {
		add(id)
	}
	for _, e := range m.EmotionalEvaluations {
		add(e.ParticipantID)
		for _, r := range e.Evaluations {
			add(r.TargetParticipantID)
		}
	}
	for _, c := range m.UnderstandingContributions {
		add(c.ParticipantID)
		for _, share := range c.Contributions {
			add(share.ParticipantID)
		}
	}
	for _, t := range m.TaskPlannings {
		add(t.ParticipantID)
	}
	for _, e := range m.TaskEvaluations {
		add(e.ParticipantID)
		for _, item := range e.TaskEvaluations {
			add(item.TaskAuthorID)
		}
	}

	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return directory(users), nil
}

// tasksByAuthor loads the companion tasks of a meeting keyed by author
func (s *MeetingService) tasksByAuthor(ctx context.Context, meetingID uuid.UUID) (map[uuid.UUID]*entities.Task, error) {
	tasks, err := s.taskRepo.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	out := make(map[uuid.UUID]*entities.Task, len(tasks))
	for _, t := range tasks {
		out[t.AuthorID] = t
	}
	return out, nil
}

func emotionalView(e entities.EmotionalEvaluation, dir directory) EmotionalEvaluationView {
	return EmotionalEvaluationView{
		Participant: dir.ref(e.ParticipantID),
		Evaluations: ratingViews(e.Evaluations, dir),
		SubmittedAt: e.SubmittedAt,
	}
}

func ratingViews(ratings []entities.EmotionalRating, dir directory) []EmotionalRatingView {
	out := make([]EmotionalRatingView, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, EmotionalRatingView{
			Target:         dir.ref(r.TargetParticipantID),
			EmotionalScale: r.EmotionalScale,
			IsToxic:        r.IsToxic,
		})
	}
	return out
}

func understandingView(c entities.UnderstandingContribution, dir directory) UnderstandingContributionView {
	return UnderstandingContributionView{
		Participant:        dir.ref(c.ParticipantID),
		UnderstandingScore: c.UnderstandingScore,
		Contributions:      contributionViews(c.Contributions, dir),
		SubmittedAt:        c.SubmittedAt,
	}
}

func contributionViews(shares []entities.ContributionShare, dir directory) []ContributionView {
	out := make([]ContributionView, 0, len(shares))
	for _, share := range shares {
		out = append(out, ContributionView{
			Participant:            dir.ref(share.ParticipantID),
			ContributionPercentage: share.ContributionPercentage,
		})
	}
	return out
}

func planningView(t entities.TaskPlanning, dir directory, tasks map[uuid.UUID]*entities.Task) TaskPlanningView {
	v := TaskPlanningView{
		Participant:                    dir.ref(t.ParticipantID),
		TaskDescription:                t.TaskDescription,
		CommonQuestion:                 t.CommonQuestion,
		Deadline:                       t.Deadline,
		ExpectedContributionPercentage: t.ExpectedContributionPercentage,
		SubmittedAt:                    t.SubmittedAt,
	}
	if task, ok := tasks[t.ParticipantID]; ok {
		id := task.ID
		v.TaskID = &id
		v.Approved = task.Approved
	}
	return v
}

func taskEvaluationView(e entities.TaskEvaluation, dir directory) TaskEvaluationView {
	return TaskEvaluationView{
		Participant: dir.ref(e.ParticipantID),
		Evaluations: importanceViews(e.TaskEvaluations, dir),
		SubmittedAt: e.SubmittedAt,
	}
}

func importanceViews(items []entities.TaskImportance, dir directory) []TaskImportanceView {
	out := make([]TaskImportanceView, 0, len(items))
	for _, item := range items {
		out = append(out, TaskImportanceView{
			TaskAuthor:      dir.ref(item.TaskAuthorID),
			ImportanceScore: item.ImportanceScore,
		})
	}
	return out
}

type ledgerViews struct {
	emotional     []EmotionalEvaluationView
	understanding []UnderstandingContributionView
	planning      []TaskPlanningView
	evaluation    []TaskEvaluationView
}

func buildLedgerViews(m *entities.Meeting, dir directory, tasks map[uuid.UUID]*entities.Task) ledgerViews {
	v := ledgerViews{
		emotional:     make([]EmotionalEvaluationView, 0, len(m.EmotionalEvaluations)),
		understanding: make([]UnderstandingContributionView, 0, len(m.UnderstandingContributions)),
		planning:      make([]TaskPlanningView, 0, len(m.TaskPlannings)),
		evaluation:    make([]TaskEvaluationView, 0, len(m.TaskEvaluations)),
	}
	for _, e := range m.EmotionalEvaluations {
		v.emotional = append(v.emotional, emotionalView(e, dir))
	}
	for _, c := range m.UnderstandingContributions {
		v.understanding = append(v.understanding, understandingView(c, dir))
	}
	for _, t := range m.TaskPlannings {
		v.planning = append(v.planning, planningView(t, dir, tasks))
	}
	for _, e := range m.TaskEvaluations {
		v.evaluation = append(v.evaluation, taskEvaluationView(e, dir))
	}
	return v
}

func buildMeetingDetail(m *entities.Meeting, dir directory, tasks map[uuid.UUID]*entities.Task) *MeetingDetail {
	ledgers := buildLedgerViews(m, dir, tasks)
	active := make([]entities.ActiveParticipant, len(m.ActiveParticipants))
	copy(active, m.ActiveParticipants)

	return &MeetingDetail{
		ID:                         m.ID,
		Title:                      m.Title,
		Question:                   m.Question,
		Creator:                    dir.ref(m.CreatorID),
		Participants:               dir.refs(m.ParticipantIDs),
		CurrentPhase:               m.CurrentPhase,
		Status:                     m.Status,
		UpcomingDate:               m.UpcomingDate,
		EmotionalEvaluations:       ledgers.emotional,
		UnderstandingContributions: ledgers.understanding,
		TaskPlannings:              ledgers.planning,
		TaskEvaluations:            ledgers.evaluation,
		ActiveParticipants:         active,
		CreatedAt:                  m.CreatedAt,
		UpdatedAt:                  m.UpdatedAt,
	}
}

func liveParticipants(records []entities.PresenceRecord) []LiveParticipant {
	out := make([]LiveParticipant, 0, len(records))
	for _, r := range records {
		out = append(out, LiveParticipant{
			ID:       r.UserID,
			FullName: r.FullName,
			Email:    r.Email,
			JoinedAt: r.JoinedAt,
			LastSeen: r.LastSeen,
		})
	}
	return out
}

package meeting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/meeting-quality/internal/usecase/errors"
)

const presenceSource = "websocket"

// GetActiveParticipants returns the live roster of a meeting
func (s *MeetingService) GetActiveParticipants(ctx context.Context, meetingID, userID uuid.UUID) (*ActiveParticipants, error) {
	meeting, err := s.loadForParticipant(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	live := liveParticipants(s.presence.List(meetingID))
	active := make([]ActiveParticipant, 0, len(live))
	for _, p := range live {
		active = append(active, ActiveParticipant{LiveParticipant: p, IsActive: true})
	}

	return &ActiveParticipants{
		MeetingID:          meeting.ID,
		ActiveParticipants: active,
		TotalParticipants:  len(meeting.ParticipantIDs),
		ActiveCount:        len(active),
		Source:             presenceSource,
	}, nil
}

// GetVotingInfo reports how many live participants submitted for the current phase
func (s *MeetingService) GetVotingInfo(ctx context.Context, meetingID, userID uuid.UUID) (*VotingInfo, error) {
	meeting, err := s.loadForCreator(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	roster := liveParticipants(s.presence.List(meetingID))
	submitted := meeting.SubmittedIDs(meeting.CurrentPhase)
	done := idSet(submitted)

	count := 0
	for _, p := range roster {
		if _, ok := done[p.ID]; ok {
			count++
		}
	}

	return &VotingInfo{
		MeetingID:               meeting.ID,
		CurrentPhase:            meeting.CurrentPhase,
		VotingParticipants:      roster,
		TotalVotingParticipants: len(roster),
		SubmissionStatus: SubmissionStatus{
			Phase:     meeting.CurrentPhase,
			Submitted: submitted,
		},
		VotingProgress: VotingProgress{
			Submitted:  count,
			Total:      len(roster),
			Percentage: percentage(count, len(roster)),
		},
	}, nil
}

// GetPendingVoters returns live participants without a submission for the current phase
func (s *MeetingService) GetPendingVoters(ctx context.Context, meetingID, userID uuid.UUID) (*PendingVoters, error) {
	meeting, err := s.loadForCreator(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	done := idSet(meeting.SubmittedIDs(meeting.CurrentPhase))
	pending := make([]LiveParticipant, 0)
	for _, p := range liveParticipants(s.presence.List(meetingID)) {
		if _, ok := done[p.ID]; !ok {
			pending = append(pending, p)
		}
	}

	return &PendingVoters{
		MeetingID:           meeting.ID,
		Phase:               meeting.CurrentPhase,
		PendingCount:        len(pending),
		PendingParticipants: pending,
	}, nil
}

// GetAllSubmissions returns one slot per participant and phase
func (s *MeetingService) GetAllSubmissions(ctx context.Context, meetingID, userID uuid.UUID) (*AllSubmissions, error) {
	meeting, err := s.loadForCreator(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}
	dir, err := s.directory(ctx, meeting)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasksByAuthor(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}

	slots := func() map[uuid.UUID]SubmissionEntry {
		out := make(map[uuid.UUID]SubmissionEntry, len(meeting.ParticipantIDs))
		for _, id := range meeting.ParticipantIDs {
			out[id] = SubmissionEntry{Participant: dir.ref(id)}
		}
		return out
	}
	fill := func(out map[uuid.UUID]SubmissionEntry, id uuid.UUID, submittedAt time.Time, data any) {
		at := submittedAt
		out[id] = SubmissionEntry{Participant: dir.ref(id), Submitted: true, SubmittedAt: &at, Data: data}
	}

	emotional := slots()
	for _, e := range meeting.EmotionalEvaluations {
		fill(emotional, e.ParticipantID, e.SubmittedAt, emotionalView(e, dir))
	}
	understanding := slots()
	for _, c := range meeting.UnderstandingContributions {
		fill(understanding, c.ParticipantID, c.SubmittedAt, understandingView(c, dir))
	}
	planning := slots()
	for _, t := range meeting.TaskPlannings {
		fill(planning, t.ParticipantID, t.SubmittedAt, planningView(t, dir, tasks))
	}
	evaluation := slots()
	for _, e := range meeting.TaskEvaluations {
		fill(evaluation, e.ParticipantID, e.SubmittedAt, taskEvaluationView(e, dir))
	}

	return &AllSubmissions{
		MeetingID: meeting.ID,
		Submissions: map[entities.MeetingPhase]map[uuid.UUID]SubmissionEntry{
			entities.PhaseEmotionalEvaluation:       emotional,
			entities.PhaseUnderstandingContribution: understanding,
			entities.PhaseTaskPlanning:              planning,
			entities.PhaseTaskEvaluation:            evaluation,
		},
	}, nil
}

// GetPhaseSubmissions returns every ledger as enriched lists
func (s *MeetingService) GetPhaseSubmissions(ctx context.Context, meetingID, userID uuid.UUID) (*PhaseSubmissions, error) {
	meeting, err := s.loadForCreator(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}
	dir, err := s.directory(ctx, meeting)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasksByAuthor(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}

	participants := make([]ParticipantRef, 0, len(meeting.ParticipantIDs))
	for _, id := range meeting.ParticipantIDs {
		if id != meeting.CreatorID {
			participants = append(participants, dir.ref(id))
		}
	}

	ledgers := buildLedgerViews(meeting, dir, tasks)
	return &PhaseSubmissions{
		MeetingID:                  meeting.ID,
		Title:                      meeting.Title,
		Question:                   meeting.Question,
		CurrentPhase:               meeting.CurrentPhase,
		Status:                     meeting.Status,
		Participants:               participants,
		EmotionalEvaluations:       ledgers.emotional,
		UnderstandingContributions: ledgers.understanding,
		TaskPlannings:              ledgers.planning,
		TaskEvaluations:            ledgers.evaluation,
	}, nil
}

// GetStatistics aggregates what each durable participant received from the others.
// Only finished meetings have statistics.
func (s *MeetingService) GetStatistics(ctx context.Context, meetingID, userID uuid.UUID) (*Statistics, error) {
	meeting, err := s.loadForCreator(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}
	if !meeting.IsFinished() {
		return nil, usecaseErrors.ErrMeetingNotFinished
	}
	dir, err := s.directory(ctx, meeting)
	if err != nil {
		return nil, err
	}

	stats := make([]ParticipantStatistic, 0, len(meeting.ParticipantIDs))
	understandingScores := make([]float64, 0, len(meeting.ParticipantIDs))
	for _, id := range meeting.ParticipantIDs {
		stat := ParticipantStatistic{Participant: dir.ref(id)}

		if own, ok := meeting.UnderstandingContributionBy(id); ok {
			stat.UnderstandingScore = own.UnderstandingScore
		}

		var scales []float64
		for _, e := range meeting.EmotionalEvaluations {
			if e.ParticipantID == id {
				continue
			}
			for _, r := range e.Evaluations {
				if r.TargetParticipantID != id {
					continue
				}
				scales = append(scales, r.EmotionalScale)
				if r.IsToxic {
					stat.ToxicityFlags++
				}
			}
		}
		stat.AverageEmotionalScale = mean(scales)

		var shares []float64
		for _, c := range meeting.UnderstandingContributions {
			if c.ParticipantID == id {
				continue
			}
			for _, share := range c.Contributions {
				if share.ParticipantID == id {
					shares = append(shares, share.ContributionPercentage)
				}
			}
		}
		stat.AverageContribution = mean(shares)

		understandingScores = append(understandingScores, stat.UnderstandingScore)
		stats = append(stats, stat)
	}

	return &Statistics{
		MeetingID:        meeting.ID,
		Question:         meeting.Question,
		AvgUnderstanding: mean(understandingScores),
		ParticipantStats: stats,
	}, nil
}

// GetTaskEvaluationAnalytics scores each planned task by the importance others gave it,
// highest average first
func (s *MeetingService) GetTaskEvaluationAnalytics(ctx context.Context, meetingID, userID uuid.UUID) (*TaskEvaluationAnalytics, error) {
	meeting, err := s.loadForCreator(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	result := &TaskEvaluationAnalytics{
		MeetingID:         meeting.ID,
		MeetingTitle:      meeting.Title,
		TotalEvaluators:   len(meeting.TaskEvaluations),
		TotalParticipants: len(meeting.ParticipantIDs),
		TaskAnalytics:     []TaskAnalytic{},
	}
	if len(meeting.TaskEvaluations) == 0 {
		result.Message = "No task evaluations submitted yet"
		return result, nil
	}

	dir, err := s.directory(ctx, meeting)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasksByAuthor(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}

	for _, plan := range meeting.TaskPlannings {
		var scores []float64
		for _, e := range meeting.TaskEvaluations {
			for _, item := range e.TaskEvaluations {
				if item.TaskAuthorID == plan.ParticipantID {
					scores = append(scores, item.ImportanceScore)
					break
				}
			}
		}

		analytic := TaskAnalytic{
			TaskAuthor:                     dir.ref(plan.ParticipantID),
			TaskDescription:                plan.TaskDescription,
			CommonQuestion:                 plan.CommonQuestion,
			Deadline:                       plan.Deadline,
			OriginalContributionPercentage: plan.ExpectedContributionPercentage,
			EvaluationStats:                scoreStats(scores),
			EvaluationDifference:           round2(mean(scores) - plan.ExpectedContributionPercentage),
		}
		if task, ok := tasks[plan.ParticipantID]; ok {
			id := task.ID
			analytic.TaskID = &id
		}
		result.TaskAnalytics = append(result.TaskAnalytics, analytic)
	}

	sort.SliceStable(result.TaskAnalytics, func(i, j int) bool {
		return result.TaskAnalytics[i].EvaluationStats.Average > result.TaskAnalytics[j].EvaluationStats.Average
	})
	result.TotalTasks = len(result.TaskAnalytics)
	return result, nil
}

// GetFinalStatistics returns the given/received breakdown of every durable participant
func (s *MeetingService) GetFinalStatistics(ctx context.Context, meetingID, userID uuid.UUID) (*FinalStatistics, error) {
	meeting, err := s.loadForCreator(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}
	dir, err := s.directory(ctx, meeting)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasksByAuthor(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}

	breakdowns := make([]ParticipantBreakdown, 0, len(meeting.ParticipantIDs))
	for _, id := range meeting.ParticipantIDs {
		breakdowns = append(breakdowns, participantBreakdown(meeting, id, dir, tasks))
	}

	return &FinalStatistics{
		MeetingID:             meeting.ID,
		MeetingTitle:          meeting.Title,
		MeetingQuestion:       meeting.Question,
		CurrentPhase:          meeting.CurrentPhase,
		Status:                meeting.Status,
		Creator:               dir.ref(meeting.CreatorID),
		TotalParticipants:     len(breakdowns),
		ParticipantStatistics: breakdowns,
		CreatedAt:             meeting.CreatedAt,
		UpdatedAt:             meeting.UpdatedAt,
	}, nil
}

func participantBreakdown(m *entities.Meeting, id uuid.UUID, dir directory, tasks map[uuid.UUID]*entities.Task) ParticipantBreakdown {
	b := ParticipantBreakdown{
		Participant: dir.ref(id),
		EmotionalEvaluations: EmotionalBreakdown{
			Given:    []EmotionalRatingView{},
			Received: []ReceivedRating{},
		},
		UnderstandingAndContribution: UnderstandingBreakdown{
			Received: []ReceivedContribution{},
		},
		TaskPlanning: TaskBreakdown{
			EvaluationsGiven:    []TaskImportanceView{},
			EvaluationsReceived: []ReceivedImportance{},
		},
	}

	if own, ok := m.EmotionalEvaluationBy(id); ok {
		b.EmotionalEvaluations.Given = ratingViews(own.Evaluations, dir)
	}
	for _, e := range m.EmotionalEvaluations {
		for _, r := range e.Evaluations {
			if r.TargetParticipantID == id {
				b.EmotionalEvaluations.Received = append(b.EmotionalEvaluations.Received, ReceivedRating{
					From:           dir.ref(e.ParticipantID),
					EmotionalScale: r.EmotionalScale,
					IsToxic:        r.IsToxic,
				})
			}
		}
	}

	if own, ok := m.UnderstandingContributionBy(id); ok {
		b.UnderstandingAndContribution.Given = &UnderstandingGiven{
			UnderstandingScore: own.UnderstandingScore,
			Contributions:      contributionViews(own.Contributions, dir),
			SubmittedAt:        own.SubmittedAt,
		}
	}
	for _, c := range m.UnderstandingContributions {
		for _, share := range c.Contributions {
			if share.ParticipantID == id {
				b.UnderstandingAndContribution.Received = append(b.UnderstandingAndContribution.Received, ReceivedContribution{
					From:                   dir.ref(c.ParticipantID),
					ContributionPercentage: share.ContributionPercentage,
				})
			}
		}
	}

	if plan, ok := m.TaskPlanningBy(id); ok {
		created := &TaskCreated{
			TaskDescription:         plan.TaskDescription,
			CommonQuestion:          plan.CommonQuestion,
			Deadline:                plan.Deadline,
			OwnContributionEstimate: plan.ExpectedContributionPercentage,
			SubmittedAt:             plan.SubmittedAt,
		}
		if task, ok := tasks[id]; ok {
			taskID := task.ID
			created.TaskID = &taskID
			created.Approved = task.Approved
		}
		b.TaskPlanning.TaskCreated = created

		for _, e := range m.TaskEvaluations {
			for _, item := range e.TaskEvaluations {
				if item.TaskAuthorID == id {
					b.TaskPlanning.EvaluationsReceived = append(b.TaskPlanning.EvaluationsReceived, ReceivedImportance{
						From:            dir.ref(e.ParticipantID),
						ImportanceScore: item.ImportanceScore,
					})
				}
			}
		}
	}
	if own, ok := m.TaskEvaluationBy(id); ok {
		b.TaskPlanning.EvaluationsGiven = importanceViews(own.TaskEvaluations, dir)
	}

	return b
}

// ExportFinalStatistics archives the final statistics as JSON and returns where to fetch them
func (s *MeetingService) ExportFinalStatistics(ctx context.Context, meetingID, userID uuid.UUID) (*ArchivedReport, error) {
	if s.archiver == nil {
		return nil, usecaseErrors.ErrStorageUnavailable
	}

	stats, err := s.GetFinalStatistics(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	payload, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode final statistics: %w", err)
	}

	key := fmt.Sprintf("reports/%s/final-stats-%d.json", meetingID, s.now().Unix())
	report, err := s.archiver.Archive(ctx, key, payload)
	if err != nil {
		s.logger.Error("Failed to archive final statistics",
			zap.String("meeting_id", meetingID.String()),
			zap.String("object_key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStorageFailed, err)
	}

	s.logger.Info("Final statistics exported",
		zap.String("meeting_id", meetingID.String()),
		zap.String("object_key", report.ObjectKey),
	)
	return report, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

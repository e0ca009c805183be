package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/meeting-quality/internal/usecase/errors"
)

// SubmitEmotionalEvaluation stores the caller's emotional evaluation
func (s *MeetingService) SubmitEmotionalEvaluation(ctx context.Context, input EmotionalEvaluationInput) (*SubmissionReceipt, error) {
	for _, e := range input.Evaluations {
		if !inRange(e.EmotionalScale, -100, 100) || e.TargetParticipantID == uuid.Nil {
			return nil, usecaseErrors.ErrInvalidInput
		}
	}

	receipt := s.newReceipt(input.MeetingID, input.UserID, entities.PhaseEmotionalEvaluation)
	_, err := s.mutate(ctx, input.MeetingID, func(ctx context.Context, m *entities.Meeting) error {
		if err := s.checkPolicy(m, input.UserID, entities.PhaseEmotionalEvaluation); err != nil {
			return err
		}
		evaluations := make([]entities.EmotionalRating, len(input.Evaluations))
		copy(evaluations, input.Evaluations)
		m.SubmitEmotionalEvaluation(entities.EmotionalEvaluation{
			ParticipantID: input.UserID,
			Evaluations:   evaluations,
			SubmittedAt:   receipt.SubmittedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.submitted(receipt, EventEmotionalEvaluationUpdated)
	return receipt, nil
}

// SubmitUnderstandingContribution stores the caller's understanding and contribution scores
func (s *MeetingService) SubmitUnderstandingContribution(ctx context.Context, input UnderstandingContributionInput) (*SubmissionReceipt, error) {
	if !inRange(input.UnderstandingScore, 0, 100) {
		return nil, usecaseErrors.ErrInvalidInput
	}
	for _, c := range input.Contributions {
		if !inRange(c.ContributionPercentage, 0, 100) || c.ParticipantID == uuid.Nil {
			return nil, usecaseErrors.ErrInvalidInput
		}
	}

	receipt := s.newReceipt(input.MeetingID, input.UserID, entities.PhaseUnderstandingContribution)
	_, err := s.mutate(ctx, input.MeetingID, func(ctx context.Context, m *entities.Meeting) error {
		if err := s.checkPolicy(m, input.UserID, entities.PhaseUnderstandingContribution); err != nil {
			return err
		}
		contributions := make([]entities.ContributionShare, len(input.Contributions))
		copy(contributions, input.Contributions)
		m.SubmitUnderstandingContribution(entities.UnderstandingContribution{
			ParticipantID:      input.UserID,
			UnderstandingScore: input.UnderstandingScore,
			Contributions:      contributions,
			SubmittedAt:        receipt.SubmittedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.submitted(receipt, EventUnderstandingContributionUpdated)
	return receipt, nil
}

// SubmitTaskPlanning stores the caller's task plan and upserts the companion task keyed by
// (meeting, author) in the same transaction. An approved task blocks resubmission.
func (s *MeetingService) SubmitTaskPlanning(ctx context.Context, input TaskPlanningInput) (*SubmissionReceipt, error) {
	description := strings.TrimSpace(input.TaskDescription)
	if description == "" || input.Deadline.IsZero() || !inRange(input.ExpectedContributionPercentage, 0, 100) {
		return nil, usecaseErrors.ErrInvalidInput
	}

	receipt := s.newReceipt(input.MeetingID, input.UserID, entities.PhaseTaskPlanning)
	planning := entities.TaskPlanning{
		ParticipantID:                  input.UserID,
		TaskDescription:                description,
		CommonQuestion:                 strings.TrimSpace(input.CommonQuestion),
		Deadline:                       input.Deadline,
		ExpectedContributionPercentage: input.ExpectedContributionPercentage,
		SubmittedAt:                    receipt.SubmittedAt,
	}

	_, err := s.mutate(ctx, input.MeetingID, func(ctx context.Context, m *entities.Meeting) error {
		if err := s.checkPolicy(m, input.UserID, entities.PhaseTaskPlanning); err != nil {
			return err
		}

		task, err := s.taskRepo.FindByMeetingAndAuthorForUpdate(ctx, m.ID, input.UserID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			task = &entities.Task{MeetingID: m.ID, AuthorID: input.UserID}
			task.ApplyPlanning(planning)
			if err := s.taskRepo.Create(ctx, task); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return usecaseErrors.ErrTaskAlreadyExists
				}
				return fmt.Errorf("failed to create task: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to get task: %w", err)
		default:
			if task.Approved {
				return usecaseErrors.ErrTaskApproved
			}
			task.ApplyPlanning(planning)
			if err := s.taskRepo.UpdateUnapproved(ctx, task); err != nil {
				if errors.Is(err, entities.ErrTaskLocked) {
					return usecaseErrors.ErrTaskApproved
				}
				return fmt.Errorf("failed to update task: %w", err)
			}
		}

		taskID := task.ID
		receipt.TaskID = &taskID
		m.SubmitTaskPlanning(planning)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.submitted(receipt, EventTaskPlanningUpdated)
	return receipt, nil
}

// SubmitTaskEvaluation stores the caller's task importance scores. Every scored author must
// have a task plan in the meeting or nothing is written.
func (s *MeetingService) SubmitTaskEvaluation(ctx context.Context, input TaskEvaluationInput) (*SubmissionReceipt, error) {
	for _, e := range input.TaskEvaluations {
		if !inRange(e.ImportanceScore, 0, 100) || e.TaskAuthorID == uuid.Nil {
			return nil, usecaseErrors.ErrInvalidInput
		}
	}

	receipt := s.newReceipt(input.MeetingID, input.UserID, entities.PhaseTaskEvaluation)
	_, err := s.mutate(ctx, input.MeetingID, func(ctx context.Context, m *entities.Meeting) error {
		if err := s.checkPolicy(m, input.UserID, entities.PhaseTaskEvaluation); err != nil {
			return err
		}
		items := make([]entities.TaskImportance, len(input.TaskEvaluations))
		copy(items, input.TaskEvaluations)
		err := m.SubmitTaskEvaluation(entities.TaskEvaluation{
			ParticipantID:   input.UserID,
			TaskEvaluations: items,
			SubmittedAt:     receipt.SubmittedAt,
		})
		var unknown *entities.UnknownTaskAuthorError
		if errors.As(err, &unknown) {
			return fmt.Errorf("%w: %w", usecaseErrors.ErrUnknownTaskAuthor, err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.submitted(receipt, EventTaskEvaluationUpdated)
	return receipt, nil
}

// checkPolicy applies the configured submission policy. The submitter must always be a
// durable participant.
func (s *MeetingService) checkPolicy(m *entities.Meeting, userID uuid.UUID, phase entities.MeetingPhase) error {
	if !m.IsParticipant(userID) {
		return usecaseErrors.ErrNotParticipant
	}
	if s.policy != PolicyStrict {
		return nil
	}
	if m.IsCreator(userID) {
		return usecaseErrors.ErrCreatorCannotSubmit
	}
	if m.CurrentPhase != phase {
		return fmt.Errorf("%w: %w", usecaseErrors.ErrPhaseMismatch, &usecaseErrors.PhaseMismatchError{Current: string(m.CurrentPhase)})
	}
	return nil
}

func (s *MeetingService) newReceipt(meetingID, userID uuid.UUID, phase entities.MeetingPhase) *SubmissionReceipt {
	return &SubmissionReceipt{
		MeetingID:     meetingID,
		Phase:         phase,
		ParticipantID: userID,
		SubmittedAt:   s.now(),
	}
}

func (s *MeetingService) submitted(receipt *SubmissionReceipt, eventType string) {
	s.logger.Info("Submission stored",
		zap.String("meeting_id", receipt.MeetingID.String()),
		zap.String("phase", string(receipt.Phase)),
		zap.String("participant_id", receipt.ParticipantID.String()),
	)
	s.notifyUpdated(receipt.MeetingID, eventType, receipt.ParticipantID)
}

func inRange(v, min, max float64) bool {
	return v >= min && v <= max
}

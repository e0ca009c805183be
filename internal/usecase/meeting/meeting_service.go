package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/meeting-quality/internal/usecase/errors"
)

// MeetingService handles meeting business logic
type MeetingService struct {
	meetingRepo repositories.MeetingRepository
	taskRepo    repositories.TaskRepository
	userRepo    repositories.UserRepository
	transactor  repositories.Transactor
	presence    PresenceReader
	notifier    Notifier
	archiver    ReportArchiver
	policy      SubmissionPolicy
	logger      *zap.Logger
	now         func() time.Time
}

// Dependencies groups the collaborators of MeetingService. Archiver may be nil when
// report storage is disabled.
type Dependencies struct {
	MeetingRepo repositories.MeetingRepository
	TaskRepo    repositories.TaskRepository
	UserRepo    repositories.UserRepository
	Transactor  repositories.Transactor
	Presence    PresenceReader
	Notifier    Notifier
	Archiver    ReportArchiver
	Policy      SubmissionPolicy
	Logger      *zap.Logger
}

// NewMeetingService creates a new meeting service
func NewMeetingService(deps Dependencies) *MeetingService {
	policy := deps.Policy
	if policy == "" {
		policy = PolicyPermissive
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeetingService{
		meetingRepo: deps.MeetingRepo,
		taskRepo:    deps.TaskRepo,
		userRepo:    deps.UserRepo,
		transactor:  deps.Transactor,
		presence:    deps.Presence,
		notifier:    deps.Notifier,
		archiver:    deps.Archiver,
		policy:      policy,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateMeeting creates a new meeting
func (s *MeetingService) CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error) {
	title := strings.TrimSpace(input.Title)
	question := strings.TrimSpace(input.Question)
	if title == "" || question == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	if err := s.ensureUsersExist(ctx, input.ParticipantIDs); err != nil {
		return nil, err
	}

	meeting := entities.NewMeeting(title, question, input.CreatorID, input.ParticipantIDs, input.UpcomingDate, s.now())

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	s.logger.Info("Meeting created",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("creator_id", input.CreatorID.String()),
		zap.String("status", string(meeting.Status)),
		zap.Int("participants", len(meeting.ParticipantIDs)),
	)

	return meeting, nil
}

// GetMeeting retrieves a meeting visible to the caller
func (s *MeetingService) GetMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*MeetingDetail, error) {
	meeting, err := s.loadForParticipant(ctx, meetingID, userID)
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

	return buildMeetingDetail(meeting, dir, tasks), nil
}

// ListMeetings retrieves the caller's meetings, newest first
func (s *MeetingService) ListMeetings(ctx context.Context, userID uuid.UUID, filter string) ([]*entities.Meeting, error) {
	filters := repositories.MeetingFilters{ParticipantID: &userID}

	var status entities.MeetingStatus
	switch filter {
	case "":
	case FilterCurrent:
		status = entities.MeetingStatusActive
	case FilterPast:
		status = entities.MeetingStatusFinished
	case FilterUpcoming:
		status = entities.MeetingStatusUpcoming
	default:
		return nil, usecaseErrors.ErrInvalidInput
	}
	if status != "" {
		filters.Status = &status
	}

	meetings, err := s.meetingRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// UpdateMeeting patches a meeting (creator only)
func (s *MeetingService) UpdateMeeting(ctx context.Context, input UpdateMeetingInput) (*entities.Meeting, error) {
	if input.ParticipantIDs != nil {
		if err := s.ensureUsersExist(ctx, *input.ParticipantIDs); err != nil {
			return nil, err
		}
	}

	meeting, err := s.mutate(ctx, input.MeetingID, func(ctx context.Context, m *entities.Meeting) error {
		if !m.IsCreator(input.UserID) {
			return usecaseErrors.ErrNotCreator
		}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return usecaseErrors.ErrInvalidInput
			}
			m.Title = title
		}
		if input.Question != nil {
			question := strings.TrimSpace(*input.Question)
			if question == "" {
				return usecaseErrors.ErrInvalidInput
			}
			m.Question = question
		}
		if input.ParticipantIDs != nil {
			m.SetParticipants(*input.ParticipantIDs)
		}
		if input.UpcomingDate != nil {
			m.UpcomingDate = *input.UpcomingDate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyUpdated(meeting.ID, EventMeetingUpdated, input.UserID)
	return meeting, nil
}

// DeleteMeeting hard deletes a meeting (creator only)
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingID, userID uuid.UUID) error {
	meeting, err := s.load(ctx, meetingID)
	if err != nil {
		return err
	}
	if !meeting.IsCreator(userID) {
		return usecaseErrors.ErrNotCreator
	}

	if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecaseErrors.ErrMeetingNotFound
		}
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	s.logger.Info("Meeting deleted",
		zap.String("meeting_id", meetingID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// ChangePhase sets the meeting phase. Any phase may follow any other.
func (s *MeetingService) ChangePhase(ctx context.Context, meetingID, userID uuid.UUID, phase entities.MeetingPhase) (*entities.Meeting, error) {
	if !phase.IsValid() {
		return nil, usecaseErrors.ErrInvalidPhase
	}

	meeting, err := s.mutate(ctx, meetingID, func(ctx context.Context, m *entities.Meeting) error {
		if !m.IsCreator(userID) {
			return usecaseErrors.ErrNotCreator
		}
		m.ChangePhase(phase)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Meeting phase changed",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("phase", string(meeting.CurrentPhase)),
		zap.String("status", string(meeting.Status)),
	)

	if s.notifier != nil {
		s.notifier.PhaseChanged(meeting.ID, meeting.CurrentPhase, meeting.Status)
	}
	return meeting, nil
}

// JoinMeeting records durable presence for a durable participant.
func (s *MeetingService) JoinMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	return s.mutate(ctx, meetingID, func(ctx context.Context, m *entities.Meeting) error {
		if !m.IsParticipant(userID) {
			return usecaseErrors.ErrNotParticipant
		}
		m.MarkJoined(userID, s.now())
		return nil
	})
}

// LeaveMeeting removes the caller's durable presence entry.
func (s *MeetingService) LeaveMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	return s.mutate(ctx, meetingID, func(ctx context.Context, m *entities.Meeting) error {
		if !m.IsParticipant(userID) {
			return usecaseErrors.ErrNotParticipant
		}
		m.MarkLeft(userID)
		return nil
	})
}

// mutate re-reads the meeting under a row lock, applies fn and writes the whole aggregate
// back inside one transaction.
func (s *MeetingService) mutate(ctx context.Context, meetingID uuid.UUID, fn func(ctx context.Context, m *entities.Meeting) error) (*entities.Meeting, error) {
	var meeting *entities.Meeting
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		m, err := s.meetingRepo.FindByIDForUpdate(ctx, meetingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecaseErrors.ErrMeetingNotFound
			}
			return fmt.Errorf("failed to get meeting: %w", err)
		}
		if err := fn(ctx, m); err != nil {
			return err
		}
		if err := s.meetingRepo.Update(ctx, m); err != nil {
			return fmt.Errorf("failed to update meeting: %w", err)
		}
		meeting = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meeting, nil
}

func (s *MeetingService) load(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}

func (s *MeetingService) loadForParticipant(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.load(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !meeting.IsParticipant(userID) {
		return nil, usecaseErrors.ErrNotParticipant
	}
	return meeting, nil
}

func (s *MeetingService) loadForCreator(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.load(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !meeting.IsCreator(userID) {
		return nil, usecaseErrors.ErrNotCreator
	}
	return meeting, nil
}

func (s *MeetingService) ensureUsersExist(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return fmt.Errorf("%w: participant %s", usecaseErrors.ErrUserNotFound, id)
		}
	}
	return nil
}

// notifyUpdated emits a meetingUpdated event. Delivery is best effort.
func (s *MeetingService) notifyUpdated(meetingID uuid.UUID, eventType string, userID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.MeetingUpdated(meetingID, eventType, userID)
}

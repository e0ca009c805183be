package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/meeting-quality/internal/usecase/errors"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repositories.TaskRepository
	meetingRepo repositories.MeetingRepository
	transactor  repositories.Transactor
	notifier    Notifier
	logger      *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo repositories.TaskRepository,
	meetingRepo repositories.MeetingRepository,
	transactor repositories.Transactor,
	notifier Notifier,
	logger *zap.Logger,
) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		taskRepo:    taskRepo,
		meetingRepo: meetingRepo,
		transactor:  transactor,
		notifier:    notifier,
		logger:      logger,
	}
}

// ListTasks lists the caller's tasks ordered by deadline
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID, filter string) ([]*entities.Task, error) {
	var completed *bool
	switch filter {
	case "":
	case FilterCurrent:
		v := false
		completed = &v
	case FilterPast:
		v := true
		completed = &v
	default:
		return nil, usecaseErrors.ErrInvalidInput
	}

	tasks, err := s.taskRepo.ListByAuthor(ctx, userID, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves one of the caller's tasks
func (s *TaskService) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*entities.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsAuthor(userID) {
		return nil, usecaseErrors.ErrNotTaskAuthor
	}
	return task, nil
}

// CreateTask creates the caller's task for a meeting. Each author has at most one task
// per meeting.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*entities.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" || input.Deadline.IsZero() ||
		input.ContributionImportance < 0 || input.ContributionImportance > 100 {
		return nil, usecaseErrors.ErrInvalidInput
	}

	if _, err := s.meetingForParticipant(ctx, input.MeetingID, input.UserID); err != nil {
		return nil, err
	}

	task := &entities.Task{
		Description:            description,
		CommonQuestion:         strings.TrimSpace(input.CommonQuestion),
		AuthorID:               input.UserID,
		MeetingID:              input.MeetingID,
		Deadline:               input.Deadline,
		ContributionImportance: input.ContributionImportance,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, usecaseErrors.ErrTaskAlreadyExists
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("meeting_id", task.MeetingID.String()),
		zap.String("author_id", task.AuthorID.String()),
	)
	return task, nil
}

// UpdateTask patches one of the caller's tasks. Approved tasks are immutable.
func (s *TaskService) UpdateTask(ctx context.Context, input UpdateTaskInput) (*entities.Task, error) {
	var task *entities.Task
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.loadForUpdate(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if !task.IsAuthor(input.UserID) {
			return usecaseErrors.ErrNotTaskAuthor
		}
		if task.Approved {
			return usecaseErrors.ErrTaskApproved
		}
		if err := applyUpdate(task, input); err != nil {
			return err
		}

		if err := s.taskRepo.UpdateUnapproved(ctx, task); err != nil {
			if errors.Is(err, entities.ErrTaskLocked) {
				return usecaseErrors.ErrTaskApproved
			}
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(task.MeetingID, EventTaskUpdated, input.UserID)
	return task, nil
}

func applyUpdate(task *entities.Task, input UpdateTaskInput) error {
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return usecaseErrors.ErrInvalidInput
		}
		task.Description = description
	}
	if input.Deadline != nil {
		task.Deadline = *input.Deadline
	}
	if input.ContributionImportance != nil {
		v := *input.ContributionImportance
		if v < 0 || v > 100 {
			return usecaseErrors.ErrInvalidInput
		}
		task.ContributionImportance = v
	}
	if input.IsCompleted != nil {
		task.IsCompleted = *input.IsCompleted
	}
	return nil
}

// DeleteTask deletes one of the caller's tasks
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID uuid.UUID) error {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecaseErrors.ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListMeetingTasks lists every task of a meeting
func (s *TaskService) ListMeetingTasks(ctx context.Context, meetingID, userID uuid.UUID) ([]*entities.Task, error) {
	if _, err := s.meetingForParticipant(ctx, meetingID, userID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// SetApproval sets the approval flag of a task. Only the creator of the task's meeting may
// do this.
func (s *TaskService) SetApproval(ctx context.Context, taskID, userID uuid.UUID, approved bool) (*ApprovalResult, error) {
	var task *entities.Task
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.loadForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		meeting, err := s.meetingRepo.FindByID(ctx, task.MeetingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecaseErrors.ErrMeetingNotFound
			}
			return fmt.Errorf("failed to get meeting: %w", err)
		}
		if !meeting.IsCreator(userID) {
			return usecaseErrors.ErrNotCreator
		}

		if err := s.taskRepo.SetApproved(ctx, task.ID, approved); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecaseErrors.ErrTaskNotFound
			}
			return fmt.Errorf("failed to update task: %w", err)
		}
		task.Approved = approved
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task approval changed",
		zap.String("task_id", task.ID.String()),
		zap.String("meeting_id", task.MeetingID.String()),
		zap.Bool("approved", approved),
	)
	s.notify(task.MeetingID, EventTaskApproved, userID)

	return &ApprovalResult{TaskID: task.ID, Approved: task.Approved, Task: task}, nil
}

func (s *TaskService) load(ctx context.Context, taskID uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) loadForUpdate(ctx context.Context, taskID uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.FindByIDForUpdate(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) meetingForParticipant(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if !meeting.IsParticipant(userID) {
		return nil, usecaseErrors.ErrNotParticipant
	}
	return meeting, nil
}

func (s *TaskService) notify(meetingID uuid.UUID, eventType string, userID uuid.UUID) {
	if s.notifier != nil {
		s.notifier.MeetingUpdated(meetingID, eventType, userID)
	}
}

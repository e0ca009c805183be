package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// Service defines the interface for task use case
type Service interface {
	// ListTasks lists the caller's tasks, current (open) or past (completed)
	ListTasks(ctx context.Context, userID uuid.UUID, filter string) ([]*entities.Task, error)

	// GetTask returns one of the caller's tasks
	GetTask(ctx context.Context, taskID, userID uuid.UUID) (*entities.Task, error)

	// CreateTask creates the caller's task for a meeting
	CreateTask(ctx context.Context, input CreateTaskInput) (*entities.Task, error)

	// UpdateTask patches one of the caller's unapproved tasks
	UpdateTask(ctx context.Context, input UpdateTaskInput) (*entities.Task, error)

	// DeleteTask deletes one of the caller's tasks
	DeleteTask(ctx context.Context, taskID, userID uuid.UUID) error

	// ListMeetingTasks lists every task of a meeting the caller takes part in
	ListMeetingTasks(ctx context.Context, meetingID, userID uuid.UUID) ([]*entities.Task, error)

	// SetApproval approves or unapproves a task (meeting creator only)
	SetApproval(ctx context.Context, taskID, userID uuid.UUID, approved bool) (*ApprovalResult, error)
}

// Ensure TaskService implements Service interface
var _ Service = (*TaskService)(nil)

// Notifier pushes task events to the meeting's realtime subscribers
type Notifier interface {
	MeetingUpdated(meetingID uuid.UUID, eventType string, userID uuid.UUID)
}

// List filters
const (
	FilterCurrent = "current"
	FilterPast    = "past"
)

// Task event types
const (
	EventTaskUpdated  = "task_updated"
	EventTaskApproved = "task_approved"
)

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	MeetingID              uuid.UUID
	UserID                 uuid.UUID
	Description            string
	CommonQuestion         string
	Deadline               time.Time
	ContributionImportance float64
}

// UpdateTaskInput represents a partial task update
type UpdateTaskInput struct {
	TaskID                 uuid.UUID
	UserID                 uuid.UUID
	Description            *string
	Deadline               *time.Time
	ContributionImportance *float64
	IsCompleted            *bool
}

// ApprovalResult is returned after a creator changes a task's approval
type ApprovalResult struct {
	TaskID   uuid.UUID      `json:"taskId"`
	Approved bool           `json:"approved"`
	Task     *entities.Task `json:"task"`
}

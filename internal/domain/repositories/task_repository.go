package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task; fails with gorm.ErrDuplicatedKey when the author
	// already has a task in the meeting
	Create(ctx context.Context, task *entities.Task) error

	// FindByID retrieves a task by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)

	// FindByIDForUpdate retrieves a task and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Task, error)

	// FindByMeetingAndAuthorForUpdate retrieves and locks the author's task for a meeting
	FindByMeetingAndAuthorForUpdate(ctx context.Context, meetingID, authorID uuid.UUID) (*entities.Task, error)

	// ListByMeeting retrieves every task of a meeting
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error)

	// ListByAuthor retrieves an author's tasks ordered by deadline
	ListByAuthor(ctx context.Context, authorID uuid.UUID, completed *bool) ([]*entities.Task, error)

	// UpdateUnapproved writes the author-editable fields of a task. It fails with
	// entities.ErrTaskLocked when the stored task is approved.
	UpdateUnapproved(ctx context.Context, task *entities.Task) error

	// SetApproved writes only the approval flag
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error

	// Delete deletes a task
	Delete(ctx context.Context, id uuid.UUID) error
}

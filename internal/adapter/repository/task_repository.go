package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/domain/repositories"
)

// taskRepository implements the TaskRepository interface
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) repositories.TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task
func (r *taskRepository) Create(ctx context.Context, task *entities.Task) error {
	return conn(ctx, r.db).Create(task).Error
}

// FindByID retrieves a task by its ID
func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	err := conn(ctx, r.db).
		Preload("Author").
		Where("id = ?", id).
		First(&task).Error

	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDForUpdate retrieves a task with SELECT ... FOR UPDATE
func (r *taskRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&task).Error

	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByMeetingAndAuthorForUpdate retrieves the author's task for a meeting with SELECT ... FOR UPDATE
func (r *taskRepository) FindByMeetingAndAuthorForUpdate(ctx context.Context, meetingID, authorID uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("meeting_id = ? AND author_id = ?", meetingID, authorID).
		First(&task).Error

	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByMeeting retrieves every task of a meeting
func (r *taskRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error) {
	var tasks []*entities.Task
	err := conn(ctx, r.db).
		Preload("Author").
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&tasks).Error

	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByAuthor retrieves an author's tasks ordered by deadline
func (r *taskRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, completed *bool) ([]*entities.Task, error) {
	var tasks []*entities.Task
	query := conn(ctx, r.db).Where("author_id = ?", authorID)
	if completed != nil {
		query = query.Where("is_completed = ?", *completed)
	}

	if err := query.Order("deadline ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateUnapproved updates the author-editable columns while the task is still unapproved
func (r *taskRepository) UpdateUnapproved(ctx context.Context, task *entities.Task) error {
	task.UpdatedAt = time.Now()
	result := conn(ctx, r.db).
		Model(&entities.Task{}).
		Where("id = ? AND approved = ?", task.ID, false).
		Updates(map[string]interface{}{
			"description":             task.Description,
			"common_question":         task.CommonQuestion,
			"deadline":                task.Deadline,
			"contribution_importance": task.ContributionImportance,
			"is_completed":            task.IsCompleted,
			"updated_at":              task.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrTaskLocked
	}
	return nil
}

// SetApproved updates the approval flag
func (r *taskRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	result := conn(ctx, r.db).
		Model(&entities.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"approved":   approved,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete deletes a task
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&entities.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

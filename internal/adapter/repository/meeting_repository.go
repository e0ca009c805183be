package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/domain/repositories"
)

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create creates a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	return conn(ctx, r.db).Create(meeting).Error
}

// FindByID retrieves a meeting by its ID
func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := conn(ctx, r.db).
		Where("id = ?", id).
		First(&meeting).Error

	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// FindByIDForUpdate retrieves a meeting with SELECT ... FOR UPDATE
func (r *meetingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&meeting).Error

	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// Update writes the whole aggregate back
func (r *meetingRepository) Update(ctx context.Context, meeting *entities.Meeting) error {
	return conn(ctx, r.db).Save(meeting).Error
}

// Delete hard deletes a meeting
func (r *meetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&entities.Meeting{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List retrieves meetings with filters, newest first
func (r *meetingRepository) List(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	query := conn(ctx, r.db).Model(&entities.Meeting{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ParticipantID != nil {
		query = query.Where("participant_ids @> ?::jsonb", fmt.Sprintf(`["%s"]`, filters.ParticipantID.String()))
	}

	if err := query.Order("created_at DESC").Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// ActivateDue flips due upcoming meetings to active in one statement
func (r *meetingRepository) ActivateDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db).Raw(
		`UPDATE meetings SET status = ?, updated_at = ? WHERE status = ? AND upcoming_date <= ? RETURNING id`,
		entities.MeetingStatusActive, now, entities.MeetingStatusUpcoming, now,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

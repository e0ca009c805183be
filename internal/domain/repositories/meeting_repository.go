package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// FindByIDForUpdate retrieves a meeting and locks its row until the surrounding
	// transaction ends. Outside a transaction it behaves like FindByID.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// Update writes the whole aggregate back
	Update(ctx context.Context, meeting *entities.Meeting) error

	// Delete hard deletes a meeting
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves meetings visible to a participant, newest first
	List(ctx context.Context, filters MeetingFilters) ([]*entities.Meeting, error)

	// ActivateDue flips upcoming meetings whose upcoming date has passed to active
	// and returns the ids it changed
	ActivateDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// MeetingFilters represents filter options for listing meetings
type MeetingFilters struct {
	Status        *entities.MeetingStatus
	ParticipantID *uuid.UUID
}

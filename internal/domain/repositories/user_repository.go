package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// FindByID retrieves a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// FindByEmail retrieves a user by email
	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	// FindByIDs retrieves the users with the given ids, keyed by id. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.User, error)

	// List retrieves all active users ordered by name
	List(ctx context.Context) ([]*entities.User, error)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/domain/repositories"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if err := conn(ctx, r.db).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var user entities.User
	if err := conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// FindByIDs loads users in one query and indexes them by ID
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.User, error) {
	result := make(map[uuid.UUID]*entities.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []*entities.User
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users by IDs: %w", err)
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// List lists active users ordered by name
func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	var users []*entities.User
	if err := conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

package repository

import (
	"context"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureUser upserts a user record from an authenticated principal. Display
// name and email are refreshed on every login; existing values are kept when
// the token carries none.
func (r *UserRepository) EnsureUser(ctx context.Context, username, displayName, email string) (*domain.User, error) {
	var existing domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		user := &domain.User{
			Username:    username,
			DisplayName: displayName,
			Email:       email,
			IsActive:    true,
		}
		if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if displayName != "" && displayName != existing.DisplayName {
		updates["display_name"] = displayName
	}
	if email != "" && email != existing.Email {
		updates["email"] = email
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&domain.User{}).
			Where("id = ?", existing.ID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
		if name, ok := updates["display_name"].(string); ok {
			existing.DisplayName = name
		}
		if mail, ok := updates["email"].(string); ok {
			existing.Email = mail
		}
	}

	return &existing, nil
}

// List returns all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"sidebet/internal/cache"
	"sidebet/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetOrCreate(ctx context.Context, id string, email *string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query, excludeUserID string, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreate looks the subject up by primary key and inserts a placeholder
// row if it is unseen. Concurrent callers may race to insert; the loser hits
// the primary-key constraint and re-reads the winner's row instead of
// propagating the conflict.
func (r *userRepository) GetOrCreate(ctx context.Context, id string, email *string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	user = models.User{ID: id, Email: email}
	if createErr := r.db.WithContext(ctx).Create(&user).Error; createErr != nil {
		if isUniqueConstraintError(createErr) {
			var existing models.User
			if readErr := r.db.WithContext(ctx).First(&existing, "id = ?", id).Error; readErr != nil {
				return nil, models.NewInternalError(readErr)
			}
			return &existing, nil
		}
		return nil, models.NewInternalError(createErr)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already in use")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Search matches username or email case-insensitively. An empty query
// returns an empty result rather than matching everything. Ordering is by
// username (nulls last) then id so results are stable across calls.
func (r *userRepository) Search(ctx context.Context, query, excludeUserID string, limit int) ([]models.User, error) {
	users := []models.User{}
	if strings.TrimSpace(query) == "" {
		return users, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	if err := r.db.WithContext(ctx).
		Where("id <> ?", excludeUserID).
		Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern).
		Order("username NULLS LAST, id").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

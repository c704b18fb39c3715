package repository

import (
	"context"

	"sidebet/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines persistence operations for the friendship graph.
type FriendRepository interface {
	EdgeExists(ctx context.Context, userID, friendID string) (bool, error)
	CreatePair(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]models.User, error)
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository returns a new FriendRepository implementation.
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) EdgeExists(ctx context.Context, userID, friendID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// CreatePair inserts both directed edges of a friendship in one transaction
// so the relation can never be half-written. A unique-pair violation means a
// concurrent call already recorded the friendship; that is treated as
// success, keeping the operation idempotent.
func (r *friendRepository) CreatePair(ctx context.Context, userID, friendID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edges := []models.Friendship{
			{UserID: userID, FriendID: friendID},
			{UserID: friendID, FriendID: userID},
		}
		return tx.Create(&edges).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN friendships f ON f.friend_id = users.id").
		Where("f.user_id = ?", userID).
		Order("users.username NULLS LAST, users.id").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

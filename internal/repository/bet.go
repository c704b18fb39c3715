package repository

import (
	"context"
	"errors"
	"time"

	"sidebet/internal/models"

	"gorm.io/gorm"
)

// BetRepository defines persistence operations for the bet ledger.
type BetRepository interface {
	Create(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id uint) (*models.Bet, error)
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]models.Bet, error)
	Resolve(ctx context.Context, id uint, winnerID, result string, at time.Time) (*models.Bet, error)
}

type betRepository struct {
	db *gorm.DB
}

// NewBetRepository returns a new BetRepository implementation.
func NewBetRepository(db *gorm.DB) BetRepository {
	return &betRepository{db: db}
}

func (r *betRepository) Create(ctx context.Context, bet *models.Bet) error {
	if err := r.db.WithContext(ctx).Create(bet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *betRepository) GetByID(ctx context.Context, id uint) (*models.Bet, error) {
	var bet models.Bet
	if err := r.db.WithContext(ctx).First(&bet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Bet", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &bet, nil
}

// ListForUser returns bets where the user is creator or opponent, most
// recent first.
func (r *betRepository) ListForUser(ctx context.Context, userID string, offset, limit int) ([]models.Bet, error) {
	bets := []models.Bet{}
	if err := r.db.WithContext(ctx).
		Where("creator_id = ? OR opponent_id = ?", userID, userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&bets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bets, nil
}

// Resolve transitions a pending bet to resolved, setting winner, result and
// resolution time together. The status guard in the WHERE clause makes the
// transition single-shot even under concurrent resolve calls: the second
// caller matches no rows and gets CONFLICT.
func (r *betRepository) Resolve(ctx context.Context, id uint, winnerID, result string, at time.Time) (*models.Bet, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Bet{}).
		Where("id = ? AND status = ?", id, models.BetStatusPending).
		Updates(map[string]interface{}{
			"status":      models.BetStatusResolved,
			"winner_id":   winnerID,
			"result":      result,
			"resolved_at": at,
		})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewConflictError("Bet has already been resolved")
	}

	return r.GetByID(ctx, id)
}

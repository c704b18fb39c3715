package service

import (
	"context"
	"strings"
	"time"

	"sidebet/internal/models"
	"sidebet/internal/repository"
)

// BetService provides bet ledger business logic.
type BetService struct {
	betRepo  repository.BetRepository
	userRepo repository.UserRepository
}

// CreateBetInput carries the fields for a new bet.
type CreateBetInput struct {
	CreatorID   string
	OpponentID  string
	Description string
	Wager       int
}

// ResolveBetInput carries the fields for resolving a bet.
type ResolveBetInput struct {
	BetID       uint
	RequestorID string
	WinnerID    string
	Result      string
}

// NewBetService returns a new BetService.
func NewBetService(betRepo repository.BetRepository, userRepo repository.UserRepository) *BetService {
	return &BetService{
		betRepo:  betRepo,
		userRepo: userRepo,
	}
}

// CreateBet opens a pending bet between the creator and an opponent. The
// opponent is materialized as a placeholder user if unseen.
func (s *BetService) CreateBet(ctx context.Context, in CreateBetInput) (*models.Bet, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, models.NewInvalidArgumentError("Description is required")
	}
	if in.Wager <= 0 {
		return nil, models.NewInvalidArgumentError("Wager must be a positive amount")
	}

	if _, err := s.userRepo.GetOrCreate(ctx, in.OpponentID, nil); err != nil {
		return nil, err
	}

	bet := &models.Bet{
		Description: in.Description,
		Wager:       in.Wager,
		Status:      models.BetStatusPending,
		CreatorID:   in.CreatorID,
		OpponentID:  in.OpponentID,
	}
	if err := s.betRepo.Create(ctx, bet); err != nil {
		return nil, err
	}
	return bet, nil
}

// ListBets returns the bets the user participates in, most recent first.
func (s *BetService) ListBets(ctx context.Context, userID string, skip, limit int) ([]models.Bet, error) {
	return s.betRepo.ListForUser(ctx, userID, skip, limit)
}

// ResolveBet records the winner of a bet. Only a participant may resolve,
// the winner must be a participant, and a bet resolves exactly once.
func (s *BetService) ResolveBet(ctx context.Context, in ResolveBetInput) (*models.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, in.BetID)
	if err != nil {
		return nil, err
	}

	if !bet.IsParticipant(in.RequestorID) {
		return nil, models.NewPermissionDeniedError("Only a participant can resolve this bet")
	}
	if !bet.IsParticipant(in.WinnerID) {
		return nil, models.NewInvalidArgumentError("Winner must be one of the participants")
	}
	if bet.IsResolved() {
		return nil, models.NewConflictError("Bet has already been resolved")
	}

	return s.betRepo.Resolve(ctx, bet.ID, in.WinnerID, in.Result, time.Now().UTC())
}

package service

import (
	"context"

	"sidebet/internal/models"
	"sidebet/internal/repository"
)

// FriendService provides friendship business logic.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// AddFriend records a mutual friendship between the user and the target.
// The target is materialized as a placeholder user if unseen. Adding an
// existing friend is a no-op; adding yourself is rejected.
func (s *FriendService) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return models.NewInvalidArgumentError("Cannot add yourself as a friend")
	}

	if _, err := s.userRepo.GetOrCreate(ctx, friendID, nil); err != nil {
		return err
	}

	exists, err := s.friendRepo.EdgeExists(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.friendRepo.CreatePair(ctx, userID, friendID)
}

// ListFriends returns every user the given user is friends with.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	return s.friendRepo.ListFriends(ctx, userID)
}

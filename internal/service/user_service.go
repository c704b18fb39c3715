// Package service contains the business logic for the application.
package service

import (
	"context"
	"strings"

	"sidebet/internal/models"
	"sidebet/internal/repository"
)

const (
	minUsernameLen     = 3
	maxUsernameLen     = 50
	defaultSearchLimit = 20
)

// UserService provides user directory business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the optional profile fields to change. Nil
// fields are left untouched.
type UpdateProfileInput struct {
	UserID   string
	Username *string
	Email    *string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetOrCreate materializes a local user record for the given subject
// identifier, creating a placeholder profile on first sight. Every caller
// holding a bare identifier (authentication, bet creation, friend-add) goes
// through here rather than doing its own lookup-then-insert.
func (s *UserService) GetOrCreate(ctx context.Context, subjectID, email string) (*models.User, error) {
	var emailPtr *string
	if email != "" {
		emailPtr = &email
	}
	return s.userRepo.GetOrCreate(ctx, subjectID, emailPtr)
}

// GetUser returns the user with the given ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies the supplied fields to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if len(username) < minUsernameLen || len(username) > maxUsernameLen {
			return nil, models.NewInvalidArgumentError("Username must be between 3 and 50 characters")
		}
		user.Username = &username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, models.NewInvalidArgumentError("Email must not be empty")
		}
		user.Email = &email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SearchUsers finds users whose username or email contains the query,
// excluding the searching user. An empty query yields an empty result.
func (s *UserService) SearchUsers(ctx context.Context, query, excludeUserID string, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.userRepo.Search(ctx, query, excludeUserID, limit)
}

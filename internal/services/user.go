package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"secret-friends-backend/internal/models"
)

const maxEmailLength = 320

// UserService handles user-related business logic
type UserService struct {
	userRepo UserStore
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// CreateUser registers the asserted identity. Calling it again for the same
// id returns the stored row with created=false and leaves the email as is.
func (s *UserService) CreateUser(ctx context.Context, userID, email string) (user *models.User, created bool, err error) {
	if userID == "" {
		return nil, false, invalid("user id is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, invalid("email is required")
	}
	if len(email) > maxEmailLength || !strings.Contains(email, "@") {
		return nil, false, invalid("email is malformed")
	}

	user = &models.User{
		ID:        userID,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	created, err = s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, false, storeError("failed to create user", err)
	}
	if created {
		return user, true, nil
	}

	existing, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, storeError("failed to load existing user", err)
	}
	return existing, false, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError("failed to get user", err)
	}
	return user, nil
}

// DeleteUser removes targetID along with its secrets and friend requests.
// Only the identity itself may do so; any other caller sees not found.
func (s *UserService) DeleteUser(ctx context.Context, actingUserID, targetID string) (*models.User, error) {
	if targetID == "" {
		return nil, invalid("user id is required")
	}
	if actingUserID != targetID {
		return nil, fmt.Errorf("user %s: %w", targetID, ErrNotFound)
	}

	user, err := s.userRepo.Delete(ctx, targetID)
	if err != nil {
		return nil, storeError("failed to delete user", err)
	}
	return user, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"secret-friends-backend/internal/models"
	"secret-friends-backend/internal/policy"
	"secret-friends-backend/internal/repository"
)

// AccessService gates cross-user reads of secret messages
type AccessService struct {
	requestRepo FriendRequestStore
	secretRepo  SecretStore
}

// NewAccessService creates a new access service
func NewAccessService(requestRepo FriendRequestStore, secretRepo SecretStore) *AccessService {
	return &AccessService{
		requestRepo: requestRepo,
		secretRepo:  secretRepo,
	}
}

// CanViewFriendSecrets reports whether viewerID may read targetID's secrets
func (s *AccessService) CanViewFriendSecrets(ctx context.Context, viewerID, targetID string) (bool, error) {
	if viewerID == "" || targetID == "" || viewerID == targetID {
		return false, nil
	}

	// only the edge target -> viewer can authorize the read
	edge, err := s.requestRepo.GetByPair(ctx, targetID, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, storeError("failed to load friend request", err)
	}
	return policy.CanViewFriendSecrets(edge, viewerID, targetID), nil
}

// GetFriendSecrets returns targetID's secrets when viewerID is allowed to see
// them. A refusal does not reveal whether the target exists.
func (s *AccessService) GetFriendSecrets(ctx context.Context, viewerID, targetID string) ([]*models.FriendSecret, error) {
	ok, err := s.CanViewFriendSecrets(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("secrets of %s: %w", targetID, ErrUnauthorized)
	}

	secrets, err := s.secretRepo.ListByOwnerWithEmail(ctx, targetID)
	if err != nil {
		return nil, storeError("failed to list friend secrets", err)
	}
	return secrets, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"secret-friends-backend/internal/models"
	"secret-friends-backend/internal/policy"
	"secret-friends-backend/internal/repository"

	"github.com/google/uuid"
)

// FriendService handles the friend request graph
type FriendService struct {
	requestRepo FriendRequestStore
}

// NewFriendService creates a new friend service
func NewFriendService(requestRepo FriendRequestStore) *FriendService {
	return &FriendService{
		requestRepo: requestRepo,
	}
}

// SendRequest opens a pending edge sender -> receiver
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return nil, invalid("receiver_id is required")
	}
	if !policy.CanSendRequest(senderID, receiverID) {
		return nil, invalid("cannot send a friend request to yourself")
	}

	fr := &models.FriendRequest{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.requestRepo.Create(ctx, fr); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("friend request already exists: %w", ErrConflict)
		case errors.Is(err, repository.ErrReferenceMissing):
			return nil, invalid("sender or receiver is not registered")
		}
		return nil, storeError("failed to create friend request", err)
	}

	return fr, nil
}

// ListIncomingPending returns the pending requests addressed to userID
func (s *FriendService) ListIncomingPending(ctx context.Context, userID string) ([]*models.IncomingRequest, error) {
	requests, err := s.requestRepo.ListIncomingPending(ctx, userID)
	if err != nil {
		return nil, storeError("failed to list incoming requests", err)
	}
	return requests, nil
}

// ListOutgoingPending returns the pending requests sent by userID
func (s *FriendService) ListOutgoingPending(ctx context.Context, userID string) ([]*models.FriendRequest, error) {
	requests, err := s.requestRepo.ListOutgoingPending(ctx, userID)
	if err != nil {
		return nil, storeError("failed to list outgoing requests", err)
	}
	return requests, nil
}

// ListFriends returns everyone userID shares an accepted edge with
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]*models.Friend, error) {
	friends, err := s.requestRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, storeError("failed to list friends", err)
	}
	return friends, nil
}

// GetRequest returns a request visible to actingUserID
func (s *FriendService) GetRequest(ctx context.Context, requestID, actingUserID string) (*models.FriendRequest, error) {
	if requestID == "" {
		return nil, invalid("request id is required")
	}

	fr, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, storeError("failed to get friend request", err)
	}
	if !fr.IsParty(actingUserID) {
		return nil, fmt.Errorf("friend request %s: %w", requestID, ErrNotFound)
	}
	return fr, nil
}

// AcceptRequest moves a request to accepted. Only the receiver may do so;
// for anyone else the request does not exist.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, actingUserID string) (*models.FriendRequest, error) {
	fr, err := s.GetRequest(ctx, requestID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccept(fr, actingUserID) {
		return nil, fmt.Errorf("friend request %s: %w", requestID, ErrNotFound)
	}

	accepted, err := s.requestRepo.Accept(ctx, requestID, actingUserID)
	if err != nil {
		return nil, storeError("failed to accept friend request", err)
	}
	return accepted, nil
}

// DeleteRequest declines or withdraws a request. Either party may do so.
func (s *FriendService) DeleteRequest(ctx context.Context, requestID, actingUserID string) (*models.FriendRequest, error) {
	fr, err := s.GetRequest(ctx, requestID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !policy.CanDelete(fr, actingUserID) {
		return nil, fmt.Errorf("friend request %s: %w", requestID, ErrNotFound)
	}

	deleted, err := s.requestRepo.Delete(ctx, requestID, actingUserID)
	if err != nil {
		return nil, storeError("failed to delete friend request", err)
	}
	return deleted, nil
}

package services

import (
	"context"
	"time"

	"secret-friends-backend/internal/models"
)

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) (bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
}

// SecretStore persists secret messages
type SecretStore interface {
	Create(ctx context.Context, secret *models.SecretMessage) error
	GetByID(ctx context.Context, id string) (*models.SecretMessage, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.SecretMessage, error)
	ListByOwnerWithEmail(ctx context.Context, ownerID string) ([]*models.FriendSecret, error)
	Update(ctx context.Context, id, ownerID, content string, updatedAt time.Time) (*models.SecretMessage, error)
	Delete(ctx context.Context, id, ownerID string) (*models.SecretMessage, error)
}

// FriendRequestStore persists the relationship graph
type FriendRequestStore interface {
	Create(ctx context.Context, fr *models.FriendRequest) error
	GetByID(ctx context.Context, id string) (*models.FriendRequest, error)
	GetByPair(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	ListIncomingPending(ctx context.Context, userID string) ([]*models.IncomingRequest, error)
	ListOutgoingPending(ctx context.Context, userID string) ([]*models.FriendRequest, error)
	ListFriends(ctx context.Context, userID string) ([]*models.Friend, error)
	Accept(ctx context.Context, id, receiverID string) (*models.FriendRequest, error)
	Delete(ctx context.Context, id, actingUserID string) (*models.FriendRequest, error)
}

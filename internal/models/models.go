package models

import "time"

// User represents a registered identity
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SecretMessage is a private message owned by a single user
type SecretMessage struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FriendRequestStatus is the lifecycle state of a friend request edge
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
)

// FriendRequest is a directed edge from sender to receiver
type FriendRequest struct {
	ID         string              `json:"id"`
	SenderID   string              `json:"sender_id"`
	ReceiverID string              `json:"receiver_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}

// IsParty reports whether userID is the sender or the receiver of the request
func (fr *FriendRequest) IsParty(userID string) bool {
	return fr.SenderID == userID || fr.ReceiverID == userID
}

// IncomingRequest is a pending request joined with its sender's email
type IncomingRequest struct {
	FriendRequest
	SenderEmail string `json:"sender_email"`
}

// FriendSecret is a secret joined with its owner's email
type FriendSecret struct {
	SecretMessage
	SenderEmail string `json:"sender_email"`
}

// Friend is the other side of an accepted edge
type Friend struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	RequestID string    `json:"request_id"`
	Outgoing  bool      `json:"outgoing"`
	Since     time.Time `json:"since"`
}

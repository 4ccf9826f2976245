// Package memstore is an in-memory store with the same constraints as the
// PostgreSQL schema: cascading deletes from users, the unique
// (sender_id, receiver_id) pair on friend requests and foreign keys to users.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"secret-friends-backend/internal/models"
	"secret-friends-backend/internal/repository"
)

type secretRow struct {
	seq    int64
	secret models.SecretMessage
}

type requestRow struct {
	seq     int64
	request models.FriendRequest
}

// Store holds all tables behind one lock
type Store struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]models.User
	secrets  map[string]*secretRow
	requests map[string]*requestRow
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		secrets:  make(map[string]*secretRow),
		requests: make(map[string]*requestRow),
	}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Users returns the users table view
func (s *Store) Users() *Users { return &Users{s: s} }

// Secrets returns the secret_messages table view
func (s *Store) Secrets() *Secrets { return &Secrets{s: s} }

// FriendRequests returns the friend_requests table view
func (s *Store) FriendRequests() *FriendRequests { return &FriendRequests{s: s} }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
}

// Users implements the identity store
type Users struct{ s *Store }

// Create inserts the user unless the id is taken
func (u *Users) Create(ctx context.Context, user *models.User) (bool, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, exists := u.s.users[user.ID]; exists {
		return false, nil
	}
	u.s.users[user.ID] = *user
	return true, nil
}

// GetByID retrieves a user by ID
func (u *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &user, nil
}

// Delete removes the user along with its secrets and every edge touching it
func (u *Users) Delete(ctx context.Context, id string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	delete(u.s.users, id)

	for key, row := range u.s.secrets {
		if row.secret.OwnerID == id {
			delete(u.s.secrets, key)
		}
	}
	for key, row := range u.s.requests {
		if row.request.IsParty(id) {
			delete(u.s.requests, key)
		}
	}
	return &user, nil
}

// Secrets implements the secret store
type Secrets struct{ s *Store }

// Create inserts a new secret message
func (sc *Secrets) Create(ctx context.Context, secret *models.SecretMessage) error {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()

	if _, ok := sc.s.users[secret.OwnerID]; !ok {
		return fmt.Errorf("owner %s: %w", secret.OwnerID, repository.ErrReferenceMissing)
	}
	if _, exists := sc.s.secrets[secret.ID]; exists {
		return fmt.Errorf("secret %s: %w", secret.ID, repository.ErrConflict)
	}
	sc.s.secrets[secret.ID] = &secretRow{seq: sc.s.nextSeq(), secret: *secret}
	return nil
}

// GetByID retrieves a secret message by ID
func (sc *Secrets) GetByID(ctx context.Context, id string) (*models.SecretMessage, error) {
	sc.s.mu.RLock()
	defer sc.s.mu.RUnlock()

	row, ok := sc.s.secrets[id]
	if !ok {
		return nil, notFound("secret")
	}
	secret := row.secret
	return &secret, nil
}

func (sc *Secrets) ownedRows(ownerID string) []*secretRow {
	var rows []*secretRow
	for _, row := range sc.s.secrets {
		if row.secret.OwnerID == ownerID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	return rows
}

// ListByOwner returns every secret of the owner in insertion order
func (sc *Secrets) ListByOwner(ctx context.Context, ownerID string) ([]*models.SecretMessage, error) {
	sc.s.mu.RLock()
	defer sc.s.mu.RUnlock()

	secrets := []*models.SecretMessage{}
	for _, row := range sc.ownedRows(ownerID) {
		secret := row.secret
		secrets = append(secrets, &secret)
	}
	return secrets, nil
}

// ListByOwnerWithEmail returns the owner's secrets joined with the owner's email
func (sc *Secrets) ListByOwnerWithEmail(ctx context.Context, ownerID string) ([]*models.FriendSecret, error) {
	sc.s.mu.RLock()
	defer sc.s.mu.RUnlock()

	secrets := []*models.FriendSecret{}
	owner, ok := sc.s.users[ownerID]
	if !ok {
		return secrets, nil
	}
	for _, row := range sc.ownedRows(ownerID) {
		secrets = append(secrets, &models.FriendSecret{SecretMessage: row.secret, SenderEmail: owner.Email})
	}
	return secrets, nil
}

// Update replaces the content of a secret owned by ownerID
func (sc *Secrets) Update(ctx context.Context, id, ownerID, content string, updatedAt time.Time) (*models.SecretMessage, error) {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()

	row, ok := sc.s.secrets[id]
	if !ok || row.secret.OwnerID != ownerID {
		return nil, notFound("secret")
	}
	row.secret.Content = content
	row.secret.UpdatedAt = updatedAt
	secret := row.secret
	return &secret, nil
}

// Delete removes a secret owned by ownerID
func (sc *Secrets) Delete(ctx context.Context, id, ownerID string) (*models.SecretMessage, error) {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()

	row, ok := sc.s.secrets[id]
	if !ok || row.secret.OwnerID != ownerID {
		return nil, notFound("secret")
	}
	delete(sc.s.secrets, id)
	secret := row.secret
	return &secret, nil
}

// FriendRequests implements the relationship graph
type FriendRequests struct{ s *Store }

// Create inserts a friend request unless the ordered pair already has an edge
func (fr *FriendRequests) Create(ctx context.Context, req *models.FriendRequest) error {
	fr.s.mu.Lock()
	defer fr.s.mu.Unlock()

	if _, ok := fr.s.users[req.SenderID]; !ok {
		return fmt.Errorf("sender %s: %w", req.SenderID, repository.ErrReferenceMissing)
	}
	if _, ok := fr.s.users[req.ReceiverID]; !ok {
		return fmt.Errorf("receiver %s: %w", req.ReceiverID, repository.ErrReferenceMissing)
	}
	for _, row := range fr.s.requests {
		if row.request.SenderID == req.SenderID && row.request.ReceiverID == req.ReceiverID {
			return fmt.Errorf("friend request %s -> %s: %w", req.SenderID, req.ReceiverID, repository.ErrConflict)
		}
	}
	fr.s.requests[req.ID] = &requestRow{seq: fr.s.nextSeq(), request: *req}
	return nil
}

// GetByID retrieves a friend request by ID
func (fr *FriendRequests) GetByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	fr.s.mu.RLock()
	defer fr.s.mu.RUnlock()

	row, ok := fr.s.requests[id]
	if !ok {
		return nil, notFound("friend request")
	}
	req := row.request
	return &req, nil
}

// GetByPair retrieves the edge sender -> receiver
func (fr *FriendRequests) GetByPair(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	fr.s.mu.RLock()
	defer fr.s.mu.RUnlock()

	for _, row := range fr.s.requests {
		if row.request.SenderID == senderID && row.request.ReceiverID == receiverID {
			req := row.request
			return &req, nil
		}
	}
	return nil, notFound("friend request")
}

func (fr *FriendRequests) sorted(match func(models.FriendRequest) bool) []*requestRow {
	var rows []*requestRow
	for _, row := range fr.s.requests {
		if match(row.request) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	return rows
}

// ListIncomingPending returns pending requests addressed to userID with the sender's email
func (fr *FriendRequests) ListIncomingPending(ctx context.Context, userID string) ([]*models.IncomingRequest, error) {
	fr.s.mu.RLock()
	defer fr.s.mu.RUnlock()

	requests := []*models.IncomingRequest{}
	rows := fr.sorted(func(r models.FriendRequest) bool {
		return r.ReceiverID == userID && r.Status == models.FriendRequestPending
	})
	for _, row := range rows {
		sender, ok := fr.s.users[row.request.SenderID]
		if !ok {
			continue
		}
		requests = append(requests, &models.IncomingRequest{FriendRequest: row.request, SenderEmail: sender.Email})
	}
	return requests, nil
}

// ListOutgoingPending returns pending requests sent by userID
func (fr *FriendRequests) ListOutgoingPending(ctx context.Context, userID string) ([]*models.FriendRequest, error) {
	fr.s.mu.RLock()
	defer fr.s.mu.RUnlock()

	requests := []*models.FriendRequest{}
	rows := fr.sorted(func(r models.FriendRequest) bool {
		return r.SenderID == userID && r.Status == models.FriendRequestPending
	})
	for _, row := range rows {
		req := row.request
		requests = append(requests, &req)
	}
	return requests, nil
}

// ListFriends returns the other party of every accepted edge touching userID
func (fr *FriendRequests) ListFriends(ctx context.Context, userID string) ([]*models.Friend, error) {
	fr.s.mu.RLock()
	defer fr.s.mu.RUnlock()

	friends := []*models.Friend{}
	rows := fr.sorted(func(r models.FriendRequest) bool {
		return r.Status == models.FriendRequestAccepted && r.IsParty(userID)
	})
	for _, row := range rows {
		outgoing := row.request.SenderID == userID
		otherID := row.request.SenderID
		if outgoing {
			otherID = row.request.ReceiverID
		}
		other, ok := fr.s.users[otherID]
		if !ok {
			continue
		}
		friends = append(friends, &models.Friend{
			UserID:    other.ID,
			Email:     other.Email,
			RequestID: row.request.ID,
			Outgoing:  outgoing,
			Since:     row.request.CreatedAt,
		})
	}
	return friends, nil
}

// Accept marks the request accepted when receiverID is its receiver
func (fr *FriendRequests) Accept(ctx context.Context, id, receiverID string) (*models.FriendRequest, error) {
	fr.s.mu.Lock()
	defer fr.s.mu.Unlock()

	row, ok := fr.s.requests[id]
	if !ok || row.request.ReceiverID != receiverID {
		return nil, notFound("friend request")
	}
	row.request.Status = models.FriendRequestAccepted
	req := row.request
	return &req, nil
}

// Delete removes the request when actingUserID is its sender or receiver
func (fr *FriendRequests) Delete(ctx context.Context, id, actingUserID string) (*models.FriendRequest, error) {
	fr.s.mu.Lock()
	defer fr.s.mu.Unlock()

	row, ok := fr.s.requests[id]
	if !ok || !row.request.IsParty(actingUserID) {
		return nil, notFound("friend request")
	}
	delete(fr.s.requests, id)
	req := row.request
	return &req, nil
}

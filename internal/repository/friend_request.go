package repository

import (
	"context"
	"fmt"

	"secret-friends-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendRequestRepository handles database operations for friend requests
type FriendRequestRepository struct {
	db *pgxpool.Pool
}

// NewFriendRequestRepository creates a new friend request repository
func NewFriendRequestRepository(db *pgxpool.Pool) *FriendRequestRepository {
	return &FriendRequestRepository{db: db}
}

const friendRequestColumns = `id, sender_id, receiver_id, status, created_at`

func scanFriendRequest(row pgx.Row) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := row.Scan(&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.Status, &fr.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

// Create inserts a friend request if no edge exists for the same ordered pair.
// The existence check and the insert share one transaction; the unique
// constraint on (sender_id, receiver_id) still decides concurrent races.
func (r *FriendRequestRepository) Create(ctx context.Context, fr *models.FriendRequest) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM friend_requests WHERE sender_id = $1 AND receiver_id = $2)`,
			fr.SenderID, fr.ReceiverID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check friend request existence: %w", err)
		}
		if exists {
			return ErrConflict
		}

		query := `
			INSERT INTO friend_requests (id, sender_id, receiver_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		_, err = tx.Exec(ctx, query, fr.ID, fr.SenderID, fr.ReceiverID, fr.Status, fr.CreatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves a friend request by ID
func (r *FriendRequestRepository) GetByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	query := `SELECT ` + friendRequestColumns + ` FROM friend_requests WHERE id = $1`
	fr, err := scanFriendRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", translateError(err))
	}
	return fr, nil
}

// GetByPair retrieves the edge sender -> receiver
func (r *FriendRequestRepository) GetByPair(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	query := `SELECT ` + friendRequestColumns + ` FROM friend_requests WHERE sender_id = $1 AND receiver_id = $2`
	fr, err := scanFriendRequest(r.db.QueryRow(ctx, query, senderID, receiverID))
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request by pair: %w", translateError(err))
	}
	return fr, nil
}

// ListIncomingPending returns pending requests addressed to userID with the sender's email
func (r *FriendRequestRepository) ListIncomingPending(ctx context.Context, userID string) ([]*models.IncomingRequest, error) {
	query := `
		SELECT fr.id, fr.sender_id, fr.receiver_id, fr.status, fr.created_at, u.email
		FROM friend_requests fr
		JOIN users u ON u.id = fr.sender_id
		WHERE fr.receiver_id = $1 AND fr.status = 'pending'
		ORDER BY fr.created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.IncomingRequest{}
	for rows.Next() {
		var req models.IncomingRequest
		err := rows.Scan(
			&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt, &req.SenderEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incoming request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incoming requests: %w", err)
	}

	return requests, nil
}

// ListOutgoingPending returns pending requests sent by userID
func (r *FriendRequestRepository) ListOutgoingPending(ctx context.Context, userID string) ([]*models.FriendRequest, error) {
	query := `
		SELECT ` + friendRequestColumns + `
		FROM friend_requests
		WHERE sender_id = $1 AND status = 'pending'
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.FriendRequest{}
	for rows.Next() {
		fr, err := scanFriendRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outgoing request: %w", err)
		}
		requests = append(requests, fr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outgoing requests: %w", err)
	}

	return requests, nil
}

// ListFriends returns the other party of every accepted edge touching userID
func (r *FriendRequestRepository) ListFriends(ctx context.Context, userID string) ([]*models.Friend, error) {
	query := `
		SELECT u.id, u.email, fr.id, fr.sender_id = $1, fr.created_at
		FROM friend_requests fr
		JOIN users u ON u.id = CASE WHEN fr.sender_id = $1 THEN fr.receiver_id ELSE fr.sender_id END
		WHERE fr.status = 'accepted' AND (fr.sender_id = $1 OR fr.receiver_id = $1)
		ORDER BY fr.created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []*models.Friend{}
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.UserID, &f.Email, &f.RequestID, &f.Outgoing, &f.Since); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}

	return friends, nil
}

// Accept marks the request accepted when receiverID is its receiver
func (r *FriendRequestRepository) Accept(ctx context.Context, id, receiverID string) (*models.FriendRequest, error) {
	query := `
		UPDATE friend_requests
		SET status = 'accepted'
		WHERE id = $1 AND receiver_id = $2
		RETURNING ` + friendRequestColumns
	fr, err := scanFriendRequest(r.db.QueryRow(ctx, query, id, receiverID))
	if err != nil {
		return nil, fmt.Errorf("failed to accept friend request: %w", translateError(err))
	}
	return fr, nil
}

// Delete removes the request when actingUserID is its sender or receiver
func (r *FriendRequestRepository) Delete(ctx context.Context, id, actingUserID string) (*models.FriendRequest, error) {
	query := `
		DELETE FROM friend_requests
		WHERE id = $1 AND (sender_id = $2 OR receiver_id = $2)
		RETURNING ` + friendRequestColumns
	fr, err := scanFriendRequest(r.db.QueryRow(ctx, query, id, actingUserID))
	if err != nil {
		return nil, fmt.Errorf("failed to delete friend request: %w", translateError(err))
	}
	return fr, nil
}

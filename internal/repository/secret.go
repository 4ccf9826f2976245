package repository

import (
	"context"
	"fmt"
	"time"

	"secret-friends-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SecretRepository handles database operations for secret messages
type SecretRepository struct {
	db *pgxpool.Pool
}

// NewSecretRepository creates a new secret repository
func NewSecretRepository(db *pgxpool.Pool) *SecretRepository {
	return &SecretRepository{db: db}
}

// Create inserts a new secret message
func (r *SecretRepository) Create(ctx context.Context, secret *models.SecretMessage) error {
	query := `
		INSERT INTO secret_messages (id, owner_id, content, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, secret.ID, secret.OwnerID, secret.Content, secret.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create secret: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves a secret message by ID
func (r *SecretRepository) GetByID(ctx context.Context, id string) (*models.SecretMessage, error) {
	query := `
		SELECT id, owner_id, content, updated_at
		FROM secret_messages
		WHERE id = $1
	`
	var secret models.SecretMessage
	err := r.db.QueryRow(ctx, query, id).Scan(
		&secret.ID, &secret.OwnerID, &secret.Content, &secret.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get secret: %w", translateError(err))
	}
	return &secret, nil
}

// ListByOwner returns every secret of the owner in insertion order
func (r *SecretRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.SecretMessage, error) {
	query := `
		SELECT id, owner_id, content, updated_at
		FROM secret_messages
		WHERE owner_id = $1
		ORDER BY seq
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	defer rows.Close()

	secrets := []*models.SecretMessage{}
	for rows.Next() {
		var secret models.SecretMessage
		if err := rows.Scan(&secret.ID, &secret.OwnerID, &secret.Content, &secret.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		secrets = append(secrets, &secret)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating secrets: %w", err)
	}

	return secrets, nil
}

// ListByOwnerWithEmail returns the owner's secrets joined with the owner's email
func (r *SecretRepository) ListByOwnerWithEmail(ctx context.Context, ownerID string) ([]*models.FriendSecret, error) {
	query := `
		SELECT s.id, s.owner_id, s.content, s.updated_at, u.email
		FROM secret_messages s
		JOIN users u ON u.id = s.owner_id
		WHERE s.owner_id = $1
		ORDER BY s.seq
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend secrets: %w", err)
	}
	defer rows.Close()

	secrets := []*models.FriendSecret{}
	for rows.Next() {
		var fs models.FriendSecret
		err := rows.Scan(
			&fs.ID, &fs.OwnerID, &fs.Content, &fs.UpdatedAt, &fs.SenderEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend secret: %w", err)
		}
		secrets = append(secrets, &fs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend secrets: %w", err)
	}

	return secrets, nil
}

// Update replaces the content of a secret owned by ownerID
func (r *SecretRepository) Update(ctx context.Context, id, ownerID, content string, updatedAt time.Time) (*models.SecretMessage, error) {
	query := `
		UPDATE secret_messages
		SET content = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, content, updated_at
	`
	var secret models.SecretMessage
	err := r.db.QueryRow(ctx, query, id, ownerID, content, updatedAt).Scan(
		&secret.ID, &secret.OwnerID, &secret.Content, &secret.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update secret: %w", translateError(err))
	}
	return &secret, nil
}

// Delete removes a secret owned by ownerID
func (r *SecretRepository) Delete(ctx context.Context, id, ownerID string) (*models.SecretMessage, error) {
	query := `
		DELETE FROM secret_messages
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, content, updated_at
	`
	var secret models.SecretMessage
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&secret.ID, &secret.OwnerID, &secret.Content, &secret.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete secret: %w", translateError(err))
	}
	return &secret, nil
}

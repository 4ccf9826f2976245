package repository

import (
	"context"
	"fmt"

	"secret-friends-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user unless a row with the same id exists.
// It reports whether a row was inserted; an existing row is left untouched.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, email, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, user.ID, user.Email, user.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", translateError(err))
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translateError(err))
	}
	return &user, nil
}

// Delete removes a user; secrets and friend requests go with it via ON DELETE CASCADE
func (r *UserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	query := `
		DELETE FROM users
		WHERE id = $1
		RETURNING id, email, created_at
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", translateError(err))
	}
	return &user, nil
}

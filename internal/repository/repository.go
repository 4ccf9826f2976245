package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PostgreSQL error codes the repositories translate
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var (
	// ErrNotFound is returned when no row matches
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness constraint would be violated
	ErrConflict = errors.New("conflict")
	// ErrReferenceMissing is returned when a referenced user row does not exist
	ErrReferenceMissing = errors.New("referenced row does not exist")
)

// Schema returns the embedded DDL
func Schema() string {
	return schemaSQL
}

// ApplySchema creates the tables if they do not exist yet
func ApplySchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// translateError maps driver errors onto the repository sentinels.
// The original error stays in the chain for diagnostics.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrReferenceMissing, err)
		}
	}
	return err
}

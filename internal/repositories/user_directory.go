package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/huddle/backend/internal/db"
	"github.com/huddle/backend/internal/models"
)

// PostgresUserDirectory resolves user display names from the users table and
// persists accounts created by seeds and tests.
type PostgresUserDirectory struct {
	pool db.Pool
}

// NewPostgresUserDirectory constructs a user directory backed by PostgreSQL.
func NewPostgresUserDirectory(pool db.Pool) *PostgresUserDirectory {
	return &PostgresUserDirectory{pool: pool}
}

// DisplayName returns the display name recorded for the user id.
func (d *PostgresUserDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT display_name
        FROM users
        WHERE id = $1
    `, userID)

	var name string
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select display name: %w", err)
	}
	return name, nil
}

// Create persists a new user record.
func (d *PostgresUserDirectory) Create(ctx context.Context, user models.User) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, display_name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, user.ID, user.Username, user.DisplayName, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

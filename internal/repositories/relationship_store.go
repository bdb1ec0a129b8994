package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/huddle/backend/internal/db"
	"github.com/huddle/backend/internal/logging"
	"github.com/huddle/backend/internal/models"
	"github.com/huddle/backend/internal/relationships"
)

const (
	defaultCommitAttempts = 5
	commitBaseBackoff     = 50 * time.Millisecond
	commitMaxBackoff      = 2 * time.Second
)

// Postgres codes that mean the transaction lost a race and is worth retrying.
var retryableTxCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// PostgresRelationshipStore persists relationship records to PostgreSQL, one
// row per pair key, and implements the optimistic commit protocol: each
// Commit runs the read-mutate-write cycle in a SERIALIZABLE transaction and
// replays the whole cycle when a concurrent writer commits to the same key
// first.
type PostgresRelationshipStore struct {
	pool        db.Pool
	maxAttempts int
}

// NewPostgresRelationshipStore constructs a relationship store backed by
// PostgreSQL. maxAttempts bounds commit retries under contention; values
// below one fall back to the default.
func NewPostgresRelationshipStore(pool db.Pool, maxAttempts int) *PostgresRelationshipStore {
	if maxAttempts < 1 {
		maxAttempts = defaultCommitAttempts
	}
	return &PostgresRelationshipStore{pool: pool, maxAttempts: maxAttempts}
}

// Read fetches the record at the pair key outside any transaction.
func (s *PostgresRelationshipStore) Read(ctx context.Context, pairKey string) (models.Relationship, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.Relationship{}, fmt.Errorf("%w: acquire connection: %v", relationships.ErrUnavailable, err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, selectRelationship, pairKey)
	rec, err := scanRelationship(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Relationship{}, relationships.ErrNotFound
		}
		return models.Relationship{}, fmt.Errorf("select relationship: %w", err)
	}
	return rec, nil
}

// Commit executes fn inside a SERIALIZABLE transaction on the pair key,
// retrying the full read-mutate-write cycle with exponential backoff when the
// transaction loses a serialization race. Domain errors returned by fn abort
// the transaction and surface unretried.
func (s *PostgresRelationshipStore) Commit(ctx context.Context, pairKey string, fn relationships.MutateFunc) error {
	ctx, span := logging.StartSpan(ctx, "relationship.commit")
	defer span.End()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %v", relationships.ErrUnavailable, err)
	}
	defer conn.Release()

	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * commitBaseBackoff
			if backoff > commitMaxBackoff {
				backoff = commitMaxBackoff
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			timer.Stop()
		}

		err := s.commitOnce(ctx, conn, pairKey, fn)
		if err == nil {
			return nil
		}
		if !shouldRetryCommit(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: commit for %s failed after %d attempts: %v", relationships.ErrContention, pairKey, s.maxAttempts, lastErr)
}

func (s *PostgresRelationshipStore) commitOnce(ctx context.Context, conn pgxConn, pairKey string, fn relationships.MutateFunc) error {
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	var current *models.Relationship
	rec, err := scanRelationship(tx.QueryRow(ctx, selectRelationship, pairKey))
	switch {
	case err == nil:
		current = &rec
	case errors.Is(err, pgx.ErrNoRows):
		current = nil
	default:
		_ = tx.Rollback(ctx)
		return fmt.Errorf("select relationship: %w", err)
	}

	next, mutation, err := fn(current)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	switch mutation {
	case relationships.MutationPut:
		var acceptedAt sql.NullTime
		if next.AcceptedAt != nil {
			acceptedAt = sql.NullTime{Valid: true, Time: next.AcceptedAt.UTC()}
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO relationships (pair_key, user_low, user_high, status, requester_id, addressee_id, blocked_by, created_at, updated_at, accepted_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
            ON CONFLICT (pair_key) DO UPDATE SET
                status = EXCLUDED.status,
                requester_id = EXCLUDED.requester_id,
                addressee_id = EXCLUDED.addressee_id,
                blocked_by = EXCLUDED.blocked_by,
                updated_at = EXCLUDED.updated_at,
                accepted_at = EXCLUDED.accepted_at
        `, next.PairKey, next.UserLow, next.UserHigh, next.Status, next.RequesterID, next.AddresseeID, next.BlockedBy, next.CreatedAt, next.UpdatedAt, acceptedAt); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("upsert relationship: %w", err)
		}
	case relationships.MutationDelete:
		if _, err := tx.Exec(ctx, `DELETE FROM relationships WHERE pair_key = $1`, pairKey); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("delete relationship: %w", err)
		}
	default:
		_ = tx.Rollback(ctx)
		return nil
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("commit relationship transaction: %w", err)
	}

	return nil
}

// Friends returns the counterparty ids of the user's accepted relationships.
func (s *PostgresRelationshipStore) Friends(ctx context.Context, userID string) ([]string, error) {
	return s.counterparts(ctx, `
        SELECT user_low, user_high
        FROM relationships
        WHERE status = 'accepted' AND (user_low = $1 OR user_high = $1)
    `, userID)
}

// IncomingRequests returns requester ids of pending requests addressed to the user.
func (s *PostgresRelationshipStore) IncomingRequests(ctx context.Context, userID string) ([]string, error) {
	return s.column(ctx, `
        SELECT requester_id
        FROM relationships
        WHERE status = 'pending' AND addressee_id = $1
    `, userID)
}

// OutgoingRequests returns addressee ids of pending requests the user sent.
func (s *PostgresRelationshipStore) OutgoingRequests(ctx context.Context, userID string) ([]string, error) {
	return s.column(ctx, `
        SELECT addressee_id
        FROM relationships
        WHERE status = 'pending' AND requester_id = $1
    `, userID)
}

// Blocked returns the ids of users the provided user has blocked.
func (s *PostgresRelationshipStore) Blocked(ctx context.Context, userID string) ([]string, error) {
	return s.counterparts(ctx, `
        SELECT user_low, user_high
        FROM relationships
        WHERE status = 'blocked' AND blocked_by = $1
    `, userID)
}

func (s *PostgresRelationshipStore) counterparts(ctx context.Context, query, userID string) ([]string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %v", relationships.ErrUnavailable, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var low, high string
		if err := rows.Scan(&low, &high); err != nil {
			return nil, fmt.Errorf("scan relationship members: %w", err)
		}
		if low == userID {
			out = append(out, high)
		} else {
			out = append(out, low)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return out, nil
}

func (s *PostgresRelationshipStore) column(ctx context.Context, query, userID string) ([]string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %v", relationships.ErrUnavailable, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan relationship column: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return out, nil
}

const selectRelationship = `
    SELECT pair_key, user_low, user_high, status, requester_id, addressee_id, blocked_by, created_at, updated_at, accepted_at
    FROM relationships
    WHERE pair_key = $1
`

// pgxConn is the subset of *pgxpool.Conn the commit path needs.
type pgxConn interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanRelationship(row pgx.Row) (models.Relationship, error) {
	var (
		rec        models.Relationship
		acceptedAt sql.NullTime
	)
	if err := row.Scan(&rec.PairKey, &rec.UserLow, &rec.UserHigh, &rec.Status, &rec.RequesterID, &rec.AddresseeID, &rec.BlockedBy, &rec.CreatedAt, &rec.UpdatedAt, &acceptedAt); err != nil {
		return models.Relationship{}, err
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time.UTC()
		rec.AcceptedAt = &t
	}
	return rec, nil
}

func shouldRetryCommit(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := retryableTxCodes[pgErr.Code]; ok {
			return true
		}
	}

	return errors.Is(err, pgx.ErrTxClosed)
}

var _ relationships.Store = (*PostgresRelationshipStore)(nil)

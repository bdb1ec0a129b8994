package relationships

import (
	"context"

	"github.com/huddle/backend/internal/models"
)

// Mutation tells the store what to do with the record once the mutate
// function returns.
type Mutation int

const (
	// MutationNone leaves the store untouched.
	MutationNone Mutation = iota
	// MutationPut writes the returned record at the pair key.
	MutationPut
	// MutationDelete removes the record at the pair key.
	MutationDelete
)

// MutateFunc receives the current record at a pair key, or nil when absent,
// and decides the next state. Returning an error aborts the transaction
// without writing; the error surfaces to the caller unretried.
type MutateFunc func(current *models.Relationship) (models.Relationship, Mutation, error)

// Store is the transactional substrate the state machine runs against. Commit
// must execute the read-mutate-write cycle against a consistent snapshot and
// transparently retry the whole cycle when a concurrent writer commits to the
// same key first, up to a bounded attempt count (then ErrContention). The
// store knows nothing about relationship semantics.
type Store interface {
	Read(ctx context.Context, pairKey string) (models.Relationship, error)
	Commit(ctx context.Context, pairKey string, fn MutateFunc) error

	Friends(ctx context.Context, userID string) ([]string, error)
	IncomingRequests(ctx context.Context, userID string) ([]string, error)
	OutgoingRequests(ctx context.Context, userID string) ([]string, error)
	Blocked(ctx context.Context, userID string) ([]string, error)
}

// Dispatcher delivers best-effort notifications after a transition commits.
// Implementations must never block the caller or surface failures.
type Dispatcher interface {
	RequestSent(requesterID, targetID string)
	RequestAccepted(accepterID, requesterID string)
}

package handlers

import (
	"context"

	"github.com/huddle/backend/internal/relationships"
)

// RelationshipService captures the state machine operations required by the
// relationship handlers.
type RelationshipService interface {
	SendRequest(ctx context.Context, callerID, targetID string) (relationships.RequestOutcome, error)
	AcceptRequest(ctx context.Context, callerID, requesterID string) error
	DeclineRequest(ctx context.Context, callerID, requesterID string) error
	CancelRequest(ctx context.Context, callerID, targetID string) error
	Unfriend(ctx context.Context, callerID, otherID string) error
	Block(ctx context.Context, callerID, otherID string) error
	Unblock(ctx context.Context, callerID, otherID string) error

	Status(ctx context.Context, callerID, otherID string) (relationships.Status, error)
	Friends(ctx context.Context, userID string) ([]string, error)
	IncomingRequests(ctx context.Context, userID string) ([]string, error)
	OutgoingRequests(ctx context.Context, userID string) ([]string, error)
	Blocked(ctx context.Context, userID string) ([]string, error)
}

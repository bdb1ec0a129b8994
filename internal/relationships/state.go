package relationships

import "github.com/huddle/backend/internal/models"

// stateKind enumerates the tagged states a pair can be in. stateNone stands
// for "no record", which is never persisted.
type stateKind int

const (
	stateNone stateKind = iota
	statePending
	stateAccepted
	stateBlocked
)

// pairState lifts a persisted record (or its absence) into an explicit tagged
// state so transition rules can switch on it instead of null-checking fields.
type pairState struct {
	kind      stateKind
	requester string
	addressee string
	blockedBy string
}

func liftState(current *models.Relationship) pairState {
	if current == nil {
		return pairState{kind: stateNone}
	}
	switch current.Status {
	case models.RelationshipPending:
		return pairState{kind: statePending, requester: current.RequesterID, addressee: current.AddresseeID}
	case models.RelationshipAccepted:
		return pairState{kind: stateAccepted}
	case models.RelationshipBlocked:
		return pairState{kind: stateBlocked, blockedBy: current.BlockedBy}
	default:
		return pairState{kind: stateNone}
	}
}

// Status describes a relationship from one participant's point of view.
type Status string

const (
	StatusNone            Status = "none"
	StatusPendingSent     Status = "pending_sent"
	StatusPendingIncoming Status = "pending_incoming"
	StatusAccepted        Status = "accepted"
	StatusBlockedByMe     Status = "blocked_by_me"
	StatusBlockedByThem   Status = "blocked_by_them"
)

func statusFor(callerID string, st pairState) Status {
	switch st.kind {
	case statePending:
		if st.requester == callerID {
			return StatusPendingSent
		}
		return StatusPendingIncoming
	case stateAccepted:
		return StatusAccepted
	case stateBlocked:
		if st.blockedBy == callerID {
			return StatusBlockedByMe
		}
		return StatusBlockedByThem
	default:
		return StatusNone
	}
}

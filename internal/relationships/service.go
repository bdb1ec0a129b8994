package relationships

import (
	"context"
	"errors"
	"time"

	"github.com/huddle/backend/internal/models"
)

// RequestOutcome reports what SendRequest actually did.
type RequestOutcome string

const (
	// OutcomeRequested means a fresh pending request was created.
	OutcomeRequested RequestOutcome = "requested"
	// OutcomeAccepted means the counterparty had already requested, so the
	// mutual intent collapsed straight into friendship.
	OutcomeAccepted RequestOutcome = "accepted"
	// OutcomeAlreadyRequested means an identical pending request already
	// exists; the call was a safe no-op.
	OutcomeAlreadyRequested RequestOutcome = "already_requested"
	// OutcomeAlreadyFriends means the pair is already accepted.
	OutcomeAlreadyFriends RequestOutcome = "already_friends"
)

// Service implements the relationship state machine. Every mutating operation
// runs as a single transactional read-mutate-write against the store; side
// effects fire strictly after a successful commit.
type Service struct {
	store      Store
	dispatcher Dispatcher
	nowFunc    func() time.Time
}

// NewService constructs the state machine over the provided store. The
// dispatcher may be nil, in which case transitions commit silently.
func NewService(store Store, dispatcher Dispatcher) *Service {
	if store == nil {
		panic("relationships: store must not be nil")
	}
	return &Service{store: store, dispatcher: dispatcher}
}

// WithNowFunc overrides the time source, for tests.
func (s *Service) WithNowFunc(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

func (s *Service) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now().UTC()
}

// SendRequest asks for friendship with target. The transition depends on the
// current state: absent creates a pending request, a pending request from the
// target auto-accepts, a pending request from the caller is an idempotent
// no-op, accepted reports friendship, and blocked refuses with ErrBlocked.
func (s *Service) SendRequest(ctx context.Context, callerID, targetID string) (RequestOutcome, error) {
	key, err := PairKey(callerID, targetID)
	if err != nil {
		return "", err
	}

	var outcome RequestOutcome
	err = s.store.Commit(ctx, key, func(current *models.Relationship) (models.Relationship, Mutation, error) {
		now := s.now()
		switch st := liftState(current); st.kind {
		case stateNone:
			outcome = OutcomeRequested
			low, high := orderPair(callerID, targetID)
			return models.Relationship{
				PairKey:     key,
				UserLow:     low,
				UserHigh:    high,
				Status:      models.RelationshipPending,
				RequesterID: callerID,
				AddresseeID: targetID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}, MutationPut, nil
		case statePending:
			if st.requester == callerID {
				outcome = OutcomeAlreadyRequested
				return models.Relationship{}, MutationNone, nil
			}
			outcome = OutcomeAccepted
			return acceptedFrom(*current, now), MutationPut, nil
		case stateAccepted:
			outcome = OutcomeAlreadyFriends
			return models.Relationship{}, MutationNone, nil
		default:
			return models.Relationship{}, MutationNone, ErrBlocked
		}
	})
	if err != nil {
		return "", err
	}

	switch outcome {
	case OutcomeRequested:
		if s.dispatcher != nil {
			s.dispatcher.RequestSent(callerID, targetID)
		}
	case OutcomeAccepted:
		// The counterparty initiated the pending request, so they are the
		// one told their request was accepted.
		if s.dispatcher != nil {
			s.dispatcher.RequestAccepted(callerID, targetID)
		}
	}

	return outcome, nil
}

// AcceptRequest turns a pending request from requesterID into friendship.
// Only the stored addressee may accept.
func (s *Service) AcceptRequest(ctx context.Context, callerID, requesterID string) error {
	key, err := PairKey(callerID, requesterID)
	if err != nil {
		return err
	}

	err = s.store.Commit(ctx, key, func(current *models.Relationship) (models.Relationship, Mutation, error) {
		switch st := liftState(current); st.kind {
		case stateNone:
			return models.Relationship{}, MutationNone, ErrNotFound
		case statePending:
			if st.addressee != callerID {
				return models.Relationship{}, MutationNone, ErrPermissionDenied
			}
			return acceptedFrom(*current, s.now()), MutationPut, nil
		default:
			return models.Relationship{}, MutationNone, ErrPermissionDenied
		}
	})
	if err != nil {
		return err
	}

	if s.dispatcher != nil {
		s.dispatcher.RequestAccepted(callerID, requesterID)
	}
	return nil
}

// DeclineRequest removes a pending request addressed to the caller. Declining
// an absent record is a no-op: the end state is indistinguishable.
func (s *Service) DeclineRequest(ctx context.Context, callerID, requesterID string) error {
	key, err := PairKey(callerID, requesterID)
	if err != nil {
		return err
	}

	return s.store.Commit(ctx, key, func(current *models.Relationship) (models.Relationship, Mutation, error) {
		switch st := liftState(current); st.kind {
		case stateNone:
			return models.Relationship{}, MutationNone, nil
		case statePending:
			if st.addressee != callerID {
				return models.Relationship{}, MutationNone, ErrPermissionDenied
			}
			return models.Relationship{}, MutationDelete, nil
		default:
			return models.Relationship{}, MutationNone, ErrPermissionDenied
		}
	})
}

// CancelRequest withdraws a pending request the caller sent earlier.
func (s *Service) CancelRequest(ctx context.Context, callerID, targetID string) error {
	key, err := PairKey(callerID, targetID)
	if err != nil {
		return err
	}

	return s.store.Commit(ctx, key, func(current *models.Relationship) (models.Relationship, Mutation, error) {
		switch st := liftState(current); st.kind {
		case stateNone:
			return models.Relationship{}, MutationNone, nil
		case statePending:
			if st.requester != callerID {
				return models.Relationship{}, MutationNone, ErrPermissionDenied
			}
			return models.Relationship{}, MutationDelete, nil
		default:
			return models.Relationship{}, MutationNone, ErrPermissionDenied
		}
	})
}

// Unfriend dissolves an accepted relationship. Either member may do so.
func (s *Service) Unfriend(ctx context.Context, callerID, otherID string) error {
	key, err := PairKey(callerID, otherID)
	if err != nil {
		return err
	}

	return s.store.Commit(ctx, key, func(current *models.Relationship) (models.Relationship, Mutation, error) {
		switch liftState(current).kind {
		case stateNone:
			return models.Relationship{}, MutationNone, nil
		case stateAccepted:
			return models.Relationship{}, MutationDelete, nil
		default:
			return models.Relationship{}, MutationNone, ErrPermissionDenied
		}
	})
}

// Block marks the pair blocked by the caller. Block always wins: it
// overwrites any prior state, including a block held by the counterparty.
func (s *Service) Block(ctx context.Context, callerID, otherID string) error {
	key, err := PairKey(callerID, otherID)
	if err != nil {
		return err
	}

	return s.store.Commit(ctx, key, func(current *models.Relationship) (models.Relationship, Mutation, error) {
		now := s.now()
		low, high := orderPair(callerID, otherID)
		next := models.Relationship{
			PairKey:   key,
			UserLow:   low,
			UserHigh:  high,
			Status:    models.RelationshipBlocked,
			BlockedBy: callerID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if current != nil {
			next.CreatedAt = current.CreatedAt
		}
		return next, MutationPut, nil
	})
}

// Unblock lifts a block. Only the user who issued the block may lift it.
func (s *Service) Unblock(ctx context.Context, callerID, otherID string) error {
	key, err := PairKey(callerID, otherID)
	if err != nil {
		return err
	}

	return s.store.Commit(ctx, key, func(current *models.Relationship) (models.Relationship, Mutation, error) {
		switch st := liftState(current); st.kind {
		case stateNone:
			return models.Relationship{}, MutationNone, nil
		case stateBlocked:
			if st.blockedBy != callerID {
				return models.Relationship{}, MutationNone, ErrPermissionDenied
			}
			return models.Relationship{}, MutationDelete, nil
		default:
			return models.Relationship{}, MutationNone, ErrPermissionDenied
		}
	})
}

// Status reports the relationship between caller and other from the caller's
// point of view. Reads bypass the transactional path.
func (s *Service) Status(ctx context.Context, callerID, otherID string) (Status, error) {
	key, err := PairKey(callerID, otherID)
	if err != nil {
		return "", err
	}

	rec, err := s.store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return StatusNone, nil
		}
		return "", err
	}
	return statusFor(callerID, liftState(&rec)), nil
}

// Friends lists the counterparty ids of the user's accepted relationships.
func (s *Service) Friends(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrInvalidPair
	}
	return s.store.Friends(ctx, userID)
}

// IncomingRequests lists users with a pending request addressed to userID.
func (s *Service) IncomingRequests(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrInvalidPair
	}
	return s.store.IncomingRequests(ctx, userID)
}

// OutgoingRequests lists users userID has a pending request out to.
func (s *Service) OutgoingRequests(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrInvalidPair
	}
	return s.store.OutgoingRequests(ctx, userID)
}

// Blocked lists the users userID has blocked.
func (s *Service) Blocked(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrInvalidPair
	}
	return s.store.Blocked(ctx, userID)
}

func acceptedFrom(current models.Relationship, now time.Time) models.Relationship {
	next := current
	next.Status = models.RelationshipAccepted
	next.UpdatedAt = now
	accepted := now
	next.AcceptedAt = &accepted
	return next
}

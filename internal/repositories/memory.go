package repositories

import (
	"context"
	"sync"

	"github.com/huddle/backend/internal/models"
	"github.com/huddle/backend/internal/relationships"
)

// MemoryRelationshipStore keeps relationship records in a map guarded by a
// mutex. Commits serialize on the lock, which satisfies the Store contract;
// it backs unit tests and local runs without a database.
type MemoryRelationshipStore struct {
	mu      sync.RWMutex
	records map[string]models.Relationship
}

// NewMemoryRelationshipStore constructs an empty in-memory store.
func NewMemoryRelationshipStore() *MemoryRelationshipStore {
	return &MemoryRelationshipStore{records: make(map[string]models.Relationship)}
}

// Read returns the record at the pair key.
func (s *MemoryRelationshipStore) Read(_ context.Context, pairKey string) (models.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[pairKey]
	if !ok {
		return models.Relationship{}, relationships.ErrNotFound
	}
	return rec, nil
}

// Commit runs fn while holding the store lock, so concurrent commits on any
// key are fully serialized and each fn observes the latest committed state.
func (s *MemoryRelationshipStore) Commit(_ context.Context, pairKey string, fn relationships.MutateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *models.Relationship
	if rec, ok := s.records[pairKey]; ok {
		copied := rec
		current = &copied
	}

	next, mutation, err := fn(current)
	if err != nil {
		return err
	}

	switch mutation {
	case relationships.MutationPut:
		s.records[pairKey] = next
	case relationships.MutationDelete:
		delete(s.records, pairKey)
	}
	return nil
}

// Friends returns counterparty ids of accepted relationships.
func (s *MemoryRelationshipStore) Friends(_ context.Context, userID string) ([]string, error) {
	return s.collect(func(rec models.Relationship) (string, bool) {
		if rec.Status == models.RelationshipAccepted && rec.Has(userID) {
			return rec.Counterpart(userID), true
		}
		return "", false
	}), nil
}

// IncomingRequests returns requester ids of pending requests addressed to userID.
func (s *MemoryRelationshipStore) IncomingRequests(_ context.Context, userID string) ([]string, error) {
	return s.collect(func(rec models.Relationship) (string, bool) {
		if rec.Status == models.RelationshipPending && rec.AddresseeID == userID {
			return rec.RequesterID, true
		}
		return "", false
	}), nil
}

// OutgoingRequests returns addressee ids of pending requests userID sent.
func (s *MemoryRelationshipStore) OutgoingRequests(_ context.Context, userID string) ([]string, error) {
	return s.collect(func(rec models.Relationship) (string, bool) {
		if rec.Status == models.RelationshipPending && rec.RequesterID == userID {
			return rec.AddresseeID, true
		}
		return "", false
	}), nil
}

// Blocked returns ids of users userID has blocked.
func (s *MemoryRelationshipStore) Blocked(_ context.Context, userID string) ([]string, error) {
	return s.collect(func(rec models.Relationship) (string, bool) {
		if rec.Status == models.RelationshipBlocked && rec.BlockedBy == userID {
			return rec.Counterpart(userID), true
		}
		return "", false
	}), nil
}

// Len reports the number of stored records, for tests asserting the
// at-most-one-record invariant.
func (s *MemoryRelationshipStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryRelationshipStore) collect(pick func(models.Relationship) (string, bool)) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, rec := range s.records {
		if id, ok := pick(rec); ok {
			out = append(out, id)
		}
	}
	return out
}

var _ relationships.Store = (*MemoryRelationshipStore)(nil)

package models

import "time"

// Relationship is the single canonical record describing how two users relate.
// The pair key doubles as the primary key, so at most one record can exist for
// any unordered pair of user ids. Absence of a record means the pair has no
// relationship at all.
type Relationship struct {
	PairKey     string
	UserLow     string
	UserHigh    string
	Status      string
	RequesterID string
	AddresseeID string
	BlockedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	AcceptedAt  *time.Time
}

const (
	RelationshipPending  = "pending"
	RelationshipAccepted = "accepted"
	RelationshipBlocked  = "blocked"
)

// Has reports whether the provided user id is one of the record's members.
func (r Relationship) Has(userID string) bool {
	return userID != "" && (r.UserLow == userID || r.UserHigh == userID)
}

// Counterpart returns the other member of the pair, or "" when the provided
// id is not a member.
func (r Relationship) Counterpart(userID string) string {
	switch userID {
	case r.UserLow:
		return r.UserHigh
	case r.UserHigh:
		return r.UserLow
	default:
		return ""
	}
}

// User represents an account within the Huddle platform. The relationship
// core only consumes the display name, for notification payloads.
type User struct {
	ID          string
	Username    string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

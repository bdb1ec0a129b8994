package relationships

import "errors"

var (
	// ErrInvalidPair indicates the two user ids cannot form a valid pair.
	ErrInvalidPair = errors.New("invalid user pair")
	// ErrPermissionDenied indicates the caller is not the authorized actor for
	// the requested transition.
	ErrPermissionDenied = errors.New("caller may not perform this transition")
	// ErrBlocked indicates the pair is blocked and the operation was refused.
	ErrBlocked = errors.New("relationship is blocked")
	// ErrNotFound indicates no relationship record exists for the pair.
	ErrNotFound = errors.New("relationship not found")
	// ErrContention indicates the store exhausted its transaction retries.
	ErrContention = errors.New("storage contention")
	// ErrUnavailable indicates the store could not be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

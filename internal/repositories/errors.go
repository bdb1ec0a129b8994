package repositories

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write would violate a uniqueness constraint,
	// such as a duplicate username.
	ErrConflict = errors.New("record conflict")
)

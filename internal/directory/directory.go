package directory

import (
	"context"
	"errors"
)

// DefaultDisplayName is used whenever a lookup fails; notification payloads
// must never block on a missing profile.
const DefaultDisplayName = "A Huddle member"

var (
	// ErrDirectoryUnavailable indicates the directory is not configured.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
)

// Directory resolves user ids to display names.
type Directory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

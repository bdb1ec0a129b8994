package directory

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	name    string
	expires time.Time
}

// CachingDirectory wraps another Directory with a TTL-based in-memory cache.
// Display names change rarely, and the dispatcher looks one up on every
// transition, so a short TTL removes most directory round-trips.
type CachingDirectory struct {
	base Directory
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingDirectory returns a Directory that caches lookups for the provided TTL.
func NewCachingDirectory(base Directory, ttl time.Duration) *CachingDirectory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingDirectory{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// DisplayName returns the cached name when available, otherwise it delegates
// to the underlying directory and stores the result.
func (c *CachingDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	if c == nil || c.base == nil {
		return "", ErrDirectoryUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[userID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.name, nil
	}

	name, err := c.base.DisplayName(ctx, userID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.items[userID] = cacheEntry{name: name, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return name, nil
}

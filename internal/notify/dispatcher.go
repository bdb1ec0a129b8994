package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/huddle/backend/internal/directory"
	"github.com/huddle/backend/internal/relationships"
)

const defaultDispatchTimeout = 5 * time.Second

// Dispatcher issues fire-and-forget notifications after a relationship
// transition commits. Each dispatch runs on its own goroutine with a bounded
// timeout, and failures are logged, never surfaced: a lost notice must not be
// confused with a failed transition.
type Dispatcher struct {
	notifier  Notifier
	directory directory.Directory
	timeout   time.Duration
	logger    *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher constructs a dispatcher. The directory may be nil, in which
// case notices carry the default display name.
func NewDispatcher(notifier Notifier, dir directory.Directory, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{notifier: notifier, directory: dir, timeout: timeout, logger: logger}
}

// RequestSent notifies targetID of a new request from requesterID.
func (d *Dispatcher) RequestSent(requesterID, targetID string) {
	d.dispatch(kindNewRequest, func(ctx context.Context) error {
		name := d.displayName(ctx, requesterID)
		return d.notifier.NotifyNewRequest(ctx, requesterID, name, targetID)
	})
}

// RequestAccepted notifies requesterID that accepterID accepted their request.
func (d *Dispatcher) RequestAccepted(accepterID, requesterID string) {
	d.dispatch(kindAccepted, func(ctx context.Context) error {
		name := d.displayName(ctx, accepterID)
		return d.notifier.NotifyAccepted(ctx, accepterID, name, requesterID)
	})
}

// Wait blocks until all in-flight dispatches finish. Used by shutdown and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(kind string, call func(ctx context.Context) error) {
	if d == nil || d.notifier == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := call(ctx); err != nil {
			d.logger.Warn("notice dispatch failed", slog.String("kind", kind), "error", err)
		}
	}()
}

func (d *Dispatcher) displayName(ctx context.Context, userID string) string {
	if d.directory == nil {
		return directory.DefaultDisplayName
	}
	name, err := d.directory.DisplayName(ctx, userID)
	if err != nil || name == "" {
		return directory.DefaultDisplayName
	}
	return name
}

var _ relationships.Dispatcher = (*Dispatcher)(nil)

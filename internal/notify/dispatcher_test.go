package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huddle/backend/internal/directory"
)

type recordedNotice struct {
	actorID   string
	actorName string
	recipient string
}

type recordingNotifier struct {
	mu       sync.Mutex
	requests []recordedNotice
	accepted []recordedNotice
	err      error
}

func (n *recordingNotifier) NotifyNewRequest(_ context.Context, requesterID, requesterName, targetID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, recordedNotice{actorID: requesterID, actorName: requesterName, recipient: targetID})
	return n.err
}

func (n *recordingNotifier) NotifyAccepted(_ context.Context, accepterID, accepterName, requesterID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, recordedNotice{actorID: accepterID, actorName: accepterName, recipient: requesterID})
	return n.err
}

type fixedDirectory struct {
	name string
	err  error
}

func (d fixedDirectory) DisplayName(context.Context, string) (string, error) {
	return d.name, d.err
}

func TestDispatcherRequestSent(t *testing.T) {
	notifier := &recordingNotifier{}
	dispatcher := NewDispatcher(notifier, fixedDirectory{name: "Alice"}, time.Second, nil)

	dispatcher.RequestSent("user-a", "user-b")
	dispatcher.Wait()

	if len(notifier.requests) != 1 {
		t.Fatalf("expected 1 new-request notice got %d", len(notifier.requests))
	}
	got := notifier.requests[0]
	if got.actorID != "user-a" || got.actorName != "Alice" || got.recipient != "user-b" {
		t.Fatalf("unexpected notice: %+v", got)
	}
}

func TestDispatcherRequestAccepted(t *testing.T) {
	notifier := &recordingNotifier{}
	dispatcher := NewDispatcher(notifier, fixedDirectory{name: "Bob"}, time.Second, nil)

	dispatcher.RequestAccepted("user-b", "user-a")
	dispatcher.Wait()

	if len(notifier.accepted) != 1 {
		t.Fatalf("expected 1 accepted notice got %d", len(notifier.accepted))
	}
	got := notifier.accepted[0]
	if got.actorID != "user-b" || got.actorName != "Bob" || got.recipient != "user-a" {
		t.Fatalf("unexpected notice: %+v", got)
	}
}

func TestDispatcherFallsBackOnDirectoryFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	dispatcher := NewDispatcher(notifier, fixedDirectory{err: errors.New("directory down")}, time.Second, nil)

	dispatcher.RequestSent("user-a", "user-b")
	dispatcher.Wait()

	if len(notifier.requests) != 1 {
		t.Fatalf("expected 1 notice got %d", len(notifier.requests))
	}
	if notifier.requests[0].actorName != directory.DefaultDisplayName {
		t.Fatalf("expected fallback display name, got %q", notifier.requests[0].actorName)
	}
}

func TestDispatcherSwallowsNotifierFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("broker down")}
	dispatcher := NewDispatcher(notifier, nil, time.Second, nil)

	// Must not panic or surface the error anywhere.
	dispatcher.RequestSent("user-a", "user-b")
	dispatcher.RequestAccepted("user-b", "user-a")
	dispatcher.Wait()
}

func TestDispatcherWithoutNotifier(t *testing.T) {
	dispatcher := NewDispatcher(nil, nil, time.Second, nil)
	dispatcher.RequestSent("user-a", "user-b")
	dispatcher.Wait()
}

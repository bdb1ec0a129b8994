package notify

import "context"

// Notifier delivers relationship notices to the counterparty of a
// transition. Implementations are best-effort transports; callers treat every
// failure as ignorable.
type Notifier interface {
	// NotifyNewRequest tells targetID that requesterID wants to be friends.
	NotifyNewRequest(ctx context.Context, requesterID, requesterName, targetID string) error
	// NotifyAccepted tells requesterID that accepterID accepted their request.
	NotifyAccepted(ctx context.Context, accepterID, accepterName, requesterID string) error
}

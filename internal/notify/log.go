package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notices to the structured log. It is the fallback
// transport when no Kafka brokers are configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a notifier that only logs.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyNewRequest(_ context.Context, requesterID, requesterName, targetID string) error {
	n.logger.Info("friend request notice",
		slog.String("requester_id", requesterID),
		slog.String("requester_name", requesterName),
		slog.String("target_id", targetID),
	)
	return nil
}

func (n *LogNotifier) NotifyAccepted(_ context.Context, accepterID, accepterName, requesterID string) error {
	n.logger.Info("request accepted notice",
		slog.String("accepter_id", accepterID),
		slog.String("accepter_name", accepterName),
		slog.String("requester_id", requesterID),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)

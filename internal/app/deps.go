package app

import (
	"log/slog"
	"time"

	"github.com/huddle/backend/internal/config"
	"github.com/huddle/backend/internal/db"
	"github.com/huddle/backend/internal/directory"
	"github.com/huddle/backend/internal/handlers"
	"github.com/huddle/backend/internal/middleware"
	"github.com/huddle/backend/internal/notify"
	"github.com/huddle/backend/internal/relationships"
	"github.com/huddle/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup closes the Kafka producer (when configured)
// and drains in-flight notification dispatches.
func buildDependencies(pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(), error) {
	store := repositories.NewPostgresRelationshipStore(pool, cfg.CommitAttempts)

	userDirectory := directory.NewCachingDirectory(repositories.NewPostgresUserDirectory(pool), cfg.DisplayNameCacheTTL)

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	closeProducer := func() {}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := notify.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			return handlers.Dependencies{}, nil, err
		}
		notifier = notify.NewKafkaNotifier(producer, cfg.KafkaTopic)
		closeProducer = func() {
			if err := producer.Close(); err != nil {
				logger.Warn("close kafka producer", "error", err)
			}
		}
	}

	dispatcher := notify.NewDispatcher(notifier, userDirectory, cfg.NotifyTimeout, logger)

	cleanup := func() {
		dispatcher.Wait()
		closeProducer()
	}

	return handlers.Dependencies{
		Relationships:   relationships.NewService(store, dispatcher),
		MutationLimiter: middleware.NewKeyedRateLimiter(cfg.MutationRatePerMin, time.Minute, cfg.MutationBurst, 10*time.Minute),
	}, cleanup, nil
}

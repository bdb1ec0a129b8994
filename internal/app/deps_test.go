package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huddle/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		CommitAttempts:      3,
		DisplayNameCacheTTL: time.Minute,
		NotifyTimeout:       time.Second,
		MutationRatePerMin:  60,
		MutationBurst:       5,
	}

	deps, cleanup, err := buildDependencies(fakePool{}, cfg, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer cleanup()

	if deps.Relationships == nil {
		t.Fatal("expected relationship service to be configured")
	}
	if deps.MutationLimiter == nil {
		t.Fatal("expected mutation limiter to be configured")
	}
}

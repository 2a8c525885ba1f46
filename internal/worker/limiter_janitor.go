package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/eugener/storefront/internal/ratelimit"
)

const (
	janitorInterval = 5 * time.Minute
	limiterIdleTTL  = 10 * time.Minute
)

// LimiterJanitor evicts rate limiters for clients that have gone quiet.
type LimiterJanitor struct {
	limiters *ratelimit.Registry
	interval time.Duration
	idle     time.Duration
}

// NewLimiterJanitor creates a LimiterJanitor with the default schedule.
func NewLimiterJanitor(limiters *ratelimit.Registry) *LimiterJanitor {
	return &LimiterJanitor{limiters: limiters, interval: janitorInterval, idle: limiterIdleTTL}
}

// Name returns the worker identifier.
func (w *LimiterJanitor) Name() string { return "limiter_janitor" }

// Run evicts idle limiters on every tick until ctx is cancelled.
func (w *LimiterJanitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.evict(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *LimiterJanitor) evict(ctx context.Context) {
	if n := w.limiters.EvictStale(w.limiters.Now().Add(-w.idle)); n > 0 {
		slog.LogAttrs(ctx, slog.LevelDebug, "rate limiters evicted",
			slog.Int("evicted", n),
			slog.Int("remaining", w.limiters.Len()),
		)
	}
}

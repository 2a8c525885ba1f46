package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eugener/storefront/internal/cache"
)

const defaultSweepInterval = time.Minute

// CacheSweeper periodically drops expired cache entries and publishes the
// live entry count.
type CacheSweeper struct {
	cache    cache.Store
	interval time.Duration
	entries  prometheus.Gauge   // nil = not reported
	swept    prometheus.Counter // nil = not reported
}

// NewCacheSweeper creates a CacheSweeper. A non-positive interval uses one minute.
// entries and swept may be nil.
func NewCacheSweeper(c cache.Store, interval time.Duration, entries prometheus.Gauge, swept prometheus.Counter) *CacheSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &CacheSweeper{cache: c, interval: interval, entries: entries, swept: swept}
}

// Name returns the worker identifier.
func (w *CacheSweeper) Name() string { return "cache_sweeper" }

// Run sweeps on every tick until ctx is cancelled.
func (w *CacheSweeper) Run(ctx context.Context) error {
	w.report(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *CacheSweeper) sweep(ctx context.Context) {
	n := w.cache.Sweep(ctx)
	if n > 0 {
		slog.LogAttrs(ctx, slog.LevelDebug, "cache swept",
			slog.Int("removed", n),
		)
		if w.swept != nil {
			w.swept.Add(float64(n))
		}
	}
	w.report(ctx)
}

func (w *CacheSweeper) report(ctx context.Context) {
	if w.entries != nil {
		w.entries.Set(float64(w.cache.Stats(ctx).Keys))
	}
}

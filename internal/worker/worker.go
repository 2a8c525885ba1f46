// Package worker runs the storefront's background maintenance: response
// cache sweeping and rate-limiter eviction.
package worker

import "context"

// Worker is a long-running background task.
type Worker interface {
	// Run blocks until ctx is cancelled or an unrecoverable error occurs.
	Run(ctx context.Context) error
}

// Named is implemented by workers that report a stable name for logs and
// error wrapping.
type Named interface {
	Name() string
}

var (
	_ Named = (*CacheSweeper)(nil)
	_ Named = (*LimiterJanitor)(nil)
)

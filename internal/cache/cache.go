// Package cache provides the process-wide response cache for the storefront API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// ErrSerialization is returned by Set when a value cannot be represented as JSON.
// Nothing is stored in that case.
var ErrSerialization = errors.New("cache: value is not serializable")

// Store is a key/value cache with per-entry TTL and hit/miss statistics.
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the cached JSON bytes for key. Expired entries are absent.
	// Every call counts as exactly one hit or one miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set serializes val and stores it for ttl. A non-positive ttl is not
	// cached and reports false with a nil error.
	Set(ctx context.Context, key string, val any, ttl time.Duration) (bool, error)
	// Delete removes the given keys and returns how many live entries were removed.
	Delete(ctx context.Context, keys ...string) int
	// Clear removes every key containing pattern and returns the count.
	// An empty pattern removes everything and resets the statistics.
	Clear(ctx context.Context, pattern string) int
	// Purge removes all entries without touching statistics.
	Purge(ctx context.Context)
	// Sweep drops expired entries and returns how many were removed.
	Sweep(ctx context.Context) int
	// Stats returns a snapshot of the cache statistics.
	Stats(ctx context.Context) Stats
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Keys   int    `json:"keys"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	KSize  int    `json:"ksize"` // total bytes of live keys
	VSize  int    `json:"vsize"` // total bytes of live values
}

// Options configures a Store.
type Options struct {
	// MaxSize bounds the number of entries (otter backend only).
	MaxSize int
	// MaxTTL is the upper bound any entry may live, used for the backend's
	// own expiry. Per-entry TTLs shorter than this are enforced on lookup.
	MaxTTL time.Duration
	// SweepInterval drives the go-cache janitor. Zero disables it.
	SweepInterval time.Duration
	// Now overrides the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

func (o Options) maxTTL() time.Duration {
	if o.MaxTTL > 0 {
		return o.MaxTTL
	}
	return time.Hour
}

// entry wraps a cached value with its expiration time.
// Entries are replaced wholesale on Set, never mutated.
type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// counters tracks hits and misses for a Store.
type counters struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

func (c *counters) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
}

func (c *counters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// encode turns val into the JSON bytes kept in the cache. Raw byte values
// must already be valid JSON; they are copied so callers may reuse buffers.
func encode(val any) ([]byte, error) {
	switch v := val.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil value", ErrSerialization)
	case []byte:
		return validJSON(v)
	case json.RawMessage:
		return validJSON(v)
	}
	b, err := json.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return b, nil
}

func validJSON(b []byte) ([]byte, error) {
	if !json.Valid(b) {
		return nil, fmt.Errorf("%w: invalid JSON bytes", ErrSerialization)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func matches(key, pattern string) bool {
	return pattern == "" || strings.Contains(key, pattern)
}

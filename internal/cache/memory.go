package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"
)

// Memory is an in-memory W-TinyLFU cache backed by otter.
type Memory struct {
	cache *otter.Cache[string, entry]
	now   func() time.Time
	counters
}

var _ Store = (*Memory)(nil)

// NewMemory creates an otter-backed Store.
func NewMemory(opts Options) (*Memory, error) {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = 10_000
	}
	c, err := otter.New[string, entry](&otter.Options[string, entry]{
		MaximumSize:      maxSize,
		ExpiryCalculator: otter.ExpiryWriting[string, entry](opts.maxTTL()),
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Memory{cache: c, now: opts.now()}, nil
}

// Get retrieves a value from the cache if present and not expired.
// Expired entries are left for Sweep and otter's own expiry; deleting here
// could drop a concurrent Set of the same key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := m.cache.GetIfPresent(key)
	if ok && e.expired(m.now()) {
		ok = false
	}
	m.record(ok)
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Set stores a value with per-entry TTL.
func (m *Memory) Set(_ context.Context, key string, val any, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	data, err := encode(val)
	if err != nil {
		return false, err
	}
	m.cache.Set(key, entry{
		data:      data,
		expiresAt: m.now().Add(ttl),
	})
	return true, nil
}

// Delete removes keys from the cache.
func (m *Memory) Delete(_ context.Context, keys ...string) int {
	now := m.now()
	n := 0
	for _, k := range keys {
		if e, ok := m.cache.Invalidate(k); ok && !e.expired(now) {
			n++
		}
	}
	return n
}

// Clear removes every key containing pattern.
func (m *Memory) Clear(ctx context.Context, pattern string) int {
	if pattern == "" {
		n := m.live()
		m.cache.InvalidateAll()
		m.reset()
		return n
	}
	var keys []string
	for k := range m.cache.Keys() {
		if matches(k, pattern) {
			keys = append(keys, k)
		}
	}
	return m.Delete(ctx, keys...)
}

// Purge removes all values from the cache.
func (m *Memory) Purge(_ context.Context) {
	m.cache.InvalidateAll()
}

// Sweep drops entries whose per-entry TTL has elapsed.
func (m *Memory) Sweep(_ context.Context) int {
	now := m.now()
	var expired []string
	for k, e := range m.cache.All() {
		if e.expired(now) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		m.cache.Invalidate(k)
	}
	return len(expired)
}

// Stats reports live entry count, sizes and hit/miss counters.
func (m *Memory) Stats(_ context.Context) Stats {
	now := m.now()
	s := Stats{Hits: m.hits.Load(), Misses: m.misses.Load()}
	for k, e := range m.cache.All() {
		if e.expired(now) {
			continue
		}
		s.Keys++
		s.KSize += len(k)
		s.VSize += len(e.data)
	}
	return s
}

func (m *Memory) live() int {
	now := m.now()
	n := 0
	for _, e := range m.cache.All() {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

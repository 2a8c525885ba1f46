package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// GoCache is a map-backed Store using patrickmn/go-cache. Unlike Memory it has
// no size bound; a janitor goroutine sweeps expired items every SweepInterval.
type GoCache struct {
	store *gocache.Cache
	now   func() time.Time
	counters
}

var _ Store = (*GoCache)(nil)

// NewGoCache creates a go-cache backed Store.
func NewGoCache(opts Options) *GoCache {
	return &GoCache{
		store: gocache.New(opts.maxTTL(), opts.SweepInterval),
		now:   opts.now(),
	}
}

func (g *GoCache) lookup(key string) (entry, bool) {
	v, ok := g.store.Get(key)
	if !ok {
		return entry{}, false
	}
	e, ok := v.(entry)
	if !ok || e.expired(g.now()) {
		return entry{}, false
	}
	return e, true
}

// Get retrieves a value if present and not expired.
func (g *GoCache) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := g.lookup(key)
	g.record(ok)
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Set stores a value with per-entry TTL.
func (g *GoCache) Set(_ context.Context, key string, val any, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	data, err := encode(val)
	if err != nil {
		return false, err
	}
	g.store.Set(key, entry{data: data, expiresAt: g.now().Add(ttl)}, ttl)
	return true, nil
}

// Delete removes keys from the cache.
func (g *GoCache) Delete(_ context.Context, keys ...string) int {
	n := 0
	for _, k := range keys {
		if _, ok := g.lookup(k); ok {
			n++
		}
		g.store.Delete(k)
	}
	return n
}

// Clear removes every key containing pattern.
func (g *GoCache) Clear(ctx context.Context, pattern string) int {
	if pattern == "" {
		n := g.Stats(ctx).Keys
		g.store.Flush()
		g.reset()
		return n
	}
	var keys []string
	for k := range g.store.Items() {
		if matches(k, pattern) {
			keys = append(keys, k)
		}
	}
	return g.Delete(ctx, keys...)
}

// Purge removes all items.
func (g *GoCache) Purge(_ context.Context) {
	g.store.Flush()
}

// Sweep drops expired items, both by go-cache's own clock and the Store's clock.
func (g *GoCache) Sweep(_ context.Context) int {
	now := g.now()
	before := g.store.ItemCount()
	g.store.DeleteExpired()
	n := before - g.store.ItemCount()
	for k, it := range g.store.Items() {
		if e, ok := it.Object.(entry); ok && e.expired(now) {
			g.store.Delete(k)
			n++
		}
	}
	return n
}

// Stats reports live entry count, sizes and hit/miss counters.
func (g *GoCache) Stats(_ context.Context) Stats {
	now := g.now()
	s := Stats{Hits: g.hits.Load(), Misses: g.misses.Load()}
	for k, it := range g.store.Items() {
		e, ok := it.Object.(entry)
		if !ok || e.expired(now) {
			continue
		}
		s.Keys++
		s.KSize += len(k)
		s.VSize += len(e.data)
	}
	return s
}

// Package ratelimit implements per-client request rate limiting with
// lazy-refill token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed           bool
	Limit             int64
	Remaining         int64
	RetryAfterSeconds float64
}

// bucket is a token bucket with lazy refill (no background goroutine).
type bucket struct {
	tokens   float64
	max      float64
	rate     float64 // tokens per second
	lastFill time.Time
}

func newBucket(limit int64, now time.Time) *bucket {
	return &bucket{
		tokens:   float64(limit),
		max:      float64(limit),
		rate:     float64(limit) / 60.0, // per-minute limit -> per-second rate
		lastFill: now,
	}
}

// refill adds tokens based on elapsed time since last refill.
func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastFill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens = min(b.max, b.tokens+elapsed*b.rate)
	b.lastFill = now
}

// tryConsume attempts to consume one token. Returns remaining and whether allowed.
func (b *bucket) tryConsume(now time.Time) (remaining int64, allowed bool) {
	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return int64(b.tokens), true
	}
	return 0, false
}

// retryAfter returns seconds until one token is available.
func (b *bucket) retryAfter() float64 {
	if b.tokens >= 1 {
		return 0
	}
	return (1 - b.tokens) / b.rate
}

// Limiter holds the request bucket for a single client.
type Limiter struct {
	mu       sync.Mutex
	bucket   *bucket
	limit    int64
	lastUsed time.Time
}

// Allow consumes one request token.
func (l *Limiter) Allow(now time.Time) Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastUsed = now

	remaining, ok := l.bucket.tryConsume(now)
	if ok {
		return Result{Allowed: true, Limit: l.limit, Remaining: remaining}
	}
	return Result{
		Allowed:           false,
		Limit:             l.limit,
		RetryAfterSeconds: l.bucket.retryAfter(),
	}
}

// Registry manages per-client Limiters sharing one requests-per-minute limit.
type Registry struct {
	rpm int64
	now func() time.Time

	mu       sync.RWMutex
	limiters map[string]*Limiter
}

// NewRegistry creates a registry allowing rpm requests per minute per client.
// now may be nil to use time.Now.
func NewRegistry(rpm int64, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		rpm:      rpm,
		now:      now,
		limiters: make(map[string]*Limiter),
	}
}

// Allow consumes one request for client. A non-positive limit allows everything.
func (r *Registry) Allow(client string) Result {
	if r.rpm <= 0 {
		return Result{Allowed: true}
	}
	now := r.now()
	return r.getOrCreate(client, now).Allow(now)
}

func (r *Registry) getOrCreate(client string, now time.Time) *Limiter {
	r.mu.RLock()
	l, ok := r.limiters[client]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check after acquiring write lock.
	if l, ok := r.limiters[client]; ok {
		return l
	}
	l = &Limiter{bucket: newBucket(r.rpm, now), limit: r.rpm, lastUsed: now}
	r.limiters[client] = l
	return l
}

// EvictStale removes limiters not used since cutoff.
func (r *Registry) EvictStale(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for k, l := range r.limiters {
		l.mu.Lock()
		stale := l.lastUsed.Before(cutoff)
		l.mu.Unlock()
		if stale {
			delete(r.limiters, k)
			evicted++
		}
	}
	return evicted
}

// Now returns the registry's clock reading.
func (r *Registry) Now() time.Time { return r.now() }

// Len returns the number of tracked clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.limiters)
}

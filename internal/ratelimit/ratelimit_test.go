package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/eugener/storefront/internal/testutil"
)

func TestRegistry_Allow(t *testing.T) {
	t.Parallel()
	clock := testutil.NewClock()
	r := NewRegistry(3, clock.Now)

	for i := range 3 {
		res := r.Allow("10.0.0.1")
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if res.Limit != 3 || res.Remaining != int64(2-i) {
			t.Errorf("request %d: limit=%d remaining=%d", i+1, res.Limit, res.Remaining)
		}
	}

	res := r.Allow("10.0.0.1")
	if res.Allowed {
		t.Error("4th request should be denied")
	}
	if res.RetryAfterSeconds <= 0 {
		t.Error("RetryAfterSeconds should be positive")
	}

	if !r.Allow("10.0.0.2").Allowed {
		t.Error("clients must not share a bucket")
	}
}

func TestRegistry_RefillAfterTime(t *testing.T) {
	t.Parallel()
	clock := testutil.NewClock()
	r := NewRegistry(1, clock.Now)

	if !r.Allow("c").Allowed {
		t.Fatal("first request should be allowed")
	}
	if r.Allow("c").Allowed {
		t.Fatal("second request should be denied")
	}

	clock.Advance(61 * time.Second)
	if !r.Allow("c").Allowed {
		t.Error("request should be allowed after refill")
	}
}

func TestRegistry_Unlimited(t *testing.T) {
	t.Parallel()
	r := NewRegistry(0, nil)

	for range 100 {
		if !r.Allow("c").Allowed {
			t.Fatal("should always allow when unlimited")
		}
	}
	if r.Len() != 0 {
		t.Errorf("unlimited registry tracked %d clients", r.Len())
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	r := NewRegistry(1000, nil)

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			for range 10 {
				r.Allow("shared")
			}
		})
	}
	wg.Wait()

	if r.Len() != 1 {
		t.Errorf("clients = %d, want 1", r.Len())
	}
}

func TestRegistry_EvictStale(t *testing.T) {
	t.Parallel()
	clock := testutil.NewClock()
	r := NewRegistry(10, clock.Now)

	r.Allow("old")
	clock.Advance(10 * time.Minute)
	r.Allow("fresh")

	evicted := r.EvictStale(clock.Now().Add(-5 * time.Minute))
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if r.Len() != 1 {
		t.Errorf("remaining = %d, want 1", r.Len())
	}
}

func TestBucket_RefillNegativeElapsed(t *testing.T) {
	t.Parallel()
	now := time.Now()
	b := newBucket(60, now)
	b.tokens = 10

	b.refill(now.Add(-time.Second))
	if b.tokens != 10 {
		t.Errorf("tokens = %v, want 10 (no refill for clock going backwards)", b.tokens)
	}
}

func TestBucket_RetryAfterAvailable(t *testing.T) {
	t.Parallel()
	b := newBucket(60, time.Now())
	if got := b.retryAfter(); got != 0 {
		t.Errorf("retryAfter = %v, want 0 when tokens are available", got)
	}
	b.tokens = 0
	if got := b.retryAfter(); got != 1 {
		t.Errorf("retryAfter = %v, want 1s at 60 rpm", got)
	}
}

func BenchmarkAllow(b *testing.B) {
	r := NewRegistry(1_000_000_000, nil)
	for b.Loop() {
		r.Allow("bench")
	}
}

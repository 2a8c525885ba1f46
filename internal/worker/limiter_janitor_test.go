package worker

import (
	"context"
	"testing"
	"time"

	"github.com/eugener/storefront/internal/ratelimit"
	"github.com/eugener/storefront/internal/testutil"
)

func TestLimiterJanitor_EvictsIdle(t *testing.T) {
	t.Parallel()
	clock := testutil.NewClock()
	reg := ratelimit.NewRegistry(10, clock.Now)
	reg.Allow("quiet")
	clock.Advance(limiterIdleTTL + time.Minute)
	reg.Allow("busy")

	w := NewLimiterJanitor(reg)
	w.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for reg.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want 1", reg.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
	if workerName(w) != "limiter_janitor" {
		t.Errorf("name = %q", workerName(w))
	}
}

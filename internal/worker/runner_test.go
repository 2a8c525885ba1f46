package worker

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eugener/storefront/internal/cache"
	"github.com/eugener/storefront/internal/ratelimit"
	"github.com/eugener/storefront/internal/testutil"
)

type fakeWorker struct {
	name  string
	runFn func(ctx context.Context) error
}

func (f *fakeWorker) Run(ctx context.Context) error {
	if f.runFn != nil {
		return f.runFn(ctx)
	}
	<-ctx.Done()
	return nil
}

type namedWorker struct{ fakeWorker }

func (n *namedWorker) Name() string { return n.name }

func runAsync(ctx context.Context, r *Runner) <-chan error {
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
		return nil
	}
}

func TestRunner_StopOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, NewRunner(&fakeWorker{}))

	cancel()
	if err := wait(t, done); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunner_ErrorWrappedWithName(t *testing.T) {
	t.Parallel()
	dbErr := errors.New("database is locked")
	tests := []struct {
		name   string
		worker Worker
		prefix string
	}{
		{"named", &namedWorker{fakeWorker{name: "cache_sweeper", runFn: func(context.Context) error { return dbErr }}}, "cache_sweeper: "},
		{"unnamed", &fakeWorker{runFn: func(context.Context) error { return dbErr }}, "unnamed: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewRunner(tt.worker).Run(t.Context())
			if !errors.Is(err, dbErr) {
				t.Fatalf("err = %v, want %v", err, dbErr)
			}
			if !strings.HasPrefix(err.Error(), tt.prefix) {
				t.Errorf("err = %q, want prefix %q", err, tt.prefix)
			}
		})
	}
}

func TestRunner_FailureCancelsSiblings(t *testing.T) {
	t.Parallel()
	var stopped atomic.Bool
	sibling := &fakeWorker{runFn: func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return nil
	}}
	failing := &fakeWorker{runFn: func(context.Context) error { return errors.New("boom") }}

	err := wait(t, runAsync(t.Context(), NewRunner(sibling, failing)))
	if err == nil {
		t.Fatal("expected error")
	}
	if !stopped.Load() {
		t.Error("sibling worker was not cancelled")
	}
}

func TestRunner_SkipsNilWorkers(t *testing.T) {
	t.Parallel()
	r := NewRunner(nil, &fakeWorker{}, nil)
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
	if NewRunner().Len() != 0 {
		t.Error("empty runner should have no workers")
	}
}

func TestRunner_MaintenanceWorkers(t *testing.T) {
	t.Parallel()
	c := cache.NewGoCache(cache.Options{})
	reg := ratelimit.NewRegistry(60, testutil.NewClock().Now)

	r := NewRunner(
		NewCacheSweeper(c, time.Hour, nil, nil),
		NewLimiterJanitor(reg),
	)
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, r)
	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := wait(t, done); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

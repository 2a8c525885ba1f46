package telemetry

import (
	"strings"
	"testing"
)

func TestSampler(t *testing.T) {
	t.Parallel()
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := sampler(tt.rate).Description()
		if !strings.Contains(got, tt.want) {
			t.Errorf("sampler(%v) = %q, want it to contain %q", tt.rate, got, tt.want)
		}
	}
}

func TestSetupTracing_RequiresEndpoint(t *testing.T) {
	t.Parallel()
	if _, err := SetupTracing(t.Context(), TracingOptions{SampleRate: 1}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)

	for name, c := range map[string]any{
		"RequestsTotal":    m.RequestsTotal,
		"RequestDuration":  m.RequestDuration,
		"ActiveRequests":   m.ActiveRequests,
		"CacheHits":        m.CacheHits,
		"CacheMisses":      m.CacheMisses,
		"CacheBypasses":    m.CacheBypasses,
		"CacheStoreErrors": m.CacheStoreErrors,
		"CacheEntries":     m.CacheEntries,
		"CacheSwept":       m.CacheSwept,
		"DBQueryDuration":  m.DBQueryDuration,
	} {
		if c == nil {
			t.Errorf("%s is nil", name)
		}
	}

	// Verify metrics can be gathered without error.
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected at least one metric family")
	}
}

func TestNewMetricsIncrement(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)

	// Increment counters and observe histograms to verify they work.
	m.RequestsTotal.WithLabelValues("POST", "/app/v1/api/get_settings", "200", "hit").Inc()
	m.CacheHits.WithLabelValues("get_settings").Inc()
	m.CacheMisses.WithLabelValues("get_settings").Inc()
	m.CacheStoreErrors.Inc()
	m.CacheEntries.Set(3)
	m.ActiveRequests.Set(5)
	m.RequestDuration.WithLabelValues("POST", "/app/v1/api/get_settings").Observe(0.123)
	m.DBQueryDuration.WithLabelValues("get_settings").Observe(0.002)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather after increment: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	want := []string{
		"storefront_requests_total",
		"storefront_cache_hits_total",
		"storefront_cache_misses_total",
		"storefront_cache_store_errors_total",
		"storefront_cache_entries",
		"storefront_active_requests",
		"storefront_request_duration_seconds",
		"storefront_db_query_duration_seconds",
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("missing metric %q in gathered families", name)
		}
	}
}

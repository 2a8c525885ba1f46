package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  addr: ":9090"
  read_timeout: 10s
database:
  dsn: ":memory:"
cache:
  backend: gocache
  default_ttl: 2m
  endpoint_ttls:
    get_settings: 30s
    get_ticket_types: 0s
settings:
  currency: "$"
ticket_types: [Order, Payment]
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("read_timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Database.DSN != ":memory:" {
		t.Errorf("dsn = %q, want %q", cfg.Database.DSN, ":memory:")
	}
	if cfg.Cache.Backend != BackendGoCache || cfg.Cache.DefaultTTL != 2*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should stay enabled by default")
	}
	if got := cfg.Cache.EndpointTTLs["get_settings"]; got != 30*time.Second {
		t.Errorf("get_settings ttl = %v", got)
	}
	if got, ok := cfg.Cache.EndpointTTLs["get_ticket_types"]; !ok || got != 0 {
		t.Errorf("get_ticket_types ttl = %v, %v", got, ok)
	}
	if cfg.Settings["currency"] != "$" || len(cfg.TicketTypes) != 2 {
		t.Errorf("seeds = %v %v", cfg.Settings, cfg.TicketTypes)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestExpandEnv(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv
	t.Setenv("TEST_ADMIN_KEY", "sfa-secret-123")

	path := writeConfig(t, "auth:\n  admin_key: ${TEST_ADMIN_KEY}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Auth.AdminKey != "sfa-secret-123" {
		t.Errorf("admin_key = %q", cfg.Auth.AdminKey)
	}

	result := expandEnv([]byte("key: ${TEST_ADMIN_KEY} other: ${TEST_UNSET_VAR_XYZ}"))
	if want := "key: sfa-secret-123 other: ${TEST_UNSET_VAR_XYZ}"; string(result) != want {
		t.Errorf("expandEnv = %q, want %q", string(result), want)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_SERVER_ADDR", ":7000")
	t.Setenv("STOREFRONT_CACHE_DEFAULT_TTL", "45s")
	t.Setenv("STOREFRONT_CACHE_ENABLED", "false")
	t.Setenv("STOREFRONT_TELEMETRY_TRACING_SAMPLE_RATE", "0.25")
	t.Setenv("STOREFRONT_LOG_LEVEL", "warn")
	t.Setenv("STOREFRONT_RATE_LIMITS_RPM", "0")

	path := writeConfig(t, "server:\n  addr: \":9090\"\ndatabase:\n  dsn: file.db\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("addr = %q, env should win over the file", cfg.Server.Addr)
	}
	if cfg.Database.DSN != "file.db" {
		t.Errorf("dsn = %q, unset env must not clobber the file", cfg.Database.DSN)
	}
	if cfg.Cache.DefaultTTL != 45*time.Second || cfg.Cache.Enabled {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Telemetry.Tracing.SampleRate != 0.25 {
		t.Errorf("sample_rate = %v", cfg.Telemetry.Tracing.SampleRate)
	}
	if cfg.Log.SlogLevel() != slog.LevelWarn {
		t.Errorf("level = %v", cfg.Log.SlogLevel())
	}
	if cfg.RateLimits.RPM != 0 {
		t.Errorf("rpm = %d, want 0 from env", cfg.RateLimits.RPM)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Database.DSN != "storefront.db" {
		t.Errorf("default dsn = %q, want %q", cfg.Database.DSN, "storefront.db")
	}
	if cfg.Cache.Backend != BackendOtter || cfg.Cache.DefaultTTL != 5*time.Minute {
		t.Errorf("default cache = %+v", cfg.Cache)
	}
	if cfg.Log.SlogLevel() != slog.LevelInfo {
		t.Errorf("default level = %v", cfg.Log.SlogLevel())
	}
	if cfg.RateLimits.RPM != 120 {
		t.Errorf("default rpm = %d", cfg.RateLimits.RPM)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"malformed", "server: [", "parse config"},
		{"backend", "cache:\n  backend: redis\n", "cache.backend"},
		{"ttl", "cache:\n  default_ttl: 0s\n", "default_ttl"},
		{"sample rate", "telemetry:\n  tracing:\n    sample_rate: 2\n", "sample_rate"},
		{"log format", "log:\n  format: xml\n", "log.format"},
		{"rpm", "rate_limits:\n  rpm: -1\n", "rate_limits.rpm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestCacheDisabledSkipsTTLCheck(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, "cache:\n  enabled: false\n  default_ttl: 0s\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled")
	}
}

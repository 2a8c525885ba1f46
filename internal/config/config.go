// Package config handles YAML configuration loading with environment variable expansion.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.yaml.in/yaml/v3"
)

// envPrefix namespaces every environment override, e.g. STOREFRONT_SERVER_ADDR.
const envPrefix = "STOREFRONT_"

// Config is the top-level storefront configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"       envPrefix:"SERVER_"`
	Database    DatabaseConfig    `yaml:"database"     envPrefix:"DATABASE_"`
	Auth        AuthConfig        `yaml:"auth"         envPrefix:"AUTH_"`
	Cache       CacheConfig       `yaml:"cache"        envPrefix:"CACHE_"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"    envPrefix:"TELEMETRY_"`
	Log         LogConfig         `yaml:"log"          envPrefix:"LOG_"`
	RateLimits  RateLimitConfig   `yaml:"rate_limits"  envPrefix:"RATE_LIMITS_"`
	Settings    map[string]string `yaml:"settings"`     // seeded on first run
	TicketTypes []string          `yaml:"ticket_types"` // seeded on first run
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"     env:"ENABLED"`
	Endpoint   string  `yaml:"endpoint"    env:"ENDPOINT"`    // OTLP gRPC endpoint
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"` // 0.0 to 1.0
}

// RateLimitConfig holds per-client limits for uncached endpoints.
type RateLimitConfig struct {
	RPM int64 `yaml:"rpm" env:"RPM"` // requests per minute per client IP (0 = unlimited)
}

// Cache backends.
const (
	BackendOtter   = "otter"
	BackendGoCache = "gocache"
)

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled       bool                     `yaml:"enabled"        env:"ENABLED"`
	Backend       string                   `yaml:"backend"        env:"BACKEND"` // "otter" or "gocache"
	MaxSize       int                      `yaml:"max_size"       env:"MAX_SIZE"`
	DefaultTTL    time.Duration            `yaml:"default_ttl"    env:"DEFAULT_TTL"`
	SweepInterval time.Duration            `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
	EndpointTTLs  map[string]time.Duration `yaml:"endpoint_ttls"` // 0 disables caching for the endpoint
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DSN"` // file path or ":memory:"
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	AdminKey string `yaml:"admin_key" env:"ADMIN_KEY"` // bearer key for /admin; hashed at startup
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LEVEL"`  // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // json or text
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Default returns the configuration used for fields the file leaves unset.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN: "storefront.db",
		},
		Cache: CacheConfig{
			Enabled:       true,
			Backend:       BackendOtter,
			MaxSize:       10_000,
			DefaultTTL:    5 * time.Minute,
			SweepInterval: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RateLimits: RateLimitConfig{
			RPM: 120,
		},
	}
}

// Load reads and parses a YAML config file, expanding environment variables,
// then applies STOREFRONT_* environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = expandEnv(data)

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendOtter, BackendGoCache:
	default:
		return fmt.Errorf("cache.backend %q: want %q or %q", c.Cache.Backend, BackendOtter, BackendGoCache)
	}
	if c.Cache.Enabled && c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache.default_ttl must be positive when the cache is enabled")
	}
	if r := c.Telemetry.Tracing.SampleRate; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.tracing.sample_rate %v: want 0.0 to 1.0", r)
	}
	if c.RateLimits.RPM < 0 {
		return fmt.Errorf("rate_limits.rpm must not be negative")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q: want json or text", c.Log.Format)
	}
	return nil
}

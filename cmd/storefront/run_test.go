package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/eugener/storefront/internal/cache"
	"github.com/eugener/storefront/internal/config"
)

func TestNewCache(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.CacheConfig
		want string
	}{
		{"disabled", config.CacheConfig{Enabled: false, Backend: config.BackendOtter}, "nil"},
		{"otter", config.CacheConfig{Enabled: true, Backend: config.BackendOtter, MaxSize: 100}, "memory"},
		{"gocache", config.CacheConfig{Enabled: true, Backend: config.BackendGoCache, SweepInterval: time.Minute}, "gocache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := newCache(tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			var got string
			switch c.(type) {
			case nil:
				got = "nil"
			case *cache.Memory:
				got = "memory"
			case *cache.GoCache:
				got = "gocache"
			}
			if got != tt.want {
				t.Errorf("backend = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMaxTTL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  config.CacheConfig
		want time.Duration
	}{
		{"default only", config.CacheConfig{DefaultTTL: 5 * time.Minute}, 5 * time.Minute},
		{
			"endpoint override longer than an hour",
			config.CacheConfig{
				DefaultTTL:   5 * time.Minute,
				EndpointTTLs: map[string]time.Duration{"get_settings": 6 * time.Hour, "get_faqs": 0},
			},
			6 * time.Hour,
		},
		{
			"shorter overrides keep the default",
			config.CacheConfig{
				DefaultTTL:   2 * time.Hour,
				EndpointTTLs: map[string]time.Duration{"get_products": time.Minute},
			},
			2 * time.Hour,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := maxTTL(tt.cfg); got != tt.want {
				t.Errorf("maxTTL = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf).Info("hidden")
	newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf).Warn("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("json output = %q", out)
	}

	buf.Reset()
	newLogger(config.LogConfig{Format: "text"}, &buf).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}
}

// Package server implements the HTTP transport layer for the storefront API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eugener/storefront/internal/app"
	"github.com/eugener/storefront/internal/cache"
	"github.com/eugener/storefront/internal/ratelimit"
	"github.com/eugener/storefront/internal/telemetry"
)

// ReadyChecker reports whether the system is ready to serve traffic.
type ReadyChecker func(ctx context.Context) error

// Deps holds all dependencies for the HTTP server.
type Deps struct {
	Settings  *app.SettingsService
	Catalog   *app.CatalogService
	Sections  *app.SectionService
	Cart      *app.CartService
	Addresses *app.AddressService
	Tickets   *app.TicketService
	FAQs      *app.FAQService

	Cache        cache.Store              // nil = no caching
	DefaultTTL   time.Duration            // TTL for cached endpoints without an override
	EndpointTTLs map[string]time.Duration // per-endpoint overrides; <= 0 disables caching
	AdminKeyHash string                   // "" = admin endpoints open
	RateLimiter  *ratelimit.Registry      // per-client limit on uncached endpoints; nil = none

	ReadyCheck     ReadyChecker       // nil = always ready (for tests)
	Metrics        *telemetry.Metrics // nil = no metrics
	MetricsHandler http.Handler       // nil = no /metrics endpoint
	Now            func() time.Time   // nil = storefront.Now
}

// New creates an http.Handler with all routes and middleware wired.
func New(deps Deps) http.Handler {
	s := &server{deps: deps}

	r := chi.NewRouter()

	// Global middleware
	r.Use(s.recovery)
	r.Use(s.requestID)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}
	r.Use(s.logging)

	r.NotFound(s.handleNotFound)

	// System endpoints
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// Legacy client API: one POST route per endpoint so route patterns
	// (and metric labels) stay bounded.
	r.Route("/app/v1/api", func(r chi.Router) {
		r.Use(s.parseParams)
		for _, e := range s.endpoints() {
			h := s.api(e.handle)
			if e.cached {
				h = s.cached(e.name)(h)
			} else if deps.RateLimiter != nil {
				h = s.rateLimit(h)
			}
			r.Method(http.MethodPost, "/"+e.name, h)
		}
	})

	// Cache administration
	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/cache-stats", s.handleCacheStats)
		r.With(s.parseParams).Post("/clear-cache", s.handleClearCache)
	})

	return r
}

type server struct {
	deps Deps
}

// ttl returns the cache lifetime for endpoint.
func (s *server) ttl(endpoint string) time.Duration {
	if d, ok := s.deps.EndpointTTLs[endpoint]; ok {
		return d
	}
	return s.deps.DefaultTTL
}

package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/cache"
	"github.com/eugener/storefront/internal/telemetry"
)

// cacheHeader reports the interceptor outcome to clients.
const cacheHeader = "X-Cache"

// Cache outcomes, shared by the X-Cache header and the request log.
const (
	cacheHit    = "HIT"
	cacheMiss   = "MISS"
	cacheBypass = "BYPASS"
)

var (
	hitVal    = []string{cacheHit}
	missVal   = []string{cacheMiss}
	bypassVal = []string{cacheBypass}
)

var tracer = telemetry.Tracer("storefront/server")

// cached wraps a read endpoint with the response cache. On a hit the stored
// bytes are written and next never runs. On a miss the response is captured
// as it is written and stored when it is a non-empty 2xx whose envelope is
// not an error. Cache failures are logged and never reach the client.
func (s *server) cached(endpoint string) func(http.Handler) http.Handler {
	ttl := s.ttl(endpoint)
	return func(next http.Handler) http.Handler {
		if s.deps.Cache == nil || ttl <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := paramsFromContext(r.Context())
			if wantsBypass(r, p) {
				storefront.SetCacheStatus(r.Context(), cacheBypass)
				if m := s.deps.Metrics; m != nil {
					m.CacheBypasses.WithLabelValues(endpoint).Inc()
				}
				w.Header()[cacheHeader] = bypassVal
				next.ServeHTTP(w, r)
				return
			}

			key := cache.DeriveKey(endpoint, p)
			ctx, span := tracer.Start(r.Context(), "cache."+endpoint,
				trace.WithAttributes(attribute.String("cache.key", key)))
			defer span.End()

			if body, ok := s.deps.Cache.Get(ctx, key); ok {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				storefront.SetCacheStatus(ctx, cacheHit)
				if m := s.deps.Metrics; m != nil {
					m.CacheHits.WithLabelValues(endpoint).Inc()
				}
				w.Header()["Content-Type"] = jsonCT
				w.Header()[cacheHeader] = hitVal
				w.WriteHeader(http.StatusOK)
				w.Write(body)
				return
			}

			span.SetAttributes(attribute.Bool("cache.hit", false))
			storefront.SetCacheStatus(ctx, cacheMiss)
			if m := s.deps.Metrics; m != nil {
				m.CacheMisses.WithLabelValues(endpoint).Inc()
			}
			w.Header()[cacheHeader] = missVal

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r.WithContext(ctx))

			body := cw.buf.Bytes()
			if !storable(cw.status, body) {
				return
			}
			// Store even if the client has gone away.
			if _, err := s.deps.Cache.Set(context.WithoutCancel(ctx), key, body, ttl); err != nil {
				slog.LogAttrs(ctx, slog.LevelWarn, "cache store failed",
					slog.String("key", key),
					slog.String("error", err.Error()),
					slog.String("request_id", storefront.RequestIDFromContext(ctx)),
				)
				if m := s.deps.Metrics; m != nil {
					m.CacheStoreErrors.Inc()
				}
			}
		})
	}
}

// wantsBypass reports whether the caller asked to skip the cache.
func wantsBypass(r *http.Request, p storefront.Params) bool {
	if strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache") {
		return true
	}
	if v := r.Header.Get("X-Cache-Bypass"); v == "1" || strings.EqualFold(v, "true") {
		return true
	}
	return p.Bool("no_cache")
}

// storable reports whether a captured response may be cached: status in
// [200,299), a non-blank body, and an envelope not flagged as an error.
func storable(status int, body []byte) bool {
	if status < 200 || status >= 299 {
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return false
	}
	return !gjson.GetBytes(body, "error").Bool()
}

// invalidate drops cached entries whose keys contain pattern.
func (s *server) invalidate(ctx context.Context, pattern string) {
	if s.deps.Cache == nil {
		return
	}
	if n := s.deps.Cache.Clear(ctx, pattern); n > 0 {
		slog.LogAttrs(ctx, slog.LevelDebug, "cache invalidated",
			slog.String("pattern", pattern),
			slog.Int("removed", n),
		)
	}
}

// captureWriter forwards the response to the client while keeping a copy
// of the status and body.
type captureWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	buf         bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	if !cw.wroteHeader {
		cw.status = code
		cw.wroteHeader = true
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.wroteHeader = true
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter.
func (cw *captureWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

package server

import (
	"fmt"
	"log/slog"
	"net/http"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/cache"
)

type cacheStatsResponse struct {
	Error     bool        `json:"error"`
	Message   string      `json:"message"`
	Enabled   bool        `json:"enabled"`
	Stats     cache.Stats `json:"stats"`
	Timestamp string      `json:"timestamp"`
}

type clearCacheResponse struct {
	Error     bool   `json:"error"`
	Message   string `json:"message"`
	Pattern   string `json:"pattern"`
	Cleared   int    `json:"cleared"`
	Timestamp string `json:"timestamp"`
}

func (s *server) timestamp() string {
	now := storefront.Now
	if s.deps.Now != nil {
		now = s.deps.Now
	}
	return now().Format(storefront.DateTimeLayout)
}

// handleCacheStats reports the cache counters and sizes.
func (s *server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	resp := cacheStatsResponse{
		Message:   "Cache stats retrieved successfully",
		Enabled:   s.deps.Cache != nil,
		Timestamp: s.timestamp(),
	}
	if s.deps.Cache != nil {
		resp.Stats = s.deps.Cache.Stats(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleClearCache removes entries whose keys contain the optional pattern.
// An empty pattern clears everything and resets the hit/miss counters.
func (s *server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	pattern := paramsFromContext(r.Context()).Get("pattern")
	var n int
	if s.deps.Cache != nil {
		n = s.deps.Cache.Clear(r.Context(), pattern)
	}

	msg := "All cache cleared"
	if pattern != "" {
		msg = fmt.Sprintf("Cache cleared for pattern %q", pattern)
	}
	slog.LogAttrs(r.Context(), slog.LevelInfo, "cache cleared",
		slog.String("pattern", pattern),
		slog.Int("removed", n),
		slog.String("request_id", storefront.RequestIDFromContext(r.Context())),
	)
	writeJSON(w, http.StatusOK, clearCacheResponse{
		Message:   msg,
		Pattern:   pattern,
		Cleared:   n,
		Timestamp: s.timestamp(),
	})
}

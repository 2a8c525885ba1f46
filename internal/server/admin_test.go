package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/cache"
	"github.com/eugener/storefront/internal/testutil"
)

func (e *testEnv) admin(t testing.TB, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/admin/"+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func TestCacheStats(t *testing.T) {
	t.Parallel()
	clock := testutil.NewClock()
	e := newTestEnv(t, func(d *Deps) { d.Now = clock.Now })

	e.post(t, "get_faqs", `{}`)
	e.post(t, "get_faqs", `{}`)

	rec := e.admin(t, http.MethodGet, "cache-stats", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp cacheStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Enabled || resp.Error {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Stats.Hits != 1 || resp.Stats.Misses != 1 || resp.Stats.Keys != 1 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	if resp.Stats.KSize != len("get_faqs") || resp.Stats.VSize == 0 {
		t.Errorf("sizes = %d/%d", resp.Stats.KSize, resp.Stats.VSize)
	}
	if resp.Timestamp != "2024-01-01 12:00:00" {
		t.Errorf("timestamp = %q", resp.Timestamp)
	}
}

func TestCacheStats_Disabled(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, func(d *Deps) { d.Cache = nil })

	rec := e.admin(t, http.MethodGet, "cache-stats", "", "")
	var resp cacheStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Enabled || resp.Stats.Keys != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClearCache_Pattern(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	e.post(t, "get_products", `{"category_id":1}`)
	e.post(t, "get_products", `{"id":10}`)
	e.post(t, "get_settings", `{"type":"all"}`)

	rec := e.admin(t, http.MethodPost, "clear-cache", `{"pattern":"get_products"}`, "")
	var resp clearCacheResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Cleared != 2 || resp.Pattern != "get_products" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Message != `Cache cleared for pattern "get_products"` {
		t.Errorf("message = %q", resp.Message)
	}

	if r := e.post(t, "get_settings", `{"type":"all"}`); r.Header().Get(cacheHeader) != cacheHit {
		t.Error("get_settings should survive a get_products clear")
	}
	if r := e.post(t, "get_products", `{"id":10}`); r.Header().Get(cacheHeader) != cacheMiss {
		t.Error("cleared entry should miss")
	}
}

func TestClearCache_All(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	e.post(t, "get_faqs", `{}`)
	e.post(t, "get_faqs", `{}`)

	rec := e.admin(t, http.MethodPost, "clear-cache", "", "")
	var resp clearCacheResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Cleared != 1 || resp.Message != "All cache cleared" {
		t.Errorf("resp = %+v", resp)
	}
	st := e.cache.Stats(t.Context())
	if st != (cache.Stats{}) {
		t.Errorf("stats after full clear = %+v", st)
	}
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, func(d *Deps) { d.AdminKeyHash = storefront.HashKey("s3cret") })

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.admin(t, http.MethodGet, "cache-stats", "", tt.token)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				if env := decode(t, rec); !env.Error || env.Message != msgUnauthorized {
					t.Errorf("envelope = %+v", env)
				}
			}
		})
	}

	// The public API never needs the admin key.
	if rec := e.post(t, "get_faqs", `{}`); rec.Code != http.StatusOK {
		t.Errorf("public endpoint status = %d", rec.Code)
	}
}

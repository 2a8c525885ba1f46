package server

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	storefront "github.com/eugener/storefront/internal"
)

// maxBody is the maximum allowed request body size (1 MB).
const maxBody = 1 << 20

type paramsKey struct{}

// paramsFromContext returns the request parameters decoded by parseParams.
func paramsFromContext(ctx context.Context) storefront.Params {
	p, _ := ctx.Value(paramsKey{}).(storefront.Params)
	if p == nil {
		return storefront.Params{}
	}
	return p
}

// parseParams decodes the request body (JSON or form) into flat Params,
// restores the body for downstream readers and stores Params in context.
// Query-string values fill in names the body does not set.
func (s *server) parseParams(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, storefront.Fail(msgInvalidBody))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		p, ok := decodeParams(r, body)
		if !ok {
			writeJSON(w, http.StatusBadRequest, storefront.Fail(msgInvalidBody))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		ctx := context.WithValue(r.Context(), paramsKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func decodeParams(r *http.Request, body []byte) (storefront.Params, bool) {
	p := storefront.Params{}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	trimmed := bytes.TrimSpace(body)

	switch {
	case len(trimmed) == 0:
	case ct == "application/json" || (ct == "" && trimmed[0] == '{'):
		if !gjson.ValidBytes(trimmed) || trimmed[0] != '{' {
			return nil, false
		}
		gjson.ParseBytes(trimmed).ForEach(func(k, v gjson.Result) bool {
			if s, ok := paramText(v); ok {
				p[k.String()] = s
			}
			return true
		})
	case ct == "multipart/form-data":
		if err := r.ParseMultipartForm(maxBody); err != nil {
			return nil, false
		}
		copyForm(p, r.PostForm)
	default:
		if err := r.ParseForm(); err != nil {
			return nil, false
		}
		copyForm(p, r.PostForm)
	}

	for k, vs := range r.URL.Query() {
		if _, set := p[k]; !set && len(vs) > 0 {
			p[k] = vs[0]
		}
	}
	return p, true
}

// paramText flattens a JSON value to its parameter text. Numbers keep their
// literal digits so 1 and "1" are the same parameter; arrays of scalars are
// joined with commas; null is treated as absent.
func paramText(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Null:
		return "", false
	case gjson.String:
		return v.Str, true
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw, true
	}
	if v.IsArray() {
		parts := make([]string, 0, len(v.Array()))
		for _, e := range v.Array() {
			if s, ok := paramText(e); ok && !e.IsArray() && !e.IsObject() {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), true
	}
	return v.Raw, true
}

func copyForm(p storefront.Params, form map[string][]string) {
	for k, vs := range form {
		if len(vs) > 0 {
			p[k] = vs[0]
		}
	}
}

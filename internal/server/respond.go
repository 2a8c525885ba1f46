package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	storefront "github.com/eugener/storefront/internal"
)

// Client-facing messages for classified errors.
const (
	msgNoData        = "No data found"
	msgInternal      = "Something went wrong"
	msgOutOfStock    = "Product is out of stock"
	msgConflict      = "Record already exists"
	msgInvalidBody   = "Invalid request body"
	msgUnauthorized  = "Unauthorized"
	msgRateLimited   = "Too many requests"
	msgUnknownTarget = "Unknown endpoint"
)

// jsonCT is a pre-allocated header value slice. Direct map assignment
// (w.Header()["Content-Type"] = jsonCT) avoids the []string{v} alloc
// that Header.Set creates on every call.
var jsonCT = []string{"application/json"}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header()["Content-Type"] = jsonCT
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// errorStatus maps a service error to the legacy HTTP status and envelope.
// Missing data is reported as a 200 with error=true, as the legacy clients expect.
func errorStatus(err error) (int, storefront.Envelope) {
	var ve *storefront.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, storefront.Fail(ve.Message)
	case errors.Is(err, storefront.ErrBadRequest):
		return http.StatusBadRequest, storefront.Fail(msgInvalidBody)
	case errors.Is(err, storefront.ErrNotFound):
		return http.StatusOK, storefront.Fail(msgNoData)
	case errors.Is(err, storefront.ErrOutOfStock):
		return http.StatusOK, storefront.Fail(msgOutOfStock)
	case errors.Is(err, storefront.ErrConflict):
		return http.StatusConflict, storefront.Fail(msgConflict)
	default:
		return http.StatusInternalServerError, storefront.Fail(msgInternal)
	}
}

// writeError logs unexpected errors server-side and returns a sanitized
// envelope so storage details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, env := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
			slog.String("request_id", storefront.RequestIDFromContext(r.Context())),
		)
	}
	writeJSON(w, status, env)
}

func (s *server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, storefront.Fail(msgUnknownTarget))
}

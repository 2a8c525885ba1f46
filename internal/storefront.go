// Package storefront defines domain types and interfaces for the storefront API.
// This package has no project imports -- it is the dependency root.
package storefront

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// --- Request parameters ---

// Params holds the flat request parameters of a legacy API call. Values are
// always text: JSON numbers arrive as their literal digits, nulls are absent.
type Params map[string]string

// Get returns the trimmed value of name, or "" when absent.
func (p Params) Get(name string) string {
	return strings.TrimSpace(p[name])
}

// Has reports whether name is present with a non-empty value.
func (p Params) Has(name string) bool {
	return p.Get(name) != ""
}

// Int parses name as an integer, returning def when absent or malformed.
func (p Params) Int(name string, def int) int {
	v := p.Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Bool reports whether name holds a truthy legacy flag ("1" or "true").
func (p Params) Bool(name string) bool {
	switch strings.ToLower(p.Get(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// --- Rows ---

// Row is one raw database row keyed by column name. Values carry whatever
// the driver produced (int64, float64, string, []byte, time.Time or nil).
type Row map[string]any

// --- Response envelope ---

// Envelope is the top-level JSON shape returned by every endpoint.
// Total is omitted when empty and is always text when present.
type Envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Total   string `json:"total,omitempty"`
}

// EmptyData is the legacy "no data" payload: an empty JSON array.
var EmptyData = []any{}

// OK builds a successful envelope.
func OK(message string, data any) Envelope {
	if data == nil {
		data = EmptyData
	}
	return Envelope{Message: message, Data: data}
}

// Fail builds an application-level failure envelope with an empty data array.
func Fail(message string) Envelope {
	return Envelope{Error: true, Message: message, Data: EmptyData}
}

// --- Filters ---

// Page is an offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// CategoryFilter selects categories.
type CategoryFilter struct {
	ID    string
	Slug  string
	Sort  string
	Order string
	Page
}

// ProductFilter selects products.
type ProductFilter struct {
	ID         string
	Slug       string
	CategoryID string
	Search     string
	ProductIDs []string
	MinPrice   string
	MaxPrice   string
	TopRated   bool
	Sort       string
	Order      string
	Page
}

// SectionFilter selects featured sections.
type SectionFilter struct {
	ID string
	Page
}

// TicketFilter selects support tickets.
type TicketFilter struct {
	ID     string
	UserID string
	Status string
	Page
}

// MessageFilter selects ticket messages.
type MessageFilter struct {
	TicketID string
	UserID   string
	Page
}

// --- Write models ---

// CartItem is a cart line to upsert.
type CartItem struct {
	UserID           string
	ProductVariantID string
	Qty              int
	SavedForLater    bool
}

// Address is a delivery address.
type Address struct {
	ID              string
	UserID          string
	Name            string
	Type            string
	Mobile          string
	AlternateMobile string
	Address         string
	Landmark        string
	Area            string
	City            string
	Pincode         string
	State           string
	Country         string
	Latitude        string
	Longitude       string
	IsDefault       bool
}

// Ticket is a support ticket.
type Ticket struct {
	ID           string
	TicketTypeID string
	UserID       string
	Subject      string
	Email        string
	Description  string
	Status       int
}

// Ticket status codes as stored by the legacy admin panel.
const (
	TicketPending  = 1
	TicketOpened   = 2
	TicketResolved = 3
	TicketClosed   = 4
	TicketReopened = 5
)

// TicketMessage is one message in a ticket thread.
type TicketMessage struct {
	TicketID string
	UserID   string
	UserType string
	Message  string
}

// ProductFAQ is a customer question about a product.
type ProductFAQ struct {
	ProductID string
	UserID    string
	Question  string
}

// --- Context keys ---

type contextKey int

const ctxKeyMeta contextKey = 0

// requestMeta bundles per-request values into a single context allocation.
// CacheStatus is filled in later by the cache interceptor via mutation of the
// same pointer so the logging middleware can report it.
type requestMeta struct {
	RequestID   string
	CacheStatus string
}

func metaFromContext(ctx context.Context) *requestMeta {
	m, _ := ctx.Value(ctxKeyMeta).(*requestMeta)
	return m
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if m := metaFromContext(ctx); m != nil {
		return m.RequestID
	}
	return ""
}

// ContextWithRequestID returns a context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyMeta, &requestMeta{RequestID: id})
}

// SetCacheStatus records the cache outcome ("HIT", "MISS", "BYPASS") on the
// request metadata. It is a no-op when ctx carries no metadata.
func SetCacheStatus(ctx context.Context, status string) {
	if m := metaFromContext(ctx); m != nil {
		m.CacheStatus = status
	}
}

// CacheStatusFromContext returns the cache outcome recorded for the request.
func CacheStatusFromContext(ctx context.Context) string {
	if m := metaFromContext(ctx); m != nil {
		return m.CacheStatus
	}
	return ""
}

// --- Shared helpers ---

// DateTimeLayout is the legacy textual timestamp format.
const DateTimeLayout = "2006-01-02 15:04:05"

// Now returns the current UTC time truncated to whole seconds, matching the
// precision of stored timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// HashKey returns the hex-encoded SHA-256 hash of a raw admin key.
func HashKey(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Package storage defines persistence interfaces for the storefront.
//
// Read methods return raw rows (storefront.Row) keyed by column name; shaping
// them for clients is the caller's job.
package storage

import (
	"context"

	storefront "github.com/eugener/storefront/internal"
)

// SettingsStore manages the variable/value settings table and user lookups.
type SettingsStore interface {
	// GetSettings returns the requested variables; all variables when none are named.
	GetSettings(ctx context.Context, variables ...string) (map[string]string, error)
	SetSetting(ctx context.Context, variable, value string) error
	GetUser(ctx context.Context, id string) (storefront.Row, error)
}

// CatalogStore serves categories and products.
type CatalogStore interface {
	ListCategories(ctx context.Context, f storefront.CategoryFilter) ([]storefront.Row, int, error)
	ListSubcategories(ctx context.Context, parentIDs []string) ([]storefront.Row, error)
	ListProducts(ctx context.Context, f storefront.ProductFilter) ([]storefront.Row, int, error)
	ListVariants(ctx context.Context, productIDs []string) ([]storefront.Row, error)
}

// SectionStore serves featured home-page sections.
type SectionStore interface {
	ListSections(ctx context.Context, f storefront.SectionFilter) ([]storefront.Row, int, error)
}

// CartStore manages cart lines.
type CartStore interface {
	GetVariant(ctx context.Context, id string) (storefront.Row, error)
	UpsertCartItem(ctx context.Context, item storefront.CartItem) error
	RemoveCartItems(ctx context.Context, userID, variantID string) (int64, error)
	ListCart(ctx context.Context, userID string, savedForLater bool) ([]storefront.Row, error)
	CountCartItems(ctx context.Context, userID string) (int, error)
}

// AddressStore manages delivery addresses.
type AddressStore interface {
	CreateAddress(ctx context.Context, a *storefront.Address) error
	UpdateAddress(ctx context.Context, a *storefront.Address) error
	DeleteAddress(ctx context.Context, id string) error
	GetAddress(ctx context.Context, id string) (storefront.Row, error)
	ListAddresses(ctx context.Context, userID string) ([]storefront.Row, error)
}

// TicketStore manages support tickets and their message threads.
type TicketStore interface {
	ListTicketTypes(ctx context.Context) ([]storefront.Row, error)
	EnsureTicketType(ctx context.Context, title string) (bool, error)
	CreateTicket(ctx context.Context, t *storefront.Ticket) error
	UpdateTicket(ctx context.Context, t *storefront.Ticket) error
	GetTicket(ctx context.Context, id string) (storefront.Row, error)
	ListTickets(ctx context.Context, f storefront.TicketFilter) ([]storefront.Row, int, error)
	CreateMessage(ctx context.Context, m *storefront.TicketMessage) (string, error)
	GetMessage(ctx context.Context, id string) (storefront.Row, error)
	ListMessages(ctx context.Context, f storefront.MessageFilter) ([]storefront.Row, int, error)
}

// FAQStore manages general FAQs and per-product questions.
type FAQStore interface {
	ListFAQs(ctx context.Context, p storefront.Page) ([]storefront.Row, int, error)
	ListProductFAQs(ctx context.Context, productID string, p storefront.Page) ([]storefront.Row, int, error)
	CreateProductFAQ(ctx context.Context, f *storefront.ProductFAQ) (string, error)
	GetProductFAQ(ctx context.Context, id string) (storefront.Row, error)
}

// Store combines all storage interfaces.
type Store interface {
	SettingsStore
	CatalogStore
	SectionStore
	CartStore
	AddressStore
	TicketStore
	FAQStore
	Ping(ctx context.Context) error
	Close() error
}

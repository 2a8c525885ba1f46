package app

import (
	"context"
	"fmt"
	"strconv"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/normalize"
	"github.com/eugener/storefront/internal/storage"
)

// CartService manages a user's cart and computes its totals.
type CartService struct {
	store storage.CartStore
}

// NewCartService returns a CartService.
func NewCartService(store storage.CartStore) *CartService {
	return &CartService{store: store}
}

// CartSummary is the cart payload. All amounts are text.
type CartSummary struct {
	TotalItems    string             `json:"total_items"`
	TotalQuantity string             `json:"total_quantity"`
	SubTotal      string             `json:"sub_total"`
	Cart          []normalize.Record `json:"cart"`
}

// Manage sets the quantity of a cart line and returns the updated cart.
// A zero quantity removes the line.
func (c *CartService) Manage(ctx context.Context, item storefront.CartItem) (*CartSummary, error) {
	switch {
	case item.UserID == "":
		return nil, storefront.Invalid("user_id is required")
	case item.ProductVariantID == "":
		return nil, storefront.Invalid("product_variant_id is required")
	case item.Qty < 0:
		return nil, storefront.Invalid("qty must not be negative")
	}

	if item.Qty == 0 {
		if _, err := c.store.RemoveCartItems(ctx, item.UserID, item.ProductVariantID); err != nil {
			return nil, err
		}
		return c.summary(ctx, item.UserID, item.SavedForLater)
	}

	variant, err := c.store.GetVariant(ctx, item.ProductVariantID)
	if err != nil {
		return nil, fmt.Errorf("variant %s: %w", item.ProductVariantID, err)
	}
	if stock := variant["stock"]; stock != nil && !item.SavedForLater {
		if n, err := strconv.Atoi(normalize.Str(stock)); err == nil && item.Qty > n {
			return nil, storefront.ErrOutOfStock
		}
	}

	if err := c.store.UpsertCartItem(ctx, item); err != nil {
		return nil, err
	}
	return c.summary(ctx, item.UserID, item.SavedForLater)
}

// Remove deletes one line, or the whole cart when variantID is empty.
func (c *CartService) Remove(ctx context.Context, userID, variantID string) error {
	if userID == "" {
		return storefront.Invalid("user_id is required")
	}
	n, err := c.store.RemoveCartItems(ctx, userID, variantID)
	if err != nil {
		return err
	}
	if n == 0 {
		return storefront.ErrNotFound
	}
	return nil
}

// Get returns the user's cart, or ErrNotFound when it is empty.
func (c *CartService) Get(ctx context.Context, userID string, savedForLater bool) (*CartSummary, error) {
	if userID == "" {
		return nil, storefront.Invalid("user_id is required")
	}
	sum, err := c.summary(ctx, userID, savedForLater)
	if err != nil {
		return nil, err
	}
	if len(sum.Cart) == 0 {
		return nil, storefront.ErrNotFound
	}
	return sum, nil
}

func (c *CartService) summary(ctx context.Context, userID string, savedForLater bool) (*CartSummary, error) {
	rows, err := c.store.ListCart(ctx, userID, savedForLater)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	var qty int64
	var subTotal float64
	lines := normalize.Rows(rows, cartLineShape)
	for i, line := range lines {
		n := toInt(rows[i]["qty"])
		price := unitPrice(rows[i])
		line["sub_total"] = formatAmount(price * float64(n))
		qty += n
		subTotal += price * float64(n)
	}
	return &CartSummary{
		TotalItems:    normalize.Count(len(lines)),
		TotalQuantity: strconv.FormatInt(qty, 10),
		SubTotal:      formatAmount(subTotal),
		Cart:          lines,
	}, nil
}

// unitPrice is the special price when one is set, otherwise the list price.
func unitPrice(row storefront.Row) float64 {
	if sp := toFloat(row["special_price"]); sp > 0 {
		return sp
	}
	return toFloat(row["price"])
}

// formatAmount rounds to cents and drops trailing zeros.
func formatAmount(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	v, _ := strconv.ParseFloat(s, 64)
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toInt(v any) int64 {
	n, err := strconv.ParseInt(normalize.Str(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func toFloat(v any) float64 {
	f, err := strconv.ParseFloat(normalize.Str(v), 64)
	if err != nil {
		return 0
	}
	return f
}

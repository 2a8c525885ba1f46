package sqlite

import (
	"context"
	"fmt"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

// GetVariant returns an active variant joined with its product's name and tax flag.
func (s *Store) GetVariant(ctx context.Context, id string) (storefront.Row, error) {
	defer s.observe("get_variant", time.Now())

	return s.queryRow(ctx,
		`SELECT v.id, v.product_id, v.price, v.special_price, v.stock, v.status,
		 p.name, p.image, p.is_prices_inclusive_tax
		 FROM product_variants v JOIN products p ON p.id = v.product_id
		 WHERE v.id = ? AND v.status = 1 AND p.status = 1`, id)
}

// UpsertCartItem sets the quantity of a cart line, creating it if needed.
func (s *Store) UpsertCartItem(ctx context.Context, item storefront.CartItem) error {
	defer s.observe("upsert_cart_item", time.Now())

	_, err := s.write.ExecContext(ctx,
		`INSERT INTO cart (user_id, product_variant_id, qty, is_saved_for_later, date_created)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, product_variant_id) DO UPDATE SET
		   qty = excluded.qty, is_saved_for_later = excluded.is_saved_for_later`,
		item.UserID, item.ProductVariantID, item.Qty, boolToInt(item.SavedForLater), now(),
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

// RemoveCartItems deletes one line, or the user's whole cart when variantID is empty.
func (s *Store) RemoveCartItems(ctx context.Context, userID, variantID string) (int64, error) {
	defer s.observe("remove_cart_items", time.Now())

	query := `DELETE FROM cart WHERE user_id = ?`
	args := []any{userID}
	if variantID != "" {
		query += ` AND product_variant_id = ?`
		args = append(args, variantID)
	}
	result, err := s.write.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("remove cart items: %w", err)
	}
	return result.RowsAffected()
}

// ListCart returns the user's cart lines with variant pricing.
func (s *Store) ListCart(ctx context.Context, userID string, savedForLater bool) ([]storefront.Row, error) {
	defer s.observe("list_cart", time.Now())

	return s.queryRows(ctx,
		`SELECT c.id, c.user_id, c.product_variant_id, c.qty, c.is_saved_for_later, c.date_created,
		 v.product_id, v.price, v.special_price, v.stock,
		 p.name, p.slug, p.image, p.is_prices_inclusive_tax
		 FROM cart c
		 JOIN product_variants v ON v.id = c.product_variant_id
		 JOIN products p ON p.id = v.product_id
		 WHERE c.user_id = ? AND c.is_saved_for_later = ? AND c.qty > 0
		 ORDER BY c.id ASC`,
		userID, boolToInt(savedForLater))
}

// CountCartItems returns the number of active (not saved-for-later) lines.
func (s *Store) CountCartItems(ctx context.Context, userID string) (int, error) {
	defer s.observe("count_cart_items", time.Now())

	return s.count(ctx,
		`SELECT COUNT(*) FROM cart WHERE user_id = ? AND is_saved_for_later = 0 AND qty > 0`, userID)
}

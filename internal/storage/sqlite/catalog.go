package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

var categorySorts = map[string]string{
	"row_order":  "c.row_order",
	"id":         "c.id",
	"name":       "c.name",
	"date_added": "c.date_added",
}

var productSorts = map[string]string{
	"id":         "p.id",
	"name":       "p.name",
	"rating":     "p.rating",
	"date_added": "p.date_added",
	"price":      "min_price",
}

// ListCategories returns top-level categories (or the one selected by id/slug)
// and the total number matching before paging.
func (s *Store) ListCategories(ctx context.Context, f storefront.CategoryFilter) ([]storefront.Row, int, error) {
	defer s.observe("list_categories", time.Now())

	where := []string{"c.status = 1"}
	var args []any
	switch {
	case f.ID != "":
		where = append(where, "c.id = ?")
		args = append(args, f.ID)
	case f.Slug != "":
		where = append(where, "c.slug = ?")
		args = append(args, f.Slug)
	default:
		where = append(where, "c.parent_id = 0")
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	total, err := s.count(ctx, `SELECT COUNT(*) FROM categories c`+cond, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := `SELECT c.id, c.parent_id, c.name, c.slug, c.image, c.banner, c.row_order, c.status,
		(SELECT COUNT(*) FROM categories sc WHERE sc.parent_id = c.id AND sc.status = 1) AS children_count
		FROM categories c` + cond +
		orderBy(f.Sort, f.Order, categorySorts, "row_order") +
		` LIMIT ? OFFSET ?`
	rows, err := s.queryRows(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return rows, total, nil
}

// ListSubcategories returns the active children of the given parents.
func (s *Store) ListSubcategories(ctx context.Context, parentIDs []string) ([]storefront.Row, error) {
	if len(parentIDs) == 0 {
		return []storefront.Row{}, nil
	}
	defer s.observe("list_subcategories", time.Now())

	return s.queryRows(ctx,
		`SELECT id, parent_id, name, slug, image, banner, row_order, status
		 FROM categories WHERE status = 1 AND parent_id IN (`+placeholders(len(parentIDs))+`)
		 ORDER BY row_order ASC, id ASC`,
		toArgs(parentIDs)...)
}

// ListProducts returns active products matching f and the total before paging.
// A product qualifies for the price window when any active variant does.
func (s *Store) ListProducts(ctx context.Context, f storefront.ProductFilter) ([]storefront.Row, int, error) {
	defer s.observe("list_products", time.Now())

	where := []string{"p.status = 1"}
	var args []any
	if f.ID != "" {
		where = append(where, "p.id = ?")
		args = append(args, f.ID)
	}
	if f.Slug != "" {
		where = append(where, "p.slug = ?")
		args = append(args, f.Slug)
	}
	if f.CategoryID != "" {
		where = append(where, "p.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if len(f.ProductIDs) > 0 {
		where = append(where, "p.id IN ("+placeholders(len(f.ProductIDs))+")")
		args = append(args, toArgs(f.ProductIDs)...)
	}
	if f.Search != "" {
		where = append(where, "(p.name LIKE ? OR p.tags LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	if f.TopRated {
		where = append(where, "p.rating > 0")
	}

	// Effective price is special_price when set, otherwise price.
	const effective = `CASE WHEN v.special_price > 0 THEN v.special_price ELSE v.price END`
	var having []string
	var havingArgs []any
	if f.MinPrice != "" {
		having = append(having, "min_price >= CAST(? AS REAL)")
		havingArgs = append(havingArgs, f.MinPrice)
	}
	if f.MaxPrice != "" {
		having = append(having, "min_price <= CAST(? AS REAL)")
		havingArgs = append(havingArgs, f.MaxPrice)
	}

	base := `SELECT p.id, p.category_id, p.name, p.slug, p.short_description, p.description,
		p.image, p.type, p.tags, p.rating, p.no_of_ratings, p.is_prices_inclusive_tax,
		p.status, p.date_added, c.name AS category_name,
		MIN(` + effective + `) AS min_price, MAX(` + effective + `) AS max_price
		FROM products p
		JOIN categories c ON c.id = p.category_id
		LEFT JOIN product_variants v ON v.product_id = p.id AND v.status = 1
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY p.id`
	if len(having) > 0 {
		base += " HAVING " + strings.Join(having, " AND ")
	}
	all := append(args, havingArgs...)

	total, err := s.count(ctx, `SELECT COUNT(*) FROM (`+base+`)`, all...)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	sort := f.Sort
	if f.TopRated && sort == "" {
		sort = "rating"
	}
	query := base + orderBy(sort, f.Order, productSorts, "id") + ` LIMIT ? OFFSET ?`
	rows, err := s.queryRows(ctx, query, append(all, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return rows, total, nil
}

// ListVariants returns the active variants of the given products.
func (s *Store) ListVariants(ctx context.Context, productIDs []string) ([]storefront.Row, error) {
	if len(productIDs) == 0 {
		return []storefront.Row{}, nil
	}
	defer s.observe("list_variants", time.Now())

	return s.queryRows(ctx,
		`SELECT id, product_id, attribute_value_ids, price, special_price, stock, status
		 FROM product_variants WHERE status = 1 AND product_id IN (`+placeholders(len(productIDs))+`)
		 ORDER BY product_id ASC, id ASC`,
		toArgs(productIDs)...)
}

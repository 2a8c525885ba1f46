package app

import (
	"context"
	"fmt"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/normalize"
	"github.com/eugener/storefront/internal/storage"
)

// CatalogService serves categories and products.
type CatalogService struct {
	store storage.CatalogStore
}

// NewCatalogService returns a CatalogService.
func NewCatalogService(store storage.CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

// Categories returns the selected categories, each with its active children
// under "children", and the total before paging.
func (c *CatalogService) Categories(ctx context.Context, f storefront.CategoryFilter) ([]normalize.Record, int, error) {
	rows, total, err := c.store.ListCategories(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, storefront.ErrNotFound
	}

	out := normalize.Rows(rows, categoryShape)
	subs, err := c.store.ListSubcategories(ctx, ids(out))
	if err != nil {
		return nil, 0, fmt.Errorf("list subcategories: %w", err)
	}
	children := groupBy(normalize.Rows(subs, categoryShape), "parent_id")
	for _, cat := range out {
		cat["children"] = orEmpty(children[normalize.Str(cat["id"])])
	}
	return out, total, nil
}

// Products returns the selected products, each with its variants under
// "variants", and the total before paging.
func (c *CatalogService) Products(ctx context.Context, f storefront.ProductFilter) ([]normalize.Record, int, error) {
	rows, total, err := c.store.ListProducts(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, storefront.ErrNotFound
	}
	out, err := c.withVariants(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (c *CatalogService) withVariants(ctx context.Context, rows []storefront.Row) ([]normalize.Record, error) {
	out := normalize.Rows(rows, productShape)
	vs, err := c.store.ListVariants(ctx, ids(out))
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	byProduct := groupBy(normalize.Rows(vs, variantShape), "product_id")
	for _, p := range out {
		p["variants"] = orEmpty(byProduct[normalize.Str(p["id"])])
	}
	return out, nil
}

// ids collects the normalized "id" field of records.
func ids(recs []normalize.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, normalize.Str(r["id"]))
	}
	return out
}

// groupBy buckets records by the text of field, preserving order.
func groupBy(recs []normalize.Record, field string) map[string][]normalize.Record {
	out := make(map[string][]normalize.Record)
	for _, r := range recs {
		k := normalize.Str(r[field])
		out[k] = append(out[k], r)
	}
	return out
}

func orEmpty(recs []normalize.Record) []normalize.Record {
	if recs == nil {
		return []normalize.Record{}
	}
	return recs
}

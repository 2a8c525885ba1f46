package app

import (
	"context"
	"fmt"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/normalize"
	"github.com/eugener/storefront/internal/storage"
)

// SectionService serves featured home-page sections.
type SectionService struct {
	sections storage.SectionStore
	catalog  *CatalogService
}

// NewSectionService returns a SectionService that resolves section products
// through catalog.
func NewSectionService(sections storage.SectionStore, catalog *CatalogService) *SectionService {
	return &SectionService{sections: sections, catalog: catalog}
}

// SectionQuery selects sections and the product window shown in each.
type SectionQuery struct {
	storefront.SectionFilter
	Products     storefront.Page
	ProductSort  string
	ProductOrder string
}

// List returns sections with their products under "product_details" and the
// product count under "total".
func (s *SectionService) List(ctx context.Context, q SectionQuery) ([]normalize.Record, int, error) {
	rows, total, err := s.sections.ListSections(ctx, q.SectionFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, storefront.ErrNotFound
	}

	out := normalize.Rows(rows, sectionShape)
	for _, sec := range out {
		products, n, err := s.products(ctx, normalize.CSV(normalize.Str(sec["product_ids"])), q)
		if err != nil {
			return nil, 0, err
		}
		sec["product_details"] = products
		sec["total"] = normalize.Count(n)
	}
	return out, total, nil
}

func (s *SectionService) products(ctx context.Context, productIDs []string, q SectionQuery) ([]normalize.Record, int, error) {
	if len(productIDs) == 0 {
		return []normalize.Record{}, 0, nil
	}
	rows, n, err := s.catalog.store.ListProducts(ctx, storefront.ProductFilter{
		ProductIDs: productIDs,
		Sort:       q.ProductSort,
		Order:      q.ProductOrder,
		Page:       q.Products,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("section products: %w", err)
	}
	if len(rows) == 0 {
		return []normalize.Record{}, n, nil
	}
	out, err := s.catalog.withVariants(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return out, n, nil
}

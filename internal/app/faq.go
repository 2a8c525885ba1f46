package app

import (
	"context"
	"fmt"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/normalize"
	"github.com/eugener/storefront/internal/storage"
)

// FAQService serves general FAQs and product questions.
type FAQService struct {
	store storage.FAQStore
}

// NewFAQService returns an FAQService.
func NewFAQService(store storage.FAQStore) *FAQService {
	return &FAQService{store: store}
}

// FAQs returns a page of general FAQs and the total.
func (s *FAQService) FAQs(ctx context.Context, p storefront.Page) ([]normalize.Record, int, error) {
	rows, total, err := s.store.ListFAQs(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, storefront.ErrNotFound
	}
	return normalize.Rows(rows, faqShape), total, nil
}

// ProductFAQs returns a page of a product's questions and the total.
func (s *FAQService) ProductFAQs(ctx context.Context, productID string, p storefront.Page) ([]normalize.Record, int, error) {
	if productID == "" {
		return nil, 0, storefront.Invalid("product_id is required")
	}
	rows, total, err := s.store.ListProductFAQs(ctx, productID, p)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, storefront.ErrNotFound
	}
	return normalize.Rows(rows, productFAQShape), total, nil
}

// AddProductFAQ stores a question and returns it as a one-element list.
func (s *FAQService) AddProductFAQ(ctx context.Context, f storefront.ProductFAQ) ([]normalize.Record, error) {
	switch {
	case f.ProductID == "":
		return nil, storefront.Invalid("product_id is required")
	case f.UserID == "":
		return nil, storefront.Invalid("user_id is required")
	case f.Question == "":
		return nil, storefront.Invalid("question is required")
	}
	id, err := s.store.CreateProductFAQ(ctx, &f)
	if err != nil {
		return nil, fmt.Errorf("create product faq: %w", err)
	}
	row, err := s.store.GetProductFAQ(ctx, id)
	if err != nil {
		return nil, err
	}
	return []normalize.Record{normalize.Normalize(row, productFAQShape)}, nil
}

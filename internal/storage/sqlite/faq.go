package sqlite

import (
	"context"
	"fmt"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

const productFAQSelect = `SELECT f.id, f.product_id, f.user_id, f.question, f.answer, f.answered_by,
	f.votes, f.date_added, u.username, a.username AS answered_by_name
	FROM product_faqs f
	LEFT JOIN users u ON u.id = f.user_id
	LEFT JOIN users a ON a.id = f.answered_by`

// ListFAQs returns active general FAQs and the total before paging.
func (s *Store) ListFAQs(ctx context.Context, p storefront.Page) ([]storefront.Row, int, error) {
	defer s.observe("list_faqs", time.Now())

	total, err := s.count(ctx, `SELECT COUNT(*) FROM faqs WHERE status = 1`)
	if err != nil {
		return nil, 0, fmt.Errorf("count faqs: %w", err)
	}
	rows, err := s.queryRows(ctx,
		`SELECT id, question, answer, status FROM faqs WHERE status = 1 ORDER BY id ASC LIMIT ? OFFSET ?`,
		p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list faqs: %w", err)
	}
	return rows, total, nil
}

// ListProductFAQs returns the answered and unanswered questions of a product.
func (s *Store) ListProductFAQs(ctx context.Context, productID string, p storefront.Page) ([]storefront.Row, int, error) {
	defer s.observe("list_product_faqs", time.Now())

	total, err := s.count(ctx, `SELECT COUNT(*) FROM product_faqs WHERE product_id = ?`, productID)
	if err != nil {
		return nil, 0, fmt.Errorf("count product faqs: %w", err)
	}
	rows, err := s.queryRows(ctx, productFAQSelect+` WHERE f.product_id = ? ORDER BY f.id DESC LIMIT ? OFFSET ?`,
		productID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list product faqs: %w", err)
	}
	return rows, total, nil
}

// CreateProductFAQ stores a new question and returns its id.
func (s *Store) CreateProductFAQ(ctx context.Context, f *storefront.ProductFAQ) (string, error) {
	defer s.observe("create_product_faq", time.Now())

	result, err := s.write.ExecContext(ctx,
		`INSERT INTO product_faqs (product_id, user_id, question, date_added) VALUES (?, ?, ?, ?)`,
		f.ProductID, f.UserID, f.Question, now(),
	)
	if err != nil {
		if isConstraintErr(err) {
			return "", fmt.Errorf("product %s: %w", f.ProductID, storefront.ErrNotFound)
		}
		return "", fmt.Errorf("insert product faq: %w", err)
	}
	return lastID(result)
}

// GetProductFAQ returns one product question.
func (s *Store) GetProductFAQ(ctx context.Context, id string) (storefront.Row, error) {
	defer s.observe("get_product_faq", time.Now())

	return s.queryRow(ctx, productFAQSelect+` WHERE f.id = ?`, id)
}

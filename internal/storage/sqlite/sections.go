package sqlite

import (
	"context"
	"fmt"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

// ListSections returns featured sections ordered for display.
func (s *Store) ListSections(ctx context.Context, f storefront.SectionFilter) ([]storefront.Row, int, error) {
	defer s.observe("list_sections", time.Now())

	cond := ""
	var args []any
	if f.ID != "" {
		cond = " WHERE id = ?"
		args = append(args, f.ID)
	}

	total, err := s.count(ctx, `SELECT COUNT(*) FROM sections`+cond, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}
	rows, err := s.queryRows(ctx,
		`SELECT id, title, short_description, style, product_ids, categories, product_type, row_order, date_added
		 FROM sections`+cond+` ORDER BY row_order ASC, id ASC LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}
	return rows, total, nil
}

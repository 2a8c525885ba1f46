package sqlite

import (
	"context"
	"fmt"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

// GetSettings returns the requested variables, or every variable when none are named.
// Unknown variables are simply absent from the result.
func (s *Store) GetSettings(ctx context.Context, variables ...string) (map[string]string, error) {
	defer s.observe("get_settings", time.Now())

	query := `SELECT variable, value FROM settings`
	if len(variables) > 0 {
		query += ` WHERE variable IN (` + placeholders(len(variables)) + `)`
	}
	rows, err := s.read.QueryContext(ctx, query, toArgs(variables)...)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// SetSetting inserts or replaces a single variable.
func (s *Store) SetSetting(ctx context.Context, variable, value string) error {
	defer s.observe("set_setting", time.Now())

	_, err := s.write.ExecContext(ctx,
		`INSERT INTO settings (variable, value) VALUES (?, ?)
		 ON CONFLICT(variable) DO UPDATE SET value = excluded.value`,
		variable, value,
	)
	return err
}

// GetUser returns the active user with the given id.
func (s *Store) GetUser(ctx context.Context, id string) (storefront.Row, error) {
	defer s.observe("get_user", time.Now())

	return s.queryRow(ctx,
		`SELECT id, username, email, mobile, image, balance, referral_code, created_at
		 FROM users WHERE id = ? AND active = 1`, id)
}

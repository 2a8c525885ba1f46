package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

const addressColumns = `id, user_id, name, type, mobile, alternate_mobile, address, landmark, area,
	city, pincode, state, country, latitude, longitude, is_default, created_at`

// CreateAddress inserts a and sets a.ID. A default address clears the user's
// previous default in the same transaction.
func (s *Store) CreateAddress(ctx context.Context, a *storefront.Address) error {
	defer s.observe("create_address", time.Now())

	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if err := clearDefaultAddress(ctx, tx, a.UserID); err != nil {
			return err
		}
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO addresses (user_id, name, type, mobile, alternate_mobile, address, landmark, area,
		 city, pincode, state, country, latitude, longitude, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Type, a.Mobile, nullStr(a.AlternateMobile), a.Address,
		nullStr(a.Landmark), nullStr(a.Area), a.City, a.Pincode, nullStr(a.State),
		nullStr(a.Country), nullStr(a.Latitude), nullStr(a.Longitude),
		boolToInt(a.IsDefault), now(),
	)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	if a.ID, err = lastID(result); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateAddress replaces every mutable field of the address identified by a.ID.
func (s *Store) UpdateAddress(ctx context.Context, a *storefront.Address) error {
	defer s.observe("update_address", time.Now())

	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if err := clearDefaultAddress(ctx, tx, a.UserID); err != nil {
			return err
		}
	}
	result, err := tx.ExecContext(ctx,
		`UPDATE addresses SET name=?, type=?, mobile=?, alternate_mobile=?, address=?, landmark=?,
		 area=?, city=?, pincode=?, state=?, country=?, latitude=?, longitude=?, is_default=?
		 WHERE id=?`,
		a.Name, a.Type, a.Mobile, nullStr(a.AlternateMobile), a.Address, nullStr(a.Landmark),
		nullStr(a.Area), a.City, a.Pincode, nullStr(a.State), nullStr(a.Country),
		nullStr(a.Latitude), nullStr(a.Longitude), boolToInt(a.IsDefault), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	if err := checkRowsAffected(result, "address"); err != nil {
		return err
	}
	return tx.Commit()
}

func clearDefaultAddress(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE addresses SET is_default = 0 WHERE user_id = ?`, userID)
	return err
}

// DeleteAddress removes an address by id.
func (s *Store) DeleteAddress(ctx context.Context, id string) error {
	defer s.observe("delete_address", time.Now())

	result, err := s.write.ExecContext(ctx, `DELETE FROM addresses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, "address")
}

// GetAddress returns one address.
func (s *Store) GetAddress(ctx context.Context, id string) (storefront.Row, error) {
	defer s.observe("get_address", time.Now())

	return s.queryRow(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = ?`, id)
}

// ListAddresses returns a user's addresses, default first.
func (s *Store) ListAddresses(ctx context.Context, userID string) ([]storefront.Row, error) {
	defer s.observe("list_addresses", time.Now())

	return s.queryRows(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = ? ORDER BY is_default DESC, id DESC`, userID)
}

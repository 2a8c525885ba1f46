package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

const ticketSelect = `SELECT t.id, t.ticket_type_id, t.user_id, t.subject, t.email, t.description,
	t.status, t.last_updated, t.date_created, tt.title AS ticket_type, u.username AS name
	FROM tickets t
	LEFT JOIN ticket_types tt ON tt.id = t.ticket_type_id
	LEFT JOIN users u ON u.id = t.user_id`

const messageSelect = `SELECT m.id, m.user_type, m.user_id, m.ticket_id, m.message, m.attachments,
	m.last_updated, m.date_created, u.username AS name, t.subject
	FROM ticket_messages m
	LEFT JOIN tickets t ON t.id = m.ticket_id
	LEFT JOIN users u ON u.id = m.user_id`

// ListTicketTypes returns every ticket type.
func (s *Store) ListTicketTypes(ctx context.Context) ([]storefront.Row, error) {
	defer s.observe("list_ticket_types", time.Now())

	return s.queryRows(ctx, `SELECT id, title, date_created FROM ticket_types ORDER BY id ASC`)
}

// EnsureTicketType inserts a ticket type unless one with the same title
// exists, and reports whether a row was added.
func (s *Store) EnsureTicketType(ctx context.Context, title string) (bool, error) {
	defer s.observe("ensure_ticket_type", time.Now())

	result, err := s.write.ExecContext(ctx,
		`INSERT INTO ticket_types (title, date_created) VALUES (?, ?) ON CONFLICT(title) DO NOTHING`,
		title, now(),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// CreateTicket inserts t and sets t.ID. The ticket type must exist.
func (s *Store) CreateTicket(ctx context.Context, t *storefront.Ticket) error {
	defer s.observe("create_ticket", time.Now())

	ts := now()
	result, err := s.write.ExecContext(ctx,
		`INSERT INTO tickets (ticket_type_id, user_id, subject, email, description, status, last_updated, date_created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TicketTypeID, t.UserID, t.Subject, t.Email, t.Description, t.Status, ts, ts,
	)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("ticket type %s: %w", t.TicketTypeID, storefront.ErrNotFound)
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	t.ID, err = lastID(result)
	return err
}

// UpdateTicket rewrites subject, description and status of the user's ticket.
func (s *Store) UpdateTicket(ctx context.Context, t *storefront.Ticket) error {
	defer s.observe("update_ticket", time.Now())

	result, err := s.write.ExecContext(ctx,
		`UPDATE tickets SET subject=?, description=?, status=?, last_updated=?
		 WHERE id=? AND user_id=?`,
		t.Subject, t.Description, t.Status, now(), t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	return checkRowsAffected(result, "ticket")
}

// GetTicket returns one ticket with its type title.
func (s *Store) GetTicket(ctx context.Context, id string) (storefront.Row, error) {
	defer s.observe("get_ticket", time.Now())

	return s.queryRow(ctx, ticketSelect+` WHERE t.id = ?`, id)
}

// ListTickets returns tickets matching f, newest first, and the total before paging.
func (s *Store) ListTickets(ctx context.Context, f storefront.TicketFilter) ([]storefront.Row, int, error) {
	defer s.observe("list_tickets", time.Now())

	var where []string
	var args []any
	if f.ID != "" {
		where = append(where, "t.id = ?")
		args = append(args, f.ID)
	}
	if f.UserID != "" {
		where = append(where, "t.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, f.Status)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	total, err := s.count(ctx, `SELECT COUNT(*) FROM tickets t`+cond, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}
	rows, err := s.queryRows(ctx, ticketSelect+cond+` ORDER BY t.id DESC LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	return rows, total, nil
}

// CreateMessage appends m to its ticket thread and returns the new message id.
func (s *Store) CreateMessage(ctx context.Context, m *storefront.TicketMessage) (string, error) {
	defer s.observe("create_message", time.Now())

	userType := m.UserType
	if userType == "" {
		userType = "user"
	}
	ts := now()
	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO ticket_messages (user_type, user_id, ticket_id, message, last_updated, date_created)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userType, m.UserID, m.TicketID, m.Message, ts, ts,
	)
	if err != nil {
		if isConstraintErr(err) {
			return "", fmt.Errorf("ticket %s: %w", m.TicketID, storefront.ErrNotFound)
		}
		return "", fmt.Errorf("insert message: %w", err)
	}
	id, err := lastID(result)
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tickets SET last_updated = ? WHERE id = ?`, ts, m.TicketID); err != nil {
		return "", fmt.Errorf("touch ticket: %w", err)
	}
	return id, tx.Commit()
}

// GetMessage returns one message.
func (s *Store) GetMessage(ctx context.Context, id string) (storefront.Row, error) {
	defer s.observe("get_message", time.Now())

	return s.queryRow(ctx, messageSelect+` WHERE m.id = ?`, id)
}

// ListMessages returns a ticket's thread in posting order and the total before paging.
func (s *Store) ListMessages(ctx context.Context, f storefront.MessageFilter) ([]storefront.Row, int, error) {
	defer s.observe("list_messages", time.Now())

	where := []string{"m.ticket_id = ?"}
	args := []any{f.TicketID}
	if f.UserID != "" {
		where = append(where, "m.user_id = ?")
		args = append(args, f.UserID)
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	total, err := s.count(ctx, `SELECT COUNT(*) FROM ticket_messages m`+cond, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}
	rows, err := s.queryRows(ctx, messageSelect+cond+` ORDER BY m.id ASC LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	return rows, total, nil
}

// isConstraintErr reports whether err is a SQLite constraint violation.
// modernc.org/sqlite renders these as "constraint failed: ...".
func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

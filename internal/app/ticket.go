package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/normalize"
	"github.com/eugener/storefront/internal/storage"
)

// TicketService manages support tickets and their message threads.
type TicketService struct {
	store storage.TicketStore
}

// NewTicketService returns a TicketService.
func NewTicketService(store storage.TicketStore) *TicketService {
	return &TicketService{store: store}
}

// Types returns every ticket type.
func (s *TicketService) Types(ctx context.Context) ([]normalize.Record, error) {
	rows, err := s.store.ListTicketTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storefront.ErrNotFound
	}
	return normalize.Rows(rows, ticketTypeShape), nil
}

// Create opens a pending ticket and returns it as a one-element list.
func (s *TicketService) Create(ctx context.Context, t storefront.Ticket) ([]normalize.Record, error) {
	for _, f := range []struct{ name, value string }{
		{"ticket_type_id", t.TicketTypeID},
		{"user_id", t.UserID},
		{"subject", t.Subject},
		{"email", t.Email},
		{"description", t.Description},
	} {
		if f.value == "" {
			return nil, storefront.Invalid(f.name + " is required")
		}
	}
	if !strings.Contains(t.Email, "@") {
		return nil, storefront.Invalid("email is invalid")
	}

	t.Status = storefront.TicketPending
	if err := s.store.CreateTicket(ctx, &t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return s.one(ctx, t.ID)
}

// Edit applies the subject, description and status present in p to the
// user's ticket. A closed ticket only accepts a reopen.
func (s *TicketService) Edit(ctx context.Context, id, userID string, p storefront.Params) ([]normalize.Record, error) {
	if id == "" {
		return nil, storefront.Invalid("ticket_id is required")
	}
	if userID == "" {
		return nil, storefront.Invalid("user_id is required")
	}
	row, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if normalize.Str(row["user_id"]) != userID {
		return nil, storefront.ErrNotFound
	}

	t := storefront.Ticket{
		ID:          id,
		UserID:      userID,
		Subject:     normalize.Str(row["subject"]),
		Description: normalize.Str(row["description"]),
	}
	t.Status, _ = strconv.Atoi(normalize.Str(row["status"]))
	current := t.Status

	if p.Has("subject") {
		t.Subject = p.Get("subject")
	}
	if p.Has("description") {
		t.Description = p.Get("description")
	}
	if p.Has("status") {
		st := p.Int("status", 0)
		if st < storefront.TicketPending || st > storefront.TicketReopened {
			return nil, storefront.Invalid("status is invalid")
		}
		t.Status = st
	}
	if current == storefront.TicketClosed && t.Status != storefront.TicketReopened {
		return nil, storefront.Invalid("ticket is closed")
	}

	if err := s.store.UpdateTicket(ctx, &t); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return s.one(ctx, id)
}

// List returns tickets matching f, newest first, and the total before paging.
func (s *TicketService) List(ctx context.Context, f storefront.TicketFilter) ([]normalize.Record, int, error) {
	rows, total, err := s.store.ListTickets(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, storefront.ErrNotFound
	}
	return normalize.Rows(rows, ticketShape), total, nil
}

// SendMessage posts m on the sender's own open ticket and returns the stored
// message as a one-element list.
func (s *TicketService) SendMessage(ctx context.Context, m storefront.TicketMessage) ([]normalize.Record, error) {
	switch {
	case m.TicketID == "":
		return nil, storefront.Invalid("ticket_id is required")
	case m.UserID == "":
		return nil, storefront.Invalid("user_id is required")
	case m.Message == "":
		return nil, storefront.Invalid("message is required")
	}

	ticket, err := s.store.GetTicket(ctx, m.TicketID)
	if err != nil {
		return nil, err
	}
	if m.UserType != "admin" && normalize.Str(ticket["user_id"]) != m.UserID {
		return nil, storefront.ErrNotFound
	}
	if normalize.Str(ticket["status"]) == strconv.Itoa(storefront.TicketClosed) {
		return nil, storefront.Invalid("ticket is closed")
	}

	id, err := s.store.CreateMessage(ctx, &m)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	row, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	return []normalize.Record{normalize.Normalize(row, messageShape)}, nil
}

// Messages returns a ticket's thread in posting order and the total before paging.
func (s *TicketService) Messages(ctx context.Context, f storefront.MessageFilter) ([]normalize.Record, int, error) {
	if f.TicketID == "" {
		return nil, 0, storefront.Invalid("ticket_id is required")
	}
	rows, total, err := s.store.ListMessages(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, storefront.ErrNotFound
	}
	return normalize.Rows(rows, messageShape), total, nil
}

func (s *TicketService) one(ctx context.Context, id string) ([]normalize.Record, error) {
	row, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	return []normalize.Record{normalize.Normalize(row, ticketShape)}, nil
}

package server

import (
	"context"
	"net/http"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/app"
	"github.com/eugener/storefront/internal/cache"
	"github.com/eugener/storefront/internal/normalize"
)

// Paging defaults for list endpoints.
const (
	defaultLimit        = 25
	defaultSectionLimit = 10
	maxLimit            = 100
)

// apiFunc handles one legacy endpoint. Returned errors are classified by
// errorStatus; a nil error writes env with status 200.
type apiFunc func(ctx context.Context, p storefront.Params) (storefront.Envelope, error)

type endpoint struct {
	name   string
	handle apiFunc
	cached bool
}

func (s *server) endpoints() []endpoint {
	return []endpoint{
		{"get_settings", s.getSettings, true},
		{"get_categories", s.getCategories, true},
		{"get_products", s.getProducts, true},
		{"get_sections", s.getSections, true},
		{"get_faqs", s.getFAQs, true},
		{"get_product_faqs", s.getProductFAQs, true},
		{"get_ticket_types", s.getTicketTypes, true},
		{"add_product_faq", s.addProductFAQ, false},
		{"manage_cart", s.manageCart, false},
		{"remove_from_cart", s.removeFromCart, false},
		{"get_user_cart", s.getUserCart, false},
		{"add_address", s.addAddress, false},
		{"update_address", s.updateAddress, false},
		{"delete_address", s.deleteAddress, false},
		{"get_address", s.getAddress, false},
		{"add_ticket", s.addTicket, false},
		{"edit_ticket", s.editTicket, false},
		{"get_tickets", s.getTickets, false},
		{"send_message", s.sendMessage, false},
		{"get_messages", s.getMessages, false},
	}
}

// api adapts an apiFunc to http.Handler.
func (s *server) api(fn apiFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env, err := fn(r.Context(), paramsFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, env)
	})
}

// page reads a limit/offset pair, clamping the limit to (0, maxLimit].
func page(p storefront.Params, limitName, offsetName string, def int) storefront.Page {
	limit := p.Int(limitName, def)
	if limit <= 0 || limit > maxLimit {
		limit = def
	}
	return storefront.Page{Limit: limit, Offset: max(0, p.Int(offsetName, 0))}
}

func list(message string, recs []normalize.Record, total int) storefront.Envelope {
	env := storefront.OK(message, recs)
	env.Total = normalize.Count(total)
	return env
}

// --- Settings & catalog ---

func (s *server) getSettings(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	data, err := s.deps.Settings.Get(ctx, p.Get("type"), p.Get("user_id"))
	if err != nil {
		return storefront.Envelope{}, err
	}
	return storefront.OK("Settings retrieved successfully", data), nil
}

func (s *server) getCategories(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, total, err := s.deps.Catalog.Categories(ctx, storefront.CategoryFilter{
		ID:    p.Get("id"),
		Slug:  p.Get("slug"),
		Sort:  p.Get("sort"),
		Order: p.Get("order"),
		Page:  page(p, "limit", "offset", defaultLimit),
	})
	if err != nil {
		return storefront.Envelope{}, err
	}
	return list("Categories retrieved successfully", recs, total), nil
}

func (s *server) getProducts(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, total, err := s.deps.Catalog.Products(ctx, storefront.ProductFilter{
		ID:         p.Get("id"),
		Slug:       p.Get("slug"),
		CategoryID: p.Get("category_id"),
		Search:     p.Get("search"),
		ProductIDs: normalize.CSV(p.Get("product_ids")),
		MinPrice:   p.Get("min_price"),
		MaxPrice:   p.Get("max_price"),
		TopRated:   p.Bool("top_rated_product"),
		Sort:       p.Get("sort"),
		Order:      p.Get("order"),
		Page:       page(p, "limit", "offset", defaultLimit),
	})
	if err != nil {
		return storefront.Envelope{}, err
	}
	return list("Products retrieved successfully", recs, total), nil
}

func (s *server) getSections(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, total, err := s.deps.Sections.List(ctx, app.SectionQuery{
		SectionFilter: storefront.SectionFilter{
			ID:   p.Get("section_id"),
			Page: page(p, "limit", "offset", defaultSectionLimit),
		},
		Products:     page(p, "p_limit", "p_offset", defaultSectionLimit),
		ProductSort:  p.Get("p_sort"),
		ProductOrder: p.Get("p_order"),
	})
	if err != nil {
		return storefront.Envelope{}, err
	}
	return list("Sections retrieved successfully", recs, total), nil
}

// --- FAQs ---

func (s *server) getFAQs(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, total, err := s.deps.FAQs.FAQs(ctx, page(p, "limit", "offset", defaultLimit))
	if err != nil {
		return storefront.Envelope{}, err
	}
	return list("FAQs retrieved successfully", recs, total), nil
}

func (s *server) getProductFAQs(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, total, err := s.deps.FAQs.ProductFAQs(ctx, p.Get("product_id"), page(p, "limit", "offset", defaultLimit))
	if err != nil {
		return storefront.Envelope{}, err
	}
	return list("Product FAQs retrieved successfully", recs, total), nil
}

func (s *server) addProductFAQ(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, err := s.deps.FAQs.AddProductFAQ(ctx, storefront.ProductFAQ{
		ProductID: p.Get("product_id"),
		UserID:    p.Get("user_id"),
		Question:  p.Get("question"),
	})
	if err != nil {
		return storefront.Envelope{}, err
	}
	s.invalidate(ctx, "get_product_faqs")
	return storefront.OK("FAQ added successfully", recs), nil
}

// --- Cart ---

func (s *server) manageCart(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	if !p.Has("qty") {
		return storefront.Envelope{}, storefront.Invalid("qty is required")
	}
	item := storefront.CartItem{
		UserID:           p.Get("user_id"),
		ProductVariantID: p.Get("product_variant_id"),
		Qty:              p.Int("qty", -1),
		SavedForLater:    p.Bool("is_saved_for_later"),
	}
	sum, err := s.deps.Cart.Manage(ctx, item)
	if err != nil {
		return storefront.Envelope{}, err
	}
	s.invalidateUser(ctx, item.UserID)
	return storefront.OK("Cart updated successfully", sum), nil
}

func (s *server) removeFromCart(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	userID := p.Get("user_id")
	if err := s.deps.Cart.Remove(ctx, userID, p.Get("product_variant_id")); err != nil {
		return storefront.Envelope{}, err
	}
	s.invalidateUser(ctx, userID)
	return storefront.OK("Removed from cart", nil), nil
}

func (s *server) getUserCart(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	sum, err := s.deps.Cart.Get(ctx, p.Get("user_id"), p.Bool("is_saved_for_later"))
	if err != nil {
		return storefront.Envelope{}, err
	}
	env := storefront.OK("Cart retrieved successfully", sum)
	env.Total = sum.TotalItems
	return env, nil
}

// invalidateUser drops cached settings for a user, whose user_data carries
// the cart count. Substring matching may also drop users whose id shares
// the prefix.
func (s *server) invalidateUser(ctx context.Context, userID string) {
	if userID != "" {
		s.invalidate(ctx, cache.Param("user_id", userID))
	}
}

// --- Addresses ---

func (s *server) addAddress(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, err := s.deps.Addresses.Add(ctx, app.AddressFromParams(p))
	if err != nil {
		return storefront.Envelope{}, err
	}
	return storefront.OK("Address added successfully", recs), nil
}

func (s *server) updateAddress(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, err := s.deps.Addresses.Update(ctx, p.Get("id"), p)
	if err != nil {
		return storefront.Envelope{}, err
	}
	return storefront.OK("Address updated successfully", recs), nil
}

func (s *server) deleteAddress(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	if err := s.deps.Addresses.Delete(ctx, p.Get("id")); err != nil {
		return storefront.Envelope{}, err
	}
	return storefront.OK("Address deleted successfully", nil), nil
}

func (s *server) getAddress(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, err := s.deps.Addresses.List(ctx, p.Get("user_id"))
	if err != nil {
		return storefront.Envelope{}, err
	}
	return list("Addresses retrieved successfully", recs, len(recs)), nil
}

// --- Tickets ---

func (s *server) getTicketTypes(ctx context.Context, _ storefront.Params) (storefront.Envelope, error) {
	recs, err := s.deps.Tickets.Types(ctx)
	if err != nil {
		return storefront.Envelope{}, err
	}
	return storefront.OK("Ticket types retrieved successfully", recs), nil
}

func (s *server) addTicket(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, err := s.deps.Tickets.Create(ctx, storefront.Ticket{
		TicketTypeID: p.Get("ticket_type_id"),
		UserID:       p.Get("user_id"),
		Subject:      p.Get("subject"),
		Email:        p.Get("email"),
		Description:  p.Get("description"),
	})
	if err != nil {
		return storefront.Envelope{}, err
	}
	return storefront.OK("Ticket added successfully", recs), nil
}

func (s *server) editTicket(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, err := s.deps.Tickets.Edit(ctx, p.Get("ticket_id"), p.Get("user_id"), p)
	if err != nil {
		return storefront.Envelope{}, err
	}
	return storefront.OK("Ticket updated successfully", recs), nil
}

func (s *server) getTickets(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, total, err := s.deps.Tickets.List(ctx, storefront.TicketFilter{
		ID:     p.Get("ticket_id"),
		UserID: p.Get("user_id"),
		Status: p.Get("status"),
		Page:   page(p, "limit", "offset", defaultLimit),
	})
	if err != nil {
		return storefront.Envelope{}, err
	}
	return list("Tickets retrieved successfully", recs, total), nil
}

// sendMessage always posts as a customer; admin replies come from the panel.
func (s *server) sendMessage(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, err := s.deps.Tickets.SendMessage(ctx, storefront.TicketMessage{
		TicketID: p.Get("ticket_id"),
		UserID:   p.Get("user_id"),
		UserType: "user",
		Message:  p.Get("message"),
	})
	if err != nil {
		return storefront.Envelope{}, err
	}
	return storefront.OK("Message sent successfully", recs), nil
}

func (s *server) getMessages(ctx context.Context, p storefront.Params) (storefront.Envelope, error) {
	recs, total, err := s.deps.Tickets.Messages(ctx, storefront.MessageFilter{
		TicketID: p.Get("ticket_id"),
		UserID:   p.Get("user_id"),
		Page:     page(p, "limit", "offset", defaultLimit),
	})
	if err != nil {
		return storefront.Envelope{}, err
	}
	return list("Messages retrieved successfully", recs, total), nil
}

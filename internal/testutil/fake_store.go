package testutil

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/storage"
)

var _ storage.Store = (*FakeStore)(nil)

// FakeStore is an in-memory implementation of storage.Store for testing.
// Rows are stored as the driver would return them (int64 ids, float64
// prices). Filtering covers ids, slugs and paging only.
type FakeStore struct {
	mu sync.Mutex

	// Err, when set, is returned by every method.
	Err error

	calls map[string]int
	seq   int64

	settings    map[string]string
	users       map[string]storefront.Row
	categories  []storefront.Row
	products    []storefront.Row
	variants    []storefront.Row
	sections    []storefront.Row
	cart        []storefront.Row
	addresses   []storefront.Row
	ticketTypes []storefront.Row
	tickets     []storefront.Row
	messages    []storefront.Row
	faqs        []storefront.Row
	productFAQs []storefront.Row
}

// NewFakeStore returns a FakeStore with empty collections.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		calls:    make(map[string]int),
		settings: make(map[string]string),
		users:    make(map[string]storefront.Row),
	}
}

// Calls returns how many times the named method has been invoked.
func (s *FakeStore) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// enter records a call and returns the injected error. Callers hold s.mu.
func (s *FakeStore) enter(method string) error {
	s.calls[method]++
	return s.Err
}

func (s *FakeStore) nextID() int64 {
	s.seq++
	return 1000 + s.seq
}

// --- Seeding ---

// AddUser inserts a user row.
func (s *FakeStore) AddUser(r storefront.Row) {
	s.mu.Lock()
	s.users[str(r["id"])] = r
	s.mu.Unlock()
}

// AddCategory inserts a category row.
func (s *FakeStore) AddCategory(r storefront.Row) { s.add(&s.categories, r) }

// AddProduct inserts a product row.
func (s *FakeStore) AddProduct(r storefront.Row) { s.add(&s.products, r) }

// AddVariant inserts a product variant row.
func (s *FakeStore) AddVariant(r storefront.Row) { s.add(&s.variants, r) }

// AddSection inserts a section row.
func (s *FakeStore) AddSection(r storefront.Row) { s.add(&s.sections, r) }

// AddTicketType inserts a ticket type row.
func (s *FakeStore) AddTicketType(r storefront.Row) { s.add(&s.ticketTypes, r) }

// AddFAQ inserts a general FAQ row.
func (s *FakeStore) AddFAQ(r storefront.Row) { s.add(&s.faqs, r) }

func (s *FakeStore) add(dst *[]storefront.Row, r storefront.Row) {
	s.mu.Lock()
	*dst = append(*dst, r)
	s.mu.Unlock()
}

// --- SettingsStore ---

func (s *FakeStore) GetSettings(_ context.Context, variables ...string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetSettings"); err != nil {
		return nil, err
	}
	if len(variables) == 0 {
		return maps.Clone(s.settings), nil
	}
	out := make(map[string]string)
	for _, v := range variables {
		if val, ok := s.settings[v]; ok {
			out[v] = val
		}
	}
	return out, nil
}

func (s *FakeStore) SetSetting(_ context.Context, variable, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetSetting"); err != nil {
		return err
	}
	s.settings[variable] = value
	return nil
}

func (s *FakeStore) GetUser(_ context.Context, id string) (storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetUser"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, storefront.ErrNotFound
	}
	return maps.Clone(u), nil
}

// --- CatalogStore ---

func (s *FakeStore) ListCategories(_ context.Context, f storefront.CategoryFilter) ([]storefront.Row, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCategories"); err != nil {
		return nil, 0, err
	}
	match := filter(s.categories, func(r storefront.Row) bool {
		switch {
		case f.ID != "":
			return str(r["id"]) == f.ID
		case f.Slug != "":
			return r["slug"] == f.Slug
		default:
			return str(r["parent_id"]) == "0"
		}
	})
	return page(match, f.Page), len(match), nil
}

func (s *FakeStore) ListSubcategories(_ context.Context, parentIDs []string) ([]storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListSubcategories"); err != nil {
		return nil, err
	}
	return filter(s.categories, func(r storefront.Row) bool {
		return slices.Contains(parentIDs, str(r["parent_id"]))
	}), nil
}

func (s *FakeStore) ListProducts(_ context.Context, f storefront.ProductFilter) ([]storefront.Row, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListProducts"); err != nil {
		return nil, 0, err
	}
	match := filter(s.products, func(r storefront.Row) bool {
		id := str(r["id"])
		return (f.ID == "" || id == f.ID) &&
			(f.Slug == "" || r["slug"] == f.Slug) &&
			(f.CategoryID == "" || str(r["category_id"]) == f.CategoryID) &&
			(len(f.ProductIDs) == 0 || slices.Contains(f.ProductIDs, id))
	})
	return page(match, f.Page), len(match), nil
}

func (s *FakeStore) ListVariants(_ context.Context, productIDs []string) ([]storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListVariants"); err != nil {
		return nil, err
	}
	return filter(s.variants, func(r storefront.Row) bool {
		return slices.Contains(productIDs, str(r["product_id"]))
	}), nil
}

// --- SectionStore ---

func (s *FakeStore) ListSections(_ context.Context, f storefront.SectionFilter) ([]storefront.Row, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListSections"); err != nil {
		return nil, 0, err
	}
	match := filter(s.sections, func(r storefront.Row) bool {
		return f.ID == "" || str(r["id"]) == f.ID
	})
	return page(match, f.Page), len(match), nil
}

// --- CartStore ---

func (s *FakeStore) GetVariant(_ context.Context, id string) (storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetVariant"); err != nil {
		return nil, err
	}
	for _, v := range s.variants {
		if str(v["id"]) == id {
			return maps.Clone(v), nil
		}
	}
	return nil, storefront.ErrNotFound
}

func (s *FakeStore) UpsertCartItem(_ context.Context, item storefront.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpsertCartItem"); err != nil {
		return err
	}
	saved := int64(0)
	if item.SavedForLater {
		saved = 1
	}
	for _, c := range s.cart {
		if c["user_id"] == item.UserID && c["product_variant_id"] == item.ProductVariantID {
			c["qty"] = int64(item.Qty)
			c["is_saved_for_later"] = saved
			return nil
		}
	}
	s.cart = append(s.cart, storefront.Row{
		"id":                 s.nextID(),
		"user_id":            item.UserID,
		"product_variant_id": item.ProductVariantID,
		"qty":                int64(item.Qty),
		"is_saved_for_later": saved,
	})
	return nil
}

func (s *FakeStore) RemoveCartItems(_ context.Context, userID, variantID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("RemoveCartItems"); err != nil {
		return 0, err
	}
	before := len(s.cart)
	s.cart = slices.DeleteFunc(s.cart, func(c storefront.Row) bool {
		return c["user_id"] == userID && (variantID == "" || c["product_variant_id"] == variantID)
	})
	return int64(before - len(s.cart)), nil
}

// ListCart joins cart lines with their variant's price columns.
func (s *FakeStore) ListCart(_ context.Context, userID string, savedForLater bool) ([]storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCart"); err != nil {
		return nil, err
	}
	want := int64(0)
	if savedForLater {
		want = 1
	}
	out := []storefront.Row{}
	for _, c := range s.cart {
		if c["user_id"] != userID || c["is_saved_for_later"] != want {
			continue
		}
		line := maps.Clone(c)
		for _, v := range s.variants {
			if str(v["id"]) == c["product_variant_id"] {
				line["product_id"] = v["product_id"]
				line["price"] = v["price"]
				line["special_price"] = v["special_price"]
				line["stock"] = v["stock"]
			}
		}
		out = append(out, line)
	}
	return out, nil
}

func (s *FakeStore) CountCartItems(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CountCartItems"); err != nil {
		return 0, err
	}
	n := 0
	for _, c := range s.cart {
		if c["user_id"] == userID && c["is_saved_for_later"] == int64(0) {
			n++
		}
	}
	return n, nil
}

// --- AddressStore ---

func (s *FakeStore) CreateAddress(_ context.Context, a *storefront.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateAddress"); err != nil {
		return err
	}
	a.ID = fmt.Sprint(s.nextID())
	s.addresses = append(s.addresses, addressRow(a))
	return nil
}

func (s *FakeStore) UpdateAddress(_ context.Context, a *storefront.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateAddress"); err != nil {
		return err
	}
	for i, r := range s.addresses {
		if str(r["id"]) == a.ID {
			s.addresses[i] = addressRow(a)
			return nil
		}
	}
	return storefront.ErrNotFound
}

func (s *FakeStore) DeleteAddress(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteAddress"); err != nil {
		return err
	}
	before := len(s.addresses)
	s.addresses = slices.DeleteFunc(s.addresses, func(r storefront.Row) bool { return str(r["id"]) == id })
	if len(s.addresses) == before {
		return storefront.ErrNotFound
	}
	return nil
}

func (s *FakeStore) GetAddress(_ context.Context, id string) (storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetAddress"); err != nil {
		return nil, err
	}
	return first(s.addresses, "id", id)
}

func (s *FakeStore) ListAddresses(_ context.Context, userID string) ([]storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListAddresses"); err != nil {
		return nil, err
	}
	return filter(s.addresses, func(r storefront.Row) bool { return r["user_id"] == userID }), nil
}

func addressRow(a *storefront.Address) storefront.Row {
	def := int64(0)
	if a.IsDefault {
		def = 1
	}
	return storefront.Row{
		"id": a.ID, "user_id": a.UserID, "name": a.Name, "type": a.Type, "mobile": a.Mobile,
		"alternate_mobile": a.AlternateMobile, "address": a.Address, "landmark": a.Landmark,
		"area": a.Area, "city": a.City, "pincode": a.Pincode, "state": a.State,
		"country": a.Country, "latitude": a.Latitude, "longitude": a.Longitude, "is_default": def,
	}
}

// --- TicketStore ---

func (s *FakeStore) ListTicketTypes(context.Context) ([]storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListTicketTypes"); err != nil {
		return nil, err
	}
	return slices.Clone(s.ticketTypes), nil
}

func (s *FakeStore) EnsureTicketType(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("EnsureTicketType"); err != nil {
		return false, err
	}
	if _, err := first(s.ticketTypes, "title", title); err == nil {
		return false, nil
	}
	s.ticketTypes = append(s.ticketTypes, storefront.Row{"id": s.nextID(), "title": title})
	return true, nil
}

func (s *FakeStore) CreateTicket(_ context.Context, t *storefront.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateTicket"); err != nil {
		return err
	}
	if _, err := first(s.ticketTypes, "id", t.TicketTypeID); err != nil {
		return err
	}
	t.ID = fmt.Sprint(s.nextID())
	s.tickets = append(s.tickets, storefront.Row{
		"id": t.ID, "ticket_type_id": t.TicketTypeID, "user_id": t.UserID, "subject": t.Subject,
		"email": t.Email, "description": t.Description, "status": int64(t.Status),
	})
	return nil
}

func (s *FakeStore) UpdateTicket(_ context.Context, t *storefront.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateTicket"); err != nil {
		return err
	}
	for _, r := range s.tickets {
		if str(r["id"]) == t.ID && str(r["user_id"]) == t.UserID {
			r["subject"] = t.Subject
			r["description"] = t.Description
			r["status"] = int64(t.Status)
			return nil
		}
	}
	return storefront.ErrNotFound
}

func (s *FakeStore) GetTicket(_ context.Context, id string) (storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetTicket"); err != nil {
		return nil, err
	}
	return first(s.tickets, "id", id)
}

func (s *FakeStore) ListTickets(_ context.Context, f storefront.TicketFilter) ([]storefront.Row, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListTickets"); err != nil {
		return nil, 0, err
	}
	match := filter(s.tickets, func(r storefront.Row) bool {
		return (f.ID == "" || str(r["id"]) == f.ID) &&
			(f.UserID == "" || str(r["user_id"]) == f.UserID) &&
			(f.Status == "" || str(r["status"]) == f.Status)
	})
	return page(match, f.Page), len(match), nil
}

func (s *FakeStore) CreateMessage(_ context.Context, m *storefront.TicketMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateMessage"); err != nil {
		return "", err
	}
	if _, err := first(s.tickets, "id", m.TicketID); err != nil {
		return "", err
	}
	userType := m.UserType
	if userType == "" {
		userType = "user"
	}
	id := fmt.Sprint(s.nextID())
	s.messages = append(s.messages, storefront.Row{
		"id": id, "ticket_id": m.TicketID, "user_id": m.UserID, "user_type": userType,
		"message": m.Message, "attachments": "[]",
	})
	return id, nil
}

func (s *FakeStore) GetMessage(_ context.Context, id string) (storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetMessage"); err != nil {
		return nil, err
	}
	return first(s.messages, "id", id)
}

func (s *FakeStore) ListMessages(_ context.Context, f storefront.MessageFilter) ([]storefront.Row, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListMessages"); err != nil {
		return nil, 0, err
	}
	match := filter(s.messages, func(r storefront.Row) bool {
		return str(r["ticket_id"]) == f.TicketID && (f.UserID == "" || str(r["user_id"]) == f.UserID)
	})
	return page(match, f.Page), len(match), nil
}

// --- FAQStore ---

func (s *FakeStore) ListFAQs(_ context.Context, p storefront.Page) ([]storefront.Row, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListFAQs"); err != nil {
		return nil, 0, err
	}
	return page(s.faqs, p), len(s.faqs), nil
}

func (s *FakeStore) ListProductFAQs(_ context.Context, productID string, p storefront.Page) ([]storefront.Row, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListProductFAQs"); err != nil {
		return nil, 0, err
	}
	match := filter(s.productFAQs, func(r storefront.Row) bool { return str(r["product_id"]) == productID })
	return page(match, p), len(match), nil
}

func (s *FakeStore) CreateProductFAQ(_ context.Context, f *storefront.ProductFAQ) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateProductFAQ"); err != nil {
		return "", err
	}
	if _, err := first(s.products, "id", f.ProductID); err != nil {
		return "", err
	}
	id := fmt.Sprint(s.nextID())
	s.productFAQs = append(s.productFAQs, storefront.Row{
		"id": id, "product_id": f.ProductID, "user_id": f.UserID, "question": f.Question,
		"answer": nil, "answered_by": int64(0), "votes": int64(0),
	})
	return id, nil
}

func (s *FakeStore) GetProductFAQ(_ context.Context, id string) (storefront.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetProductFAQ"); err != nil {
		return nil, err
	}
	return first(s.productFAQs, "id", id)
}

// --- Lifecycle ---

func (s *FakeStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enter("Ping")
}

func (s *FakeStore) Close() error { return nil }

// --- helpers ---

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// filter returns clones of the rows matching keep; never nil.
func filter(rows []storefront.Row, keep func(storefront.Row) bool) []storefront.Row {
	out := []storefront.Row{}
	for _, r := range rows {
		if keep(r) {
			out = append(out, maps.Clone(r))
		}
	}
	return out
}

func first(rows []storefront.Row, field, value string) (storefront.Row, error) {
	for _, r := range rows {
		if str(r[field]) == value {
			return maps.Clone(r), nil
		}
	}
	return nil, storefront.ErrNotFound
}

func page(rows []storefront.Row, p storefront.Page) []storefront.Row {
	if p.Offset >= len(rows) {
		return []storefront.Row{}
	}
	rows = rows[p.Offset:]
	if p.Limit > 0 && p.Limit < len(rows) {
		rows = rows[:p.Limit]
	}
	return rows
}

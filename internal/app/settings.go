// Package app implements the storefront's domain services. Services read raw
// rows from storage and return client-shaped records; HTTP concerns live in
// the server package.
package app

import (
	"context"
	"errors"
	"fmt"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/normalize"
	"github.com/eugener/storefront/internal/storage"
)

// Settings variable names returned by type=all.
var publicSettings = []string{
	"logo",
	"currency",
	"privacy_policy",
	"terms_conditions",
	"about_us",
	"contact_us",
}

// SettingsService assembles the application settings payload.
type SettingsService struct {
	settings storage.SettingsStore
	cart     storage.CartStore
}

// NewSettingsService returns a SettingsService.
func NewSettingsService(settings storage.SettingsStore, cart storage.CartStore) *SettingsService {
	return &SettingsService{settings: settings, cart: cart}
}

// Get returns the settings payload for typ.
//
//   - "all" (or empty): an object with the public settings, system_settings
//     as a one-element array and user_data as [user] or [].
//   - "system_settings": the decoded system settings object itself.
//   - any other variable: a one-element array holding its value.
func (s *SettingsService) Get(ctx context.Context, typ, userID string) (any, error) {
	switch typ {
	case "", "all":
		return s.all(ctx, userID)
	case "system_settings":
		vals, err := s.settings.GetSettings(ctx, typ)
		if err != nil {
			return nil, err
		}
		wrapped := normalize.Apply(normalize.WrapAsSingletonArray, vals[typ]).([]any)
		if len(wrapped) == 0 {
			return nil, storefront.ErrNotFound
		}
		return wrapped[0], nil
	default:
		vals, err := s.settings.GetSettings(ctx, typ)
		if err != nil {
			return nil, err
		}
		v, ok := vals[typ]
		if !ok {
			return nil, fmt.Errorf("setting %q: %w", typ, storefront.ErrNotFound)
		}
		return []any{v}, nil
	}
}

func (s *SettingsService) all(ctx context.Context, userID string) (map[string]any, error) {
	vals, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, storefront.ErrNotFound
	}

	out := make(map[string]any, len(publicSettings)+2)
	for _, name := range publicSettings {
		out[name] = vals[name]
	}
	out["system_settings"] = normalize.Apply(normalize.WrapAsSingletonArray, vals["system_settings"])

	userData, err := s.userData(ctx, userID)
	if err != nil {
		return nil, err
	}
	out["user_data"] = userData
	return out, nil
}

// userData returns [user] with the live cart count, or [] for guests and
// unknown users.
func (s *SettingsService) userData(ctx context.Context, userID string) ([]any, error) {
	if userID == "" {
		return []any{}, nil
	}
	user, err := s.settings.GetUser(ctx, userID)
	if errors.Is(err, storefront.ErrNotFound) {
		return []any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	n, err := s.cart.CountCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count cart: %w", err)
	}
	user["cart_total_items"] = n
	return []any{normalize.Normalize(user, userShape)}, nil
}

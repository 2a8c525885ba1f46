package app

import (
	"context"
	"fmt"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/normalize"
	"github.com/eugener/storefront/internal/storage"
)

// AddressService manages delivery addresses.
type AddressService struct {
	store storage.AddressStore
}

// NewAddressService returns an AddressService.
func NewAddressService(store storage.AddressStore) *AddressService {
	return &AddressService{store: store}
}

// AddressFromParams reads the address fields present in p.
func AddressFromParams(p storefront.Params) storefront.Address {
	return storefront.Address{
		ID:              p.Get("id"),
		UserID:          p.Get("user_id"),
		Name:            p.Get("name"),
		Type:            p.Get("type"),
		Mobile:          p.Get("mobile"),
		AlternateMobile: p.Get("alternate_mobile"),
		Address:         p.Get("address"),
		Landmark:        p.Get("landmark"),
		Area:            p.Get("area"),
		City:            p.Get("city"),
		Pincode:         p.Get("pincode"),
		State:           p.Get("state"),
		Country:         p.Get("country"),
		Latitude:        p.Get("latitude"),
		Longitude:       p.Get("longitude"),
		IsDefault:       p.Bool("is_default"),
	}
}

// Add validates and stores a new address and returns it as a one-element list.
func (s *AddressService) Add(ctx context.Context, a storefront.Address) ([]normalize.Record, error) {
	if err := validateAddress(a); err != nil {
		return nil, err
	}
	if err := s.store.CreateAddress(ctx, &a); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return s.one(ctx, a.ID)
}

// Update overwrites the fields present in p on address id.
func (s *AddressService) Update(ctx context.Context, id string, p storefront.Params) ([]normalize.Record, error) {
	if id == "" {
		return nil, storefront.Invalid("id is required")
	}
	row, err := s.store.GetAddress(ctx, id)
	if err != nil {
		return nil, err
	}

	a := addressFromRow(row)
	patch := AddressFromParams(p)
	for name, dst := range map[string]*string{
		"name":             &a.Name,
		"type":             &a.Type,
		"mobile":           &a.Mobile,
		"alternate_mobile": &a.AlternateMobile,
		"address":          &a.Address,
		"landmark":         &a.Landmark,
		"area":             &a.Area,
		"city":             &a.City,
		"pincode":          &a.Pincode,
		"state":            &a.State,
		"country":          &a.Country,
		"latitude":         &a.Latitude,
		"longitude":        &a.Longitude,
	} {
		if p.Has(name) {
			*dst = p.Get(name)
		}
	}
	if p.Has("is_default") {
		a.IsDefault = patch.IsDefault
	}

	if err := s.store.UpdateAddress(ctx, &a); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	return s.one(ctx, a.ID)
}

// Delete removes an address.
func (s *AddressService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return storefront.Invalid("id is required")
	}
	return s.store.DeleteAddress(ctx, id)
}

// List returns a user's addresses, default first.
func (s *AddressService) List(ctx context.Context, userID string) ([]normalize.Record, error) {
	if userID == "" {
		return nil, storefront.Invalid("user_id is required")
	}
	rows, err := s.store.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storefront.ErrNotFound
	}
	return normalize.Rows(rows, addressShape), nil
}

func (s *AddressService) one(ctx context.Context, id string) ([]normalize.Record, error) {
	row, err := s.store.GetAddress(ctx, id)
	if err != nil {
		return nil, err
	}
	return []normalize.Record{normalize.Normalize(row, addressShape)}, nil
}

func validateAddress(a storefront.Address) error {
	for _, f := range []struct{ name, value string }{
		{"user_id", a.UserID},
		{"name", a.Name},
		{"mobile", a.Mobile},
		{"address", a.Address},
		{"city", a.City},
		{"pincode", a.Pincode},
	} {
		if f.value == "" {
			return storefront.Invalid(f.name + " is required")
		}
	}
	return nil
}

func addressFromRow(r storefront.Row) storefront.Address {
	return storefront.Address{
		ID:              normalize.Str(r["id"]),
		UserID:          normalize.Str(r["user_id"]),
		Name:            normalize.Str(r["name"]),
		Type:            normalize.Str(r["type"]),
		Mobile:          normalize.Str(r["mobile"]),
		AlternateMobile: normalize.Str(r["alternate_mobile"]),
		Address:         normalize.Str(r["address"]),
		Landmark:        normalize.Str(r["landmark"]),
		Area:            normalize.Str(r["area"]),
		City:            normalize.Str(r["city"]),
		Pincode:         normalize.Str(r["pincode"]),
		State:           normalize.Str(r["state"]),
		Country:         normalize.Str(r["country"]),
		Latitude:        normalize.Str(r["latitude"]),
		Longitude:       normalize.Str(r["longitude"]),
		IsDefault:       normalize.Str(r["is_default"]) == "1",
	}
}

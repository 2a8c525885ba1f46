package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eugener/storefront/internal/storage/sqlite"
	"github.com/eugener/storefront/internal/testutil"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	path := t.TempDir() + "/test.db"
	s, err := sqlite.New(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	cfg := &Config{
		Settings: map[string]string{
			"currency":        "$",
			"system_settings": `{"app_name":"Shop"}`,
		},
		TicketTypes: []string{"Order", "Payment", ""},
	}

	// First call seeds everything.
	if err := Bootstrap(ctx, cfg, store); err != nil {
		t.Fatal("bootstrap:", err)
	}

	vals, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if vals["currency"] != "$" || vals["system_settings"] != `{"app_name":"Shop"}` {
		t.Errorf("settings = %v", vals)
	}

	// An operator edit survives a restart with the same config.
	if err := store.SetSetting(ctx, "currency", "€"); err != nil {
		t.Fatal(err)
	}

	// Second call is idempotent -- no errors, no duplicates.
	if err := Bootstrap(ctx, cfg, store); err != nil {
		t.Fatal("idempotent bootstrap:", err)
	}

	vals, err = store.GetSettings(ctx, "currency")
	if err != nil {
		t.Fatal(err)
	}
	if vals["currency"] != "€" {
		t.Errorf("currency = %q, want stored value kept", vals["currency"])
	}

	types, err := store.ListTicketTypes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 2 {
		t.Errorf("ticket type count after second bootstrap = %d, want 2", len(types))
	}
}

func TestBootstrap_Empty(t *testing.T) {
	t.Parallel()
	fs := testutil.NewFakeStore()

	if err := Bootstrap(context.Background(), &Config{}, fs); err != nil {
		t.Fatal(err)
	}
	if n := fs.Calls("GetSettings"); n != 0 {
		t.Errorf("GetSettings calls = %d, want 0 with nothing to seed", n)
	}
}

func TestBootstrap_StoreError(t *testing.T) {
	t.Parallel()
	fs := testutil.NewFakeStore()
	fs.Err = errors.New("locked")

	err := Bootstrap(context.Background(), &Config{Settings: map[string]string{"logo": "x"}}, fs)
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Errorf("err = %v, want wrapped store error", err)
	}
}

func TestGenerateAdminKey(t *testing.T) {
	t.Parallel()
	a, b := GenerateAdminKey(), GenerateAdminKey()
	if !strings.HasPrefix(a, adminKeyPrefix) {
		t.Errorf("key %q missing prefix", a)
	}
	if a == b {
		t.Error("generated keys should differ")
	}
}

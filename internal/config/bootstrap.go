// Package config provides configuration loading and database bootstrapping.
package config

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"slices"

	"github.com/eugener/storefront/internal/storage"
)

// adminKeyPrefix marks generated admin keys.
const adminKeyPrefix = "sfa_"

// Bootstrap seeds the database from the config file on first run.
// Settings that already exist keep their stored value.
func Bootstrap(ctx context.Context, cfg *Config, store storage.Store) error {
	if len(cfg.Settings) > 0 {
		existing, err := store.GetSettings(ctx)
		if err != nil {
			return fmt.Errorf("read settings: %w", err)
		}
		names := make([]string, 0, len(cfg.Settings))
		for name := range cfg.Settings {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			if _, ok := existing[name]; ok {
				continue // already exists, skip
			}
			if err := store.SetSetting(ctx, name, cfg.Settings[name]); err != nil {
				return fmt.Errorf("seed setting %q: %w", name, err)
			}
			slog.Info("bootstrapped setting", "variable", name)
		}
	}

	for _, title := range cfg.TicketTypes {
		if title == "" {
			continue
		}
		added, err := store.EnsureTicketType(ctx, title)
		if err != nil {
			return fmt.Errorf("seed ticket type %q: %w", title, err)
		}
		if added {
			slog.Info("bootstrapped ticket type", "title", title)
		}
	}
	return nil
}

// GenerateAdminKey creates a random admin key and returns the plaintext.
func GenerateAdminKey() string {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return adminKeyPrefix + base64.RawURLEncoding.EncodeToString(raw)
}

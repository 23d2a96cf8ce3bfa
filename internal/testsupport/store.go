package testsupport

import (
	"context"
	"testing"

	"treasurepicker/internal/config"
	"treasurepicker/internal/gallerycache"
	"treasurepicker/internal/logging"
)

// MustOpenCache opens the gallery cache configured by cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *gallerycache.Store {
	t.Helper()

	store, err := gallerycache.Open(context.Background(), cfg.CachePath(), logging.NewNop())
	if err != nil {
		t.Fatalf("gallerycache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

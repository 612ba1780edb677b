package store

import (
	"context"
	"testing"

	"github.com/chainsafe/wallet-sync/pkg/config"
	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
)

// SetupTestHandle opens a private in-memory store with tables for models and
// closes it when the test ends.
func SetupTestHandle(t *testing.T, models ...any) *Handle {
	t.Helper()
	ctx := context.Background()

	h := New(config.StoreConfig{InMemory: true})
	t.Cleanup(func() { _ = h.Close() })

	db, err := h.DB(ctx)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	if err := mghelper.CreateSchema(ctx, db, models...); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return h
}

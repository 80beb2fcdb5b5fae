package test

import (
	"context"
	"testing"

	"github.com/peachme/peachme/internal/profile"
	"github.com/peachme/peachme/store"
	"github.com/peachme/peachme/store/db"
)

// NewTestingStore creates a store backed by a throwaway sqlite database.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("failed to validate profile: %v", err)
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}

// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"cinefill/internal/catalog"
	"cinefill/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.TMDB.APIKey = "test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.IndexDir = filepath.Join(base, "index")
	cfg.Paths.APIBind = "127.0.0.1:0"
	return &cfg
}

// MustOpenStore opens a catalog store for the test config and closes it when
// the test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedMovies imports the provided seeds and fails the test on error.
func SeedMovies(t testing.TB, store *catalog.Store, seeds ...catalog.MovieSeed) {
	t.Helper()

	if _, err := store.Import(context.Background(), seeds); err != nil {
		t.Fatalf("import seeds: %v", err)
	}
}

// IntPtr returns a pointer to the provided int. Convenient for seed years.
func IntPtr(v int) *int {
	return &v
}

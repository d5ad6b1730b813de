package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"cinefill/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cinefill.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "[tmdb]\napi_key = \"abc\"\n")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be found, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Enrich.Provider != "tmdb" {
		t.Fatalf("expected default provider tmdb, got %q", cfg.Enrich.Provider)
	}
	if cfg.Enrich.Concurrency != 4 {
		t.Fatalf("expected default concurrency 4, got %d", cfg.Enrich.Concurrency)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Fatalf("unexpected tmdb base url %q", cfg.TMDB.BaseURL)
	}
}

func TestLoadEnvOverridesCredential(t *testing.T) {
	path := writeConfig(t, "[tmdb]\napi_key = \"from-file\"\n")
	t.Setenv("TMDB_API_KEY", "from-env")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TMDB.APIKey != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.TMDB.APIKey)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, "[enrich]\nprovider = \"imdb\"\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestValidateEnrichmentRequiresCredential(t *testing.T) {
	cfg := config.Default()
	cfg.Enrich.Provider = "omdb"
	if err := cfg.ValidateEnrichment(); err == nil {
		t.Fatal("expected error when omdb api key missing")
	}
	cfg.OMDB.APIKey = "k"
	if err := cfg.ValidateEnrichment(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateEnrichmentRequiresPositiveTunables(t *testing.T) {
	cfg := config.Default()
	cfg.TMDB.APIKey = "k"
	cfg.Enrich.Concurrency = 0
	if err := cfg.ValidateEnrichment(); err == nil {
		t.Fatal("expected error for zero concurrency")
	}
	cfg.Enrich.Concurrency = 2
	cfg.Enrich.FlushBatchSize = 0
	if err := cfg.ValidateEnrichment(); err == nil {
		t.Fatal("expected error for zero flush batch size")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load, err=%v exists=%v", err, exists)
	}
}

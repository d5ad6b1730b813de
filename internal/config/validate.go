package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is structurally usable. Credentials are
// checked per command (see ValidateEnrichment and friends) so read-only
// commands work without provider keys.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	switch c.Enrich.Provider {
	case ProviderTMDB, ProviderOMDB:
	default:
		return fmt.Errorf("enrich.provider must be \"tmdb\" or \"omdb\", got %q", c.Enrich.Provider)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	if c.Enrich.RetryAttempts < 0 {
		return errors.New("enrich.retry_attempts must not be negative")
	}
	if c.Enrich.RetryBaseMS < 0 || c.Enrich.RetryMaxMS < 0 {
		return errors.New("enrich.retry_base_ms and enrich.retry_max_ms must not be negative")
	}
	if c.Enrich.RatePerSecond < 0 {
		return errors.New("enrich.rate_per_second must not be negative")
	}
	return nil
}

// ValidateEnrichment verifies everything an enrichment run needs up front.
// A missing credential or tunable fails the whole run before any work starts.
func (c *Config) ValidateEnrichment() error {
	switch c.Enrich.Provider {
	case ProviderTMDB:
		if c.TMDB.APIKey == "" {
			return errors.New("tmdb.api_key is required: set TMDB_API_KEY or edit the config file (create one with 'cinefill config init')")
		}
	case ProviderOMDB:
		if c.OMDB.APIKey == "" {
			return errors.New("omdb.api_key is required: set OMDB_API_KEY or edit the config file (create one with 'cinefill config init')")
		}
	}
	if c.Enrich.Concurrency <= 0 {
		return errors.New("enrich.concurrency must be positive")
	}
	if c.Enrich.RequestTimeout <= 0 {
		return errors.New("enrich.request_timeout must be positive")
	}
	if c.Enrich.FlushBatchSize <= 0 {
		return errors.New("enrich.flush_batch_size must be positive")
	}
	return nil
}

// ValidateIndexBuild verifies embedding settings for 'index build'.
func (c *Config) ValidateIndexBuild() error {
	if c.Embedding.APIKey == "" {
		return errors.New("embedding.api_key is required: set COHERE_API_KEY or edit the config file")
	}
	if c.Embedding.Model == "" {
		return errors.New("embedding.model must be set")
	}
	if c.Embedding.BatchSize <= 0 {
		return errors.New("embedding.batch_size must be positive")
	}
	return nil
}

// ValidateServe verifies settings for the query-serving API.
func (c *Config) ValidateServe() error {
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	if err := c.ValidateIndexBuild(); err != nil {
		return err
	}
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required: set LLM_API_KEY or edit the config file")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	return nil
}

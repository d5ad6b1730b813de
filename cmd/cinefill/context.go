package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"cinefill/internal/catalog"
	"cinefill/internal/config"
	"cinefill/internal/logging"
	"cinefill/internal/provider"
	"cinefill/internal/provider/omdb"
	"cinefill/internal/provider/tmdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		// Credentials may live in a local .env; missing files are fine.
		_ = godotenv.Load()

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openStore() (*catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

// newGateway builds the configured provider gateway wrapped with the
// transport-level retry decorator.
func (c *commandContext) newGateway() (provider.Gateway, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateEnrichment(); err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Enrich.RequestTimeout) * time.Second
	var gateway provider.Gateway
	switch cfg.Enrich.Provider {
	case config.ProviderTMDB:
		gateway, err = tmdb.New(cfg.TMDB, timeout)
	case config.ProviderOMDB:
		gateway, err = omdb.New(cfg.OMDB, timeout)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Enrich.Provider)
	}
	if err != nil {
		return nil, err
	}

	return provider.WithRetry(gateway, provider.RetryOptions{
		Attempts:      cfg.Enrich.RetryAttempts,
		BaseDelay:     time.Duration(cfg.Enrich.RetryBaseMS) * time.Millisecond,
		MaxDelay:      time.Duration(cfg.Enrich.RetryMaxMS) * time.Millisecond,
		RatePerSecond: float64(cfg.Enrich.RatePerSecond),
	}), nil
}

package config

const (
	defaultDataDir        = "~/.local/share/cinefill"
	defaultLogDir         = "~/.local/share/cinefill/logs"
	defaultIndexDir       = "~/.local/share/cinefill/index"
	defaultAPIBind        = "127.0.0.1:8093"
	defaultTMDBBaseURL    = "https://api.themoviedb.org/3"
	defaultTMDBLanguage   = "en-US"
	defaultOMDBBaseURL    = "https://www.omdbapi.com/"
	defaultProvider       = "tmdb"
	defaultConcurrency    = 4
	defaultRequestTimeout = 30
	defaultRetryAttempts  = 3
	defaultRetryBaseMS    = 500
	defaultRetryMaxMS     = 10_000
	defaultFlushBatch     = 100
	defaultEmbedModel     = "embed-english-v3.0"
	defaultEmbedBatch     = 96
	defaultLLMBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMTimeout     = 120
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults. Provider
// credentials carry no default and must come from the config file or the
// environment.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			IndexDir: defaultIndexDir,
			APIBind:  defaultAPIBind,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		OMDB: OMDB{
			BaseURL: defaultOMDBBaseURL,
		},
		Enrich: Enrich{
			Provider:       defaultProvider,
			Concurrency:    defaultConcurrency,
			RequestTimeout: defaultRequestTimeout,
			RetryAttempts:  defaultRetryAttempts,
			RetryBaseMS:    defaultRetryBaseMS,
			RetryMaxMS:     defaultRetryMaxMS,
			FlushBatchSize: defaultFlushBatch,
		},
		Embedding: Embedding{
			Model:     defaultEmbedModel,
			BatchSize: defaultEmbedBatch,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8090"`

	// Auth
	APIKey string `env:"FOLIO_API_KEY"`

	// Library storage
	LibraryDir string `env:"LIBRARY_DIR" envDefault:"./library"`

	// Summarizer (optional; disabled when the key is empty)
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	OpenAIModel   string        `env:"OPENAI_MODEL"`
	OpenAITimeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"60s"`

	// Worker pool
	WorkerCount            int `env:"WORKER_COUNT" envDefault:"2"`
	MaxQueueSize           int `env:"MAX_QUEUE_SIZE" envDefault:"50"`
	MaxConcurrentSummarize int `env:"MAX_CONCURRENT_SUMMARIZE" envDefault:"3"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"` // 50MB

	// Fetching
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	FetchUserAgent    string        `env:"FETCH_USER_AGENT" envDefault:"folio/1.0 (+https://github.com/davidriles/folio)"`
	FetchMaxBytes     int64         `env:"FETCH_MAX_BYTES" envDefault:"20971520"` // 20MB
	FetchRatePerSec   float64       `env:"FETCH_RATE_PER_SEC" envDefault:"1"`
	FetchBurst        int           `env:"FETCH_BURST" envDefault:"3"`
	FetchCacheTTL     time.Duration `env:"FETCH_CACHE_TTL" envDefault:"15m"`

	// Pagination
	SegmentRunes int `env:"SEGMENT_RUNES" envDefault:"1600"`
	ImageRunes   int `env:"IMAGE_RUNES" envDefault:"400"`

	// Job state
	JobTTL time.Duration `env:"JOB_TTL" envDefault:"1h"`

	// PDF
	PDFFallbackPdftotext bool `env:"PDF_FALLBACK_PDFTOTEXT" envDefault:"true"`
}

// Load reads configuration from .env (if present) and the environment.
func Load() (Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("FOLIO_API_KEY is required")
	}
	if c.LibraryDir == "" {
		return fmt.Errorf("LIBRARY_DIR is required")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("MAX_QUEUE_SIZE must be positive")
	}
	return nil
}

// SummarizerEnabled reports whether a summarizer API key is configured.
func (c Config) SummarizerEnabled() bool {
	return c.OpenAIAPIKey != ""
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Ranking   RankingConfig
	Actions   ActionsConfig
	Sources   SourcesConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StorageConfig selects the persistence backend for counters and overrides.
// An empty Path resolves to the user data directory.
type StorageConfig struct {
	Backend string `envconfig:"STORAGE_BACKEND" default:"badger"`
	Path    string `envconfig:"STORAGE_PATH"`
}

// RankingConfig holds ranking configuration.
type RankingConfig struct {
	HeadSize          int           `envconfig:"RANKING_HEAD_SIZE" default:"5"`
	BoostWeight       float64       `envconfig:"RANKING_BOOST_WEIGHT" default:"2.0"`
	ShortTermHalfLife time.Duration `envconfig:"RANKING_SHORT_TERM_HALF_LIFE" default:"72h"`
	DecayRefresh      time.Duration `envconfig:"RANKING_DECAY_REFRESH" default:"1h"`
}

// ActionsConfig holds action dispatch configuration.
type ActionsConfig struct {
	UsageRecordDelay time.Duration `envconfig:"USAGE_RECORD_DELAY" default:"1s"`
}

// SourcesConfig holds source configuration.
type SourcesConfig struct {
	FixturePath     string        `envconfig:"FIXTURE_PATH" default:"catalog.yaml"`
	RetryRPS        float64       `envconfig:"SOURCE_RETRY_RPS" default:"1"`
	BreakerFailures uint32        `envconfig:"SOURCE_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"SOURCE_BREAKER_TIMEOUT" default:"30s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Storage: StorageConfig{
			Backend: "badger",
		},
		Ranking: RankingConfig{
			HeadSize:          5,
			BoostWeight:       2.0,
			ShortTermHalfLife: 72 * time.Hour,
			DecayRefresh:      time.Hour,
		},
		Actions: ActionsConfig{
			UsageRecordDelay: time.Second,
		},
		Sources: SourcesConfig{
			FixturePath:     "catalog.yaml",
			RetryRPS:        1,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
	}
}

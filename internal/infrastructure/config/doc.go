// Package config provides 12-factor configuration management for the catalog daemon.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Storage: Persistence backend (memory, badger, sqlite) and data path
//   - Ranking: Head list size and short-term boost
//   - Actions: Usage record delay after a launch
//   - Sources: Fixture path and source supervision
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - STORAGE_BACKEND, STORAGE_PATH
//   - RANKING_HEAD_SIZE, RANKING_BOOST_WEIGHT, RANKING_SHORT_TERM_HALF_LIFE
//   - USAGE_RECORD_DELAY
//   - FIXTURE_PATH, SOURCE_RETRY_RPS, SOURCE_BREAKER_FAILURES, SOURCE_BREAKER_TIMEOUT
package config

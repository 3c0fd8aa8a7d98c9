// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Vinmonopolet VinmonopoletConfig `koanf:"vinmonopolet"`
	Poll         PollConfig         `koanf:"poll"`
	Database     DatabaseConfig     `koanf:"database"`
	Docstore     DocstoreConfig     `koanf:"docstore"`
	Catalog      CatalogConfig      `koanf:"catalog"`
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// VinmonopoletConfig holds settings for the retailer stock API.
//
// Environment Variables:
//   - VINMONOPOLET_BASE_URL: API base URL (default: https://www.vinmonopolet.no)
//   - VINMONOPOLET_TIMEOUT: per-request timeout (default: 30s)
//   - VINMONOPOLET_PAGE_SIZE: stores requested per product (default: 10)
//   - VINMONOPOLET_REQUESTS_PER_SECOND: request pacing (default: 2)
//   - VINMONOPOLET_BREAKER_FAILURES: consecutive failures before the breaker opens (default: 5)
//   - VINMONOPOLET_BREAKER_TIMEOUT: how long the breaker stays open (default: 1m)
type VinmonopoletConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	PageSize          int           `koanf:"page_size"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	BreakerFailures   uint32        `koanf:"breaker_failures"`
	BreakerTimeout    time.Duration `koanf:"breaker_timeout"`
	UserAgent         string        `koanf:"user_agent"`
}

// PollConfig controls the scheduler loop.
//
// Environment Variables:
//   - POLL_ENABLED: run the scheduler loop (default: true)
//   - POLL_INTERVAL: tick period (default: 10s)
//   - POLL_PRODUCTS: comma-separated product codes, processed in order
//   - POLL_LATITUDE / POLL_LONGITUDE: reference point sent with every request
//   - POLL_TIMEZONE: IANA zone the opening hours are evaluated in (default: Europe/Oslo)
//   - POLL_BATCH_TIMEOUT: upper bound on one batch (default: 5m)
type PollConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Interval     time.Duration `koanf:"interval"`
	Products     []string      `koanf:"products"`
	Latitude     float64       `koanf:"latitude"`
	Longitude    float64       `koanf:"longitude"`
	Timezone     string        `koanf:"timezone"`
	BatchTimeout time.Duration `koanf:"batch_timeout"`
}

// DatabaseConfig holds DuckDB settings for the product catalog and the
// transition ledger.
//
// Environment Variables:
//   - DUCKDB_PATH: database file, ":memory:" for a throwaway database (default: /data/stockwatch.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 512MB)
//   - DUCKDB_THREADS: worker threads, 0 lets DuckDB decide (default: 0)
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// DocstoreConfig holds BadgerDB settings for store documents.
//
// Environment Variables:
//   - DOCSTORE_PATH: badger directory (default: /data/stores)
//   - DOCSTORE_IN_MEMORY: keep documents in memory only (default: false)
type DocstoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// CatalogConfig controls the read-through cache in front of the catalog.
//
// Environment Variables:
//   - CATALOG_CACHE_SIZE: max cached products (default: 1024)
//   - CATALOG_CACHE_TTL: entry lifetime (default: 10m)
type CatalogConfig struct {
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// ServerConfig holds the operational HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST (default: 0.0.0.0)
//   - HTTP_PORT (default: 8080)
//   - HTTP_READ_TIMEOUT (default: 15s)
//   - HTTP_WRITE_TIMEOUT (default: 30s)
//   - HTTP_IDLE_TIMEOUT (default: 60s)
//   - HTTP_RATE_LIMIT: requests per minute per client on /api (default: 120)
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	RateLimit    int           `koanf:"rate_limit"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: include file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

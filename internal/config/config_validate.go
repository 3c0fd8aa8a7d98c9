// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateVinmonopolet(); err != nil {
		return err
	}
	if err := c.validatePoll(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateVinmonopolet() error {
	v := c.Vinmonopolet
	u, err := url.Parse(v.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("VINMONOPOLET_BASE_URL must be an absolute URL, got %q", v.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("VINMONOPOLET_BASE_URL must use http or https, got %q", u.Scheme)
	}
	if v.Timeout <= 0 {
		return fmt.Errorf("VINMONOPOLET_TIMEOUT must be positive")
	}
	if v.PageSize < 1 || v.PageSize > 100 {
		return fmt.Errorf("VINMONOPOLET_PAGE_SIZE must be between 1 and 100")
	}
	if v.RequestsPerSecond < 0 {
		return fmt.Errorf("VINMONOPOLET_REQUESTS_PER_SECOND must not be negative")
	}
	if v.BreakerFailures == 0 {
		return fmt.Errorf("VINMONOPOLET_BREAKER_FAILURES must be at least 1")
	}
	if v.BreakerTimeout <= 0 {
		return fmt.Errorf("VINMONOPOLET_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validatePoll() error {
	p := c.Poll
	if p.Interval < time.Second {
		return fmt.Errorf("POLL_INTERVAL must be at least 1s, got %v", p.Interval)
	}
	if p.BatchTimeout <= 0 {
		return fmt.Errorf("POLL_BATCH_TIMEOUT must be positive")
	}
	if p.Enabled && len(p.Products) == 0 {
		return fmt.Errorf("POLL_PRODUCTS must list at least one product when polling is enabled")
	}
	seen := make(map[string]struct{}, len(p.Products))
	for _, id := range p.Products {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("POLL_PRODUCTS contains an empty product code")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("POLL_PRODUCTS contains duplicate product code %q", id)
		}
		seen[id] = struct{}{}
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("POLL_LATITUDE must be between -90 and 90")
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("POLL_LONGITUDE must be between -180 and 180")
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("POLL_TIMEZONE %q is not a valid IANA timezone: %w", p.Timezone, err)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	if !c.Docstore.InMemory && c.Docstore.Path == "" {
		return fmt.Errorf("DOCSTORE_PATH is required unless DOCSTORE_IN_MEMORY=true")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.CacheSize < 0 {
		return fmt.Errorf("CATALOG_CACHE_SIZE must not be negative")
	}
	if c.Catalog.CacheTTL < 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must not be negative")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

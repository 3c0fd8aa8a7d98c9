// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stockwatch/config.yaml",
	"/etc/stockwatch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultProducts are the product codes tracked when none are configured.
var DefaultProducts = []string{
	"3420106",
	"3901",
	"1206002",
	"20001",
	"1334902",
	"1206801",
	"12077202",
}

// Reference point sent with every stock request (Gløshaugen, Trondheim).
const (
	DefaultLatitude  = 63.415570
	DefaultLongitude = 10.404534
)

func defaultConfig() *Config {
	products := make([]string, len(DefaultProducts))
	copy(products, DefaultProducts)

	return &Config{
		Vinmonopolet: VinmonopoletConfig{
			BaseURL:           "https://www.vinmonopolet.no",
			Timeout:           30 * time.Second,
			PageSize:          10,
			RequestsPerSecond: 2,
			BreakerFailures:   5,
			BreakerTimeout:    time.Minute,
			UserAgent:         "stockwatch/1.0",
		},
		Poll: PollConfig{
			Enabled:      true,
			Interval:     10 * time.Second,
			Products:     products,
			Latitude:     DefaultLatitude,
			Longitude:    DefaultLongitude,
			Timezone:     "Europe/Oslo",
			BatchTimeout: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/stockwatch.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Docstore: DocstoreConfig{
			Path:     "/data/stores",
			InMemory: false,
		},
		Catalog: CatalogConfig{
			CacheSize: 1024,
			CacheTTL:  10 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			RateLimit:    120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//
//  1. Defaults: built-in values from defaultConfig
//  2. Config File: optional YAML file (see DefaultConfigPaths)
//  3. Environment Variables: override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// POLL_INTERVAL -> poll.interval, DUCKDB_PATH -> database.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from the environment.
var sliceConfigPaths = []string{
	"poll.products",
}

// processSliceFields converts comma-separated string values to slices.
// YAML lists are left untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

var envMappings = map[string]string{
	"vinmonopolet_base_url":            "vinmonopolet.base_url",
	"vinmonopolet_timeout":             "vinmonopolet.timeout",
	"vinmonopolet_page_size":           "vinmonopolet.page_size",
	"vinmonopolet_requests_per_second": "vinmonopolet.requests_per_second",
	"vinmonopolet_breaker_failures":    "vinmonopolet.breaker_failures",
	"vinmonopolet_breaker_timeout":     "vinmonopolet.breaker_timeout",
	"vinmonopolet_user_agent":          "vinmonopolet.user_agent",

	"poll_enabled":       "poll.enabled",
	"poll_interval":      "poll.interval",
	"poll_products":      "poll.products",
	"poll_latitude":      "poll.latitude",
	"poll_longitude":     "poll.longitude",
	"poll_timezone":      "poll.timezone",
	"poll_batch_timeout": "poll.batch_timeout",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"docstore_path":      "docstore.path",
	"docstore_in_memory": "docstore.in_memory",

	"catalog_cache_size": "catalog.cache_size",
	"catalog_cache_ttl":  "catalog.cache_ttl",

	"http_host":          "server.host",
	"http_port":          "server.port",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",
	"http_idle_timeout":  "server.idle_timeout",
	"http_rate_limit":    "server.rate_limit",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package models

import (
	"time"
)

// APIResponse is the envelope returned by every operational HTTP endpoint.
//
// Status is "success" or "error". Error is populated only for "error".
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2024-01-08T12:00:00Z"},
//	  "error": {"code": "SYNC_IN_PROGRESS", "message": "A sync batch is already running"}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error code plus a static message.
// Internal error text is never copied into it.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthStatus is the payload of GET /api/v1/health.
type HealthStatus struct {
	Status             string     `json:"status"`
	Version            string     `json:"version"`
	DatabaseConnected  bool       `json:"database_connected"`
	DocstoreConnected  bool       `json:"docstore_connected"`
	PollingEnabled     bool       `json:"polling_enabled"`
	StoreOpen          bool       `json:"store_open"`
	CircuitBreaker     string     `json:"circuit_breaker,omitempty"`
	LastSyncTime       *time.Time `json:"last_sync,omitempty"`
	Uptime             float64    `json:"uptime_seconds"`
	TrackedProducts    int        `json:"tracked_products"`
	KnownStores        int        `json:"known_stores"`
	CatalogProducts    int64      `json:"catalog_products"`
	CatalogCacheHits   int64      `json:"catalog_cache_hits"`
	CatalogCacheMisses int64      `json:"catalog_cache_misses"`
}

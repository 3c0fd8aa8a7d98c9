// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scheduler loop
	PollBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockwatch_poll_batch_duration_seconds",
			Help:    "Duration of one poll batch over all configured products",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	PollBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_poll_batches_total",
			Help: "Total number of poll batches by outcome",
		},
		[]string{"outcome"}, // "completed", "partial", "canceled", "session_error"
	)

	PollTicksSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_poll_ticks_skipped_total",
			Help: "Ticks that did not start a batch",
		},
		[]string{"reason"}, // "busy", "closed"
	)

	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stockwatch_poll_last_success_timestamp",
			Help: "Unix timestamp of the last batch that finished without errors",
		},
	)

	PollInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stockwatch_poll_in_progress",
			Help: "1 while a batch is running",
		},
	)

	// Retailer API
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockwatch_fetch_duration_seconds",
			Help:    "Latency of stock requests to the retailer API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_fetch_total",
			Help: "Stock requests by outcome",
		},
		[]string{"outcome"}, // "success", "http_error", "network_error", "decode_error", "rejected"
	)

	FetchEntriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_fetch_entries_dropped_total",
			Help: "Store entries dropped, by failing field or \"decode\" for wrong JSON types",
		},
		[]string{"field"},
	)

	// Reconciler and diff engine
	StoresCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stockwatch_stores_created_total",
			Help: "Stores created on first sight",
		},
	)

	ObservationsAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stockwatch_observations_appended_total",
			Help: "Stock observations appended after a level change",
		},
	)

	ObservationsUnchanged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stockwatch_observations_unchanged_total",
			Help: "Observations discarded because the level did not change",
		},
	)

	UnknownProducts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_unknown_products_total",
			Help: "Observations skipped because the product is not in the catalog",
		},
		[]string{"product_id"},
	)

	PersistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_persistence_errors_total",
			Help: "Failed writes by operation",
		},
		[]string{"operation"}, // "create_store", "save_store", "record_transition"
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stockwatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Catalog cache
	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stockwatch_catalog_cache_hits_total",
			Help: "Product lookups served from the cache",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stockwatch_catalog_cache_misses_total",
			Help: "Product lookups that went to DuckDB",
		},
	)

	// Storage
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockwatch_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	DocstoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockwatch_docstore_operation_duration_seconds",
			Help:    "Duration of BadgerDB document operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DocstoreActiveHandles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stockwatch_docstore_active_handles",
			Help: "Persistence handles currently acquired",
		},
	)

	// Operational HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockwatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockwatch_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordBatch records the outcome and duration of one poll batch.
func RecordBatch(outcome string, duration time.Duration) {
	PollBatchDuration.Observe(duration.Seconds())
	PollBatchesTotal.WithLabelValues(outcome).Inc()
	if outcome == "completed" {
		PollLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordFetch records one retailer API request.
func RecordFetch(outcome string, duration time.Duration) {
	FetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	FetchTotal.WithLabelValues(outcome).Inc()
}

// RecordDBQuery records a DuckDB query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordDocstoreOp records a BadgerDB operation.
func RecordDocstoreOp(operation string, duration time.Duration) {
	DocstoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAPIRequest records an operational HTTP request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package metrics defines the Prometheus collectors exported on /metrics.

All collectors are registered on the default registry through promauto at
package init, so importing the package is enough to expose them.

Groups:

  - stockwatch_poll_*: scheduler batches, skipped ticks, last success
  - stockwatch_fetch_*: retailer API latency, outcomes, dropped entries
  - stockwatch_observations_*, stockwatch_stores_created_total: ingestion results
  - stockwatch_unknown_products_total, stockwatch_persistence_errors_total
  - stockwatch_circuit_breaker_*: breaker state and transitions
  - stockwatch_catalog_cache_*: catalog cache efficiency
  - stockwatch_duckdb_*, stockwatch_docstore_*: storage latency
  - stockwatch_api_*: operational HTTP endpoints
*/
package metrics

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

// Command server runs the Vinmonopolet stock poller.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Logging: zerolog, JSON or console
//  3. DuckDB: product catalog and stock transition ledger
//  4. BadgerDB: store documents with per-product observation history
//  5. Operating hours gate in the configured timezone (default Europe/Oslo)
//  6. Retailer client behind a rate limiter and a circuit breaker
//  7. Sync manager: one batch per tick over the configured product list
//  8. Supervisor tree: data, ingest and api layers (suture v4)
//
// # Configuration
//
// Frequently used environment variables:
//   - POLL_PRODUCTS: comma-separated product codes
//   - POLL_INTERVAL: tick interval (default 10s)
//   - POLL_TIMEZONE: opening-hours timezone (default Europe/Oslo)
//   - DUCKDB_PATH, DOCSTORE_PATH: storage locations
//   - HTTP_PORT: operational API port (default 8080)
//   - LOG_LEVEL, LOG_FORMAT
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the
// HTTP server, waits for the running batch to finish or cancel, and then
// the storage layers are closed.
package main

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package services adapts long-running components to suture.Service.

Adapters:

  - SyncService: wraps a Start/Stop manager (the stock poll loop)
  - HTTPServerService: wraps *http.Server with graceful shutdown
  - CheckpointService: periodically flushes the DuckDB WAL

Each adapter blocks in Serve until its context is canceled and reports a
stable name through String for supervisor logs.
*/
package services

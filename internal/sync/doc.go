// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package sync polls the Vinmonopolet stock API and records stock level
changes per store and product.

Key Components:

  - VinmonopoletClient: HTTP client for the per-product stock endpoint,
    paced by a token bucket, validating every store entry
  - CircuitBreakerSource: gobreaker wrapper that stops calling the API
    after repeated retryable failures
  - Reconciler: find-or-create of store documents keyed by pointOfServiceId
  - DiffEngine: appends an observation only when the level changed and
    mirrors it into the transition ledger
  - Manager: the poll loop, gated by operating hours, one batch at a time

Batch Flow:

 1. Tick: skipped when a batch is running or the stores are closed
 2. Acquire: one store session per batch, released on every exit path
 3. Fetch: products are processed sequentially in configured order
 4. Reconcile: each store entry resolves to a persisted store document
 5. Diff: unchanged levels are dropped, changes are appended and saved

Failure Isolation:

A failed fetch skips that product. A failed write skips that store. An
unknown product is logged once per batch. None of these stop the batch.

Usage Example:

	client := sync.NewVinmonopoletClient(&cfg.Vinmonopolet)
	source := sync.NewCircuitBreakerSource(client, &cfg.Vinmonopolet)
	manager := sync.NewManager(&cfg.Poll, sync.Dependencies{
	    Source:   source,
	    Sessions: sync.DocstoreSessions(docs),
	    Catalog:  catalog,
	    Ledger:   db,
	    Gate:     hours,
	})
	if err := manager.Start(ctx); err != nil {
	    return err
	}
	defer manager.Stop()
*/
package sync

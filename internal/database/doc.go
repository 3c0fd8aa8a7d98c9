// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package database stores the product catalog and the stock transition ledger
in DuckDB.

Tables:

  - products: one row per catalog product, written by the external importer
    through PutProduct and read by the ingestion pipeline through
    FindProductByCode.
  - stock_transitions: one row per appended stock observation, with the
    previous and new level, queried newest first by RecentTransitions.

Exact decimal values (prices, volumes) are stored as their canonical string
form and parsed back with shopspring/decimal.

CachedCatalog puts an LRU+TTL cache in front of FindProductByCode since the
same few product codes are resolved on every poll batch.
*/
package database

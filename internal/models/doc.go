// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package models defines the data structures shared across Stockwatch.

Key Components:

  - Product: catalog entry keyed by the retailer's product code (read-only to ingestion)
  - Store: physical store keyed by the retailer's pointOfServiceId, owning its stock history
  - StockRecord: per-store, per-product append-only history of stock levels
  - StockObservation: one immutable (timestamp, level) point
  - StockTransition: ledger row written whenever a new observation is appended
  - StoreObservation: one store + stock level pair parsed from the retailer API

Ownership:

A Store exclusively owns its StockRecords, and a StockRecord exclusively owns
its StockObservation sequence. Products are referenced by code only.

Wire models for the Vinmonopolet API live in the vinmonopolet subpackage.
*/
package models

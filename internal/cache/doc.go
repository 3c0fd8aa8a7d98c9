// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

// Package cache provides a generic thread-safe LRU cache with TTL expiry.
//
// It backs the product catalog read path: the same handful of product codes
// is looked up on every poll batch, and the catalog only changes when the
// external importer runs.
package cache

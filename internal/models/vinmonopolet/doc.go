// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

// Package vinmonopolet holds the wire types of the Vinmonopolet product stock
// API (vmpws/v2). Field names follow the JSON the API returns.
package vinmonopolet

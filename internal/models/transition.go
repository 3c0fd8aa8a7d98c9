// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package models

import (
	"time"
)

// StockTransition records one detected change of stock level.
//
// A transition is written every time the diff engine appends a
// StockObservation. OldLevel is nil for the first observation of a
// (store, product) pair.
type StockTransition struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"storeId"`
	ProductID  string    `json:"productId"`
	OldLevel   *int      `json:"oldLevel"`
	NewLevel   int       `json:"newLevel"`
	ObservedAt time.Time `json:"observedAt"`
}

// Delta returns NewLevel - OldLevel, treating a missing old level as zero.
func (t *StockTransition) Delta() int {
	if t.OldLevel == nil {
		return t.NewLevel
	}
	return t.NewLevel - *t.OldLevel
}

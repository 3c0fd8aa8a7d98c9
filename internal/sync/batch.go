// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"time"
)

// Batch outcomes, also used as the metrics label.
const (
	OutcomeCompleted = "completed"
	OutcomeCanceled  = "canceled"
	OutcomeFailed    = "failed"
)

// TickOutcome describes what a poll tick did.
type TickOutcome int

const (
	// TickStarted means a batch ran.
	TickStarted TickOutcome = iota
	// TickSkippedBusy means a batch was already running.
	TickSkippedBusy
	// TickSkippedClosed means the stores were closed.
	TickSkippedClosed
)

func (o TickOutcome) String() string {
	switch o {
	case TickStarted:
		return "started"
	case TickSkippedBusy:
		return "busy"
	case TickSkippedClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ProductResult summarizes one product within a batch.
type ProductResult struct {
	ProductID         string `json:"productId"`
	StoresSeen        int    `json:"storesSeen"`
	StoresCreated     int    `json:"storesCreated"`
	StoresSkipped     int    `json:"storesSkipped"`
	Appended          int    `json:"appended"`
	Unchanged         int    `json:"unchanged"`
	PersistenceErrors int    `json:"persistenceErrors"`
	FetchFailed       bool   `json:"fetchFailed"`
	UnknownProduct    bool   `json:"unknownProduct"`
	Error             string `json:"error,omitempty"`
}

// BatchResult summarizes one pass over the configured products.
type BatchResult struct {
	BatchID           string          `json:"batchId"`
	Outcome           string          `json:"outcome"`
	Forced            bool            `json:"forced"`
	StartedAt         time.Time       `json:"startedAt"`
	FinishedAt        time.Time       `json:"finishedAt"`
	Products          []ProductResult `json:"products"`
	Appended          int             `json:"appended"`
	StoresCreated     int             `json:"storesCreated"`
	StoresSkipped     int             `json:"storesSkipped"`
	FetchFailures     int             `json:"fetchFailures"`
	UnknownProducts   int             `json:"unknownProducts"`
	PersistenceErrors int             `json:"persistenceErrors"`
	Error             string          `json:"error,omitempty"`
}

// Duration is the wall time the batch took.
func (r *BatchResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *BatchResult) add(p ProductResult) {
	r.Products = append(r.Products, p)
	r.Appended += p.Appended
	r.StoresCreated += p.StoresCreated
	r.StoresSkipped += p.StoresSkipped
	r.PersistenceErrors += p.PersistenceErrors
	if p.FetchFailed {
		r.FetchFailures++
	}
	if p.UnknownProduct {
		r.UnknownProducts++
	}
}

func (r *BatchResult) clone() *BatchResult {
	c := *r
	c.Products = append([]ProductResult(nil), r.Products...)
	return &c
}

// ManagerStats is a point-in-time snapshot of the poll loop.
type ManagerStats struct {
	Running            bool      `json:"running"`
	LastSync           time.Time `json:"lastSync"`
	TicksStarted       int64     `json:"ticksStarted"`
	TicksSkippedBusy   int64     `json:"ticksSkippedBusy"`
	TicksSkippedClosed int64     `json:"ticksSkippedClosed"`
	Batches            int64     `json:"batches"`
	Products           []string  `json:"products"`
}

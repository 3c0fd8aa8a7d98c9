// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"errors"
	"fmt"
)

var (
	// ErrBatchInProgress is returned by TriggerSync when a batch is already running.
	ErrBatchInProgress = errors.New("sync: batch already in progress")

	// ErrGateClosed is returned by TriggerSync when the stores are closed and
	// the caller did not force the batch.
	ErrGateClosed = errors.New("sync: outside operating hours")

	// ErrManagerRunning is returned by Start when the poll loop is already running.
	ErrManagerRunning = errors.New("sync: manager already running")

	// ErrManagerStopped is returned by Stop when the poll loop is not running.
	ErrManagerStopped = errors.New("sync: manager is not running")
)

// FetchError reports a failed stock request for one product. StatusCode is
// zero when no HTTP response was received.
type FetchError struct {
	ProductID  string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch stock for product %s: HTTP %d: %v", e.ProductID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch stock for product %s: %v", e.ProductID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UnknownProductError is returned when a product id is missing from the catalog.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("product %s not found in catalog", e.ProductID)
}

// PersistenceError wraps a failed read or write against the store documents
// or the catalog.
type PersistenceError struct {
	Op      string
	StoreID string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.StoreID != "" {
		return fmt.Sprintf("%s (store %s): %v", e.Op, e.StoreID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

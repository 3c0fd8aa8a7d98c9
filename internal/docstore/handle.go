// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/klokstudent/stockwatch/internal/metrics"
	"github.com/klokstudent/stockwatch/internal/models"
)

// Handle is a scoped view of the store. It is safe for use by one goroutine
// at a time and must be released exactly once; extra Release calls are
// ignored.
type Handle struct {
	store    *Store
	released atomic.Bool
}

// Release returns the handle to the store.
func (h *Handle) Release() {
	if h.released.CompareAndSwap(false, true) {
		metrics.DocstoreActiveHandles.Dec()
		h.store.handles.Done()
	}
}

func (h *Handle) check(ctx context.Context) error {
	if h.released.Load() {
		return ErrReleased
	}
	return ctx.Err()
}

// FindStoreByExternalID loads the store with the given pointOfServiceId.
// Returns ErrNotFound when absent.
func (h *Handle) FindStoreByExternalID(ctx context.Context, id string) (*models.Store, error) {
	if err := h.check(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.RecordDocstoreOp("find_store", time.Since(start)) }()

	var store *models.Store
	err := h.store.db.View(func(txn *badger.Txn) error {
		var err error
		store, err = getStore(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// SaveStore writes the whole document, replacing any previous version.
func (h *Handle) SaveStore(ctx context.Context, store *models.Store) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	if store.PointOfServiceID == "" {
		return fmt.Errorf("save store: empty pointOfServiceId")
	}
	start := time.Now()
	defer func() { metrics.RecordDocstoreOp("save_store", time.Since(start)) }()

	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	return h.store.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(storeKey(store.PointOfServiceID), data); err != nil {
			return fmt.Errorf("set store: %w", err)
		}
		return nil
	})
}

// CreateStoreIfAbsent stores candidate unless a document with the same id
// already exists. It returns the stored document and whether it was created.
// The read and the write happen in one transaction; a concurrent writer
// causes a badger conflict, which is retried once.
func (h *Handle) CreateStoreIfAbsent(ctx context.Context, candidate *models.Store) (*models.Store, bool, error) {
	if err := h.check(ctx); err != nil {
		return nil, false, err
	}
	if candidate.PointOfServiceID == "" {
		return nil, false, fmt.Errorf("create store: empty pointOfServiceId")
	}
	start := time.Now()
	defer func() { metrics.RecordDocstoreOp("create_store", time.Since(start)) }()

	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, false, fmt.Errorf("marshal store: %w", err)
	}

	var (
		result  *models.Store
		created bool
	)
	attempt := func(txn *badger.Txn) error {
		existing, err := getStore(txn, candidate.PointOfServiceID)
		switch {
		case err == nil:
			result, created = existing, false
			return nil
		case !errors.Is(err, ErrNotFound):
			return err
		}
		if err := txn.Set(storeKey(candidate.PointOfServiceID), data); err != nil {
			return fmt.Errorf("set store: %w", err)
		}
		result, created = candidate, true
		return nil
	}

	err = h.store.db.Update(attempt)
	if errors.Is(err, badger.ErrConflict) {
		err = h.store.db.Update(attempt)
	}
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

func getStore(txn *badger.Txn, id string) (*models.Store, error) {
	item, err := txn.Get(storeKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}

	var store models.Store
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &store)
	}); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", id, err)
	}
	return &store, nil
}

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"context"
	"errors"
	"time"

	"github.com/klokstudent/stockwatch/internal/database"
	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/metrics"
	"github.com/klokstudent/stockwatch/internal/models"
)

// DiffEngine appends an observation to a store's history only when the
// stock level differs from the last recorded one.
//
// The store document is the source of truth. Each append is mirrored into
// the transition ledger, but a ledger failure does not undo the append.
type DiffEngine struct {
	catalog CatalogReader
	repo    StoreRepository
	ledger  TransitionRecorder
	now     func() time.Time
}

// NewDiffEngine creates a DiffEngine. ledger may be nil; now defaults to
// time.Now.
func NewDiffEngine(catalog CatalogReader, repo StoreRepository, ledger TransitionRecorder, now func() time.Time) *DiffEngine {
	if now == nil {
		now = time.Now
	}
	return &DiffEngine{catalog: catalog, repo: repo, ledger: ledger, now: now}
}

// ApplyObservation records level for productID at store.
//
// It returns the appended observation, or nil when the level is unchanged.
// An unknown product yields *UnknownProductError and leaves the store
// untouched. When the write fails the in-memory store is rolled back and a
// *PersistenceError is returned.
func (d *DiffEngine) ApplyObservation(ctx context.Context, store *models.Store, productID string, level int) (*models.StockObservation, error) {
	if _, err := d.catalog.FindProductByCode(ctx, productID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &UnknownProductError{ProductID: productID}
		}
		metrics.PersistenceErrors.WithLabelValues("catalog_lookup").Inc()
		return nil, &PersistenceError{Op: "catalog lookup", Err: err}
	}

	rec, created := store.EnsureRecord(productID)
	last, hasLast := rec.Last()
	if hasLast && last.Level == level {
		metrics.ObservationsUnchanged.Inc()
		return nil, nil
	}

	ts := d.now().UTC()
	if hasLast && ts.Before(last.Timestamp) {
		ts = last.Timestamp
	}
	obs := models.StockObservation{Timestamp: ts, Level: level}
	rec.Append(obs)

	if err := d.repo.SaveStore(ctx, store); err != nil {
		store.RollbackAppend(productID, created)
		metrics.PersistenceErrors.WithLabelValues("save_store").Inc()
		return nil, &PersistenceError{Op: "save store", StoreID: store.PointOfServiceID, Err: err}
	}
	metrics.ObservationsAppended.Inc()

	d.recordTransition(ctx, store.PointOfServiceID, productID, last, hasLast, obs)

	return &obs, nil
}

func (d *DiffEngine) recordTransition(ctx context.Context, storeID, productID string, last models.StockObservation, hasLast bool, obs models.StockObservation) {
	if d.ledger == nil {
		return
	}
	t := &models.StockTransition{
		StoreID:    storeID,
		ProductID:  productID,
		NewLevel:   obs.Level,
		ObservedAt: obs.Timestamp,
	}
	if hasLast {
		old := last.Level
		t.OldLevel = &old
	}
	if err := d.ledger.RecordTransition(ctx, t); err != nil {
		metrics.PersistenceErrors.WithLabelValues("record_transition").Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("store_id", storeID).
			Str("product_id", productID).
			Msg("Failed to record stock transition")
	}
}

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"context"
	"errors"
	"time"

	"github.com/klokstudent/stockwatch/internal/docstore"
	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/metrics"
	"github.com/klokstudent/stockwatch/internal/models"
)

// Reconciler maps store observations onto persisted store documents,
// creating a document the first time a store is seen. Existing documents
// are returned as stored; their metadata is never refreshed.
type Reconciler struct {
	repo StoreRepository
	now  func() time.Time
}

// NewReconciler creates a Reconciler over repo. A nil clock means time.Now.
func NewReconciler(repo StoreRepository, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{repo: repo, now: now}
}

// Resolve returns the store document for obs, creating it with an empty
// stock history if it does not exist yet.
func (r *Reconciler) Resolve(ctx context.Context, obs models.StoreObservation) (*models.Store, error) {
	store, _, err := r.resolve(ctx, obs)
	return store, err
}

func (r *Reconciler) resolve(ctx context.Context, obs models.StoreObservation) (*models.Store, bool, error) {
	id := obs.Store.PointOfServiceID

	existing, err := r.repo.FindStoreByExternalID(ctx, id)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		metrics.PersistenceErrors.WithLabelValues("find_store").Inc()
		return nil, false, &PersistenceError{Op: "find store", StoreID: id, Err: err}
	}

	candidate := models.NewStore(obs.Store, r.now().UTC())
	store, created, err := r.repo.CreateStoreIfAbsent(ctx, candidate)
	if err != nil {
		metrics.PersistenceErrors.WithLabelValues("create_store").Inc()
		return nil, false, &PersistenceError{Op: "create store", StoreID: id, Err: err}
	}
	if created {
		metrics.StoresCreated.Inc()
		logging.Ctx(ctx).Info().
			Str("store_id", id).
			Str("display_name", store.DisplayName).
			Msg("Registered new store")
	}
	return store, created, nil
}

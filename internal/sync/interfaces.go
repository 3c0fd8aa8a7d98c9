// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"context"
	"time"

	"github.com/klokstudent/stockwatch/internal/docstore"
	"github.com/klokstudent/stockwatch/internal/models"
)

// StockSource returns the stores stocking a product near a reference point.
type StockSource interface {
	FetchStock(ctx context.Context, productID string, ref models.GeoPoint) ([]models.StoreObservation, error)
}

// StoreRepository reads and writes store documents.
// FindStoreByExternalID returns docstore.ErrNotFound when the store is unknown.
type StoreRepository interface {
	FindStoreByExternalID(ctx context.Context, id string) (*models.Store, error)
	CreateStoreIfAbsent(ctx context.Context, candidate *models.Store) (*models.Store, bool, error)
	SaveStore(ctx context.Context, store *models.Store) error
}

// StoreSession is a StoreRepository scoped to one batch.
type StoreSession interface {
	StoreRepository
	Release()
}

// SessionProvider hands out store sessions.
type SessionProvider interface {
	Acquire(ctx context.Context) (StoreSession, error)
}

// SessionProviderFunc adapts a function to SessionProvider.
type SessionProviderFunc func(ctx context.Context) (StoreSession, error)

// Acquire calls f(ctx).
func (f SessionProviderFunc) Acquire(ctx context.Context) (StoreSession, error) {
	return f(ctx)
}

// DocstoreSessions returns a SessionProvider backed by a badger document store.
func DocstoreSessions(store *docstore.Store) SessionProvider {
	return SessionProviderFunc(func(ctx context.Context) (StoreSession, error) {
		h, err := store.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return h, nil
	})
}

// CatalogReader looks up products. It returns database.ErrNotFound for
// unknown codes.
type CatalogReader interface {
	FindProductByCode(ctx context.Context, code string) (*models.Product, error)
}

// TransitionRecorder appends to the stock transition ledger.
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, t *models.StockTransition) error
}

// Gate reports whether polling is allowed at a given instant.
type Gate interface {
	IsOpen(now time.Time) bool
}

// GateFunc adapts a function to Gate.
type GateFunc func(now time.Time) bool

// IsOpen calls f(now).
func (f GateFunc) IsOpen(now time.Time) bool {
	return f(now)
}

// OpeningSchedule is implemented by gates that know when they open next.
type OpeningSchedule interface {
	NextOpening(now time.Time) (time.Time, bool)
}

// NextOpening asks gate for its next opening instant. ok is false when the
// gate does not implement OpeningSchedule or never opens.
func NextOpening(gate Gate, now time.Time) (time.Time, bool) {
	s, ok := gate.(OpeningSchedule)
	if !ok {
		return time.Time{}, false
	}
	return s.NextOpening(now)
}

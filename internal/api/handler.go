// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package api

import (
	"context"
	"time"

	"github.com/klokstudent/stockwatch/internal/models"
	"github.com/klokstudent/stockwatch/internal/sync"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// SyncController is the subset of sync.Manager the handlers use.
type SyncController interface {
	TriggerSync(ctx context.Context, force bool) (*sync.BatchResult, error)
	LastResult() *sync.BatchResult
	LastSyncTime() time.Time
	Stats() sync.ManagerStats
}

// Pinger reports whether a storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TransitionLister returns recorded stock transitions. RecentTransitions
// is newest first, TransitionsForPair in observed order.
type TransitionLister interface {
	RecentTransitions(ctx context.Context, limit, offset int) ([]models.StockTransition, error)
	TransitionsForPair(ctx context.Context, storeID, productID string) ([]models.StockTransition, error)
}

// StoreCounter counts known stores.
type StoreCounter interface {
	CountStores(ctx context.Context) (int, error)
}

// ProductCounter counts catalog products.
type ProductCounter interface {
	CountProducts(ctx context.Context) (int64, error)
}

// CacheStatter exposes catalog cache counters.
type CacheStatter interface {
	Stats() (hits, misses int64, size int)
}

// BreakerStater reports the retailer circuit breaker state.
type BreakerStater interface {
	State() string
}

// Dependencies wires the handlers to the running pipeline.
// Only Sync is required; nil optional fields are reported as absent.
type Dependencies struct {
	Sync            SyncController
	Database        Pinger
	Docstore        Pinger
	Stores          StoreCounter
	Products        ProductCounter
	Transitions     TransitionLister
	Catalog         CacheStatter
	Breaker         BreakerStater
	Gate            sync.Gate
	TrackedProducts int
	PollingEnabled  bool
}

// Handler serves the operational endpoints.
type Handler struct {
	deps      Dependencies
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		deps:      deps,
		startTime: time.Now(),
		now:       time.Now,
	}
}

func (h *Handler) storeOpen() bool {
	if h.deps.Gate == nil {
		return true
	}
	return h.deps.Gate.IsOpen(h.now())
}

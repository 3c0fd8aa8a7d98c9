// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/models"
)

const pingTimeout = 2 * time.Second

func ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx) == nil
}

// Health returns overall status. It always answers 200; degraded storage
// is reported in the payload.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbConnected := ping(ctx, h.deps.Database)
	docsConnected := ping(ctx, h.deps.Docstore)

	status := "healthy"
	if !dbConnected || !docsConnected {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		DocstoreConnected: docsConnected,
		PollingEnabled:    h.deps.PollingEnabled,
		StoreOpen:         h.storeOpen(),
		Uptime:            time.Since(h.startTime).Seconds(),
		TrackedProducts:   h.deps.TrackedProducts,
	}

	if h.deps.Breaker != nil {
		health.CircuitBreaker = h.deps.Breaker.State()
	}
	if h.deps.Sync != nil {
		if last := h.deps.Sync.LastSyncTime(); !last.IsZero() {
			health.LastSyncTime = &last
		}
	}
	if h.deps.Stores != nil {
		n, err := h.deps.Stores.CountStores(ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to count stores for health report")
		} else {
			health.KnownStores = n
		}
	}
	if h.deps.Products != nil {
		n, err := h.deps.Products.CountProducts(ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to count catalog products for health report")
		} else {
			health.CatalogProducts = n
		}
	}
	if h.deps.Catalog != nil {
		health.CatalogCacheHits, health.CatalogCacheMisses, _ = h.deps.Catalog.Stats()
	}

	respondSuccess(w, r, http.StatusOK, health)
}

// HealthLive returns 200 while the process is alive.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 only when both storage backends answer a ping,
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dbConnected := ping(ctx, h.deps.Database)
	docsConnected := ping(ctx, h.deps.Docstore)
	ready := dbConnected && docsConnected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]any{
			"database_connected": dbConnected,
			"docstore_connected": docsConnected,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: newMetadata(r),
	})
}

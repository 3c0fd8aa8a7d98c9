// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/models"
	"github.com/klokstudent/stockwatch/internal/sync"
)

const (
	defaultTransitionLimit = 20
	maxTransitionLimit     = 200
)

// SyncStatus is the payload of GET /api/v1/sync/status.
type SyncStatus struct {
	StoreOpen         bool                     `json:"storeOpen"`
	NextOpening       *time.Time               `json:"nextOpening,omitempty"`
	CircuitBreaker    string                   `json:"circuitBreaker,omitempty"`
	Stats             sync.ManagerStats        `json:"stats"`
	LastResult        *sync.BatchResult        `json:"lastResult"`
	RecentTransitions []models.StockTransition `json:"recentTransitions"`
}

// SyncStatus reports the last batch result, poll loop counters and the
// newest recorded transitions. ?transitions=N changes how many are listed;
// ?store=S&product=P narrows them to one pair.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.deps.Sync == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeSyncUnavailable, "Sync manager is not configured", nil)
		return
	}

	limit := defaultTransitionLimit
	if raw := r.URL.Query().Get("transitions"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxTransitionLimit {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "transitions must be an integer between 0 and 200", nil)
			return
		}
		limit = n
	}

	storeID := r.URL.Query().Get("store")
	productID := r.URL.Query().Get("product")
	if (storeID == "") != (productID == "") {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "store and product must be given together", nil)
		return
	}

	status := SyncStatus{
		StoreOpen:         h.storeOpen(),
		Stats:             h.deps.Sync.Stats(),
		LastResult:        h.deps.Sync.LastResult(),
		RecentTransitions: []models.StockTransition{},
	}
	if h.deps.Breaker != nil {
		status.CircuitBreaker = h.deps.Breaker.State()
	}
	if !status.StoreOpen {
		if next, ok := sync.NextOpening(h.deps.Gate, h.now()); ok {
			status.NextOpening = &next
		}
	}

	if h.deps.Transitions != nil && limit > 0 {
		var (
			transitions []models.StockTransition
			err         error
		)
		if storeID != "" {
			transitions, err = h.pairTransitions(r.Context(), storeID, productID, limit)
		} else {
			transitions, err = h.deps.Transitions.RecentTransitions(r.Context(), limit, 0)
		}
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to load recent transitions", err)
			return
		}
		if transitions != nil {
			status.RecentTransitions = transitions
		}
	}

	respondSuccess(w, r, http.StatusOK, status)
}

// pairTransitions returns the newest limit transitions of one pair, newest
// first.
func (h *Handler) pairTransitions(ctx context.Context, storeID, productID string, limit int) ([]models.StockTransition, error) {
	transitions, err := h.deps.Transitions.TransitionsForPair(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	if len(transitions) > limit {
		transitions = transitions[len(transitions)-limit:]
	}
	slices.Reverse(transitions)
	return transitions, nil
}

// SyncTrigger runs one batch synchronously and returns its result.
// It answers 409 while another batch runs and 503 when the stores are
// closed, unless ?force=true.
func (h *Handler) SyncTrigger(w http.ResponseWriter, r *http.Request) {
	if h.deps.Sync == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeSyncUnavailable, "Sync manager is not configured", nil)
		return
	}

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "force must be a boolean", nil)
			return
		}
		force = parsed
	}

	// The batch outlives a disconnecting client.
	ctx := context.WithoutCancel(r.Context())

	logging.Ctx(ctx).Info().Bool("force", force).Msg("Manual sync requested")

	result, err := h.deps.Sync.TriggerSync(ctx, force)
	switch {
	case errors.Is(err, sync.ErrBatchInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeSyncInProgress, "A sync batch is already running", nil)
		return
	case errors.Is(err, sync.ErrGateClosed):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeStoreClosed, "Stores are closed; retry with force=true to poll anyway", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Sync failed", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, result)
}

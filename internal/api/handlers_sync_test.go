// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/klokstudent/stockwatch/internal/models"
	"github.com/klokstudent/stockwatch/internal/schedule"
	"github.com/klokstudent/stockwatch/internal/sync"
)

func TestSyncStatus(t *testing.T) {
	t.Parallel()

	old := 3
	transitions := &fakeTransitions{items: []models.StockTransition{
		{ID: "t2", StoreID: "122", ProductID: "3901", OldLevel: &old, NewLevel: 5},
		{ID: "t1", StoreID: "122", ProductID: "3901", NewLevel: 3},
	}}
	deps := healthyDeps()
	deps.Sync = &fakeSync{
		lastResult: &sync.BatchResult{BatchID: "b-1", Outcome: "completed", Appended: 2},
		stats:      sync.ManagerStats{Running: true, Batches: 4, Products: []string{"3901"}},
	}
	deps.Transitions = transitions
	deps.Breaker = fakeBreaker("half-open")

	rec, env := do(t, newTestRouter(deps, 0), http.MethodGet, "/api/v1/sync/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if transitions.lastLimit != defaultTransitionLimit {
		t.Errorf("transition limit = %d, want %d", transitions.lastLimit, defaultTransitionLimit)
	}

	var status SyncStatus
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.LastResult == nil || status.LastResult.BatchID != "b-1" {
		t.Errorf("last result = %+v", status.LastResult)
	}
	if !status.Stats.Running || status.Stats.Batches != 4 {
		t.Errorf("stats = %+v", status.Stats)
	}
	if status.CircuitBreaker != "half-open" {
		t.Errorf("breaker = %q", status.CircuitBreaker)
	}
	if len(status.RecentTransitions) != 2 || status.RecentTransitions[0].ID != "t2" {
		t.Errorf("transitions = %+v", status.RecentTransitions)
	}
	if !status.StoreOpen {
		t.Error("store_open = false with no gate configured")
	}
}

func TestSyncStatus_TransitionsParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query     string
		wantCode  int
		wantLimit int
	}{
		{"?transitions=5", http.StatusOK, 5},
		{"?transitions=0", http.StatusOK, 0},
		{"?transitions=-1", http.StatusBadRequest, 0},
		{"?transitions=201", http.StatusBadRequest, 0},
		{"?transitions=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			transitions := &fakeTransitions{}
			deps := healthyDeps()
			deps.Transitions = transitions

			rec, env := do(t, newTestRouter(deps, 0), http.MethodGet, "/api/v1/sync/status"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusBadRequest && (env.Error == nil || env.Error.Code != ErrCodeBadRequest) {
				t.Errorf("error = %+v, want %s", env.Error, ErrCodeBadRequest)
			}
			if transitions.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", transitions.lastLimit, tt.wantLimit)
			}
		})
	}
}

func TestSyncStatus_PairFilter(t *testing.T) {
	t.Parallel()

	old := 0
	pair := []models.StockTransition{
		{ID: "t1", StoreID: "122", ProductID: "3901", NewLevel: 0},
		{ID: "t2", StoreID: "122", ProductID: "3901", OldLevel: &old, NewLevel: 4},
		{ID: "t3", StoreID: "122", ProductID: "3901", NewLevel: 2},
	}

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantIDs  []string
	}{
		{"newest first", "?store=122&product=3901", http.StatusOK, []string{"t3", "t2", "t1"}},
		{"limit keeps newest", "?store=122&product=3901&transitions=2", http.StatusOK, []string{"t3", "t2"}},
		{"store without product", "?store=122", http.StatusBadRequest, nil},
		{"product without store", "?product=3901", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			transitions := &fakeTransitions{pair: pair}
			deps := healthyDeps()
			deps.Transitions = transitions

			rec, env := do(t, newTestRouter(deps, 0), http.MethodGet, "/api/v1/sync/status"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				if env.Error == nil || env.Error.Code != ErrCodeBadRequest {
					t.Errorf("error = %+v, want %s", env.Error, ErrCodeBadRequest)
				}
				return
			}
			if transitions.lastPair != [2]string{"122", "3901"} {
				t.Errorf("pair = %v", transitions.lastPair)
			}
			if transitions.lastLimit != 0 {
				t.Errorf("RecentTransitions called with limit %d for a pair query", transitions.lastLimit)
			}

			var status SyncStatus
			if err := json.Unmarshal(env.Data, &status); err != nil {
				t.Fatalf("decode status: %v", err)
			}
			var ids []string
			for _, tr := range status.RecentTransitions {
				ids = append(ids, tr.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestSyncStatus_NextOpening(t *testing.T) {
	t.Parallel()

	hours := schedule.NewInLocation(time.UTC, schedule.VinmonopoletHours())

	tests := []struct {
		name     string
		now      time.Time
		wantNext *time.Time
	}{
		{"sunday reports monday opening", time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC), ptrTime(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC))},
		{"open store omits next opening", time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			deps := healthyDeps()
			deps.Gate = hours
			h := NewHandler(deps)
			h.now = func() time.Time { return tt.now }

			rec, env := do(t, NewRouter(h, 0).Setup(), http.MethodGet, "/api/v1/sync/status")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var status SyncStatus
			if err := json.Unmarshal(env.Data, &status); err != nil {
				t.Fatalf("decode status: %v", err)
			}
			switch {
			case tt.wantNext == nil && status.NextOpening != nil:
				t.Errorf("nextOpening = %v, want omitted", status.NextOpening)
			case tt.wantNext != nil && (status.NextOpening == nil || !status.NextOpening.Equal(*tt.wantNext)):
				t.Errorf("nextOpening = %v, want %v", status.NextOpening, tt.wantNext)
			}
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestSyncStatus_TransitionLoadFailureDoesNotLeak(t *testing.T) {
	t.Parallel()

	deps := healthyDeps()
	deps.Transitions = &fakeTransitions{err: errDown}

	rec, env := do(t, newTestRouter(deps, 0), http.MethodGet, "/api/v1/sync/status")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if env.Status != statusError || env.Error == nil || env.Error.Code != ErrCodeInternalError {
		t.Fatalf("envelope = %+v", env)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("internal error text leaked: %s", rec.Body.String())
	}
}

func TestSyncTrigger(t *testing.T) {
	t.Parallel()

	result := &sync.BatchResult{
		BatchID:   "b-9",
		Outcome:   "completed",
		Forced:    true,
		StartedAt: time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name      string
		query     string
		err       error
		wantCode  int
		wantErr   string
		wantForce []bool
	}{
		{name: "runs batch", wantCode: http.StatusOK, wantForce: []bool{false}},
		{name: "forced", query: "?force=true", wantCode: http.StatusOK, wantForce: []bool{true}},
		{name: "busy", err: sync.ErrBatchInProgress, wantCode: http.StatusConflict, wantErr: ErrCodeSyncInProgress, wantForce: []bool{false}},
		{name: "closed", err: sync.ErrGateClosed, wantCode: http.StatusServiceUnavailable, wantErr: ErrCodeStoreClosed, wantForce: []bool{false}},
		{name: "unexpected", err: errors.New("boom at 10.0.0.5"), wantCode: http.StatusInternalServerError, wantErr: ErrCodeInternalError, wantForce: []bool{false}},
		{name: "bad force", query: "?force=maybe", wantCode: http.StatusBadRequest, wantErr: ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs := &fakeSync{result: result, err: tt.err}
			deps := healthyDeps()
			deps.Sync = fs

			rec, env := do(t, newTestRouter(deps, 0), http.MethodPost, "/api/v1/sync/trigger"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}

			got := fs.forcedCalls()
			if len(got) != len(tt.wantForce) {
				t.Fatalf("TriggerSync calls = %v, want %v", got, tt.wantForce)
			}
			for i := range got {
				if got[i] != tt.wantForce[i] {
					t.Errorf("force[%d] = %v, want %v", i, got[i], tt.wantForce[i])
				}
			}

			if tt.wantErr != "" {
				if env.Error == nil || env.Error.Code != tt.wantErr {
					t.Errorf("error = %+v, want code %s", env.Error, tt.wantErr)
				}
				if strings.Contains(rec.Body.String(), "10.0.0.5") {
					t.Errorf("internal error text leaked: %s", rec.Body.String())
				}
				return
			}

			var batch sync.BatchResult
			if err := json.Unmarshal(env.Data, &batch); err != nil {
				t.Fatalf("decode batch: %v", err)
			}
			if batch.BatchID != "b-9" {
				t.Errorf("batch id = %q", batch.BatchID)
			}
		})
	}
}

func TestSyncEndpoints_NoManager(t *testing.T) {
	t.Parallel()

	router := newTestRouter(Dependencies{}, 0)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/sync/status"},
		{http.MethodPost, "/api/v1/sync/trigger"},
	} {
		rec, env := do(t, router, tc.method, tc.path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: status = %d, want 503", tc.method, tc.path, rec.Code)
		}
		if env.Error == nil || env.Error.Code != ErrCodeSyncUnavailable {
			t.Errorf("%s %s: error = %+v", tc.method, tc.path, env.Error)
		}
	}
}

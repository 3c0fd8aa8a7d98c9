// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	stdsync "sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/klokstudent/stockwatch/internal/models"
	"github.com/klokstudent/stockwatch/internal/sync"
)

type fakeSync struct {
	mu         stdsync.Mutex
	result     *sync.BatchResult
	err        error
	lastSync   time.Time
	lastResult *sync.BatchResult
	stats      sync.ManagerStats
	forced     []bool
}

func (f *fakeSync) TriggerSync(_ context.Context, force bool) (*sync.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forced = append(f.forced, force)
	return f.result, f.err
}

func (f *fakeSync) LastResult() *sync.BatchResult { return f.lastResult }
func (f *fakeSync) LastSyncTime() time.Time       { return f.lastSync }
func (f *fakeSync) Stats() sync.ManagerStats      { return f.stats }

func (f *fakeSync) forcedCalls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.forced...)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakeTransitions struct {
	items     []models.StockTransition
	pair      []models.StockTransition
	err       error
	lastLimit int
	lastPair  [2]string
}

func (f *fakeTransitions) RecentTransitions(_ context.Context, limit, _ int) ([]models.StockTransition, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.items) {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func (f *fakeTransitions) TransitionsForPair(_ context.Context, storeID, productID string) ([]models.StockTransition, error) {
	f.lastPair = [2]string{storeID, productID}
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.StockTransition(nil), f.pair...), nil
}

type fakeStores struct {
	n   int
	err error
}

func (f fakeStores) CountStores(context.Context) (int, error) { return f.n, f.err }

type fakeProducts struct {
	n   int64
	err error
}

func (f fakeProducts) CountProducts(context.Context) (int64, error) { return f.n, f.err }

type fakeCache struct{ hits, misses int64 }

func (f fakeCache) Stats() (int64, int64, int) { return f.hits, f.misses, 0 }

type fakeBreaker string

func (b fakeBreaker) State() string { return string(b) }

var errDown = errors.New("dial tcp 10.0.0.5:5432: connection refused")

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func newTestRouter(deps Dependencies, rateLimit int) http.Handler {
	return NewRouter(NewHandler(deps), rateLimit).Setup()
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (body %q)", method, target, err, rec.Body.String())
		}
	}
	return rec, env
}

func healthyDeps() Dependencies {
	return Dependencies{
		Sync:            &fakeSync{},
		Database:        fakePinger{},
		Docstore:        fakePinger{},
		TrackedProducts: 7,
		PollingEnabled:  true,
	}
}

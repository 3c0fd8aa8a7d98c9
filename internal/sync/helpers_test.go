// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/klokstudent/stockwatch/internal/config"
	"github.com/klokstudent/stockwatch/internal/database"
	"github.com/klokstudent/stockwatch/internal/docstore"
	"github.com/klokstudent/stockwatch/internal/models"
)

var errInjected = errors.New("injected failure")

// memRepo keeps store documents as JSON so callers never share memory with
// the "persisted" copy.
type memRepo struct {
	mu      sync.Mutex
	docs    map[string][]byte
	saveErr error
	failFor map[string]error
	findErr error
	saves   int
	creates int
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[string][]byte)}
}

func (r *memRepo) FindStoreByExternalID(_ context.Context, id string) (*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.load(id)
}

func (r *memRepo) CreateStoreIfAbsent(_ context.Context, candidate *models.Store) (*models.Store, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, err := r.load(candidate.PointOfServiceID); err == nil {
		return existing, false, nil
	}
	if err := r.put(candidate); err != nil {
		return nil, false, err
	}
	r.creates++
	return candidate, true, nil
}

func (r *memRepo) SaveStore(_ context.Context, store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if err := r.failFor[store.PointOfServiceID]; err != nil {
		return err
	}
	r.saves++
	return r.put(store)
}

func (r *memRepo) setSaveErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *memRepo) failSavesFor(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor == nil {
		r.failFor = make(map[string]error)
	}
	r.failFor[id] = err
}

func (r *memRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *memRepo) load(id string) (*models.Store, error) {
	data, ok := r.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	var s models.Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *memRepo) put(s *models.Store) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.docs[s.PointOfServiceID] = data
	return nil
}

func (r *memRepo) get(t *testing.T, id string) *models.Store {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.load(id)
	if err != nil {
		t.Fatalf("store %s: %v", id, err)
	}
	return s
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// memSession counts Release calls on top of a shared memRepo.
type memSession struct {
	*memRepo
	released *atomic.Int32
}

func (s memSession) Release() {
	s.released.Add(1)
}

type memSessions struct {
	repo     *memRepo
	acquired atomic.Int32
	released atomic.Int32
	err      error
}

func (p *memSessions) Acquire(_ context.Context) (StoreSession, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.acquired.Add(1)
	return memSession{memRepo: p.repo, released: &p.released}, nil
}

type fakeCatalog struct {
	known map[string]bool
	err   error
}

func newFakeCatalog(codes ...string) *fakeCatalog {
	c := &fakeCatalog{known: make(map[string]bool)}
	for _, code := range codes {
		c.known[code] = true
	}
	return c
}

func (c *fakeCatalog) FindProductByCode(_ context.Context, code string) (*models.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.known[code] {
		return nil, database.ErrNotFound
	}
	return &models.Product{Code: code}, nil
}

type fakeLedger struct {
	mu          sync.Mutex
	transitions []models.StockTransition
	err         error
}

func (l *fakeLedger) RecordTransition(_ context.Context, t *models.StockTransition) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.transitions = append(l.transitions, *t)
	return nil
}

func (l *fakeLedger) all() []models.StockTransition {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.StockTransition(nil), l.transitions...)
}

// fakeSource serves canned responses per product.
type fakeSource struct {
	mu        sync.Mutex
	responses map[string][]models.StoreObservation
	errs      map[string]error
	calls     []string
	block     chan struct{} // when set, FetchStock waits on it
	entered   chan struct{} // signaled when a blocked fetch starts
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		responses: make(map[string][]models.StoreObservation),
		errs:      make(map[string]error),
	}
}

func (s *fakeSource) set(productID string, obs ...models.StoreObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[productID] = obs
}

func (s *fakeSource) fail(productID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[productID] = err
}

func (s *fakeSource) FetchStock(ctx context.Context, productID string, _ models.GeoPoint) ([]models.StoreObservation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, productID)
	block, entered := s.block, s.entered
	resp, err := s.responses[productID], s.errs[productID]
	s.mu.Unlock()

	if block != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSource) callOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// fakeClock advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(start time.Time, step time.Duration) *fakeClock {
	return &fakeClock{now: start, step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func observation(storeID string, level int) models.StoreObservation {
	return models.StoreObservation{
		Store: models.StoreDescriptor{
			PointOfServiceID: storeID,
			Name:             "Trondheim, " + storeID,
			DisplayName:      "Trondheim, " + storeID,
			FormattedAddress: "Kongens gate 8, 7011 Trondheim",
			GeoPoint:         models.GeoPoint{Latitude: 63.43, Longitude: 10.39},
		},
		StockLevel: level,
	}
}

// monday1200 is inside opening hours in Europe/Oslo.
var monday1200 = time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC)

func testPollConfig(products ...string) *config.PollConfig {
	return &config.PollConfig{
		Enabled:      true,
		Interval:     10 * time.Millisecond,
		Products:     products,
		Latitude:     config.DefaultLatitude,
		Longitude:    config.DefaultLongitude,
		Timezone:     "Europe/Oslo",
		BatchTimeout: 5 * time.Second,
	}
}

func alwaysOpen() Gate {
	return GateFunc(func(time.Time) bool { return true })
}

func alwaysClosed() Gate {
	return GateFunc(func(time.Time) bool { return false })
}

func levelsOf(t *testing.T, repo *memRepo, storeID, productID string) []int {
	t.Helper()
	rec := repo.get(t, storeID).Record(productID)
	if rec == nil {
		return nil
	}
	return rec.Levels()
}

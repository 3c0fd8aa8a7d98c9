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
	"time"

	"github.com/google/uuid"

	"github.com/klokstudent/stockwatch/internal/config"
	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/metrics"
	"github.com/klokstudent/stockwatch/internal/models"
)

// Dependencies are the collaborators a Manager drives.
type Dependencies struct {
	Source   StockSource
	Sessions SessionProvider
	Catalog  CatalogReader
	Ledger   TransitionRecorder // optional
	Gate     Gate               // nil means always open
}

// Manager runs the poll loop: on every tick inside operating hours it
// fetches stock for each configured product and feeds the observations
// through the reconciler and the diff engine.
//
// At most one batch runs at a time. A tick that arrives while a batch is
// running is dropped, not queued.
type Manager struct {
	deps     Dependencies
	interval time.Duration
	timeout  time.Duration
	products []string
	ref      models.GeoPoint
	now      func() time.Time

	mu               sync.RWMutex
	running          bool
	cancel           context.CancelFunc
	lastSync         time.Time
	lastResult       *BatchResult
	onBatchCompleted func(BatchResult)

	batchMu sync.Mutex // held while a batch runs
	wg      sync.WaitGroup

	ticksStarted       atomic.Int64
	ticksSkippedBusy   atomic.Int64
	ticksSkippedClosed atomic.Int64
	batches            atomic.Int64
}

// NewManager creates a Manager for the products and reference point in cfg.
func NewManager(cfg *config.PollConfig, deps Dependencies) *Manager {
	if deps.Gate == nil {
		deps.Gate = GateFunc(func(time.Time) bool { return true })
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	m := &Manager{
		deps:     deps,
		interval: interval,
		timeout:  cfg.BatchTimeout,
		products: append([]string(nil), cfg.Products...),
		ref:      models.GeoPoint{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
		now:      time.Now,
	}

	logging.Info().
		Dur("interval", m.interval).
		Strs("products", m.products).
		Float64("latitude", m.ref.Latitude).
		Float64("longitude", m.ref.Longitude).
		Msg("Sync manager configured")

	return m
}

// SetClock replaces the clock used for gate checks and observation
// timestamps. Must be called before Start.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// OnBatchCompleted registers a callback invoked after every batch.
func (m *Manager) OnBatchCompleted(callback func(BatchResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onBatchCompleted = callback
}

// Start begins the periodic poll loop. The first tick fires immediately.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrManagerRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	logging.Info().Msg("Starting sync manager...")
	go m.pollLoop(loopCtx)
	return nil
}

// Stop cancels the poll loop and any running batch, then waits for them
// to return.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrManagerStopped
	}
	m.running = false
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	cancel()
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

// String implements fmt.Stringer for suture logging.
func (m *Manager) String() string {
	return "sync-manager"
}

func (m *Manager) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.onTick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.onTick(ctx)
		}
	}
}

// onTick starts a batch in the background so the loop keeps draining the
// ticker; ticks that find a batch running are skipped.
func (m *Manager) onTick(ctx context.Context) {
	if err := m.acquireBatch(false); err != nil {
		m.recordSkip(err)
		return
	}
	m.ticksStarted.Add(1)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.batchMu.Unlock()
		m.runBatch(ctx, false)
	}()
}

// Tick runs one poll tick synchronously and reports what it did.
func (m *Manager) Tick(ctx context.Context) TickOutcome {
	if err := m.acquireBatch(false); err != nil {
		return m.recordSkip(err)
	}
	defer m.batchMu.Unlock()
	m.ticksStarted.Add(1)
	m.runBatch(ctx, false)
	return TickStarted
}

// TriggerSync runs a batch immediately and returns its result. Unless force
// is set the operating-hours gate applies. It never waits for a running
// batch; ErrBatchInProgress is returned instead.
func (m *Manager) TriggerSync(ctx context.Context, force bool) (*BatchResult, error) {
	if err := m.acquireBatch(force); err != nil {
		return nil, err
	}
	defer m.batchMu.Unlock()
	return m.runBatch(ctx, force).clone(), nil
}

// acquireBatch takes the batch lock. On success the caller owns batchMu.
func (m *Manager) acquireBatch(force bool) error {
	if !m.batchMu.TryLock() {
		return ErrBatchInProgress
	}
	if !force && !m.deps.Gate.IsOpen(m.now()) {
		m.batchMu.Unlock()
		return ErrGateClosed
	}
	return nil
}

func (m *Manager) recordSkip(err error) TickOutcome {
	if errors.Is(err, ErrGateClosed) {
		m.ticksSkippedClosed.Add(1)
		metrics.PollTicksSkipped.WithLabelValues("closed").Inc()
		ev := logging.Debug()
		if next, ok := NextOpening(m.deps.Gate, m.now()); ok {
			ev = ev.Time("next_opening", next)
		}
		ev.Msg("Stores closed, skipping poll")
		return TickSkippedClosed
	}
	m.ticksSkippedBusy.Add(1)
	metrics.PollTicksSkipped.WithLabelValues("busy").Inc()
	logging.Warn().Msg("Previous batch still running, skipping tick")
	return TickSkippedBusy
}

// runBatch processes every configured product once. batchMu must be held.
func (m *Manager) runBatch(parent context.Context, forced bool) *BatchResult {
	batchID := uuid.NewString()
	ctx := logging.ContextWithCorrelationID(parent, batchID)
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	metrics.PollInProgress.Set(1)
	defer metrics.PollInProgress.Set(0)

	result := &BatchResult{
		BatchID:   batchID,
		Outcome:   OutcomeCompleted,
		Forced:    forced,
		StartedAt: m.now().UTC(),
		Products:  make([]ProductResult, 0, len(m.products)),
	}
	logging.Ctx(ctx).Info().Int("products", len(m.products)).Bool("forced", forced).Msg("Starting stock batch")

	m.processProducts(ctx, result)

	result.FinishedAt = m.now().UTC()
	m.finishBatch(ctx, result)
	return result
}

func (m *Manager) processProducts(ctx context.Context, result *BatchResult) {
	session, err := m.deps.Sessions.Acquire(ctx)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to acquire store session")
		return
	}
	defer session.Release()

	reconciler := NewReconciler(session, m.now)
	diff := NewDiffEngine(m.deps.Catalog, session, m.deps.Ledger, m.now)

	// Stores whose documents failed to persist sit out the rest of the batch.
	failed := make(map[string]bool)

	for _, productID := range m.products {
		if ctx.Err() != nil {
			result.Outcome = OutcomeCanceled
			result.Error = ctx.Err().Error()
			return
		}
		result.add(m.processProduct(ctx, reconciler, diff, productID, failed))
	}
	if ctx.Err() != nil {
		result.Outcome = OutcomeCanceled
		result.Error = ctx.Err().Error()
	}
}

// processProduct fetches one product and applies every store entry. A
// failure on one store does not stop the others. A store that hits a
// persistence error is added to failed and skipped for later products.
func (m *Manager) processProduct(ctx context.Context, reconciler *Reconciler, diff *DiffEngine, productID string, failed map[string]bool) ProductResult {
	pr := ProductResult{ProductID: productID}
	log := logging.CtxWith(ctx).Str("product_id", productID).Logger()

	observations, err := m.deps.Source.FetchStock(ctx, productID, m.ref)
	if err != nil {
		pr.FetchFailed = true
		pr.Error = err.Error()
		log.Warn().Err(err).Msg("Stock fetch failed, skipping product")
		return pr
	}
	pr.StoresSeen = len(observations)

	for _, obs := range observations {
		if ctx.Err() != nil {
			break
		}

		storeID := obs.Store.PointOfServiceID
		if failed[storeID] {
			pr.StoresSkipped++
			log.Debug().Str("store_id", storeID).Msg("Store failed earlier in this batch, skipping")
			continue
		}

		store, created, err := reconciler.resolve(ctx, obs)
		if err != nil {
			pr.PersistenceErrors++
			failed[storeID] = true
			log.Error().Err(err).Str("store_id", storeID).Msg("Failed to resolve store")
			continue
		}
		if created {
			pr.StoresCreated++
		}

		appended, err := diff.ApplyObservation(ctx, store, productID, obs.StockLevel)
		var unknown *UnknownProductError
		switch {
		case errors.As(err, &unknown):
			if !pr.UnknownProduct {
				pr.UnknownProduct = true
				pr.Error = err.Error()
				metrics.UnknownProducts.WithLabelValues(productID).Inc()
				log.Warn().Msg("Product not in catalog, stock levels ignored")
			}
		case err != nil:
			pr.PersistenceErrors++
			var perr *PersistenceError
			if errors.As(err, &perr) && perr.StoreID != "" {
				failed[perr.StoreID] = true
			}
			log.Error().Err(err).Str("store_id", store.PointOfServiceID).Msg("Failed to record stock level")
		case appended != nil:
			pr.Appended++
			log.Debug().
				Str("store_id", store.PointOfServiceID).
				Int("level", appended.Level).
				Msg("Stock level changed")
		default:
			pr.Unchanged++
		}
	}
	return pr
}

func (m *Manager) finishBatch(ctx context.Context, result *BatchResult) {
	m.batches.Add(1)
	metrics.RecordBatch(result.Outcome, result.Duration())

	m.mu.Lock()
	m.lastResult = result.clone()
	if result.Outcome == OutcomeCompleted {
		m.lastSync = result.FinishedAt
	}
	callback := m.onBatchCompleted
	m.mu.Unlock()

	event := logging.Ctx(ctx).Info()
	if result.Outcome != OutcomeCompleted {
		event = logging.Ctx(ctx).Warn()
	}
	event.
		Str("outcome", result.Outcome).
		Int("appended", result.Appended).
		Int("stores_created", result.StoresCreated).
		Int("fetch_failures", result.FetchFailures).
		Int("unknown_products", result.UnknownProducts).
		Int("persistence_errors", result.PersistenceErrors).
		Dur("duration", result.Duration()).
		Msg("Stock batch finished")

	if callback != nil {
		callback(*result.clone())
	}
}

// LastSyncTime returns when the last completed batch finished.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastResult returns a copy of the most recent batch result, or nil.
func (m *Manager) LastResult() *BatchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastResult == nil {
		return nil
	}
	return m.lastResult.clone()
}

// IsRunning reports whether the poll loop is active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Stats returns loop counters.
func (m *Manager) Stats() ManagerStats {
	return ManagerStats{
		Running:            m.IsRunning(),
		LastSync:           m.LastSyncTime(),
		TicksStarted:       m.ticksStarted.Load(),
		TicksSkippedBusy:   m.ticksSkippedBusy.Load(),
		TicksSkippedClosed: m.ticksSkippedClosed.Load(),
		Batches:            m.batches.Load(),
		Products:           append([]string(nil), m.products...),
	}
}

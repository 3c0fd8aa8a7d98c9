// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/metrics"
)

const storeKeyPrefix = "store:"

var (
	// ErrNotFound is returned when no document exists for a key.
	ErrNotFound = errors.New("docstore: not found")

	// ErrClosed is returned by Acquire after Close has been called.
	ErrClosed = errors.New("docstore: closed")

	// ErrReleased is returned by Handle methods after Release.
	ErrReleased = errors.New("docstore: handle released")
)

// Options configures Open.
type Options struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory. Used by tests and dry runs.
	InMemory bool

	// GCInterval is how often Serve runs value log GC. Default 10m.
	GCInterval time.Duration
}

// Store owns the badger database and hands out scoped handles.
type Store struct {
	db         *badger.DB
	gcInterval time.Duration

	mu      sync.RWMutex
	closed  bool
	handles sync.WaitGroup
}

// Open opens or creates the badger database described by opts.
func Open(opts Options) (*Store, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("docstore path is required")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	gc := opts.GCInterval
	if gc <= 0 {
		gc = 10 * time.Minute
	}

	return &Store{db: db, gcInterval: gc}, nil
}

// Acquire returns a handle for one unit of work. The caller must Release it.
func (s *Store) Acquire(ctx context.Context) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.handles.Add(1)
	metrics.DocstoreActiveHandles.Inc()
	return &Handle{store: s}, nil
}

// Close blocks until every handle is released, then closes the database.
// Calling Close more than once is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.handles.Wait()
	return s.db.Close()
}

// CountStores returns the number of store documents.
func (s *Store) CountStores(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(storeKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count stores: %w", err)
	}
	return count, nil
}

// Ping reports whether the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Serve runs value log garbage collection until ctx is done.
// It implements suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runGC()
		}
	}
}

func (s *Store) runGC() {
	rewrites := 0
	for {
		err := s.db.RunValueLogGC(0.5)
		if err == nil {
			rewrites++
			continue
		}
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			break
		}
		if errors.Is(err, badger.ErrRejected) {
			// GC already running or db closing
			break
		}
		logging.Warn().Err(err).Msg("Badger value log GC failed")
		break
	}
	if rewrites > 0 {
		logging.Debug().Int("rewrites", rewrites).Msg("Badger value log GC finished")
	}
}

func (s *Store) String() string {
	return "docstore-gc"
}

func storeKey(pointOfServiceID string) []byte {
	return []byte(storeKeyPrefix + pointOfServiceID)
}

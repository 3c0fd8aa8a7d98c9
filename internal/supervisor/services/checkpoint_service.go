// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package services

import (
	"context"
	"time"

	"github.com/klokstudent/stockwatch/internal/logging"
)

// Checkpointer flushes a write-ahead log into the main database file.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService calls Checkpoint on a fixed interval. Failures are
// logged and retried on the next tick; they never stop the service.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	name     string
}

// NewCheckpointService creates a checkpoint loop. A non-positive interval
// defaults to five minutes.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CheckpointService{db: db, interval: interval, name: "duckdb-checkpoint"}
}

// Serve implements suture.Service.
func (c *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.db.Checkpoint(ctx); err != nil && ctx.Err() == nil {
				logging.Warn().Err(err).Msg("DuckDB checkpoint failed")
			}
		}
	}
}

// String implements fmt.Stringer for logging.
func (c *CheckpointService) String() string {
	return c.name
}

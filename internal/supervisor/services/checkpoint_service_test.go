// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingCheckpointer struct {
	calls atomic.Int32
	err   error
}

func (c *countingCheckpointer) Checkpoint(_ context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestCheckpointService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"healthy", nil},
		{"failures keep the loop running", errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := &countingCheckpointer{err: tt.err}
			svc := NewCheckpointService(db, 5*time.Millisecond)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- svc.Serve(ctx) }()

			deadline := time.Now().Add(2 * time.Second)
			for db.calls.Load() < 3 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()

			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
			if db.calls.Load() < 3 {
				t.Errorf("checkpoints = %d, want >= 3", db.calls.Load())
			}
		})
	}
}

func TestNewCheckpointService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewCheckpointService(&countingCheckpointer{}, 0)
	if svc.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", svc.interval)
	}
	if svc.String() != "duckdb-checkpoint" {
		t.Errorf("String() = %q", svc.String())
	}
}

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/klokstudent/stockwatch/internal/config"
)

func breakerConfig(failures uint32) *config.VinmonopoletConfig {
	return &config.VinmonopoletConfig{BreakerFailures: failures, BreakerTimeout: time.Hour}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	source := newFakeSource()
	source.fail("P1", &FetchError{ProductID: "P1", StatusCode: 503, Err: errInjected})
	cb := NewCircuitBreakerSource(source, breakerConfig(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cb.FetchStock(ctx, "P1", trondheim); err == nil {
			t.Fatalf("call %d: expected failure", i)
		}
	}
	if cb.State() != "open" {
		t.Fatalf("state = %s, want open", cb.State())
	}

	_, err := cb.FetchStock(ctx, "P1", trondheim)
	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("error = %v, want *FetchError wrapping ErrOpenState", err)
	}
	if fe.ProductID != "P1" {
		t.Errorf("ProductID = %q", fe.ProductID)
	}
	if source.callCount() != 3 {
		t.Errorf("underlying calls = %d, want 3", source.callCount())
	}
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	t.Parallel()

	source := newFakeSource()
	source.fail("bad", &FetchError{ProductID: "bad", StatusCode: 500, Err: errInjected})
	source.set("good", observation("S1", 1))
	cb := NewCircuitBreakerSource(source, breakerConfig(3))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, _ = cb.FetchStock(ctx, "bad", trondheim)
		_, _ = cb.FetchStock(ctx, "bad", trondheim)
		got, err := cb.FetchStock(ctx, "good", trondheim)
		if err != nil || len(got) != 1 {
			t.Fatalf("round %d: good fetch = (%v, %v)", i, got, err)
		}
	}
	if cb.State() != "closed" {
		t.Errorf("state = %s, want closed", cb.State())
	}
}

func TestCircuitBreaker_IgnoresNonRetryableFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"not found", &FetchError{ProductID: "P1", StatusCode: 404, Err: errInjected}},
		{"decode error", &FetchError{ProductID: "P1", StatusCode: 200, Err: errInjected}},
		{"canceled", context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := newFakeSource()
			source.fail("P1", tt.err)
			cb := NewCircuitBreakerSource(source, breakerConfig(2))

			for i := 0; i < 5; i++ {
				_, _ = cb.FetchStock(context.Background(), "P1", trondheim)
			}
			if cb.State() != "closed" {
				t.Errorf("state = %s, want closed", cb.State())
			}
			if source.callCount() != 5 {
				t.Errorf("underlying calls = %d, want 5", source.callCount())
			}
		})
	}
}

func TestStateToString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state gobreaker.State
		str   string
		num   float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}
	for _, tt := range tests {
		if got := stateToString(tt.state); got != tt.str {
			t.Errorf("stateToString(%v) = %q, want %q", tt.state, got, tt.str)
		}
		if got := stateToFloat(tt.state); got != tt.num {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.num)
		}
	}
}

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"context"
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/klokstudent/stockwatch/internal/config"
	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/metrics"
	"github.com/klokstudent/stockwatch/internal/models"
)

// CircuitBreakerSource wraps a StockSource with a circuit breaker so an
// unavailable retailer API is not hammered once per product every tick.
//
// Only failures that could succeed later count against the breaker. A 404
// for a discontinued product or a canceled context leaves it closed.
type CircuitBreakerSource struct {
	next StockSource
	cb   *gobreaker.CircuitBreaker[[]models.StoreObservation]
	name string
}

// NewCircuitBreakerSource creates a breaker that opens after
// cfg.BreakerFailures consecutive failures and tries again after
// cfg.BreakerTimeout.
func NewCircuitBreakerSource(next StockSource, cfg *config.VinmonopoletConfig) *CircuitBreakerSource {
	name := "vinmonopolet-api"
	threshold := cfg.BreakerFailures
	if threshold == 0 {
		threshold = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.StoreObservation](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cfg.BreakerTimeout, // zero means gobreaker's 60s default

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},

		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return !IsRetryable(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerSource{next: next, cb: cb, name: name}
}

// FetchStock calls the wrapped source unless the circuit is open. Rejected
// calls return a *FetchError wrapping gobreaker.ErrOpenState or
// gobreaker.ErrTooManyRequests.
func (s *CircuitBreakerSource) FetchStock(ctx context.Context, productID string, ref models.GeoPoint) ([]models.StoreObservation, error) {
	result, err := s.cb.Execute(func() ([]models.StoreObservation, error) {
		return s.next.FetchStock(ctx, productID, ref)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordFetch("rejected", 0)
			logging.Ctx(ctx).Warn().Err(err).Str("product_id", productID).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, &FetchError{ProductID: productID, Err: err}
		}
		return nil, err
	}
	return result, nil
}

// State returns the breaker state as "closed", "half-open" or "open".
func (s *CircuitBreakerSource) State() string {
	return stateToString(s.cb.State())
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

var (
	_ StockSource = (*CircuitBreakerSource)(nil)
	_ StockSource = (*VinmonopoletClient)(nil)
)

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package logging

import (
	"context"
	"strings"
	"testing"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	a := GenerateCorrelationID()
	b := GenerateCorrelationID()
	if len(a) != 8 {
		t.Errorf("len = %d, want 8", len(a))
	}
	if a == b {
		t.Error("correlation ids should be unique")
	}
}

func TestCorrelationIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := CorrelationIDFromContext(ctx); got != "" {
		t.Errorf("empty context returned %q", got)
	}

	ctx = ContextWithCorrelationID(ctx, "batch-1")
	if got := CorrelationIDFromContext(ctx); got != "batch-1" {
		t.Errorf("got %q, want batch-1", got)
	}

	ctx = ContextWithNewCorrelationID(context.Background())
	if CorrelationIDFromContext(ctx) == "" {
		t.Error("ContextWithNewCorrelationID did not set an id")
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := ContextWithRequestID(context.Background(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Errorf("got %q, want req-42", got)
	}
}

func TestCtx_AddsFields(t *testing.T) {
	buf := captureGlobal(t)

	ctx := ContextWithCorrelationID(context.Background(), "abc12345")
	ctx = ContextWithRequestID(ctx, "req-1")
	Ctx(ctx).Info().Msg("with ids")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["correlation_id"] != "abc12345" {
		t.Errorf("correlation_id = %v", m["correlation_id"])
	}
	if m["request_id"] != "req-1" {
		t.Errorf("request_id = %v", m["request_id"])
	}
}

func TestCtx_NoFields(t *testing.T) {
	buf := captureGlobal(t)

	Ctx(context.Background()).Info().Msg("bare")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if _, ok := m["correlation_id"]; ok {
		t.Error("unexpected correlation_id on bare context")
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t)

	l := WithComponent("sync")
	l.Info().Msg("tick")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["component"] != "sync" {
		t.Errorf("component = %v, want sync", m["component"])
	}
}

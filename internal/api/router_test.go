// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(healthyDeps(), 0)
	tests := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/sync/trigger"},
		{http.MethodPost, "/api/v1/sync/status"},
		{http.MethodDelete, "/api/v1/health/live"},
		{http.MethodPut, "/api/v1/health/ready"},
	}

	for _, tt := range tests {
		rec, env := do(t, router, tt.method, tt.path)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", tt.method, tt.path, rec.Code)
			continue
		}
		if env.Error == nil || env.Error.Code != ErrCodeMethodNotAllowed {
			t.Errorf("%s %s: error = %+v", tt.method, tt.path, env.Error)
		}
	}
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	rec, env := do(t, newTestRouter(healthyDeps(), 0), http.MethodGet, "/api/v1/stores")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRouter_RequestIDPassthrough(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	newTestRouter(Dependencies{}, 0).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q, want req-123", got)
	}
	if !strings.Contains(rec.Body.String(), `"request_id":"req-123"`) {
		t.Errorf("body does not carry request id: %s", rec.Body.String())
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	t.Parallel()

	rec, _ := do(t, newTestRouter(healthyDeps(), 0), http.MethodGet, "/api/v1/sync/status")
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	router := newTestRouter(healthyDeps(), 2)
	for i := 0; i < 2; i++ {
		rec, _ := do(t, router, http.MethodGet, "/api/v1/sync/status")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec, env := do(t, router, http.MethodGet, "/api/v1/sync/status")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v", env.Error)
	}

	// Health checks get a larger allowance than the sync group.
	if rec, _ := do(t, router, http.MethodGet, "/api/v1/health/live"); rec.Code != http.StatusOK {
		t.Errorf("health after sync limit: status = %d, want 200", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	router := newTestRouter(healthyDeps(), 0)
	do(t, router, http.MethodGet, "/api/v1/health/live")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "stockwatch_api_requests_total") {
		t.Error("metrics output missing stockwatch_api_requests_total")
	}
	if !strings.Contains(string(body), `endpoint="/api/v1/health/live"`) {
		t.Error("request not labelled by route pattern")
	}
}

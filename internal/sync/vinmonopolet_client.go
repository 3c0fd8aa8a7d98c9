// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/klokstudent/stockwatch/internal/config"
	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/metrics"
	"github.com/klokstudent/stockwatch/internal/models"
	"github.com/klokstudent/stockwatch/internal/models/vinmonopolet"
	"github.com/klokstudent/stockwatch/internal/validation"
)

// maxErrorBodySize limits how much of a failed response body is kept for
// the error message.
const maxErrorBodySize = 64 * 1024

// readBodyForError reads at most maxErrorBodySize bytes of r.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// VinmonopoletClient fetches per-store stock levels from the Vinmonopolet
// web API. Only the first result page is requested, so the result is the
// pageSize stores nearest to the reference point.
//
// Requests are paced by a token bucket and bounded by the HTTP client
// timeout. Failures are never retried here; the next poll tick is the retry.
type VinmonopoletClient struct {
	baseURL   string
	pageSize  int
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewVinmonopoletClient creates a client from configuration. A
// RequestsPerSecond of zero disables pacing.
func NewVinmonopoletClient(cfg *config.VinmonopoletConfig) *VinmonopoletClient {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &VinmonopoletClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:  pageSize,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// stockURL builds the stock endpoint URL for productID.
func (c *VinmonopoletClient) stockURL(productID string, ref models.GeoPoint) string {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("currentPage", "0")
	params.Set("fields", "BASIC")
	params.Set("latitude", strconv.FormatFloat(ref.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(ref.Longitude, 'f', -1, 64))
	return fmt.Sprintf("%s/vmpws/v2/vmp/products/%s/stock?%s",
		c.baseURL, url.PathEscape(productID), params.Encode())
}

// FetchStock requests the stock list for productID near ref.
//
// Entries that fail to decode or fail schema validation are dropped and
// logged; the rest are returned in response order. Any transport failure, non-2xx status or
// undecodable body yields a *FetchError.
func (c *VinmonopoletClient) FetchStock(ctx context.Context, productID string, ref models.GeoPoint) ([]models.StoreObservation, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{ProductID: productID, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.stockURL(productID, ref), http.NoBody)
	if err != nil {
		return nil, &FetchError{ProductID: productID, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordFetch("network_error", time.Since(start))
		return nil, &FetchError{ProductID: productID, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		metrics.RecordFetch("http_error", time.Since(start))
		return nil, &FetchError{
			ProductID:  productID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}

	var payload vinmonopolet.StockResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.RecordFetch("decode_error", time.Since(start))
		return nil, &FetchError{
			ProductID:  productID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	observations := make([]models.StoreObservation, 0, len(payload.Stores))
	for i, raw := range payload.Stores {
		entry, derr := vinmonopolet.DecodeStoreStock(raw)
		if derr != nil {
			dropEntry(ctx, productID, i, []string{"decode"}, derr.Error())
			continue
		}
		if verr := validation.ValidateStruct(entry); verr != nil {
			fields := make([]string, 0, len(verr.Errors()))
			for _, fe := range verr.Errors() {
				fields = append(fields, fe.Field())
			}
			dropEntry(ctx, productID, i, fields, verr.FieldList())
			continue
		}
		observations = append(observations, entry.ToObservation())
	}

	metrics.RecordFetch("success", time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("product_id", productID).
		Int("stores", len(observations)).
		Int("dropped", len(payload.Stores)-len(observations)).
		Dur("duration", time.Since(start)).
		Msg("Fetched stock")

	return observations, nil
}

// dropEntry skips one store entry. labels feed the dropped-entries metric;
// reason is logged.
func dropEntry(ctx context.Context, productID string, index int, labels []string, reason string) {
	for _, label := range labels {
		metrics.FetchEntriesDropped.WithLabelValues(label).Inc()
	}
	logging.Ctx(ctx).Warn().
		Str("product_id", productID).
		Int("index", index).
		Str("reason", reason).
		Msg("Dropping malformed store entry")
}

// IsRetryable reports whether err is worth retrying on the next tick.
// Client errors other than 408 and 429 are not.
func IsRetryable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch {
	case fe.StatusCode == 0:
		return true
	case fe.StatusCode == http.StatusRequestTimeout, fe.StatusCode == http.StatusTooManyRequests:
		return true
	case fe.StatusCode >= 500:
		return true
	default:
		return false
	}
}

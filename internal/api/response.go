// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/models"
)

// Standard error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeSyncInProgress     = "SYNC_IN_PROGRESS"
	ErrCodeStoreClosed        = "STORE_CLOSED"
	ErrCodeSyncUnavailable    = "SYNC_UNAVAILABLE"
)

// Response status values
const (
	statusSuccess = "success"
	statusError   = "error"
)

// sanitizeLogValue escapes control characters so request-derived strings
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func newMetadata(r *http.Request) models.Metadata {
	meta := models.Metadata{Timestamp: time.Now().UTC()}
	if r != nil {
		meta.RequestID = logging.RequestIDFromContext(r.Context())
	}
	return meta
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a weak ETag from data using FNV-1a
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `W/"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondError sends an error envelope. err is logged, never returned to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Error()
		}
		if r != nil {
			ev = ev.Str("request_id", logging.RequestIDFromContext(r.Context())).
				Str("path", sanitizeLogValue(r.URL.Path))
		}
		ev.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   statusError,
		Data:     nil,
		Metadata: newMetadata(r),
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	respondJSON(w, status, &models.APIResponse{
		Status:   statusSuccess,
		Data:     data,
		Metadata: newMetadata(r),
	})
}

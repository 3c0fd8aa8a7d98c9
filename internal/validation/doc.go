// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

// Package validation wraps go-playground/validator v10 behind a thread-safe
// singleton and translates field errors into short human-readable messages.
//
// It is used to check untrusted input at the edges of the system: entries of
// the retailer stock response before they reach the reconciler, and query
// parameters of the operational HTTP endpoints.
//
//	type entry struct {
//	    ID    string `validate:"required"`
//	    Level *int   `validate:"required,gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&e); verr != nil {
//	    log.Warn().Str("fields", verr.FieldList()).Msg("dropping entry")
//	}
package validation

// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package logging provides structured logging built on zerolog.

A single global logger is configured once from main with Init and then used
through package-level helpers:

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Str("addr", addr).Msg("HTTP server listening")

Each poll batch runs with a correlation id in its context so every line it
produces can be grouped:

	ctx = logging.ContextWithNewCorrelationID(ctx)
	logging.Ctx(ctx).Info().Msg("Batch started")

SlogHandler adapts zerolog to log/slog for libraries that only speak slog,
in particular the suture supervisor event hook.
*/
package logging

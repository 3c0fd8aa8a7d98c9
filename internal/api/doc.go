// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package api serves the operational HTTP endpoints of the stock poller.

Routes:

	GET  /api/v1/health         overall status, always 200
	GET  /api/v1/health/live    liveness check
	GET  /api/v1/health/ready   503 unless DuckDB and BadgerDB answer a ping
	GET  /api/v1/sync/status    last batch result, loop counters, recent transitions
	POST /api/v1/sync/trigger   run one batch now (?force=true ignores opening hours)
	GET  /metrics               Prometheus exposition

Every JSON response uses the models.APIResponse envelope. Error responses
carry a static message and a code from the ErrCode constants; the
underlying error is logged with the request ID and never sent to the
client.

Middleware order on every route: request ID with logging context, real IP,
panic recovery. The health and sync groups add per-IP rate limiting
(go-chi/httprate), security headers and request metrics.

Usage:

	handler := api.NewHandler(api.Dependencies{
		Sync:     manager,
		Database: db,
		Docstore: docs,
	})
	srv := &http.Server{Handler: api.NewRouter(handler, cfg.Server.RateLimit).Setup()}
*/
package api

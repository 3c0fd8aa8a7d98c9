// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthRateMultiplier gives health checks more headroom than the sync endpoints.
const healthRateMultiplier = 10

// Router builds the operational HTTP handler.
type Router struct {
	handler   *Handler
	rateLimit int
}

// NewRouter creates a Router. rateLimit is requests per minute per client
// IP on the sync endpoints; zero disables limiting.
func NewRouter(handler *Handler, rateLimit int) *Router {
	return &Router{handler: handler, rateLimit: rateLimit}
}

// Setup configures all routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(RateLimit(router.rateLimit * healthRateMultiplier))
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(RateLimit(router.rateLimit))
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics)
		r.Get("/status", router.handler.SyncStatus)
		r.Post("/trigger", router.handler.SyncTrigger)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

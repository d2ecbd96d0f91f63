// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/logging"
)

// NewRouter assembles the full route tree.
func NewRouter(cfg config.ServerConfig, h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health probes get a permissive limit so monitors can poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.Limit(1000, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(cfg.RateLimitPerMin, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))

		r.Post("/discover", h.Discover)
		r.Post("/discover/next", h.DiscoverNext)
		r.Post("/discover/reset", h.DiscoverReset)
		r.Get("/discover/state", h.DiscoverState)

		r.Get("/cache/stats", h.CacheStats)
		r.Post("/cache/invalidate", h.CacheInvalidate)

		r.Get("/gateway/stats", h.GatewayProviderStats)
		r.Get("/taxonomy/{type}", h.TaxonomyList)
		r.Post("/filters/compatibility", h.FilterCompatibility)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("no such endpoint")
	})

	return r
}

// RequestID assigns each request an ID, honoring one supplied by the
// client, and threads it through the logging context and response
// header.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = logging.GenerateRequestID()
			}
			ctx := logging.ContextWithRequestID(r.Context(), id)
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

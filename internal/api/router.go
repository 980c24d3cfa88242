// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/seawatch/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router over h. A nil mw uses the defaults.
func NewRouter(h *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: h, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global, so OPTIONS preflight is answered

	h := router.handler

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	r.Route("/api/v1/live", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitLive())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(h.RequireSession)
		r.Get("/", h.LiveState)
		r.Post("/select/{id}", h.SelectVessel)
		r.Delete("/select", h.ClearVesselSelection)
		r.Get("/route/{id}", h.VesselRoute)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(h.RequireSession)

		r.Get("/api/v1/capabilities", h.Capabilities)

		r.Route("/api/v1/alerts", func(r chi.Router) {
			r.Get("/", h.AlertsView)
			r.Put("/query", h.UpdateQuery)
			r.Post("/page/{n}", h.GoToPage)
			r.Post("/reload", h.ReloadAlerts)
			r.Post("/select/{id}", h.ToggleSelect)
			r.Post("/select-all", h.ToggleSelectAll)
			r.Get("/{id}/note", h.GetNote)
			r.With(router.chiMiddleware.RateLimitExport()).Get("/export", h.ExportAlerts)

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWrite())
				r.Post("/", h.CreateAlert)
				r.Post("/{id}/ack", h.AcknowledgeAlert)
				r.Put("/{id}/note", h.PutNote)
				r.Post("/bulk/{action}", h.BulkDispatch)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

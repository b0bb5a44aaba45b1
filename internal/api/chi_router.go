// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/campaignwatch/internal/auth"
	"github.com/tomtom215/campaignwatch/internal/authz"
	"github.com/tomtom215/campaignwatch/internal/middleware"
)

// Router wires handlers to routes with their middleware.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authn         *auth.Middleware
	authz         *authz.Middleware
}

// NewRouter creates a router. authorizer may be nil, in which case every
// authenticated caller may use every route.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authn *auth.Middleware, authorizer *authz.Middleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(DefaultChiMiddlewareConfig())
	}
	if authn == nil {
		authn = auth.NewMiddleware(nil, auth.ModeNone)
	}
	return &Router{handler: handler, chiMiddleware: chiMW, authn: authn, authz: authorizer}
}

// Setup builds the route tree.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	if h.deps.Latency != nil {
		r.Use(h.deps.Latency.Middleware)
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/latency", h.HealthLatency)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(router.authn.Authenticate)
		if router.authz != nil {
			r.Use(router.authz.AuthorizeRequest)
		}

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.ListCampaigns)
			r.Get("/summary", h.CampaignSummary)
			r.Get("/{id}", h.GetCampaign)
			r.With(router.chiMiddleware.RateLimitScoring()).Post("/score", h.ScoreCampaign)
			r.With(router.chiMiddleware.RateLimitScoring()).Post("/batch", h.ScoreBatch)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitScoring())
			r.Post("/bursts", h.AnalyzeBursts)
			r.Post("/coordination", h.AnalyzeCoordination)
			r.Post("/bots", h.AnalyzeBot)
			r.Post("/bots/network", h.AnalyzeBotNetwork)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.ListAlerts)
			r.Post("/{id}/acknowledge", h.AcknowledgeAlert)
		})

		r.Get("/ws", h.WebSocket)
	})

	return r
}

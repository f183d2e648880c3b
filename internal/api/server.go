// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package api assembles the HTTP surface of the Shelfie server.

It owns the middleware chain, route mounting, and health endpoints. Feature
packages contribute routers; this package decides where they live.

# URL Layout

  - /health, /ready        : Liveness and readiness probes.
  - /api/widget-data       : Widget endpoint (pre-envelope contract).
  - /api/create-checkout   : Checkout endpoint (pre-envelope contract).
  - /api/billing/webhook   : Stripe event sink (signature-verified).
  - /api/v1/*              : Versioned, enveloped JSON API.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bookshelfie/shelfie/internal/platform/config"
	"github.com/bookshelfie/shelfie/internal/platform/constants"
	"github.com/bookshelfie/shelfie/internal/platform/middleware"
)

// # Router Assembly

// Dependencies carries everything the router needs, pre-constructed.
type Dependencies struct {
	Config        *config.Config
	Logger        *slog.Logger
	Pool          *pgxpool.Pool
	Redis         *redis.Client
	Verifier      middleware.TokenVerifier
	AuthRoutes    chi.Router
	UserRoutes    chi.Router
	ShelfRoutes   chi.Router
	SocialRoutes  chi.Router
	BillingRoutes chi.Router
	CatalogRoutes chi.Router
	WidgetRoutes  chi.Router

	// Pre-envelope billing handlers kept at their original paths so deployed
	// mobile clients and Stripe webhook configuration keep working.
	LegacyCheckout http.HandlerFunc
	BillingWebhook http.HandlerFunc
}

/*
NewRouter builds the complete HTTP handler for the server.

Description: The middleware order matters: request IDs exist before logging,
logging wraps everything that can fail, rate limiting rejects before any
business work, panics are converted inside the logged span, and
authentication runs last so every handler sees resolved claims.

Parameters:
  - lifecycle: context.Context (Owns background middleware goroutines)
  - deps: Dependencies

Returns:
  - http.Handler: Ready to serve
*/
func NewRouter(lifecycle context.Context, deps Dependencies) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(deps.Logger))
	router.Use(middleware.RateLimit(lifecycle))
	router.Use(middleware.PanicRecovery(deps.Logger))
	router.Use(middleware.CORS(deps.Config))
	router.Use(middleware.Authenticate(deps.Verifier))

	// Probes sit outside /api so infrastructure can reach them unversioned.
	router.Get("/health", handleLiveness)
	router.Get("/ready", handleReadiness(deps.Pool, deps.Redis))

	// These endpoints predate the versioned API and keep their paths and
	// raw (non-enveloped) response shapes.
	router.Mount("/api/widget-data", deps.WidgetRoutes)
	router.With(middleware.RequireAuth).Post("/api/create-checkout", deps.LegacyCheckout)
	router.Post("/api/billing/webhook", deps.BillingWebhook)

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/auth", deps.AuthRoutes)
		v1.Mount("/users", deps.UserRoutes)
		v1.Mount("/shelf/books", deps.ShelfRoutes)
		v1.Mount("/friends", deps.SocialRoutes)
		v1.Mount("/billing", deps.BillingRoutes)
		v1.Mount("/catalog", deps.CatalogRoutes)
	})

	return router
}

// # Server Construction

// NewServer wraps a handler in an [http.Server] with the platform timeouts.
func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           http.TimeoutHandler(handler, constants.GlobalRequestTimeout, ""),
		ReadTimeout:       constants.DefaultReadTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		WriteTimeout:      requestWriteTimeout(),
		IdleTimeout:       constants.DefaultIdleTimeout,
	}
}

// requestWriteTimeout leaves the timeout handler room to write its own
// response before the connection deadline fires.
func requestWriteTimeout() time.Duration {
	return constants.GlobalRequestTimeout + constants.DefaultWriteTimeout
}

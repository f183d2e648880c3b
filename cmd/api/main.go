// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Shelfie API server.

Boot order: environment, config, logger, Postgres, migrations, Redis, JWT
keys, feature wiring, HTTP server. Each stage is fatal on failure; a server
that cannot reach its dependencies should crash loudly at startup, not limp
into traffic.
*/
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bookshelfie/shelfie/internal/api"
	"github.com/bookshelfie/shelfie/internal/billing"
	"github.com/bookshelfie/shelfie/internal/catalog"
	"github.com/bookshelfie/shelfie/internal/platform/config"
	"github.com/bookshelfie/shelfie/internal/platform/constants"
	"github.com/bookshelfie/shelfie/internal/platform/migration"
	"github.com/bookshelfie/shelfie/internal/platform/postgres"
	"github.com/bookshelfie/shelfie/internal/platform/redis"
	"github.com/bookshelfie/shelfie/internal/platform/sec"
	"github.com/bookshelfie/shelfie/internal/shelf"
	"github.com/bookshelfie/shelfie/internal/social"
	"github.com/bookshelfie/shelfie/internal/users/auth"
	"github.com/bookshelfie/shelfie/internal/users/profile"
	"github.com/bookshelfie/shelfie/internal/widget"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {

	// ── 1. Environment & configuration ──────────────────────────────────

	// .env is a development convenience; production injects real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("server_starting",
		slog.String("app", constants.AppName),
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	lifecycle, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 2. Storage ──────────────────────────────────────────────────────

	pool, err := postgres.NewPool(lifecycle, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		return err
	}

	redisClient, err := redis.NewClient(lifecycle, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// ── 3. Security ─────────────────────────────────────────────────────

	tokenService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return err
	}

	// ── 4. Feature wiring ───────────────────────────────────────────────

	// Billing first: it resolves entitlement for auth and shelf.
	stripeGateway := billing.NewStripeGateway(
		cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePriceID, cfg.CheckoutBaseURL)
	billingService := billing.NewService(
		billing.NewSubscriptionRepository(pool), stripeGateway, logger)

	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	authService := auth.NewService(
		userRepository,
		sessionRepository,
		auth.NewOTPCodeRepository(redisClient),
		auth.LogCodeSender{},
		billingService,
		tokenService,
	)

	profileService := profile.NewService(
		profile.NewProfileRepository(pool), sessionRepository, logger)

	shelfService := shelf.NewService(
		shelf.NewBookRepository(pool), billingService, cfg.FreeTierBookLimit, logger)

	socialService := social.NewService(
		social.NewFriendshipRepository(pool),
		social.NewFriendReadingRepository(pool),
		logger,
	)

	widgetService := widget.NewService(
		profileService,
		shelfService,
		socialService,
		widget.NewPayloadCache(redisClient),
		widget.Caps{OwnBooks: cfg.WidgetOwnBooksCap, Friends: cfg.WidgetFriendsCap},
		cfg.WidgetCacheTTL,
		logger,
	)

	openLibrary := catalog.NewOpenLibraryClient(cfg.OpenLibraryBaseURL)

	// ── 5. HTTP surface ─────────────────────────────────────────────────

	billingHandler := billing.NewHandler(billingService)

	router := api.NewRouter(lifecycle, api.Dependencies{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		Redis:          redisClient,
		Verifier:       tokenService,
		AuthRoutes:     auth.NewHandler(authService).Routes(),
		UserRoutes:     profile.NewHandler(profileService).Routes(),
		ShelfRoutes:    shelf.NewHandler(shelfService).Routes(),
		SocialRoutes:   social.NewHandler(socialService, cfg.FeedFriendsCap).Routes(),
		BillingRoutes:  billingHandler.Routes(),
		CatalogRoutes:  catalog.NewHandler(openLibrary).Routes(),
		WidgetRoutes:   widget.NewHandler(widgetService).Routes(),
		LegacyCheckout: billingHandler.LegacyCheckout,
		BillingWebhook: billingHandler.Webhook,
	})

	server := api.NewServer(cfg.ServerPort, router)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server_listening", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// ── 6. Shutdown ─────────────────────────────────────────────────────

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-lifecycle.Done():
		logger.Info("server_shutting_down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return err
		}
	}

	logger.Info("server_stopped")
	return nil
}

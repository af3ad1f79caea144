package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/foodreels/backend/internal/auth"
	"github.com/anonto42/foodreels/backend/internal/handlers"
	"github.com/anonto42/foodreels/backend/internal/logging"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/anonto42/foodreels/backend/internal/router"
	"github.com/anonto42/foodreels/backend/internal/storage"
	"github.com/anonto42/foodreels/backend/pkg/config"
	"github.com/anonto42/foodreels/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	if err := repositories.EnsureMongoIndexes(ctx, db.MongoDB); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token manager")
	}

	// Firebase login is optional
	var verifier handlers.IDTokenVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		verifier = firebaseApp.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
		logging.Info().Msg("Firebase login disabled")
	default:
		logging.Fatal().Err(err).Msg("Failed to initialize Firebase")
	}

	opts := router.Options{
		CORSOrigins:   cfg.CORSOrigins,
		MaxVideoSize:  cfg.MaxVideoSize,
		AuthRateLimit: cfg.AuthRateLimit,
		CookieSecure:  cfg.CookieSecure,
	}

	e := echo.New()
	router.SetupMiddleware(e, opts)
	router.SetupRoutes(e, router.Dependencies{
		Users:       repositories.NewPostgresUserRepository(db.Postgres),
		Partners:    repositories.NewPostgresFoodPartnerRepository(db.Postgres),
		Foods:       repositories.NewMongoFoodRepository(db.MongoDB),
		Engagements: repositories.NewMongoEngagementRepository(db.Mongo, db.MongoDB),
		Storage:     store,
		Tokens:      tokens,
		Firebase:    verifier,
	}, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Str("storage", store.Name()).Msg("Starting server")
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// Command api is the Deen X Zikr API server.
//
// Usage:
//
//	deen-api
//	API_PORT=8080 deen-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/deenxzikr/deen-api/internal/api"
	"github.com/deenxzikr/deen-api/internal/api/handler"
	"github.com/deenxzikr/deen-api/internal/cache"
	"github.com/deenxzikr/deen-api/internal/config"
	"github.com/deenxzikr/deen-api/internal/db"
	"github.com/deenxzikr/deen-api/internal/maintenance"
	"github.com/deenxzikr/deen-api/internal/push"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Handlers (builds the dispatch pipeline when VAPID keys are set)
	h := handler.New(pool.Pool, appCache, cfg, logger)
	if h.Dispatcher() == nil {
		logger.Info("Web push disabled (VAPID keys not configured)")
	}

	// Optional in-process dispatch worker for deployments without an
	// external scheduler hitting /api/cron/prayer-reminders.
	if d := h.Dispatcher(); d != nil && cfg.DispatchInterval > 0 {
		go push.StartWorker(ctx, d, cfg.DispatchInterval, logger)
	}

	// Start maintenance ticker (inactive subscription purge)
	store := push.NewPGStore(pool.Pool)
	go maintenance.Start(ctx, store, maintenance.Config{
		PurgeInterval:     6 * time.Hour,
		InactiveRetention: cfg.InactiveRetention,
	}, logger)

	// Create router
	router := api.NewRouter(h, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Deen X Zikr API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// Package handler provides HTTP handlers for all API endpoints.
// Upstream-backed endpoints are thin validated proxies with in-memory
// caching; the dispatch endpoint drives the reminder pipeline.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deenxzikr/deen-api/internal/api/respond"
	"github.com/deenxzikr/deen-api/internal/cache"
	"github.com/deenxzikr/deen-api/internal/config"
	"github.com/deenxzikr/deen-api/internal/external"
	"github.com/deenxzikr/deen-api/internal/prayer"
	"github.com/deenxzikr/deen-api/internal/push"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool     *pgxpool.Pool
	store    *push.PGStore
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
	aladhan  *prayer.Client
	geocode  *external.GeocodeService
	weather  *external.WeatherService
	quran    *external.QuranService
	quranCom *external.QuranComService

	// nil when VAPID keys are not configured; handlers answer 503.
	sender     push.Sender
	dispatcher *push.Dispatcher
}

// New creates a Handler with shared dependencies. The sender and dispatcher
// are only built when web push is fully configured.
func New(pool *pgxpool.Pool, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	h := &Handler{
		pool:     pool,
		store:    push.NewPGStore(pool),
		cache:    c,
		cfg:      cfg,
		logger:   logger,
		aladhan:  prayer.NewClient("", 60, logger),
		geocode:  external.NewGeocodeService(""),
		weather:  external.NewWeatherService(""),
		quran:    external.NewQuranService(""),
		quranCom: external.NewQuranComService(""),
	}

	if cfg.PushConfigured() {
		sender, err := push.NewWebPushSender(push.VAPIDConfig{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
			Subject:    cfg.VAPIDSubject,
		})
		if err != nil {
			// PushConfigured already guarantees completeness.
			logger.Error("web push sender init failed", "error", err)
		} else {
			h.sender = sender
			evaluator := prayer.NewEvaluator(prayer.NewCachedSource(h.aladhan, c))
			h.dispatcher = push.NewDispatcher(h.store, sender, evaluator, cfg.DispatchWindow, logger)
		}
	}

	return h
}

// Dispatcher exposes the reminder pipeline for the in-process worker.
// Returns nil when web push is not configured.
func (h *Handler) Dispatcher() *push.Dispatcher {
	return h.dispatcher
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Deen X Zikr API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"push":    h.sender != nil,
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

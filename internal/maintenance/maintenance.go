// Package maintenance runs periodic background tasks as Go tickers.
// The dispatch path never deletes subscription rows; administrative cleanup
// of long-dead endpoints lives here instead.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/deenxzikr/deen-api/internal/push"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PurgeInterval     time.Duration // Removal of long-inactive subscriptions
	InactiveRetention time.Duration // How long a deactivated endpoint is kept
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		PurgeInterval:     6 * time.Hour,
		InactiveRetention: 90 * 24 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, store *push.PGStore, cfg Config, logger *slog.Logger) {
	if cfg.PurgeInterval <= 0 {
		logger.Info("Maintenance disabled")
		return
	}

	logger.Info("Maintenance ticker started",
		"purge_interval", cfg.PurgeInterval,
		"inactive_retention", cfg.InactiveRetention)

	ticker := time.NewTicker(cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purgeInactive(ctx, store, cfg.InactiveRetention, logger)
		case <-ctx.Done():
			logger.Info("Maintenance ticker stopped")
			return
		}
	}
}

// purgeInactive removes subscriptions that have been inactive longer than
// the retention period. An endpoint this stale will never be reactivated —
// the browser issued a new one on re-subscribe.
func purgeInactive(ctx context.Context, store *push.PGStore, retention time.Duration, logger *slog.Logger) {
	cutoff := time.Now().Add(-retention)
	removed, err := store.PurgeInactive(ctx, cutoff)
	if err != nil {
		logger.Warn("Purge: failed to remove inactive subscriptions", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("Purge: removed inactive subscriptions", "count", removed)
	}
}

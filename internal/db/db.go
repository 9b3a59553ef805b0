// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deenxzikr/deen-api/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and dispatch
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Subscriptions: dispatch scan over (active, updated_at) index
		"list_active_subscriptions": `
			SELECT endpoint, expiration_time, p256dh, auth,
			       lat, lng, method, location_name, timezone, language,
			       active, created_at, updated_at,
			       last_notified_key, last_notified_at
			FROM push_subscriptions
			WHERE active = true
			ORDER BY updated_at DESC`,

		"find_active_subscription": `
			SELECT endpoint, expiration_time, p256dh, auth,
			       lat, lng, method, location_name, timezone, language,
			       active, created_at, updated_at,
			       last_notified_key, last_notified_at
			FROM push_subscriptions
			WHERE endpoint = $1 AND active = true`,

		// Subscriptions: re-subscribe upserts by endpoint, never duplicates
		"upsert_subscription": `
			INSERT INTO push_subscriptions (
				endpoint, expiration_time, p256dh, auth,
				lat, lng, method, location_name, timezone, language,
				active, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,true,$11,$11)
			ON CONFLICT (endpoint) DO UPDATE SET
				expiration_time = EXCLUDED.expiration_time,
				p256dh = EXCLUDED.p256dh,
				auth = EXCLUDED.auth,
				lat = EXCLUDED.lat,
				lng = EXCLUDED.lng,
				method = EXCLUDED.method,
				location_name = EXCLUDED.location_name,
				timezone = EXCLUDED.timezone,
				language = EXCLUDED.language,
				active = true,
				updated_at = EXCLUDED.updated_at`,

		// Dispatch bookkeeping — each statement is a single per-row write,
		// which is the atomicity boundary for overlapping dispatch runs
		"mark_notified": `
			UPDATE push_subscriptions
			SET last_notified_key = $2, last_notified_at = $3, updated_at = $3
			WHERE endpoint = $1`,

		"deactivate_subscription": `
			UPDATE push_subscriptions
			SET active = false, updated_at = $2
			WHERE endpoint = $1`,

		// Maintenance: administrative purge of long-inactive endpoints
		"purge_inactive_subscriptions": `
			DELETE FROM push_subscriptions
			WHERE active = false AND updated_at < $1`,

		// deenctl
		"list_all_subscriptions": `
			SELECT endpoint, location_name, timezone, method,
			       active, updated_at, last_notified_key
			FROM push_subscriptions
			ORDER BY updated_at DESC
			LIMIT $1`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}

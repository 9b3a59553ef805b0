package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no active subscription matches an endpoint.
var ErrNotFound = errors.New("subscription not found")

// Store is the subscription persistence consumed by the dispatcher.
type Store interface {
	ListActive(ctx context.Context) ([]Subscription, error)
	MarkNotified(ctx context.Context, endpoint, key string, at time.Time) error
	Deactivate(ctx context.Context, endpoint string, at time.Time) error
}

// PGStore is the Postgres-backed subscription store. All statements are
// registered as prepared statements in internal/db.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a store on the shared connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Upsert creates or refreshes the row for sub.Endpoint. Re-subscription
// always reactivates the endpoint.
func (s *PGStore) Upsert(ctx context.Context, sub *Subscription, now time.Time) error {
	var language interface{}
	if sub.Language != "" {
		language = sub.Language
	}

	_, err := s.pool.Exec(ctx, "upsert_subscription",
		sub.Endpoint, sub.ExpirationTime, sub.Keys.P256dh, sub.Keys.Auth,
		sub.Lat, sub.Lng, sub.Method, sub.LocationName, sub.Timezone, language,
		now)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// ListActive returns every subscription the dispatcher should evaluate.
func (s *PGStore) ListActive(ctx context.Context) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx, "list_active_subscriptions")
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// FindActive returns the active subscription for an endpoint, or ErrNotFound.
func (s *PGStore) FindActive(ctx context.Context, endpoint string) (*Subscription, error) {
	row := s.pool.QueryRow(ctx, "find_active_subscription", endpoint)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

// MarkNotified records a successful delivery for dedup on later passes.
// A single keyed UPDATE is the atomicity boundary between overlapping runs.
func (s *PGStore) MarkNotified(ctx context.Context, endpoint, key string, at time.Time) error {
	_, err := s.pool.Exec(ctx, "mark_notified", endpoint, key, at)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// Deactivate flags an endpoint as gone. The row is kept — deletion is an
// administrative concern handled by maintenance, not the dispatch path.
func (s *PGStore) Deactivate(ctx context.Context, endpoint string, at time.Time) error {
	_, err := s.pool.Exec(ctx, "deactivate_subscription", endpoint, at)
	if err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	return nil
}

// PurgeInactive deletes subscriptions deactivated before the cutoff.
// Returns the number of rows removed.
func (s *PGStore) PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "purge_inactive_subscriptions", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge inactive subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Overview is a condensed row for operational listings.
type Overview struct {
	Endpoint        string
	LocationName    string
	Timezone        string
	Method          int
	Active          bool
	UpdatedAt       time.Time
	LastNotifiedKey string
}

// ListAll returns up to limit subscriptions, newest first, for deenctl.
func (s *PGStore) ListAll(ctx context.Context, limit int) ([]Overview, error) {
	rows, err := s.pool.Query(ctx, "list_all_subscriptions", limit)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []Overview
	for rows.Next() {
		var o Overview
		var lastKey *string
		if err := rows.Scan(&o.Endpoint, &o.LocationName, &o.Timezone,
			&o.Method, &o.Active, &o.UpdatedAt, &lastKey); err != nil {
			return nil, fmt.Errorf("scan overview: %w", err)
		}
		if lastKey != nil {
			o.LastNotifiedKey = *lastKey
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanSubscription(row pgx.Row) (Subscription, error) {
	var sub Subscription
	var language, lastKey *string
	err := row.Scan(
		&sub.Endpoint, &sub.ExpirationTime, &sub.Keys.P256dh, &sub.Keys.Auth,
		&sub.Lat, &sub.Lng, &sub.Method, &sub.LocationName, &sub.Timezone, &language,
		&sub.Active, &sub.CreatedAt, &sub.UpdatedAt,
		&lastKey, &sub.LastNotifiedAt,
	)
	if err != nil {
		return Subscription{}, err
	}
	if language != nil {
		sub.Language = *language
	}
	if lastKey != nil {
		sub.LastNotifiedKey = *lastKey
	}
	return sub, nil
}

package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deenxzikr/deen-api/internal/cache"
)

// TimingSource supplies prayer timings for a date and location. Production
// uses the cached Aladhan client; tests use stubs.
type TimingSource interface {
	DayTimings(ctx context.Context, dateKey string, loc Location) (map[string]string, error)
}

// Evaluator decides whether a prayer notification is due for a location.
type Evaluator struct {
	source TimingSource
}

// NewEvaluator creates an evaluator backed by the given timing source.
func NewEvaluator(source TimingSource) *Evaluator {
	return &Evaluator{source: source}
}

// Evaluate returns the first canonical prayer whose start time falls within
// [now, now+windowMinutes] in the location's timezone, or nil when none does.
//
// A prayer starting exactly now (delta 0) is due; one that already passed is
// not. At most one prayer is returned per call — first match in canonical
// order, so a pass stays idempotent regardless of window adjacency.
func (e *Evaluator) Evaluate(ctx context.Context, loc Location, now time.Time, windowMinutes int) (*DueNotification, error) {
	if windowMinutes < 0 {
		return nil, fmt.Errorf("window minutes must be >= 0, got %d", windowMinutes)
	}

	dateKey, err := LocalDateKey(now, loc.Timezone)
	if err != nil {
		return nil, err
	}

	timings, err := e.source.DayTimings(ctx, dateKey, loc)
	if err != nil {
		return nil, fmt.Errorf("fetch timings: %w", err)
	}

	nowMinutes, err := LocalMinutesOfDay(now, loc.Timezone)
	if err != nil {
		return nil, err
	}

	for _, name := range CanonicalPrayers {
		prayerMinutes, ok := ParseClockMinutes(timings[name])
		if !ok {
			continue
		}

		delta := prayerMinutes - nowMinutes
		if delta < 0 || delta > windowMinutes {
			continue
		}

		return &DueNotification{
			Key:             dateKey + "-" + name,
			Prayer:          name,
			StartsInMinutes: delta,
		}, nil
	}

	return nil, nil
}

// --------------------------------------------------------------------------
// Cached timing source
// --------------------------------------------------------------------------

// CachedSource wraps the Aladhan client with a short-TTL cache so concurrent
// evaluations for nearby subscriptions share one upstream response.
type CachedSource struct {
	client *Client
	cache  *cache.Cache
}

// NewCachedSource creates a timing source with dispatch-grade caching.
func NewCachedSource(client *Client, c *cache.Cache) *CachedSource {
	return &CachedSource{client: client, cache: c}
}

// DayTimings fetches (or reuses) the prayer timings for one local day.
func (s *CachedSource) DayTimings(ctx context.Context, dateKey string, loc Location) (map[string]string, error) {
	key := fmt.Sprintf("timings:%s:%.4f:%.4f:%d", dateKey, loc.Lat, loc.Lng, loc.Method)

	if data, _, ok := s.cache.Get(key); ok {
		var timings map[string]string
		if err := json.Unmarshal(data, &timings); err == nil {
			return timings, nil
		}
	}

	payload, err := s.client.Timings(ctx, dateKey, loc)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(payload.Timings); err == nil {
		s.cache.Set(key, data, cache.TTLDispatchTimings)
	}
	return payload.Timings, nil
}

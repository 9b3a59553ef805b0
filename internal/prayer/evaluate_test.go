package prayer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"
)

// stubSource returns fixed timings regardless of date/location.
type stubSource struct {
	timings map[string]string
	err     error
	calls   int
}

func (s *stubSource) DayTimings(ctx context.Context, dateKey string, loc Location) (map[string]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.timings, nil
}

func dhakaAt(hour, minute int) time.Time {
	loc, err := time.LoadLocation("Asia/Dhaka")
	if err != nil {
		panic(err)
	}
	return time.Date(2026, 3, 2, hour, minute, 0, 0, loc)
}

var dhaka = Location{Lat: 23.8103, Lng: 90.4125, Method: 3, Timezone: "Asia/Dhaka"}

func TestEvaluateFajrInsideWindow(t *testing.T) {
	source := &stubSource{timings: map[string]string{
		"Fajr": "05:03", "Sunrise": "06:10", "Dhuhr": "12:10",
		"Asr": "16:25", "Maghrib": "18:05", "Isha": "19:30",
	}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(5, 0), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due == nil {
		t.Fatal("expected a due notification")
	}
	if due.Prayer != "Fajr" {
		t.Fatalf("expected Fajr, got %s", due.Prayer)
	}
	if due.StartsInMinutes != 3 {
		t.Fatalf("expected 3 minutes, got %d", due.StartsInMinutes)
	}
	if due.Key != "02-03-2026-Fajr" {
		t.Fatalf("unexpected key %s", due.Key)
	}
}

func TestEvaluateExactStartMatches(t *testing.T) {
	source := &stubSource{timings: map[string]string{"Dhuhr": "12:10"}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(12, 10), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due == nil || due.StartsInMinutes != 0 {
		t.Fatalf("expected delta 0 to match, got %+v", due)
	}
}

func TestEvaluatePassedPrayerNeverMatches(t *testing.T) {
	source := &stubSource{timings: map[string]string{"Fajr": "05:03"}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(5, 4), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due != nil {
		t.Fatalf("expected no match for a passed prayer, got %+v", due)
	}
}

func TestEvaluateBeyondWindowNeverMatches(t *testing.T) {
	source := &stubSource{timings: map[string]string{"Fajr": "05:15"}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(5, 0), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due != nil {
		t.Fatalf("expected no match beyond the window, got %+v", due)
	}
}

func TestEvaluateWindowIsInclusive(t *testing.T) {
	source := &stubSource{timings: map[string]string{"Fajr": "05:10"}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(5, 0), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due == nil || due.StartsInMinutes != 10 {
		t.Fatalf("expected delta 10 to match inclusively, got %+v", due)
	}
}

func TestEvaluateSunriseExcluded(t *testing.T) {
	source := &stubSource{timings: map[string]string{"Sunrise": "06:05"}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(6, 0), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due != nil {
		t.Fatalf("Sunrise must never be a candidate, got %+v", due)
	}
}

func TestEvaluateFirstMatchInCanonicalOrderWins(t *testing.T) {
	// Two prayers inside the window cannot happen with real spacing, but
	// the contract pins the choice to canonical order regardless.
	source := &stubSource{timings: map[string]string{
		"Fajr":  "05:08",
		"Dhuhr": "05:05",
	}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(5, 0), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due == nil || due.Prayer != "Fajr" {
		t.Fatalf("expected Fajr by canonical order, got %+v", due)
	}
}

func TestEvaluateSkipsUnparseableTiming(t *testing.T) {
	source := &stubSource{timings: map[string]string{
		"Fajr":  "-----",
		"Dhuhr": "05:05",
	}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(5, 0), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due == nil || due.Prayer != "Dhuhr" {
		t.Fatalf("expected Dhuhr after skipping unparseable Fajr, got %+v", due)
	}
}

func TestEvaluateStripsTimingAnnotations(t *testing.T) {
	source := &stubSource{timings: map[string]string{"Maghrib": "18:05 (+06)"}}
	e := NewEvaluator(source)

	due, err := e.Evaluate(context.Background(), dhaka, dhakaAt(18, 0), 10)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if due == nil || due.Prayer != "Maghrib" || due.StartsInMinutes != 5 {
		t.Fatalf("expected Maghrib in 5 minutes, got %+v", due)
	}
}

func TestEvaluatePropagatesSourceFailure(t *testing.T) {
	source := &stubSource{err: errors.New("upstream down")}
	e := NewEvaluator(source)

	if _, err := e.Evaluate(context.Background(), dhaka, dhakaAt(5, 0), 10); err == nil {
		t.Fatal("expected error from failing source")
	}
}

func TestEvaluateRejectsNegativeWindow(t *testing.T) {
	e := NewEvaluator(&stubSource{timings: map[string]string{}})

	if _, err := e.Evaluate(context.Background(), dhaka, dhakaAt(5, 0), -1); err == nil {
		t.Fatal("expected error for negative window")
	}
}

func TestEvaluateRejectsUnknownZone(t *testing.T) {
	e := NewEvaluator(&stubSource{timings: map[string]string{}})
	bad := Location{Lat: 0, Lng: 0, Method: 3, Timezone: "Nowhere/Town"}

	if _, err := e.Evaluate(context.Background(), bad, time.Now(), 10); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestEvaluateDayBoundaryChangesKey(t *testing.T) {
	source := &stubSource{timings: map[string]string{"Fajr": "05:03", "Isha": "19:30"}}
	e := NewEvaluator(source)

	ishaDue, err := e.Evaluate(context.Background(), dhaka, dhakaAt(19, 25), 10)
	if err != nil || ishaDue == nil {
		t.Fatalf("expected Isha due, got %+v err=%v", ishaDue, err)
	}

	nextDay := dhakaAt(5, 0).AddDate(0, 0, 1)
	fajrDue, err := e.Evaluate(context.Background(), dhaka, nextDay, 10)
	if err != nil || fajrDue == nil {
		t.Fatalf("expected Fajr due next day, got %+v err=%v", fajrDue, err)
	}

	if ishaDue.Key == fajrDue.Key {
		t.Fatalf("keys must differ across the day boundary: %s", ishaDue.Key)
	}
	if fajrDue.Key != fmt.Sprintf("03-03-2026-%s", "Fajr") {
		t.Fatalf("unexpected next-day key %s", fajrDue.Key)
	}
}

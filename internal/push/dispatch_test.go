package push

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/deenxzikr/deen-api/internal/prayer"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type fakeStore struct {
	subs    map[string]*Subscription
	listErr error

	marked      []string // "endpoint|key"
	deactivated []string
	markErr     error
}

func newFakeStore(subs ...*Subscription) *fakeStore {
	s := &fakeStore{subs: make(map[string]*Subscription)}
	for _, sub := range subs {
		s.subs[sub.Endpoint] = sub
	}
	return s
}

func (s *fakeStore) ListActive(ctx context.Context) ([]Subscription, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []Subscription
	for _, sub := range s.subs {
		if sub.Active {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkNotified(ctx context.Context, endpoint, key string, at time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, endpoint+"|"+key)
	if sub, ok := s.subs[endpoint]; ok {
		sub.LastNotifiedKey = key
		sub.LastNotifiedAt = &at
	}
	return nil
}

func (s *fakeStore) Deactivate(ctx context.Context, endpoint string, at time.Time) error {
	s.deactivated = append(s.deactivated, endpoint)
	if sub, ok := s.subs[endpoint]; ok {
		sub.Active = false
	}
	return nil
}

type fakeSender struct {
	errs map[string]error // per endpoint
	sent []*Message
}

func (f *fakeSender) Send(ctx context.Context, sub *Subscription, msg *Message) error {
	if err, ok := f.errs[sub.Endpoint]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixedTimings struct {
	timings map[string]string
	err     error
}

func (f *fixedTimings) DayTimings(ctx context.Context, dateKey string, loc prayer.Location) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.timings, nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func dhakaSub(endpoint string) *Subscription {
	return &Subscription{
		Endpoint: endpoint,
		Keys:     Keys{P256dh: "p256dh-key", Auth: "auth-secret"},
		Lat:      23.8103,
		Lng:      90.4125,
		Method:   3,
		Timezone: "Asia/Dhaka",
		Active:   true,
	}
}

func dhakaClock(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Dhaka")
	if err != nil {
		t.Fatal(err)
	}
	return time.Date(2026, 3, 2, hour, minute, 0, 0, loc)
}

func newTestDispatcher(store Store, sender Sender, source prayer.TimingSource) *Dispatcher {
	return NewDispatcher(store, sender, prayer.NewEvaluator(source), 10, testLogger)
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestDispatchSendsDueReminder(t *testing.T) {
	store := newFakeStore(dhakaSub("https://push.example/a"))
	sender := &fakeSender{}
	d := newTestDispatcher(store, sender, &fixedTimings{timings: map[string]string{"Fajr": "05:03"}})

	summary, err := d.Run(context.Background(), dhakaClock(t, 5, 0))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Total != 1 || summary.Sent != 1 || summary.Skipped != 0 || summary.Expired != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	if len(store.marked) != 1 || store.marked[0] != "https://push.example/a|02-03-2026-Fajr" {
		t.Fatalf("unexpected mark calls %v", store.marked)
	}
}

func TestDispatchSecondPassIsDeduplicated(t *testing.T) {
	store := newFakeStore(dhakaSub("https://push.example/a"))
	sender := &fakeSender{}
	d := newTestDispatcher(store, sender, &fixedTimings{timings: map[string]string{"Fajr": "05:03"}})

	if _, err := d.Run(context.Background(), dhakaClock(t, 5, 0)); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	summary, err := d.Run(context.Background(), dhakaClock(t, 5, 1))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if summary.Sent != 0 || summary.Skipped != 1 {
		t.Fatalf("expected dedup skip, got %+v", summary)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("repeat passes must not resend, got %d sends", len(sender.sent))
	}
}

func TestDispatchDedupResetsAcrossDays(t *testing.T) {
	store := newFakeStore(dhakaSub("https://push.example/a"))
	sender := &fakeSender{}
	d := newTestDispatcher(store, sender, &fixedTimings{timings: map[string]string{
		"Fajr": "05:03", "Isha": "19:30",
	}})

	if _, err := d.Run(context.Background(), dhakaClock(t, 19, 25)); err != nil {
		t.Fatalf("isha run failed: %v", err)
	}

	nextFajr := dhakaClock(t, 5, 0).AddDate(0, 0, 1)
	summary, err := d.Run(context.Background(), nextFajr)
	if err != nil {
		t.Fatalf("next-day run failed: %v", err)
	}
	if summary.Sent != 1 {
		t.Fatalf("next-day Fajr must send again, got %+v", summary)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 sends across days, got %d", len(sender.sent))
	}
}

func TestDispatchGoneEndpointExpires(t *testing.T) {
	store := newFakeStore(dhakaSub("https://push.example/gone"))
	sender := &fakeSender{errs: map[string]error{
		"https://push.example/gone": &SendError{StatusCode: 410},
	}}
	d := newTestDispatcher(store, sender, &fixedTimings{timings: map[string]string{"Fajr": "05:03"}})

	summary, err := d.Run(context.Background(), dhakaClock(t, 5, 0))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Expired != 1 || summary.Sent != 0 {
		t.Fatalf("expected expiry, got %+v", summary)
	}
	if len(store.deactivated) != 1 {
		t.Fatalf("expected deactivate call, got %v", store.deactivated)
	}

	// The deactivated endpoint must leave the active set entirely.
	summary, err = d.Run(context.Background(), dhakaClock(t, 5, 1))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if summary.Total != 0 {
		t.Fatalf("deactivated subscription still listed: %+v", summary)
	}
}

func TestDispatchNotFoundAlsoExpires(t *testing.T) {
	store := newFakeStore(dhakaSub("https://push.example/missing"))
	sender := &fakeSender{errs: map[string]error{
		"https://push.example/missing": &SendError{StatusCode: 404},
	}}
	d := newTestDispatcher(store, sender, &fixedTimings{timings: map[string]string{"Fajr": "05:03"}})

	summary, err := d.Run(context.Background(), dhakaClock(t, 5, 0))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Expired != 1 {
		t.Fatalf("404 must expire the endpoint, got %+v", summary)
	}
}

func TestDispatchTransientFailureLeavesDedupMarker(t *testing.T) {
	sub := dhakaSub("https://push.example/flaky")
	store := newFakeStore(sub)
	sender := &fakeSender{errs: map[string]error{
		"https://push.example/flaky": &SendError{StatusCode: 500},
	}}
	d := newTestDispatcher(store, sender, &fixedTimings{timings: map[string]string{"Fajr": "05:03"}})

	summary, err := d.Run(context.Background(), dhakaClock(t, 5, 0))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Skipped != 1 || summary.Expired != 0 || summary.Sent != 0 {
		t.Fatalf("transient failure must skip, got %+v", summary)
	}
	if sub.LastNotifiedKey != "" {
		t.Fatal("transient failure must not record a delivery")
	}
	if len(store.deactivated) != 0 {
		t.Fatal("transient failure must not deactivate")
	}

	// Upstream recovers; the next pass inside the window delivers.
	sender.errs = nil
	summary, err = d.Run(context.Background(), dhakaClock(t, 5, 1))
	if err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if summary.Sent != 1 {
		t.Fatalf("retry pass should deliver, got %+v", summary)
	}
}

func TestDispatchEvaluateFailureIsolatedPerSubscription(t *testing.T) {
	good := dhakaSub("https://push.example/good")
	bad := dhakaSub("https://push.example/bad")
	bad.Timezone = "Nowhere/Town"
	store := newFakeStore(good, bad)
	sender := &fakeSender{}
	d := newTestDispatcher(store, sender, &fixedTimings{timings: map[string]string{"Fajr": "05:03"}})

	summary, err := d.Run(context.Background(), dhakaClock(t, 5, 0))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Total != 2 || summary.Sent != 1 || summary.Skipped != 1 {
		t.Fatalf("bad timezone must not abort the pass, got %+v", summary)
	}
}

func TestDispatchTimingSourceFailureSkips(t *testing.T) {
	store := newFakeStore(dhakaSub("https://push.example/a"))
	sender := &fakeSender{}
	d := newTestDispatcher(store, sender, &fixedTimings{err: errors.New("aladhan down")})

	summary, err := d.Run(context.Background(), dhakaClock(t, 5, 0))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Skipped != 1 || summary.Sent != 0 {
		t.Fatalf("timing failure must skip, got %+v", summary)
	}
	if len(sender.sent) != 0 {
		t.Fatal("nothing should be sent when timings are unavailable")
	}
}

func TestDispatchListFailureFailsFast(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")
	d := newTestDispatcher(store, &fakeSender{}, &fixedTimings{timings: map[string]string{}})

	if _, err := d.Run(context.Background(), dhakaClock(t, 5, 0)); err == nil {
		t.Fatal("expected error when the subscription scan fails")
	}
}

func TestDispatchPersistFailureStillCountsAsSent(t *testing.T) {
	store := newFakeStore(dhakaSub("https://push.example/a"))
	store.markErr = errors.New("write timeout")
	sender := &fakeSender{}
	d := newTestDispatcher(store, sender, &fixedTimings{timings: map[string]string{"Fajr": "05:03"}})

	summary, err := d.Run(context.Background(), dhakaClock(t, 5, 0))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Sent != 1 {
		t.Fatalf("delivery happened, summary must count it: %+v", summary)
	}
}

func TestComposeMessage(t *testing.T) {
	due := &prayer.DueNotification{Key: "02-03-2026-Fajr", Prayer: "Fajr", StartsInMinutes: 3}
	msg := ComposeMessage(due, "Dhaka")

	if msg.Title != "Prayer Reminder · Fajr" {
		t.Fatalf("unexpected title %q", msg.Title)
	}
	if msg.Body != "Fajr starts in 3 minutes (Dhaka)." {
		t.Fatalf("unexpected body %q", msg.Body)
	}
	if msg.Tag != "prayer-02-03-2026-Fajr" {
		t.Fatalf("unexpected tag %q", msg.Tag)
	}
	if msg.URL != "/salah" {
		t.Fatalf("unexpected url %q", msg.URL)
	}

	now := &prayer.DueNotification{Key: "02-03-2026-Dhuhr", Prayer: "Dhuhr", StartsInMinutes: 0}
	msg = ComposeMessage(now, "Dhaka")
	if !strings.HasPrefix(msg.Body, "It is time for Dhuhr") {
		t.Fatalf("unexpected immediate body %q", msg.Body)
	}
}

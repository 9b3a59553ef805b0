package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTimingMiddlewareSetsHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	TimingMiddleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Process-Time") == "" {
		t.Fatal("expected X-Process-Time header")
	}
}

func TestRateLimitMiddlewareLimitsPerIP(t *testing.T) {
	// 2 requests per window with burst 1: the second immediate request
	// from the same IP must be rejected.
	mw := RateLimitMiddleware(2, time.Minute)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/prayer-times", nil)
	req.RemoteAddr = "203.0.113.7:4411"

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want window seconds", rec.Header().Get("Retry-After"))
	}

	// A different IP has its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/api/v1/prayer-times", nil)
	other.RemoteAddr = "203.0.113.8:4411"
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other IP: got %d", rec.Code)
	}
}

func TestRateLimitMiddlewareExemptsCronPath(t *testing.T) {
	mw := RateLimitMiddleware(2, time.Minute)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/cron/prayer-reminders", nil)
	req.RemoteAddr = "203.0.113.9:4411"

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("cron request %d: got %d, want exemption", i, rec.Code)
		}
	}
}

func TestIPLimiterEvictsStaleBuckets(t *testing.T) {
	l := newIPLimiter(10, time.Minute)
	l.allow("203.0.113.10")

	l.mu.Lock()
	l.limiters["203.0.113.10"].lastSeen = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	l.evictStale()

	l.mu.Lock()
	_, exists := l.limiters["203.0.113.10"]
	l.mu.Unlock()
	if exists {
		t.Fatal("stale bucket must be evicted")
	}
}

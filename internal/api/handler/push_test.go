package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deenxzikr/deen-api/internal/config"
	"github.com/deenxzikr/deen-api/internal/push"
)

func validSubscribeRequest() subscribeRequest {
	var req subscribeRequest
	req.Subscription.Endpoint = "https://push.example/endpoint"
	req.Subscription.Keys = push.Keys{P256dh: "p256dh-key", Auth: "auth-secret"}
	req.Lat = 23.8103
	req.Lng = 90.4125
	req.Method = 3
	req.LocationName = "Dhaka, Bangladesh"
	req.Timezone = "Asia/Dhaka"
	req.Language = "bn"
	return req
}

func TestSubscribeRequestValidate(t *testing.T) {
	valid := validSubscribeRequest()
	if err := valid.validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*subscribeRequest)
	}{
		{"bad endpoint", func(r *subscribeRequest) { r.Subscription.Endpoint = "not a url" }},
		{"missing p256dh", func(r *subscribeRequest) { r.Subscription.Keys.P256dh = "" }},
		{"missing auth", func(r *subscribeRequest) { r.Subscription.Keys.Auth = "" }},
		{"lat too high", func(r *subscribeRequest) { r.Lat = 91 }},
		{"lng too low", func(r *subscribeRequest) { r.Lng = -181 }},
		{"method zero", func(r *subscribeRequest) { r.Method = 0 }},
		{"method too high", func(r *subscribeRequest) { r.Method = 26 }},
		{"empty location name", func(r *subscribeRequest) { r.LocationName = "" }},
		{"location name too long", func(r *subscribeRequest) { r.LocationName = strings.Repeat("x", 161) }},
		{"empty timezone", func(r *subscribeRequest) { r.Timezone = "" }},
		{"unknown timezone", func(r *subscribeRequest) { r.Timezone = "Nowhere/Town" }},
		{"language too long", func(r *subscribeRequest) { r.Language = strings.Repeat("x", 33) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := validSubscribeRequest()
			c.mutate(&req)
			if err := req.validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestGetVAPIDPublicKey(t *testing.T) {
	unconfigured := &Handler{cfg: &config.Config{}, logger: testLogger}
	rec := httptest.NewRecorder()
	unconfigured.GetVAPIDPublicKey(rec, httptest.NewRequest(http.MethodGet, "/api/v1/push/public-key", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when unconfigured, got %d", rec.Code)
	}

	configured := &Handler{
		cfg: &config.Config{
			VAPIDPublicKey:  "test-public-key",
			VAPIDPrivateKey: "test-private-key",
			VAPIDSubject:    "mailto:admin@deenxzikr.com",
		},
		logger: testLogger,
	}
	rec = httptest.NewRecorder()
	configured.GetVAPIDPublicKey(rec, httptest.NewRequest(http.MethodGet, "/api/v1/push/public-key", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test-public-key") {
		t.Fatalf("response missing public key: %s", rec.Body.String())
	}
}

func TestSubscribePushUnconfigured(t *testing.T) {
	h := &Handler{cfg: &config.Config{}, logger: testLogger}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/push/subscribe", strings.NewReader("{}"))
	h.SubscribePush(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSubscribePushRejectsBadPayload(t *testing.T) {
	h := &Handler{cfg: &config.Config{}, logger: testLogger, sender: stubSender{}}

	bodies := []string{
		"not json",
		"{}",
		`{"subscription":{"endpoint":"https://push.example/a","keys":{"p256dh":"k","auth":"a"}},"lat":95,"lng":0,"method":3,"locationName":"Dhaka","timezone":"Asia/Dhaka"}`,
	}
	for i, body := range bodies {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/push/subscribe", strings.NewReader(body))
		h.SubscribePush(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %d: expected 400, got %d", i, rec.Code)
		}
	}
}

func TestTestPushRequiresTarget(t *testing.T) {
	h := &Handler{cfg: &config.Config{}, logger: testLogger, sender: stubSender{}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/push/test", strings.NewReader("{}"))
	h.TestPush(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without endpoint or subscription, got %d", rec.Code)
	}
}

func TestTestPushInlineSubscription(t *testing.T) {
	h := &Handler{cfg: &config.Config{}, logger: testLogger, sender: stubSender{}}

	body := `{"subscription":{"endpoint":"https://push.example/a","keys":{"p256dh":"k","auth":"a"}}}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/push/test", strings.NewReader(body))
	h.TestPush(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"source":"request"`) {
		t.Fatalf("expected request source, got %s", rec.Body.String())
	}
}

package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// VAPIDConfig carries the voluntary application server identification keys.
// Validated once at construction and passed by reference — no ambient global
// "is push configured" state.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subject    string // mailto: or https: contact for the push service
}

// Validate reports whether the config is complete.
func (c VAPIDConfig) Validate() error {
	if c.PublicKey == "" || c.PrivateKey == "" || c.Subject == "" {
		return fmt.Errorf("web push is not configured: VAPID public key, private key, and subject are required")
	}
	return nil
}

// SendError is a delivery failure carrying the push service's status code.
type SendError struct {
	StatusCode int
}

func (e *SendError) Error() string {
	return fmt.Sprintf("push delivery failed: status %d", e.StatusCode)
}

// Gone reports whether the endpoint no longer exists (the subscriber must
// re-subscribe; retrying is pointless).
func (e *SendError) Gone() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}

// Sender delivers a payload to one subscription endpoint.
type Sender interface {
	Send(ctx context.Context, sub *Subscription, msg *Message) error
}

// WebPushSender sends notifications through the Web Push protocol with VAPID
// authentication.
type WebPushSender struct {
	vapid      VAPIDConfig
	httpClient *http.Client
	ttl        int
}

// NewWebPushSender validates the VAPID config and creates a sender.
func NewWebPushSender(vapid VAPIDConfig) (*WebPushSender, error) {
	if err := vapid.Validate(); err != nil {
		return nil, err
	}
	return &WebPushSender{
		vapid:      vapid,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ttl:        60,
	}, nil
}

// Send delivers msg to the subscription's endpoint. Non-2xx responses are
// returned as *SendError so callers can branch on the status code.
func (s *WebPushSender) Send(ctx context.Context, sub *Subscription, msg *Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &webpush.Options{
		HTTPClient:      s.httpClient,
		Subscriber:      s.vapid.Subject,
		VAPIDPublicKey:  s.vapid.PublicKey,
		VAPIDPrivateKey: s.vapid.PrivateKey,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{StatusCode: resp.StatusCode}
	}
	return nil
}

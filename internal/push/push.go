// Package push delivers prayer reminders over the Web Push protocol.
//
// The dispatcher scans active subscriptions, asks the prayer evaluator
// whether a reminder is due, sends due reminders through the web push sender,
// and reconciles expired endpoints back into the store. Each subscription's
// outcome is independent — one bad endpoint never aborts the pass.
package push

import (
	"time"

	"github.com/deenxzikr/deen-api/internal/prayer"
)

// Keys is the delivery credential material issued by the client's push
// service alongside the endpoint.
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is one registered device/browser endpoint plus the location
// context needed to evaluate prayer times for it.
type Subscription struct {
	Endpoint       string     `json:"endpoint"`
	ExpirationTime *int64     `json:"expiration_time,omitempty"`
	Keys           Keys       `json:"keys"`
	Lat            float64    `json:"lat"`
	Lng            float64    `json:"lng"`
	Method         int        `json:"method"`
	LocationName   string     `json:"location_name"`
	Timezone       string     `json:"timezone"`
	Language       string     `json:"language,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Dedup marker: key of the most recently delivered prayer reminder.
	// Empty until the first delivery.
	LastNotifiedKey string     `json:"last_notified_key,omitempty"`
	LastNotifiedAt  *time.Time `json:"last_notified_at,omitempty"`
}

// Location returns the evaluation coordinates for this subscription.
func (s *Subscription) Location() prayer.Location {
	return prayer.Location{
		Lat:      s.Lat,
		Lng:      s.Lng,
		Method:   s.Method,
		Timezone: s.Timezone,
	}
}

// Message is the JSON payload delivered to the service worker.
type Message struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	Tag          string `json:"tag"`
	Prayer       string `json:"prayer,omitempty"`
	LocationName string `json:"locationName,omitempty"`
	URL          string `json:"url"`
}

// Summary aggregates one dispatch pass.
type Summary struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Expired int `json:"expired"`
}

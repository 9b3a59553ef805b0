package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deenxzikr/deen-api/internal/prayer"
)

// Dispatcher runs one reminder pass over all active subscriptions.
//
// Per subscription: evaluate, dedup against lastNotifiedKey, send, persist.
// Delivery and persistence failures are isolated per subscription; a
// transient failure leaves the dedup marker untouched so the next scheduled
// pass retries.
type Dispatcher struct {
	store     Store
	sender    Sender
	evaluator *prayer.Evaluator
	window    int
	logger    *slog.Logger
}

// NewDispatcher wires the dispatch pipeline. windowMinutes is the lookahead
// window passed to the evaluator.
func NewDispatcher(store Store, sender Sender, evaluator *prayer.Evaluator, windowMinutes int, logger *slog.Logger) *Dispatcher {
	if windowMinutes <= 0 {
		windowMinutes = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:     store,
		sender:    sender,
		evaluator: evaluator,
		window:    windowMinutes,
		logger:    logger,
	}
}

// Run processes every active subscription once. It fails fast only when the
// subscription scan itself fails; everything after that is per-subscription.
func (d *Dispatcher) Run(ctx context.Context, now time.Time) (Summary, error) {
	subs, err := d.store.ListActive(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list active subscriptions: %w", err)
	}

	summary := Summary{Total: len(subs)}
	for i := range subs {
		d.process(ctx, &subs[i], now, &summary)
	}

	d.logger.Info("dispatch pass complete",
		"total", summary.Total, "sent", summary.Sent,
		"skipped", summary.Skipped, "expired", summary.Expired)
	return summary, nil
}

func (d *Dispatcher) process(ctx context.Context, sub *Subscription, now time.Time, summary *Summary) {
	due, err := d.evaluator.Evaluate(ctx, sub.Location(), now, d.window)
	if err != nil {
		// Upstream timing failure is "not due this pass" for this
		// subscription only.
		d.logger.Warn("evaluate failed", "endpoint", sub.Endpoint, "error", err)
		summary.Skipped++
		return
	}
	if due == nil {
		summary.Skipped++
		return
	}

	if sub.LastNotifiedKey == due.Key {
		// Already delivered for this prayer instance.
		summary.Skipped++
		return
	}

	msg := ComposeMessage(due, sub.LocationName)
	if err := d.sender.Send(ctx, sub, msg); err != nil {
		var sendErr *SendError
		if errors.As(err, &sendErr) && sendErr.Gone() {
			// Endpoint is permanently invalid until the client
			// re-subscribes.
			if err := d.store.Deactivate(ctx, sub.Endpoint, now); err != nil {
				d.logger.Warn("deactivate failed", "endpoint", sub.Endpoint, "error", err)
			}
			summary.Expired++
			return
		}
		d.logger.Warn("send failed", "endpoint", sub.Endpoint, "prayer", due.Prayer, "error", err)
		summary.Skipped++
		return
	}

	// Best-effort: a failed write here risks one duplicate on the next
	// pass, which is preferred over a missed reminder.
	if err := d.store.MarkNotified(ctx, sub.Endpoint, due.Key, now); err != nil {
		d.logger.Warn("mark notified failed", "endpoint", sub.Endpoint, "key", due.Key, "error", err)
	}
	summary.Sent++
}

// ComposeMessage builds the notification payload for a due prayer.
func ComposeMessage(due *prayer.DueNotification, locationName string) *Message {
	var body string
	if due.StartsInMinutes <= 1 {
		body = fmt.Sprintf("It is time for %s in %s.", due.Prayer, locationName)
	} else {
		body = fmt.Sprintf("%s starts in %d minutes (%s).", due.Prayer, due.StartsInMinutes, locationName)
	}
	return &Message{
		Title:        "Prayer Reminder · " + due.Prayer,
		Body:         body,
		Tag:          "prayer-" + due.Key,
		Prayer:       due.Prayer,
		LocationName: locationName,
		URL:          "/salah",
	}
}

// StartWorker runs dispatch passes on a fixed interval for deployments
// without an external scheduler. Blocks until ctx is cancelled. Intended to
// be called with `go`.
func StartWorker(ctx context.Context, d *Dispatcher, interval time.Duration, logger *slog.Logger) {
	logger.Info("Reminder dispatch worker started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := d.Run(ctx, time.Now()); err != nil {
				logger.Error("dispatch error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("Reminder dispatch worker stopped")
			return
		}
	}
}

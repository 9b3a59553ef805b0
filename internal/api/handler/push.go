package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/deenxzikr/deen-api/internal/api/respond"
	"github.com/deenxzikr/deen-api/internal/config"
	"github.com/deenxzikr/deen-api/internal/push"
)

// subscribeRequest mirrors the browser PushSubscription JSON plus the
// location context needed to evaluate prayer times.
type subscribeRequest struct {
	Subscription struct {
		Endpoint       string    `json:"endpoint"`
		ExpirationTime *int64    `json:"expirationTime"`
		Keys           push.Keys `json:"keys"`
	} `json:"subscription"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Method       int     `json:"method"`
	LocationName string  `json:"locationName"`
	Timezone     string  `json:"timezone"`
	Language     string  `json:"language"`
}

func (req *subscribeRequest) validate() error {
	if _, err := url.ParseRequestURI(req.Subscription.Endpoint); err != nil {
		return fmt.Errorf("endpoint must be a valid URL")
	}
	if req.Subscription.Keys.P256dh == "" || req.Subscription.Keys.Auth == "" {
		return fmt.Errorf("subscription keys are required")
	}
	if req.Lat < -90 || req.Lat > 90 {
		return fmt.Errorf("lat must be in [-90, 90]")
	}
	if req.Lng < -180 || req.Lng > 180 {
		return fmt.Errorf("lng must be in [-180, 180]")
	}
	if req.Method < config.MinMethod || req.Method > config.MaxMethod {
		return fmt.Errorf("method must be in [%d, %d]", config.MinMethod, config.MaxMethod)
	}
	if req.LocationName == "" || len(req.LocationName) > 160 {
		return fmt.Errorf("locationName must be 1-160 characters")
	}
	if req.Timezone == "" || len(req.Timezone) > 120 {
		return fmt.Errorf("timezone must be 1-120 characters")
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return fmt.Errorf("timezone must be a valid IANA zone name")
	}
	if len(req.Language) > 32 {
		return fmt.Errorf("language must be at most 32 characters")
	}
	return nil
}

// GetVAPIDPublicKey returns the public key browsers need to subscribe.
// @Summary VAPID public key
// @Description Returns the server's VAPID public key for client subscription.
// @Tags push
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} respond.ErrorResponse
// @Router /push/public-key [get]
func (h *Handler) GetVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.PushConfigured() {
		respond.WriteError(w, http.StatusServiceUnavailable, "PUSH_NOT_CONFIGURED", "Web push is not configured")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"publicKey": h.cfg.VAPIDPublicKey,
	})
}

// SubscribePush registers or refreshes a push subscription.
// Upsert is keyed by endpoint: re-subscribing never creates a duplicate and
// always reactivates the endpoint.
// @Summary Subscribe to prayer reminders
// @Description Registers a browser push subscription with its location context. Upserts by endpoint.
// @Tags push
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /push/subscribe [post]
func (h *Handler) SubscribePush(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "PUSH_NOT_CONFIGURED", "Web push is not configured")
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid push subscription payload")
		return
	}
	if err := req.validate(); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}

	sub := &push.Subscription{
		Endpoint:       req.Subscription.Endpoint,
		ExpirationTime: req.Subscription.ExpirationTime,
		Keys:           req.Subscription.Keys,
		Lat:            req.Lat,
		Lng:            req.Lng,
		Method:         req.Method,
		LocationName:   req.LocationName,
		Timezone:       req.Timezone,
		Language:       req.Language,
	}

	if err := h.store.Upsert(r.Context(), sub, time.Now()); err != nil {
		h.logger.Error("subscription upsert failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to persist push subscription")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

// UnsubscribePush deactivates a subscription by endpoint.
// @Summary Unsubscribe from prayer reminders
// @Description Flags the subscription inactive. The row is retained until administrative purge.
// @Tags push
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /push/unsubscribe [post]
func (h *Handler) UnsubscribePush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid unsubscribe payload")
		return
	}
	if _, err := url.ParseRequestURI(req.Endpoint); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "endpoint must be a valid URL")
		return
	}

	if err := h.store.Deactivate(r.Context(), req.Endpoint, time.Now()); err != nil {
		h.logger.Error("unsubscribe failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to unsubscribe")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

// TestPush sends a test notification to a stored or inline subscription.
// @Summary Send a test notification
// @Description Delivers a test push to a stored endpoint or an inline subscription. A 404/410 from the push service deactivates the stored record.
// @Tags push
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /push/test [post]
func (h *Handler) TestPush(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "PUSH_NOT_CONFIGURED", "Web push is not configured")
		return
	}

	var req struct {
		Endpoint     string `json:"endpoint"`
		Subscription *struct {
			Endpoint       string    `json:"endpoint"`
			ExpirationTime *int64    `json:"expirationTime"`
			Keys           push.Keys `json:"keys"`
		} `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid test payload")
		return
	}

	var target *push.Subscription
	source := "request"
	switch {
	case req.Subscription != nil:
		target = &push.Subscription{
			Endpoint:       req.Subscription.Endpoint,
			ExpirationTime: req.Subscription.ExpirationTime,
			Keys:           req.Subscription.Keys,
		}
	case req.Endpoint != "":
		stored, err := h.store.FindActive(r.Context(), req.Endpoint)
		if err != nil {
			if errors.Is(err, push.ErrNotFound) {
				respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Subscription not found")
				return
			}
			respond.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to look up subscription")
			return
		}
		target = stored
		source = "database"
	default:
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "endpoint or subscription is required")
		return
	}

	msg := &push.Message{
		Title: "Deen X Zikr",
		Body:  "Web push is active. You will receive prayer reminders.",
		Tag:   "push-test",
		URL:   "/salah",
	}
	if err := h.sender.Send(r.Context(), target, msg); err != nil {
		var sendErr *push.SendError
		if errors.As(err, &sendErr) && sendErr.Gone() && source == "database" {
			if derr := h.store.Deactivate(r.Context(), target.Endpoint, time.Now()); derr != nil {
				h.logger.Warn("deactivate after test failure failed", "error", derr)
			}
		}
		h.logger.Warn("test push failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "DELIVERY_ERROR", err.Error())
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"source":  source,
	})
}

package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/deenxzikr/deen-api/internal/api/respond"
)

// RunDispatch executes one reminder pass over all active subscriptions.
//
// Configuration problems (push unconfigured, trigger secret unset) are
// reported before any subscription is touched; a mismatched secret is 401.
// @Summary Run the prayer reminder dispatch
// @Description Evaluates every active subscription and sends due reminders. Authorized by the shared cron secret via Bearer token or ?secret=.
// @Tags dispatch
// @Produce json
// @Param secret query string false "Shared secret (alternative to Authorization header)"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /cron/prayer-reminders [get]
func (h *Handler) RunDispatch(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "PUSH_NOT_CONFIGURED", "Web push is not configured")
		return
	}
	if h.cfg.CronSecret == "" {
		respond.WriteError(w, http.StatusServiceUnavailable, "SECRET_NOT_CONFIGURED", "CRON_SECRET is missing")
		return
	}

	// Either presentation works: Authorization header or query parameter.
	headerSecret := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		headerSecret = strings.TrimPrefix(auth, "Bearer ")
	}
	querySecret := r.URL.Query().Get("secret")
	if !secretMatches(headerSecret, h.cfg.CronSecret) && !secretMatches(querySecret, h.cfg.CronSecret) {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	summary, err := h.dispatcher.Run(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("dispatch run failed", "error", err)
		respond.WriteError(w, http.StatusServiceUnavailable, "DISPATCH_FAILED", "Failed to scan subscriptions")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"total":   summary.Total,
		"sent":    summary.Sent,
		"skipped": summary.Skipped,
		"expired": summary.Expired,
	})
}

func secretMatches(presented, expected string) bool {
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

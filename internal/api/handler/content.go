package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/deenxzikr/deen-api/internal/api/respond"
	"github.com/deenxzikr/deen-api/internal/cache"
	"github.com/deenxzikr/deen-api/internal/content"
	"github.com/deenxzikr/deen-api/internal/external"
)

// GetHadithLibrary returns curated hadith, optionally filtered.
// @Summary Hadith library
// @Description Returns the curated hadith collection, filterable by collection (bukhari, muslim, tirmidhi) and category (faith, character, prayer, knowledge).
// @Tags content
// @Produce json
// @Param collection query string false "Collection filter"
// @Param category query string false "Category filter"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /hadith [get]
func (h *Handler) GetHadithLibrary(w http.ResponseWriter, r *http.Request) {
	rows, err := content.FilterHadith(
		r.URL.Query().Get("collection"),
		r.URL.Query().Get("category"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"hadith": rows,
	})
}

// GetDailyHadith returns the day-seeded hadith pick.
// @Summary Daily hadith
// @Description Returns the curated hadith for today. Deterministic per UTC day.
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /daily-hadith [get]
func (h *Handler) GetDailyHadith(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"hadith": content.HadithOfDay(time.Now()),
	})
}

// GetDailyInspiration returns the day-seeded ayah, hadith, and dua.
// @Summary Daily inspiration
// @Description Returns an ayah of the day (Al-Quran Cloud) plus a hadith and dua. Falls back to local content when the upstream is unavailable.
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /daily-inspiration [get]
func (h *Handler) GetDailyInspiration(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	hadith := content.HadithOfDay(now)
	dua := content.DuaOfDay(now)

	// Keyed by day so a cached entry never outlives its pick.
	cacheKey := fmt.Sprintf("daily-inspiration:%d", content.DaySeed(now))
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLDailyContent, true)
		return
	}

	var ayah *external.Ayah
	fetched, err := h.quran.AyahByNumber(r.Context(), content.AyahNumberOfDay(now, external.TotalAyahs))
	if err != nil {
		// Local hadith and dua still make a useful response.
		h.logger.Warn("ayah of the day fetch failed", "error", err)
	} else {
		ayah = fetched
	}

	resp := map[string]interface{}{
		"ayah":   ayah,
		"hadith": hadith,
		"dua":    dua,
	}

	data, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}

	// Only cache complete responses; a fallback without the ayah should be
	// retried on the next request.
	if ayah != nil {
		etag := h.cache.Set(cacheKey, data, cache.TTLDailyContent)
		respond.WriteJSON(w, data, etag, cache.TTLDailyContent, false)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, resp)
}

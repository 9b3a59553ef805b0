package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/deenxzikr/deen-api/internal/api/respond"
	"github.com/deenxzikr/deen-api/internal/cache"
	"github.com/deenxzikr/deen-api/internal/prayer"
)

// prayerTimesResponse is the normalized daily timetable shape.
type prayerTimesResponse struct {
	Date         string            `json:"date"`
	ReadableDate string            `json:"readableDate"`
	Timezone     string            `json:"timezone"`
	LocationName string            `json:"locationName"`
	MethodID     int               `json:"methodId"`
	Timings      map[string]string `json:"timings"`
	Hijri        string            `json:"hijri"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
}

// GetPrayerTimes returns the daily prayer timetable for a coordinate.
// @Summary Daily prayer times
// @Description Returns Aladhan prayer times for a coordinate and calculation method, today or a specific date.
// @Tags prayer
// @Produce json
// @Param lat query number true "Latitude [-90, 90]"
// @Param lng query number true "Longitude [-180, 180]"
// @Param method query int false "Calculation method (1-25, default 3)"
// @Param date query string false "Date as DD-MM-YYYY (default today)"
// @Param locationName query string false "Display name for the location"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /prayer-times [get]
func (h *Handler) GetPrayerTimes(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseCoords(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_COORDS", err.Error())
		return
	}
	method, err := parseMethod(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_METHOD", err.Error())
		return
	}

	date := r.URL.Query().Get("date")
	if date != "" && !validDateKey(date) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "date must be DD-MM-YYYY")
		return
	}

	locationName := r.URL.Query().Get("locationName")
	if locationName == "" {
		locationName = "Your location"
	}
	if len(locationName) > 160 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_LOCATION_NAME", "locationName must be at most 160 characters")
		return
	}

	cacheKey := fmt.Sprintf("prayer-times:%.4f:%.4f:%d:%s", lat, lng, method, date)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLPrayerTimes, true)
		return
	}

	loc := prayer.Location{Lat: lat, Lng: lng, Method: method}
	payload, err := h.aladhan.Timings(r.Context(), date, loc)
	if err != nil {
		h.logger.Warn("prayer times fetch failed", "error", err)
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Prayer times unavailable")
		return
	}

	timings := make(map[string]string, len(prayer.DisplayPrayers))
	for _, name := range prayer.DisplayPrayers {
		timings[name] = payload.Timings[name]
	}

	resp := prayerTimesResponse{
		Date:         payload.DateKey,
		ReadableDate: payload.ReadableDate,
		Timezone:     payload.Timezone,
		LocationName: locationName,
		MethodID:     method,
		Timings:      timings,
		Hijri:        payload.Hijri,
		Latitude:     payload.Latitude,
		Longitude:    payload.Longitude,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLPrayerTimes)
	respond.WriteJSON(w, data, etag, cache.TTLPrayerTimes, false)
}

// GetPrayerCalendar returns one month of prayer times for a coordinate.
// @Summary Monthly prayer calendar
// @Description Returns the Aladhan monthly timetable for a coordinate and calculation method.
// @Tags prayer
// @Produce json
// @Param lat query number true "Latitude [-90, 90]"
// @Param lng query number true "Longitude [-180, 180]"
// @Param method query int false "Calculation method (1-25, default 3)"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year (2020-2100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /prayer-calendar [get]
func (h *Handler) GetPrayerCalendar(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseCoords(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_COORDS", err.Error())
		return
	}
	method, err := parseMethod(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_METHOD", err.Error())
		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_MONTH", "month must be an integer in [1, 12]")
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2020 || year > 2100 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_YEAR", "year must be an integer in [2020, 2100]")
		return
	}

	cacheKey := fmt.Sprintf("prayer-calendar:%.4f:%.4f:%d:%d:%d", lat, lng, method, year, month)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLPrayerCalendar, true)
		return
	}

	loc := prayer.Location{Lat: lat, Lng: lng, Method: method}
	days, err := h.aladhan.Calendar(r.Context(), year, month, loc)
	if err != nil {
		h.logger.Warn("prayer calendar fetch failed", "error", err)
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Prayer calendar unavailable")
		return
	}

	data, err := json.Marshal(map[string]interface{}{"days": days})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLPrayerCalendar)
	respond.WriteJSON(w, data, etag, cache.TTLPrayerCalendar, false)
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deenxzikr/deen-api/internal/api/respond"
	"github.com/deenxzikr/deen-api/internal/cache"
)

// GetGeocode performs forward geocoding for a free-text query.
// @Summary Geocode a place
// @Description Resolves a free-text place query to coordinates via Nominatim.
// @Tags geo
// @Produce json
// @Param q query string true "Place query (2-100 characters)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /geo [get]
func (h *Handler) GetGeocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) < 2 || len(query) > 100 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "q must be 2-100 characters")
		return
	}

	cacheKey := "geo:" + query
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLGeocode, true)
		return
	}

	places, err := h.geocode.Search(r.Context(), query)
	if err != nil {
		h.logger.Warn("geocode failed", "query", query, "error", err)
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch location data")
		return
	}

	data, err := json.Marshal(map[string]interface{}{"results": places})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLGeocode)
	respond.WriteJSON(w, data, etag, cache.TTLGeocode, false)
}

// GetWeather returns current conditions at a coordinate.
// @Summary Current weather
// @Description Returns Open-Meteo current conditions with a display label.
// @Tags geo
// @Produce json
// @Param lat query number true "Latitude [-90, 90]"
// @Param lng query number true "Longitude [-180, 180]"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /weather [get]
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseCoords(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_COORDS", err.Error())
		return
	}

	cacheKey := fmt.Sprintf("weather:%.2f:%.2f", lat, lng)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLWeather, true)
		return
	}

	current, err := h.weather.Current(r.Context(), lat, lng)
	if err != nil {
		h.logger.Warn("weather fetch failed", "error", err)
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Weather unavailable")
		return
	}

	data, err := json.Marshal(current)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLWeather)
	respond.WriteJSON(w, data, etag, cache.TTLWeather, false)
}

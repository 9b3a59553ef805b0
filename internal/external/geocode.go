// Package external provides clients for third-party APIs (geocoding,
// weather, Quran text).
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	nominatimBaseURL = "https://nominatim.openstreetmap.org"
	geocodeTimeout   = 15 * time.Second
	geocodeMaxHits   = 8
)

// Place is a normalized forward-geocoding hit.
type Place struct {
	ID    int64   `json:"id"`
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Type  string  `json:"type"`
}

// GeocodeService resolves free-text place queries via Nominatim.
type GeocodeService struct {
	baseURL    string
	httpClient *http.Client
}

// NewGeocodeService creates a geocoder. baseURL is overridable for tests.
func NewGeocodeService(baseURL string) *GeocodeService {
	if baseURL == "" {
		baseURL = nominatimBaseURL
	}
	return &GeocodeService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: geocodeTimeout},
	}
}

// nominatimResult mirrors the jsonv2 response shape.
type nominatimResult struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

// Search performs forward geocoding for a free-text query.
func (s *GeocodeService) Search(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(geocodeMaxHits))
	params.Set("q", query)

	u := s.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Nominatim usage policy requires an identifying agent.
	req.Header.Set("User-Agent", "DeenXZikr/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for _, entry := range raw {
		lat, errLat := strconv.ParseFloat(entry.Lat, 64)
		lng, errLng := strconv.ParseFloat(entry.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		places = append(places, Place{
			ID:    entry.PlaceID,
			Label: entry.DisplayName,
			Lat:   lat,
			Lng:   lng,
			Type:  entry.Type,
		})
	}
	return places, nil
}

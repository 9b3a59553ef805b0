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
	openMeteoBaseURL = "https://api.open-meteo.com"
	weatherTimeout   = 15 * time.Second
)

// CurrentWeather is a normalized current-conditions report.
type CurrentWeather struct {
	TemperatureC float64 `json:"temperature_c"`
	WeatherCode  int     `json:"weather_code"`
	WeatherLabel string  `json:"weather_label"`
	WindKmh      float64 `json:"wind_kmh"`
}

// WeatherService fetches current conditions from Open-Meteo.
type WeatherService struct {
	baseURL    string
	httpClient *http.Client
}

// NewWeatherService creates a weather client. baseURL is overridable for tests.
func NewWeatherService(baseURL string) *WeatherService {
	if baseURL == "" {
		baseURL = openMeteoBaseURL
	}
	return &WeatherService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: weatherTimeout},
	}
}

type openMeteoResponse struct {
	Current *struct {
		Temperature2m float64 `json:"temperature_2m"`
		WeatherCode   int     `json:"weather_code"`
		WindSpeed10m  float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// Current returns current conditions at a coordinate.
func (s *WeatherService) Current(ctx context.Context, lat, lng float64) (*CurrentWeather, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("current", "temperature_2m,weather_code,wind_speed_10m")

	u := s.baseURL + "/v1/forecast?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("weather: status %d", resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if payload.Current == nil {
		return nil, fmt.Errorf("weather: missing current block")
	}

	return &CurrentWeather{
		TemperatureC: payload.Current.Temperature2m,
		WeatherCode:  payload.Current.WeatherCode,
		WeatherLabel: WeatherLabel(payload.Current.WeatherCode),
		WindKmh:      payload.Current.WindSpeed10m,
	}, nil
}

// WeatherLabel maps a WMO weather code to a display label.
func WeatherLabel(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly Cloudy"
	case code <= 48:
		return "Foggy"
	case code <= 67:
		return "Rainy"
	case code <= 77:
		return "Snowy"
	case code <= 82:
		return "Showers"
	case code <= 99:
		return "Stormy"
	default:
		return "Unknown"
	}
}

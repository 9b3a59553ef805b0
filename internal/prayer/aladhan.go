// Aladhan HTTP client.
//
// Aladhan is unauthenticated but rate limited, so requests go through a token
// bucket limiter shared by the dispatch path and the API proxies.
package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.aladhan.com"

// Client is the shared HTTP client for Aladhan endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an Aladhan HTTP client with rate limiting.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 2),
		logger:     logger,
	}
}

// TimingsPayload is the normalized shape of /v1/timings responses.
type TimingsPayload struct {
	Timings      map[string]string `json:"timings"`
	ReadableDate string            `json:"readable_date"`
	DateKey      string            `json:"date_key"`
	Hijri        string            `json:"hijri"`
	Timezone     string            `json:"timezone"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
}

// CalendarDay is one day of a monthly timetable.
type CalendarDay struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	Fajr    string `json:"fajr"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
}

// aladhanTimings mirrors the upstream /v1/timings envelope.
type aladhanTimings struct {
	Data struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Readable  string `json:"readable"`
			Gregorian struct {
				Date string `json:"date"`
			} `json:"gregorian"`
			Hijri struct {
				Date  string `json:"date"`
				Month struct {
					En string `json:"en"`
				} `json:"month"`
				Year string `json:"year"`
			} `json:"hijri"`
		} `json:"date"`
		Meta struct {
			Timezone  string  `json:"timezone"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"meta"`
	} `json:"data"`
}

// aladhanCalendar mirrors the upstream /v1/calendar envelope.
type aladhanCalendar struct {
	Data []struct {
		Date struct {
			Gregorian struct {
				Date string `json:"date"`
				Day  string `json:"day"`
			} `json:"gregorian"`
		} `json:"date"`
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

// Timings fetches prayer times for a date at a coordinate. dateKey is
// DD-MM-YYYY; empty means "today in the upstream-resolved zone".
func (c *Client) Timings(ctx context.Context, dateKey string, loc Location) (*TimingsPayload, error) {
	path := "/v1/timings"
	if dateKey != "" {
		path += "/" + dateKey
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	params.Set("method", strconv.Itoa(loc.Method))

	var payload aladhanTimings
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	if payload.Data.Timings == nil {
		return nil, fmt.Errorf("aladhan timings: empty response")
	}

	hijri := fmt.Sprintf("%s %s %s",
		payload.Data.Date.Hijri.Date,
		payload.Data.Date.Hijri.Month.En,
		payload.Data.Date.Hijri.Year)

	return &TimingsPayload{
		Timings:      payload.Data.Timings,
		ReadableDate: payload.Data.Date.Readable,
		DateKey:      payload.Data.Date.Gregorian.Date,
		Hijri:        hijri,
		Timezone:     payload.Data.Meta.Timezone,
		Latitude:     payload.Data.Meta.Latitude,
		Longitude:    payload.Data.Meta.Longitude,
	}, nil
}

// Calendar fetches the monthly timetable for a coordinate.
func (c *Client) Calendar(ctx context.Context, year, month int, loc Location) ([]CalendarDay, error) {
	path := fmt.Sprintf("/v1/calendar/%d/%d", year, month)

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	params.Set("method", strconv.Itoa(loc.Method))

	var payload aladhanCalendar
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}

	days := make([]CalendarDay, 0, len(payload.Data))
	for _, d := range payload.Data {
		days = append(days, CalendarDay{
			Date:    d.Date.Gregorian.Date,
			Day:     d.Date.Gregorian.Day,
			Fajr:    d.Timings["Fajr"],
			Dhuhr:   d.Timings["Dhuhr"],
			Asr:     d.Timings["Asr"],
			Maghrib: d.Timings["Maghrib"],
			Isha:    d.Timings["Isha"],
		})
	}
	return days, nil
}

// get performs a rate-limited GET request to an Aladhan endpoint.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DeenXZikr/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("aladhan %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

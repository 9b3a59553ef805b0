package handler

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/deenxzikr/deen-api/internal/config"
)

var dateKeyPattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// parseCoords reads and bounds-checks lat/lng query parameters.
func parseCoords(r *http.Request) (lat, lng float64, err error) {
	lat, err = strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("lat must be a number in [-90, 90]")
	}
	lng, err = strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("lng must be a number in [-180, 180]")
	}
	return lat, lng, nil
}

// parseMethod reads the calculation method parameter with the MWL default.
func parseMethod(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("method")
	if raw == "" {
		return config.DefaultMethod, nil
	}
	method, err := strconv.Atoi(raw)
	if err != nil || method < config.MinMethod || method > config.MaxMethod {
		return 0, fmt.Errorf("method must be an integer in [%d, %d]", config.MinMethod, config.MaxMethod)
	}
	return method, nil
}

// validDateKey checks the DD-MM-YYYY shape Aladhan expects.
func validDateKey(s string) bool {
	return dateKeyPattern.MatchString(s)
}

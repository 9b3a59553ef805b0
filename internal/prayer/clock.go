package prayer

import (
	"fmt"
	"time"
)

// LocalDateKey renders the calendar date of t in the given IANA zone as
// DD-MM-YYYY — the date format Aladhan's timings endpoint expects, and the
// date component of the notification dedup key.
func LocalDateKey(t time.Time, zone string) (string, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return t.In(loc).Format("02-01-2006"), nil
}

// LocalMinutesOfDay returns minutes since local midnight of t in the given
// zone (0–1439).
func LocalMinutesOfDay(t time.Time, zone string) (int, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return 0, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	local := t.In(loc)
	return local.Hour()*60 + local.Minute(), nil
}

// ParseClockMinutes parses an upstream "HH:MM" timing into minutes since
// midnight. Trailing annotations past the minute digits ("05:03 (+06)") are
// ignored. Returns ok=false when the prefix is not a clock time.
func ParseClockMinutes(timing string) (minutes int, ok bool) {
	var h, m int
	n, err := fmt.Sscanf(timing, "%d:%d", &h, &m)
	if err != nil || n != 2 {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

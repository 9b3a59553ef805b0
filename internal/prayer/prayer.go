// Package prayer computes per-subscription prayer reminder decisions from
// upstream Aladhan timing data.
//
// The evaluator answers one question: given a location, a calculation method,
// and an instant, is one of the five daily prayers about to start? Sunrise is
// reported by the upstream API but is never a notification candidate.
package prayer

// CanonicalPrayers is the fixed evaluation order. The first prayer whose
// start falls inside the lookahead window wins; later candidates are not
// considered.
var CanonicalPrayers = []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}

// DisplayPrayers adds Sunrise for timetable responses.
var DisplayPrayers = []string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}

// Location identifies where and how prayer times are computed.
type Location struct {
	Lat      float64
	Lng      float64
	Method   int    // Aladhan calculation method identifier
	Timezone string // IANA zone name, e.g. "Asia/Dhaka"
}

// DueNotification describes a prayer whose start time falls inside the
// lookahead window. Key combines the local date and the prayer name and is
// the dedup unit: one notification per (subscription, prayer, day).
type DueNotification struct {
	Key             string // "<DD-MM-YYYY>-<prayer>"
	Prayer          string
	StartsInMinutes int
}

// Package timeline turns stored date strings into elapsed-time breakdowns and
// milestone countdowns. Every function is total: unparseable dates degrade to
// zero values instead of errors.
package timeline

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for computed target dates.
const DateLayout = "2006-01-02"

// Zone-less layouts, interpreted in the caller's location. The datetime-local
// forms come from plan reminder inputs.
var localLayouts = []string{
	DateLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
}

// ParseDate parses s as an RFC 3339 timestamp or one of the zone-less date
// forms. Zone-less values are placed in loc (time.Local when nil); zoned
// values are converted to loc. ok is false for anything else.
func ParseDate(s string, loc *time.Location) (t time.Time, ok bool) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b (negative when b is earlier).
// Both are read in their own locations, so DST shifts never produce an
// off-by-one.
func DaysBetween(a, b time.Time) int {
	return int(civilDay(b) - civilDay(a))
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return civilDay(a) == civilDay(b)
}

// DaysIn returns the number of days in the given month. Out-of-range months
// normalise like time.Date.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

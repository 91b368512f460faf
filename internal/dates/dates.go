package dates

import (
	"strings"
	"time"
)

// Layout is the canonical calendar-date format used on the wire and in storage.
const Layout = "2006-01-02"

// Placeholder is rendered wherever a date is missing or unparseable.
const Placeholder = "—"

var layouts = []string{
	Layout,
	"2 Jan 2006",
	time.RFC3339,
	"02 Jan 2006",
	"2006/01/02",
}

// Parse accepts the handful of date spellings clients send and returns the
// calendar day at UTC midnight.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day drops the clock part of t, keeping the calendar date t shows in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Normalize rewrites a parseable date as YYYY-MM-DD, or returns "" when it cannot.
func Normalize(s string) string {
	t, ok := Parse(s)
	if !ok {
		return ""
	}
	return Format(t)
}

// Display is Normalize with the placeholder for bad input.
func Display(s string) string {
	if n := Normalize(s); n != "" {
		return n
	}
	return Placeholder
}

// DaysBetween counts whole calendar days from a to b (negative when b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

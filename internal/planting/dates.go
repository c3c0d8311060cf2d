package planting

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// FrostWindow holds a location's frost dates. A zero First means the
// first-frost date is unknown.
type FrostWindow struct {
	Last  time.Time
	First time.Time
}

func (w FrostWindow) HasFirst() bool {
	return !w.First.IsZero()
}

// ParseFrostWindow parses both dates. ok is false when last is missing or
// invalid; an unusable first is dropped.
func ParseFrostWindow(last, first string) (FrostWindow, bool) {
	l, ok := ParseDate(last)
	if !ok {
		return FrostWindow{}, false
	}
	w := FrostWindow{Last: l}
	if f, ok := ParseDate(first); ok {
		w.First = f
	}
	return w, true
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns midnight
// UTC of that calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return civilDate(t), true
	}
	return time.Time{}, false
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

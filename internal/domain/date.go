package domain

import (
	"strings"
	"time"
)

// DateLayout is the canonical on-the-wire form of a calendar date.
const DateLayout = "2006-01-02"

var dateOnlyLayouts = []string{
	DateLayout,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses the date formats members arrive with. Date-only values
// are interpreted in loc; timestamps are converted into loc so that the
// calendar day matches what the gym sees on the wall clock.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t as a canonical calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CivilDay truncates t to midnight UTC of its calendar day in t's own
// location. Differences between two CivilDay values are whole days and are
// not affected by DST transitions.
func CivilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package normalize converts raw spreadsheet cells into typed values. Nothing
// here returns an error: unparseable input yields nil or ok=false and the
// caller decides whether that skips the row.
package normalize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

// ParseDateString parses s with the known layouts. Results are calendar dates
// at midnight UTC.
func ParseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseDate maps nil or unparseable input to nil.
func ParseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := ParseDateString(*s)
	if !ok {
		return nil
	}
	return &t
}

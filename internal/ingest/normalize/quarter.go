package normalize

import (
	"regexp"
	"strconv"
	"time"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

var (
	// Q3 2025, Q3-2025, Q3/25, Q3
	reQuarterFirst = regexp.MustCompile(`(?i)^Q\s*([1-4])(?:\s*[-/ ]\s*(\d{2}|\d{4}))?$`)
	// 2025-Q3, 2025 Q3
	reYearFirst = regexp.MustCompile(`(?i)^(\d{4})\s*[- ]?\s*Q\s*([1-4])$`)
	// FY25 Q3, FY2025-Q3, Q3 FY25
	reFiscal = regexp.MustCompile(`(?i)^(?:FY\s*'?(\d{2}|\d{4})\s*[- ]?\s*Q\s*([1-4])|Q\s*([1-4])\s*[- ]?\s*FY\s*'?(\d{2}|\d{4}))$`)
)

// ParseQuarter turns a quarter label into its date range. Plain quarters are
// calendar quarters; FY-prefixed ones are fiscal quarters of a year starting
// in fyStartMonth. A bare "Q3" takes fallbackYear, and fails when that is 0.
func ParseQuarter(s string, fallbackYear int, fyStartMonth int) (DateRange, bool) {
	s = trimAll(s)
	if m := reFiscal.FindStringSubmatch(s); m != nil {
		yy, q := m[1], m[2]
		if yy == "" {
			q, yy = m[3], m[4]
		}
		fy := expandYear(atoi(yy))
		start := FiscalYearStart(fy, fyStartMonth).AddDate(0, 3*(atoi(q)-1), 0)
		return quarterFrom(start), true
	}
	if m := reYearFirst.FindStringSubmatch(s); m != nil {
		return calendarQuarter(atoi(m[1]), atoi(m[2])), true
	}
	if m := reQuarterFirst.FindStringSubmatch(s); m != nil {
		year := fallbackYear
		if m[2] != "" {
			year = expandYear(atoi(m[2]))
		}
		if year <= 0 {
			return DateRange{}, false
		}
		return calendarQuarter(year, atoi(m[1])), true
	}
	return DateRange{}, false
}

func calendarQuarter(year, q int) DateRange {
	return quarterFrom(time.Date(year, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, time.UTC))
}

func quarterFrom(start time.Time) DateRange {
	return DateRange{Start: start, End: start.AddDate(0, 3, -1)}
}

func expandYear(y int) int {
	if y < 100 {
		return 2000 + y
	}
	return y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

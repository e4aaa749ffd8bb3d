package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const periodLayout = "Jan 2006"

var (
	reFiscalYear = regexp.MustCompile(`(?i)^(?:FY\s*'?)?(\d{2}|\d{4})(?:\s*[-/]\s*(\d{2}|\d{4}))?$`)
	reNumPeriod  = regexp.MustCompile(`^(\d{4})-(\d{1,2})$|^(\d{1,2})/(\d{4})$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ParseFiscalYear reads FY25, FY 2025, 2025 or FY24-25 and returns the four
// digit year the fiscal year is named after (its ending year for ranges).
func ParseFiscalYear(s string) (int, bool) {
	m := reFiscalYear.FindStringSubmatch(trimAll(s))
	if m == nil {
		return 0, false
	}
	y := m[1]
	if m[2] != "" {
		y = m[2]
	}
	year := expandYear(atoi(y))
	if year < 1900 || year > 2999 {
		return 0, false
	}
	return year, true
}

// FiscalYearLabel formats a fiscal year the way the sheets write it, e.g. FY25.
func FiscalYearLabel(year int) string {
	return fmt.Sprintf("FY%02d", year%100)
}

// FiscalYearStart is the first day of fiscal year fy. A fiscal year is named
// after the calendar year it ends in, so with startMonth 7 FY25 starts 1 Jul 2024.
func FiscalYearStart(fy, startMonth int) time.Time {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 1
	}
	year := fy
	if startMonth != 1 {
		year--
	}
	return time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
}

// FiscalYearOf returns the fiscal year containing t.
func FiscalYearOf(t time.Time, startMonth int) int {
	if startMonth <= 1 || int(t.Month()) < startMonth {
		return t.Year()
	}
	return t.Year() + 1
}

// MonthPeriods lists the twelve month periods of a fiscal year in order.
func MonthPeriods(fy, startMonth int) []string {
	start := FiscalYearStart(fy, startMonth)
	out := make([]string, 12)
	for i := range out {
		out[i] = start.AddDate(0, i, 0).Format(periodLayout)
	}
	return out
}

// PeriodOf formats the month period of t.
func PeriodOf(t time.Time) string {
	return t.Format(periodLayout)
}

// ParsePeriod canonicalizes a month period to "Jan 2026". Accepted forms:
// Jan 2026, January 2026, Jan-26, 2026-01, 01/2026.
func ParsePeriod(s string) (string, bool) {
	t, ok := parseMonth(trimAll(s))
	if !ok {
		return "", false
	}
	return PeriodOf(t), true
}

func parseMonth(s string) (time.Time, bool) {
	if m := reNumPeriod.FindStringSubmatch(s); m != nil {
		year, month := atoi(m[1]), atoi(m[2])
		if m[1] == "" {
			year, month = atoi(m[4]), atoi(m[3])
		}
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' || r == '/' || r == ',' || r == '\'' })
	if len(fields) != 2 {
		return time.Time{}, false
	}
	month, ok := monthNames[strings.ToLower(fields[0])]
	if !ok {
		return time.Time{}, false
	}
	year := atoi(fields[1])
	if year == 0 {
		return time.Time{}, false
	}
	return time.Date(expandYear(year), month, 1, 0, 0, 0, 0, time.UTC), true
}

// MonthColumn recognizes a wide-layout month header such as "Jan" or "September".
func MonthColumn(header string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSpace(header))]
	return m, ok
}

// PeriodForMonth returns the period of month within fiscal year fy.
func PeriodForMonth(fy, startMonth int, month time.Month) string {
	start := FiscalYearStart(fy, startMonth)
	offset := (int(month) - int(start.Month()) + 12) % 12
	return start.AddDate(0, offset, 0).Format(periodLayout)
}

func trimAll(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

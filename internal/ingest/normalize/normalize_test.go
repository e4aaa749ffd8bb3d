package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2025-03-01":           day(2025, 3, 1),
		"2025-03-01 10:30:00":  day(2025, 3, 1),
		"2025-03-01T10:30:00Z": day(2025, 3, 1),
		"3/1/2025":             day(2025, 3, 1),
		"03/01/2025":           day(2025, 3, 1),
		"3/1/25":               day(2025, 3, 1),
		"Mar 1, 2025":          day(2025, 3, 1),
		"March 1, 2025":        day(2025, 3, 1),
		"1 Mar 2025":           day(2025, 3, 1),
		"01-Mar-2025":          day(2025, 3, 1),
	}
	for in, want := range cases {
		got := ParseDate(sp(in))
		if assert.NotNil(t, got, in) {
			assert.True(t, want.Equal(*got), "%s: got %s", in, got)
		}
	}

	assert.Nil(t, ParseDate(nil))
	assert.Nil(t, ParseDate(sp("")))
	assert.Nil(t, ParseDate(sp("Q3")))
	assert.Nil(t, ParseDate(sp("2025-13-45")))
	assert.Nil(t, ParseDate(sp("soon")))
}

func TestParseBoolean(t *testing.T) {
	for _, in := range []string{"true", "TRUE", "1", "Yes", " yes "} {
		b := ParseBoolean(sp(in))
		require.NotNil(t, b, in)
		assert.True(t, *b, in)
	}
	for _, in := range []string{"false", "no", "maybe", "0"} {
		b := ParseBoolean(sp(in))
		require.NotNil(t, b, in)
		assert.False(t, *b, in)
	}
	assert.Nil(t, ParseBoolean(nil))
	assert.Nil(t, ParseBoolean(sp("  ")))

	assert.True(t, Bool(nil, true))
	assert.False(t, Bool(sp("no"), true))
}

type color string

func TestNormalizeEnum(t *testing.T) {
	members := []color{"RED", "DARK_BLUE"}

	got, ok := NormalizeEnum(sp("red"), members)
	assert.True(t, ok)
	assert.Equal(t, color("RED"), got)

	got, ok = NormalizeEnum(sp("dark blue"), members)
	assert.True(t, ok)
	assert.Equal(t, color("DARK_BLUE"), got)

	got, ok = NormalizeEnum(sp("Dark-Blue"), members)
	assert.True(t, ok)
	assert.Equal(t, color("DARK_BLUE"), got)

	_, ok = NormalizeEnum(sp("green"), members)
	assert.False(t, ok)
	_, ok = NormalizeEnum[color](nil, members)
	assert.False(t, ok)
}

func TestParseQuarter(t *testing.T) {
	tests := []struct {
		in       string
		fallback int
		fyStart  int
		start    time.Time
		end      time.Time
	}{
		{"Q3 2025", 0, 1, day(2025, 7, 1), day(2025, 9, 30)},
		{"q1-2026", 0, 1, day(2026, 1, 1), day(2026, 3, 31)},
		{"2025-Q4", 0, 1, day(2025, 10, 1), day(2025, 12, 31)},
		{"Q2", 2024, 1, day(2024, 4, 1), day(2024, 6, 30)},
		{"Q2/25", 0, 1, day(2025, 4, 1), day(2025, 6, 30)},
		{"FY25 Q1", 0, 7, day(2024, 7, 1), day(2024, 9, 30)},
		{"FY25 Q3", 0, 7, day(2025, 1, 1), day(2025, 3, 31)},
		{"Q3 FY2025", 0, 1, day(2025, 7, 1), day(2025, 9, 30)},
	}
	for _, tt := range tests {
		r, ok := ParseQuarter(tt.in, tt.fallback, tt.fyStart)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.start, r.Start, tt.in)
		assert.Equal(t, tt.end, r.End, tt.in)
	}

	_, ok := ParseQuarter("Q3", 0, 1)
	assert.False(t, ok, "bare quarter needs a year")
	_, ok = ParseQuarter("Q5 2025", 0, 1)
	assert.False(t, ok)
	_, ok = ParseQuarter("next quarter", 2025, 1)
	assert.False(t, ok)
}

func TestParseFiscalYear(t *testing.T) {
	for in, want := range map[string]int{
		"FY25":      2025,
		"fy 2025":   2025,
		"2025":      2025,
		"FY24-25":   2025,
		"FY'26":     2026,
		"FY2024/25": 2025,
	} {
		got, ok := ParseFiscalYear(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseFiscalYear("next year")
	assert.False(t, ok)
	assert.Equal(t, "FY25", FiscalYearLabel(2025))
	assert.Equal(t, "FY05", FiscalYearLabel(2005))
}

func TestFiscalYearHelpers(t *testing.T) {
	assert.Equal(t, day(2025, 1, 1), FiscalYearStart(2025, 1))
	assert.Equal(t, day(2024, 7, 1), FiscalYearStart(2025, 7))
	assert.Equal(t, 2025, FiscalYearOf(day(2024, 8, 15), 7))
	assert.Equal(t, 2025, FiscalYearOf(day(2025, 6, 30), 7))
	assert.Equal(t, 2025, FiscalYearOf(day(2025, 6, 30), 1))

	p := MonthPeriods(2025, 7)
	require.Len(t, p, 12)
	assert.Equal(t, "Jul 2024", p[0])
	assert.Equal(t, "Jun 2025", p[11])

	assert.Equal(t, "Jan 2025", PeriodForMonth(2025, 7, time.January))
	assert.Equal(t, "Sep 2024", PeriodForMonth(2025, 7, time.September))
	assert.Equal(t, "Mar 2025", PeriodForMonth(2025, 1, time.March))
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]string{
		"Jan 2026":     "Jan 2026",
		"january 2026": "Jan 2026",
		"Jan-26":       "Jan 2026",
		"2026-01":      "Jan 2026",
		"1/2026":       "Jan 2026",
		"Sept 2025":    "Sep 2025",
	} {
		got, ok := ParsePeriod(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "FY25", "2026-13", "Smarch 2026"} {
		_, ok := ParsePeriod(in)
		assert.False(t, ok, in)
	}

	m, ok := MonthColumn(" September ")
	assert.True(t, ok)
	assert.Equal(t, time.September, m)
	_, ok = MonthColumn("amount")
	assert.False(t, ok)
}

func TestParseDecimal(t *testing.T) {
	for in, want := range map[string]string{
		"1200":      "1200",
		"$1,200.50": "1200.5",
		"(300)":     "-300",
		"($1,000)":  "-1000",
		"-":         "0",
		"12.5":      "12.5",
	} {
		got, ok := ParseDecimal(sp(in))
		assert.True(t, ok, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s: got %s", in, got)
	}
	_, ok := ParseDecimal(nil)
	assert.False(t, ok)
	_, ok = ParseDecimal(sp("lots"))
	assert.False(t, ok)
}

func TestSplitEven(t *testing.T) {
	parts := SplitEven(decimal.NewFromInt(100), 12)
	require.Len(t, parts, 12)
	assert.Equal(t, "8.33", parts[0].StringFixed(2))
	assert.Equal(t, "8.37", parts[11].StringFixed(2))

	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(p)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(100)))

	neg := SplitEven(decimal.NewFromInt(-10), 3)
	assert.Equal(t, "-3.33", neg[0].StringFixed(2))
	assert.Equal(t, "-3.34", neg[2].StringFixed(2))

	assert.Nil(t, SplitEven(decimal.NewFromInt(1), 0))
}

func TestLinks(t *testing.T) {
	got := SplitLinks(sp("https://docs.google.com/document/d/1; http://example.org/plan.pdf  ftp://x notes https://docs.google.com/document/d/1"))
	assert.Equal(t, []string{"https://docs.google.com/document/d/1", "http://example.org/plan.pdf"}, got)
	assert.Nil(t, SplitLinks(nil))

	assert.Equal(t, "doc", LinkKind("https://docs.google.com/document/d/1"))
	assert.Equal(t, "sheet", LinkKind("https://docs.google.com/spreadsheets/d/1"))
	assert.Equal(t, "drive", LinkKind("https://drive.google.com/drive/folders/x"))
	assert.Equal(t, "sharepoint", LinkKind("https://org.sharepoint.com/sites/a"))
	assert.Equal(t, "asana", LinkKind("https://app.asana.com/0/1"))
	assert.Equal(t, "document", LinkKind("http://example.org/plan.PDF"))
	assert.Equal(t, "web", LinkKind("https://example.org/"))
	assert.Equal(t, "web", LinkKind("not a url"))
}

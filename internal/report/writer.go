// Package report writes run results as CSV for review in a spreadsheet.
package report

import (
	"bufio"
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
)

// WriteCSV writes header and rows through a buffer and flushes once.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return bw.Flush()
}

// Header of the warnings report.
var Header = []string{"bundle", "sheet", "line", "type", "message"}

// Entry is one warning split into its parts.
type Entry struct {
	Bundle  string
	Sheet   string
	Line    int
	Skipped bool
	Message string
}

// "<bundle>/<sheet>[ line N]: [skipped: ]message"
var reWarning = regexp.MustCompile(`^([^/]+)/(.+?)(?: line (\d+))?: (skipped: )?(.*)$`)

// ParseWarning splits a run warning. Warnings not in the bundle/sheet form
// keep the whole text as Message.
func ParseWarning(w string) Entry {
	m := reWarning.FindStringSubmatch(w)
	if m == nil {
		return Entry{Message: w}
	}
	line, _ := strconv.Atoi(m[3])
	return Entry{Bundle: m[1], Sheet: m[2], Line: line, Skipped: m[4] != "", Message: m[5]}
}

// Record is the report row of e.
func (e Entry) Record() []string {
	typ, line := "warning", ""
	if e.Skipped {
		typ = "skip"
	}
	if e.Line > 0 {
		line = strconv.Itoa(e.Line)
	}
	return []string{e.Bundle, e.Sheet, line, typ, e.Message}
}

// WriteWarnings writes one CSV row per warning.
func WriteWarnings(w io.Writer, warnings []string) error {
	rows := make([][]string, 0, len(warnings))
	for _, raw := range warnings {
		rows = append(rows, ParseWarning(raw).Record())
	}
	return WriteCSV(w, Header, rows)
}

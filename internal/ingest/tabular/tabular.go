// Package tabular turns delimited text exports and workbook sheets into rows
// keyed by header name.
package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Options control tokenizing. The zero value reads strict comma-separated text.
type Options struct {
	Comma      rune
	LazyQuotes bool
	// Name labels the source in errors and warnings.
	Name string
}

// Row is one data row. Cells maps the trimmed header to the trimmed value, or
// nil when the cell is empty or missing.
type Row struct {
	Line  int
	Cells map[string]*string
}

// Get returns the cell under header, nil if empty or absent.
func (r Row) Get(header string) *string {
	return r.Cells[header]
}

// Table is a parsed sheet.
type Table struct {
	Name    string
	Headers []string
	Rows    []Row
}

// ParseError means the tokenizer could not process the input. It is fatal for
// that source only.
type ParseError struct {
	Name string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Name, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads all rows from r. A leading byte-order mark is removed; UTF-16
// input with a BOM is decoded to UTF-8.
func Parse(r io.Reader, opts Options) (*Table, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(bufio.NewReaderSize(dec, 1<<20))
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = opts.LazyQuotes

	t := &Table{Name: opts.Name}

	header, err := cr.Read()
	if err == io.EOF {
		return t, nil
	}
	if err != nil {
		return nil, wrapReadErr(opts.Name, err)
	}

	var records [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapReadErr(opts.Name, err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}

	t.Headers, t.Rows = build(header, records, lines)
	return t, nil
}

// build maps records onto the header. Ragged rows are tolerated: missing cells
// are nil and extra cells are dropped. Rows with no value at all are skipped.
// With duplicate headers the right-most column wins.
func build(header []string, records [][]string, lines []int) ([]string, []Row) {
	headers := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		cells := make(map[string]*string, len(headers))
		empty := true
		for j, h := range headers {
			if h == "" {
				continue
			}
			var v *string
			if j < len(rec) {
				if s := strings.TrimSpace(rec[j]); s != "" {
					v = &s
					empty = false
				}
			}
			cells[h] = v
		}
		if empty {
			continue
		}
		rows = append(rows, Row{Line: lines[i], Cells: cells})
	}
	return headers, rows
}

func wrapReadErr(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Name: name, Line: pe.Line, Err: pe.Err}
	}
	return errors.Wrapf(err, "read %s", name)
}

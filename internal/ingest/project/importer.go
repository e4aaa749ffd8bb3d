// Package project imports raw exports that belong to one known project:
// budget and staff spreadsheets, and the Markdown comms brief.
//
// Each import replaces the project's rows in the scope the file covers
// (categories for budgets, periods for staff) inside one transaction, so a
// re-run with the same file leaves the table unchanged.
package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/store"
	"dashimport/internal/ingest/tabular"
)

// ErrUnknownProject is returned when the target slug does not exist.
var ErrUnknownProject = errors.New("unknown project")

// Importer runs the single-project imports against one store.
type Importer struct {
	store   *store.Store
	logger  *zap.Logger
	fyStart int
}

func NewImporter(st *store.Store, fiscalYearStartMonth int, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fiscalYearStartMonth < 1 || fiscalYearStartMonth > 12 {
		fiscalYearStartMonth = 1
	}
	return &Importer{store: st, logger: logger, fyStart: fiscalYearStartMonth}
}

// Result summarizes one single-project import.
type Result struct {
	Project  string   `json:"project"`
	Scope    []string `json:"scope"`
	Deleted  int64    `json:"deleted"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

func (r *Result) skip(line int, format string, args ...any) {
	r.Skipped++
	r.Warnings = append(r.Warnings, fmt.Sprintf("line %d: skipped: %s", line, fmt.Sprintf(format, args...)))
}

func (im *Importer) projectID(ctx context.Context, slug string) (int64, error) {
	id, err := im.store.FindProjectBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return 0, errors.Wrapf(ErrUnknownProject, "%q", slug)
	}
	return id, err
}

// rawColumns binds the headers of a raw export by canonical name.
type rawColumns struct {
	bind   map[string]string
	months map[int]string // fiscal position 0..11 -> header
}

func bindRaw(t *tabular.Table, fyStart int, names map[string][]string) rawColumns {
	rc := rawColumns{bind: map[string]string{}, months: map[int]string{}}
	for _, h := range t.Headers {
		canon := canonical(h)
		for name, aliases := range names {
			if canon == name || contains(aliases, canon) {
				if _, taken := rc.bind[name]; !taken {
					rc.bind[name] = h
				}
			}
		}
		if m, ok := normalize.MonthColumn(h); ok {
			rc.months[(int(m)-fyStart+12)%12] = h
		}
	}
	return rc
}

func (rc rawColumns) get(r tabular.Row, name string) *string {
	h, ok := rc.bind[name]
	if !ok {
		return nil
	}
	return r.Get(h)
}

func (rc rawColumns) text(r tabular.Row, name string) string {
	return strings.TrimSpace(normalize.Text(rc.get(r, name)))
}

func canonical(h string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(h), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), "_")
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

package sheets

import (
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"dashimport/internal/ingest/classify"
	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/tabular"
)

// sheet is a table bound to the columns of its kind.
type sheet struct {
	kind  classify.Kind
	label string
	table *tabular.Table

	bind   map[string]string
	months map[time.Month]string
	unused []string
}

func bindSheet(kind classify.Kind, t *tabular.Table) *sheet {
	s := &sheet{
		kind:   kind,
		label:  t.Name,
		table:  t,
		bind:   make(map[string]string),
		months: make(map[time.Month]string),
	}

	lookup := make(map[string]string)
	for _, c := range Columns[kind] {
		lookup[c.Name] = c.Name
		for _, a := range c.Aliases {
			lookup[Canonical(a)] = c.Name
		}
	}

	for _, h := range t.Headers {
		if h == "" {
			continue
		}
		canon := Canonical(h)
		if name, ok := lookup[canon]; ok {
			// an exact canonical name beats an alias
			if _, taken := s.bind[name]; !taken || canon == name {
				s.bind[name] = h
			}
			continue
		}
		if wide[kind] {
			if m, ok := normalize.MonthColumn(h); ok {
				s.months[m] = h
				continue
			}
		}
		s.unused = append(s.unused, h)
	}
	return s
}

func (s *sheet) rows() []tabular.Row { return s.table.Rows }

// get returns the cell of a consumed column, nil when absent or empty.
func (s *sheet) get(r tabular.Row, name string) *string {
	h, ok := s.bind[name]
	if !ok {
		return nil
	}
	return r.Get(h)
}

func (s *sheet) text(r tabular.Row, name string) string {
	return normalize.Text(s.get(r, name))
}

// hasData reports whether header h holds a value in at least one row.
func (s *sheet) hasData(h string) bool {
	for _, r := range s.table.Rows {
		if r.Get(h) != nil {
			return true
		}
	}
	return false
}

// suggest proposes the consumed column a stray header probably meant.
func suggest(kind classify.Kind, header string) string {
	var names []string
	for _, c := range Columns[kind] {
		names = append(names, c.Name)
	}
	canon := Canonical(header)
	if canon == "" {
		return ""
	}

	ranks := fuzzy.RankFindNormalizedFold(canon, names)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	// small edits only, relative to the header length
	best, bestDist := "", 3
	for _, n := range names {
		d := fuzzy.LevenshteinDistance(canon, n)
		if d < bestDist && 2*d < len(canon) {
			best, bestDist = n, d
		}
	}
	return best
}

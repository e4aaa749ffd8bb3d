// Package verify checks an imported database for orphaned references and
// duplicated natural keys.
package verify

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"dashimport/internal/report"
)

// Check is one query returning a single count; a non-zero count is a finding.
type Check struct {
	Name  string
	Kind  string // "orphan" or "duplicate"
	Query string
}

// Result of one check.
type Result struct {
	Check Check
	Count int64
	Err   error
}

// OK reports whether the check ran and found nothing.
func (r Result) OK() bool { return r.Err == nil && r.Count == 0 }

type ref struct {
	table, column, parent string
	nullable              bool
}

var refs = []ref{
	{"people", "department_id", "departments", true},
	{"projects", "owner_person_id", "people", true},
	{"projects", "department_id", "departments", true},
	{"project_links", "project_id", "projects", false},
	{"objectives", "project_id", "projects", false},
	{"key_results", "project_id", "projects", false},
	{"key_results", "objective_id", "objectives", false},
	{"pushes", "project_id", "projects", false},
	{"milestones", "project_id", "projects", false},
	{"milestones", "push_id", "pushes", true},
	{"activities", "project_id", "projects", false},
	{"activities", "push_id", "pushes", false},
	{"activities", "owner_person_id", "people", true},
	{"decision_makers", "project_id", "projects", false},
	{"budget_lines", "project_id", "projects", false},
	{"staff_allocations", "project_id", "projects", false},
	{"staff_allocations", "person_id", "people", false},
	{"comms_profiles", "project_id", "projects", false},
	{"key_messages", "comms_profile_id", "comms_profiles", false},
	{"calls_to_action", "comms_profile_id", "comms_profiles", false},
	{"comms_frames", "comms_profile_id", "comms_profiles", false},
	{"comms_faqs", "comms_profile_id", "comms_profiles", false},
}

// natural keys, as the upserts match them
var naturalKeys = map[string][]string{
	"departments":       {"code"},
	"people":            {"email"},
	"projects":          {"slug"},
	"objectives":        {"project_id", "title"},
	"key_results":       {"objective_id", "code"},
	"pushes":            {"project_id", "sequence_index"},
	"milestones":        {"project_id", "title"},
	"activities":        {"push_id", "title"},
	"decision_makers":   {"project_id", "name"},
	"budget_lines":      {"project_id", "category", "description", "period"},
	"staff_allocations": {"project_id", "person_id", "period"},
	"comms_profiles":    {"project_id"},
	"key_messages":      {"comms_profile_id", "text_hash"},
	"calls_to_action":   {"comms_profile_id", "text_hash"},
	"comms_frames":      {"comms_profile_id", "text_hash"},
	"comms_faqs":        {"comms_profile_id", "text_hash"},
}

// Checks lists every orphan and duplicate check in a stable order.
func Checks() []Check {
	out := make([]Check, 0, len(refs)+len(naturalKeys))
	for _, r := range refs {
		q := fmt.Sprintf("SELECT COUNT(*) FROM %s c LEFT JOIN %s p ON p.id = c.%s WHERE p.id IS NULL",
			r.table, r.parent, r.column)
		if r.nullable {
			q += fmt.Sprintf(" AND c.%s IS NOT NULL", r.column)
		}
		out = append(out, Check{Name: r.table + "." + r.column, Kind: "orphan", Query: q})
	}

	tables := make([]string, 0, len(naturalKeys))
	for t := range naturalKeys {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		cols := strings.Join(naturalKeys[t], ", ")
		q := fmt.Sprintf("SELECT COUNT(*) FROM (SELECT %s FROM %s GROUP BY %s HAVING COUNT(*) > 1) d", cols, t, cols)
		out = append(out, Check{Name: t + "(" + cols + ")", Kind: "duplicate", Query: q})
	}
	return out
}

// Run executes checks on a pool of workers and returns results in check
// order. progress, when non-nil, receives one tick per finished check.
func Run(ctx context.Context, db *sqlx.DB, checks []Check, workers int, progress chan<- int) []Result {
	if workers < 1 {
		workers = 1
	}
	type job struct {
		i int
		c Check
	}
	jobs := make(chan job, workers*2)
	results := make([]Result, len(checks))
	var wg sync.WaitGroup

	workerFn := func() {
		defer wg.Done()
		for j := range jobs {
			res := Result{Check: j.c}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				res.Err = db.GetContext(ctx, &res.Count, j.c.Query)
			}
			// each index is written by exactly one worker
			results[j.i] = res
			if progress != nil {
				progress <- 1
			}
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go workerFn()
	}
	for i, c := range checks {
		jobs <- job{i: i, c: c}
	}
	close(jobs)
	wg.Wait()
	return results
}

// Failed counts results that errored or found something.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// WriteResultsCSV writes one row per check (ok as "1" or "0").
func WriteResultsCSV(w io.Writer, results []Result) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		ok, msg := "1", ""
		if !r.OK() {
			ok = "0"
		}
		if r.Err != nil {
			msg = r.Err.Error()
		}
		rows = append(rows, []string{r.Check.Name, r.Check.Kind, strconv.FormatInt(r.Count, 10), ok, msg})
	}
	return report.WriteCSV(w, []string{"check", "kind", "count", "ok", "error"}, rows)
}

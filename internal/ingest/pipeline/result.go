package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"dashimport/internal/ingest/classify"
)

// Result is the summary of one run.
type Result struct {
	RunID      string    `json:"run_id"`
	Root       string    `json:"root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Bundles    []string  `json:"bundles"`

	Upserted map[classify.Kind]int `json:"upserted"`
	Skipped  map[classify.Kind]int `json:"skipped"`
	Warnings []string              `json:"warnings"`
}

func newResult(runID, root string, started time.Time) *Result {
	return &Result{
		RunID:     runID,
		Root:      root,
		StartedAt: started,
		Upserted:  make(map[classify.Kind]int),
		Skipped:   make(map[classify.Kind]int),
		Warnings:  []string{},
	}
}

// TotalUpserted sums the upsert counters.
func (r *Result) TotalUpserted() int {
	n := 0
	for _, v := range r.Upserted {
		n += v
	}
	return n
}

// TotalSkipped sums the skip counters.
func (r *Result) TotalSkipped() int {
	n := 0
	for _, v := range r.Skipped {
		n += v
	}
	return n
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// JSON encodes the result for import_runs and --json output.
func (r *Result) JSON() ([]byte, error) {
	return sonic.Marshal(r)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(word))
}

// WriteSummary prints the human summary: one line per kind that saw rows,
// then the warnings.
func (r *Result) WriteSummary(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %s from %s in %s\n", r.RunID,
		plural(len(r.Bundles), "bundle"), r.Root, r.Duration().Round(time.Millisecond))
	for _, k := range classify.Kinds {
		up, sk := r.Upserted[k], r.Skipped[k]
		if up == 0 && sk == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-16s %s upserted, %s skipped\n", k, plural(up, "row"), plural(sk, "row"))
	}
	fmt.Fprintf(&b, "total: %s upserted, %s skipped, %s\n",
		plural(r.TotalUpserted(), "row"), plural(r.TotalSkipped(), "row"), plural(len(r.Warnings), "warning"))
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  - %s\n", w)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// recorder feeds processor events into a Result.
type recorder struct {
	res    *Result
	logger *zap.Logger
}

func (r recorder) Upserted(kind classify.Kind, n int) { r.res.Upserted[kind] += n }
func (r recorder) Skipped(kind classify.Kind, n int)  { r.res.Skipped[kind] += n }
func (r recorder) Warn(msg string)                    { r.res.Warnings = append(r.res.Warnings, msg) }

// warnf records a run level warning (not tied to a row).
func (r recorder) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warn(msg)
	r.logger.Warn("[WARN] " + msg)
}

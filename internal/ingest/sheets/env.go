// Package sheets holds one processor per sheet kind. A processor binds the
// sheet's headers, then for every row validates the natural key, normalizes
// the cells and upserts. Bad rows are skipped with a warning; only store
// errors abort a sheet.
package sheets

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"dashimport/internal/ingest/classify"
	"dashimport/internal/ingest/resolve"
	"dashimport/internal/ingest/store"
)

// Recorder receives per-kind counts and warnings.
type Recorder interface {
	Upserted(kind classify.Kind, n int)
	Skipped(kind classify.Kind, n int)
	Warn(msg string)
}

// Env is shared by the processors of one bundle.
type Env struct {
	Store    *store.Store
	Resolver *resolve.Resolver
	Recorder Recorder
	Logger   *zap.Logger
	Validate *validator.Validate

	// Bundle is the bundle directory name, used in warnings.
	Bundle string
	// DefaultProject is the slug used by rows without a project_slug.
	DefaultProject string
	// FiscalYearStartMonth is the calendar month a fiscal year starts in.
	FiscalYearStartMonth int
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Env) fyStart() int {
	if e.FiscalYearStartMonth < 1 || e.FiscalYearStartMonth > 12 {
		return 1
	}
	return e.FiscalYearStartMonth
}

func (e *Env) validate() *validator.Validate {
	if e.Validate == nil {
		e.Validate = validator.New()
	}
	return e.Validate
}

func (e *Env) warnf(s *sheet, line int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		msg = fmt.Sprintf("%s/%s line %d: %s", e.Bundle, s.label, line, msg)
	} else {
		msg = fmt.Sprintf("%s/%s: %s", e.Bundle, s.label, msg)
	}
	e.Recorder.Warn(msg)
	e.logger().Warn("[WARN] "+msg, zap.String("kind", string(s.kind)))
}

func (e *Env) skipf(s *sheet, line int, format string, args ...any) {
	e.Recorder.Skipped(s.kind, 1)
	msg := fmt.Sprintf("%s/%s line %d: skipped: %s", e.Bundle, s.label, line, fmt.Sprintf(format, args...))
	e.Recorder.Warn(msg)
	e.logger().Debug("[SKIP] "+msg, zap.String("kind", string(s.kind)))
}

func (e *Env) upserted(s *sheet, n int) {
	e.Recorder.Upserted(s.kind, n)
}

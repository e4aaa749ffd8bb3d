// Package pipeline walks a root directory of bundles and imports every
// recognized sheet into the store.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dashimport/internal/ingest/classify"
	"dashimport/internal/ingest/resolve"
	"dashimport/internal/ingest/sheets"
	"dashimport/internal/ingest/store"
	"dashimport/internal/ingest/tabular"
)

// Options tune a Pipeline. Zero values are usable.
type Options struct {
	// Classifier defaults to classify.Default().
	Classifier *classify.Classifier
	// FiscalYearStartMonth defaults to January.
	FiscalYearStartMonth int
	// RecordRuns writes a row into import_runs per run.
	RecordRuns bool
	Logger     *zap.Logger
}

// Pipeline imports bundles into one store. Not safe for concurrent runs.
type Pipeline struct {
	store      *store.Store
	classifier *classify.Classifier
	fyStart    int
	recordRuns bool
	logger     *zap.Logger
	validate   *validator.Validate
}

func New(st *store.Store, opts Options) *Pipeline {
	p := &Pipeline{
		store:      st,
		classifier: opts.Classifier,
		fyStart:    opts.FiscalYearStartMonth,
		recordRuns: opts.RecordRuns,
		logger:     opts.Logger,
		validate:   validator.New(),
	}
	if p.classifier == nil {
		p.classifier = classify.Default()
	}
	if p.fyStart < 1 || p.fyStart > 12 {
		p.fyStart = 1
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Run imports every bundle under root. Row and file problems end up in the
// result; the error is reserved for a missing root and store failures.
func (p *Pipeline) Run(ctx context.Context, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "import root")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("import root %s is not a directory", root)
	}

	bundles, err := listBundles(root)
	if err != nil {
		return nil, err
	}

	res := newResult(uuid.NewString(), root, time.Now().UTC())
	rec := recorder{res: res, logger: p.logger}
	if p.recordRuns {
		if err := p.store.StartRun(ctx, res.RunID, root, res.StartedAt); err != nil {
			return nil, err
		}
	}

	// one resolver for the whole run so bundles see each other's people
	resolver := resolve.New(p.store)

	p.logger.Info("[RUN] start", zap.String("run_id", res.RunID), zap.String("root", root), zap.Int("bundles", len(bundles)))
	for _, b := range bundles {
		if err := ctx.Err(); err != nil {
			return nil, p.fail(ctx, res, err)
		}
		if err := p.runBundle(ctx, filepath.Join(root, b), b, resolver, rec); err != nil {
			return nil, p.fail(ctx, res, errors.Wrapf(err, "bundle %s", b))
		}
		res.Bundles = append(res.Bundles, b)
	}
	res.FinishedAt = time.Now().UTC()

	if p.recordRuns {
		body, err := res.JSON()
		if err != nil {
			return nil, errors.Wrap(err, "encode run stats")
		}
		if err := p.store.FinishRun(ctx, res.RunID, store.RunStatusOK, res.FinishedAt, body); err != nil {
			return nil, err
		}
	}
	p.logger.Info("[RUN] done",
		zap.String("run_id", res.RunID),
		zap.Int("upserted", res.TotalUpserted()),
		zap.Int("skipped", res.TotalSkipped()),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("took", res.Duration()),
	)
	return res, nil
}

// fail marks the run failed in import_runs, best effort, and returns err.
func (p *Pipeline) fail(ctx context.Context, res *Result, err error) error {
	if p.recordRuns {
		body, _ := res.JSON()
		if ferr := p.store.FinishRun(context.WithoutCancel(ctx), res.RunID, store.RunStatusFailed, time.Now().UTC(), body); ferr != nil {
			p.logger.Warn("[RUN] could not record failure", zap.Error(ferr))
		}
	}
	return err
}

func listBundles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "list bundles")
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (p *Pipeline) runBundle(ctx context.Context, dir, bundle string, resolver *resolve.Resolver, rec recorder) error {
	found, err := p.classifier.Classify(dir)
	if err != nil {
		return err
	}
	p.logger.Info("[BUNDLE] classified", zap.String("bundle", bundle), zap.Int("sheets", len(found.Sheets)))

	for _, f := range found.Unreadable {
		rec.warnf("%s/%s: unreadable workbook: %v", bundle, f.Source.Label(), f.Err)
	}
	for _, src := range found.Duplicates {
		rec.warnf("%s/%s: another sheet already matched this kind, ignored", bundle, src.Label())
	}
	for _, src := range found.Unmodelled {
		name := src.Sheet
		if name == "" {
			name = filepath.Base(src.Path)
		}
		label, _ := classify.Unmodelled(name)
		rec.warnf("%s/%s: looks like %s data, which is not imported", bundle, src.Label(), label)
	}
	if src, ok := found.Sheets[classify.PressureSources]; ok {
		rec.warnf("%s/%s: no data model for %s yet, skipped", bundle, src.Label(), classify.PressureSources)
	}

	tables := make(map[classify.Kind]*tabular.Table, len(found.Sheets))
	for _, kind := range sheets.Order {
		src, ok := found.Sheets[kind]
		if !ok {
			continue
		}
		t, err := readSource(src)
		if err != nil {
			var pe *tabular.ParseError
			if errors.As(err, &pe) {
				rec.warnf("%s/%s: %v, sheet ignored", bundle, src.Label(), err)
				continue
			}
			return err
		}
		tables[kind] = t
	}

	env := &sheets.Env{
		Store:                p.store,
		Resolver:             resolver,
		Recorder:             rec,
		Logger:               p.logger,
		Validate:             p.validate,
		Bundle:               bundle,
		DefaultProject:       sheets.DefaultProjectSlug(bundle, tables[classify.Projects]),
		FiscalYearStartMonth: p.fyStart,
	}
	for _, kind := range sheets.Order {
		t, ok := tables[kind]
		if !ok {
			continue
		}
		if err := sheets.Process(ctx, env, kind, t); err != nil {
			return errors.Wrapf(err, "%s sheet %s", kind, t.Name)
		}
	}
	return nil
}

func readSource(src classify.Source) (*tabular.Table, error) {
	if src.Sheet != "" {
		return tabular.ParseWorksheet(src.Path, src.Sheet)
	}
	return tabular.ParseFile(src.Path)
}

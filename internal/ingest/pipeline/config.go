package pipeline

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"dashimport/internal/ingest/classify"
	"dashimport/internal/ingest/config"
	"dashimport/internal/ingest/db"
	"dashimport/internal/ingest/store"
)

// ErrLocked is returned by RunWithConfig when another exclusive run holds the lock.
var ErrLocked = errors.New("another import run is active")

const lockKey = "dashimport_run"

// RunConfig adds the command line switches to the loaded configuration.
type RunConfig struct {
	Config *config.Config
	// Exclusive takes a database advisory lock for the duration of the run.
	Exclusive bool
	Logger    *zap.Logger
}

// RunWithConfig opens the configured database, checks the schema, runs the
// import and closes the database again.
func RunWithConfig(ctx context.Context, rc RunConfig, root string) (*Result, error) {
	logger := rc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := rc.Config

	classifier := classify.Default()
	if cfg.Import.PatternsFile != "" {
		c, err := classify.LoadFile(cfg.Import.PatternsFile)
		if err != nil {
			return nil, err
		}
		classifier = c
	}

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	missing, optional, err := db.CheckSchema(ctx, conn)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("schema is missing tables [%s], run `dashimport migrate` first", strings.Join(missing, " "))
	}
	if !optional["import_runs"] {
		logger.Info("[SCHEMA] import_runs missing, run history not recorded")
	}

	if rc.Exclusive {
		lock, ok, err := db.AcquireLock(ctx, conn, lockKey, 10)
		if err != nil {
			return nil, errors.Wrap(err, "acquire run lock")
		}
		if !ok {
			return nil, ErrLocked
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("[LOCK] release failed", zap.Error(err))
			}
		}()
	}

	p := New(store.New(conn), Options{
		Classifier:           classifier,
		FiscalYearStartMonth: cfg.Import.FiscalYearStartMonth,
		RecordRuns:           optional["import_runs"],
		Logger:               logger,
	})
	return p.Run(ctx, root)
}

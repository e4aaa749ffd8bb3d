package db

import (
	"context"
	"embed"
	"io/fs"

	"github.com/go-faster/errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"dashimport/internal/ingest/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies pending migrations for the configured driver. It opens its own
// connection because the migrate drivers close the handle they were given.
// Safe to call repeatedly: only pending migrations run.
func Migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		driver database.Driver
		name   string
	)
	switch cfg.Driver {
	case config.DriverMySQL:
		name = "mysql"
		driver, err = migratemysql.WithInstance(conn.DB, &migratemysql.Config{})
	case config.DriverPostgres:
		name = "pgx5"
		driver, err = migratepgx.WithInstance(conn.DB, &migratepgx.Config{})
	case config.DriverSQLite:
		name = "sqlite"
		driver, err = migratesqlite.WithInstance(conn.DB, &migratesqlite.Config{})
	default:
		err = errors.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "failed to create migration driver")
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		_ = conn.Close()
		return errors.Wrapf(err, "migrations for %s", cfg.Driver)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "failed to open migration source")
	}

	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "failed to create migration instance")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Failed to close migration database", zap.Error(dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	version, _, _ := m.Version()
	logger.Info("Applied migrations successfully", zap.Uint("version", version), zap.String("driver", cfg.Driver))
	return nil
}

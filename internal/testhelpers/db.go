// Package testhelpers builds migrated stores for package tests.
package testhelpers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dashimport/internal/ingest/config"
	"dashimport/internal/ingest/db"
	"dashimport/internal/ingest/store"
)

// SQLiteConfig returns a config pointing at a fresh database file under t.TempDir().
func SQLiteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Driver:         config.DriverSQLite,
		SQLite:         config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "dashboard.db")},
		ConnectTimeout: 5 * time.Second,
		QueryTimeout:   30 * time.Second,
		Import:         config.ImportConfig{FiscalYearStartMonth: 1},
		LogLevel:       "error",
	}
}

// NewSQLiteStore migrates an empty SQLite database and returns a store over it.
// The handle is closed when the test ends.
func NewSQLiteStore(t *testing.T) *store.Store {
	t.Helper()
	return OpenStore(t, SQLiteConfig(t))
}

// OpenStore migrates the database described by cfg and opens a store on it.
func OpenStore(t *testing.T, cfg *config.Config) *store.Store {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx, cfg, zap.NewNop()))

	conn, err := db.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return store.New(conn)
}

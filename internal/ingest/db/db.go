package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"dashimport/internal/ingest/config"
)

// sql driver names as registered by the imported drivers.
const (
	SQLDriverMySQL    = "mysql"
	SQLDriverPostgres = "pgx"
	SQLDriverSQLite   = "sqlite"
)

// Open connects to the configured database, tunes the pool and pings it.
// The caller owns the returned handle and must Close it.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool tuning
	switch driver {
	case SQLDriverSQLite:
		// single writer; also keeps file locks out of the way
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(2 * time.Hour)
	}

	pctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s", cfg.Driver)
	}
	return db, nil
}

// DSN returns the database/sql driver name and connection string for cfg.
func DSN(cfg *config.Config) (string, string, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.MySQL.User
		mc.Passwd = cfg.MySQL.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.MySQL.Host, strconv.Itoa(cfg.MySQL.Port))
		mc.DBName = cfg.MySQL.Database
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Collation = "utf8mb4_unicode_ci"
		mc.Timeout = cfg.ConnectTimeout
		mc.ReadTimeout = cfg.QueryTimeout
		mc.WriteTimeout = cfg.QueryTimeout
		// migrations ship as multi-statement files
		mc.MultiStatements = true
		// every pooled connection gets a UTC session, not only the first one
		mc.Params = map[string]string{"time_zone": "'+00:00'", "charset": "utf8mb4"}
		return SQLDriverMySQL, mc.FormatDSN(), nil

	case config.DriverPostgres:
		pg := cfg.Postgres
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
			pg.Host, pg.Port, pg.User, pg.Password, pg.Database, pg.SSLMode,
			int(cfg.ConnectTimeout.Seconds()),
		)
		return SQLDriverPostgres, dsn, nil

	case config.DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.SQLite.Path)
		return SQLDriverSQLite, dsn, nil
	}
	return "", "", errors.Errorf("unsupported driver %q", cfg.Driver)
}

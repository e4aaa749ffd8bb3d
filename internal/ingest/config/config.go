package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Driver names accepted in DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the import commands need. Values come from an optional
// config.yaml, overridden by the environment (.env is loaded first when present).
type Config struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"mysql"`

	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`

	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"5s"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"DB_QUERY_TIMEOUT" env-default:"30s"`

	Import ImportConfig `yaml:"import"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" env:"MYSQL_HOST" env-default:"127.0.0.1"`
	Port     int    `yaml:"port" env:"MYSQL_PORT" env-default:"3306"`
	User     string `yaml:"user" env:"MYSQL_USER" env-default:"root"`
	Password string `yaml:"-" env:"MYSQL_PASSWORD"`
	Database string `yaml:"database" env:"MYSQL_DB" env-default:"dashboard"`
}

type PostgresConfig struct {
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password string `yaml:"-" env:"PGPASSWORD"`
	Database string `yaml:"database" env:"PGDATABASE" env-default:"dashboard"`
	SSLMode  string `yaml:"sslmode" env:"PGSSLMODE" env-default:"disable"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"./dashboard.db"`
}

// ImportConfig tunes the import pipeline itself.
type ImportConfig struct {
	// PatternsFile optionally replaces the built-in sheet pattern table (.yaml/.yml/.json).
	PatternsFile string `yaml:"patterns_file" env:"IMPORT_PATTERNS_FILE"`
	// FiscalYearStartMonth is the calendar month (1..12) in which a fiscal year begins.
	FiscalYearStartMonth int `yaml:"fiscal_year_start_month" env:"FISCAL_YEAR_START_MONTH" env-default:"1"`
}

// Load reads .env (optional), then config.yaml when it exists, then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional

	cfg := &Config{}
	path := os.Getenv("DASHIMPORT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cleanenv cannot express as tags.
func (c *Config) Validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	case "pgx", "postgresql":
		c.Driver = DriverPostgres
	default:
		return errors.Errorf("unsupported DB_DRIVER %q (use mysql, postgres or sqlite)", c.Driver)
	}
	if c.Import.FiscalYearStartMonth < 1 || c.Import.FiscalYearStartMonth > 12 {
		return errors.Errorf("FISCAL_YEAR_START_MONTH must be 1..12, got %d", c.Import.FiscalYearStartMonth)
	}
	if c.Driver == DriverSQLite && strings.TrimSpace(c.SQLite.Path) == "" {
		return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
	}
	return nil
}

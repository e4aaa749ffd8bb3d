package testhelpers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"dashimport/internal/ingest/config"
)

const mysqlImage = "mysql:8.0"

type mysqlContainer struct {
	container testcontainers.Container
	cfg       *config.Config
}

var (
	sharedMySQL     *mysqlContainer
	sharedMySQLOnce sync.Once
	sharedMySQLErr  error
)

// MySQLConfig starts (once per test binary) a MySQL container and returns a
// config for it. Skipped in short mode and when Docker is not reachable.
func MySQLConfig(t *testing.T) *config.Config {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedMySQLOnce.Do(func() {
		sharedMySQL, sharedMySQLErr = setupMySQL()
	})
	if sharedMySQLErr != nil {
		t.Skipf("MySQL container unavailable: %v", sharedMySQLErr)
	}

	cfg := *sharedMySQL.cfg
	return &cfg
}

func setupMySQL() (*mysqlContainer, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "test_password",
			"MYSQL_DATABASE":      "dashboard_test",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start test container")
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get container host")
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get container port")
	}

	cfg := &config.Config{
		Driver: config.DriverMySQL,
		MySQL: config.MySQLConfig{
			Host:     host,
			Port:     port.Int(),
			User:     "root",
			Password: "test_password",
			Database: "dashboard_test",
		},
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   30 * time.Second,
		Import:         config.ImportConfig{FiscalYearStartMonth: 1},
		LogLevel:       "error",
	}
	return &mysqlContainer{container: container, cfg: cfg}, nil
}

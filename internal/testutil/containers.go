//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"net"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dshills/mininet/internal/config"
	"github.com/dshills/mininet/internal/database"
	"github.com/dshills/mininet/internal/log"
)

const (
	MySQLImage    = "mysql:8.0"
	PostgresImage = "postgres:16-alpine"

	containerPassword = "mininet"
	containerDatabase = "mininet_db"
)

// SkipIfNoDocker skips the test when no Docker daemon answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// StartMySQL runs a seeded MySQL server for the life of the test and
// returns a configuration pointing at it.
func StartMySQL(t *testing.T) config.Config {
	t.Helper()

	cfg := startServer(t, testcontainers.ContainerRequest{
		Image:        MySQLImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": containerPassword,
			"MYSQL_DATABASE":      containerDatabase,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("port: 3306  MySQL Community Server"),
			wait.ForListeningPort("3306/tcp"),
		).WithDeadline(3 * time.Minute),
	}, "3306/tcp")
	cfg.Driver = config.DriverMySQL
	cfg.User = "root"

	seed(t, cfg)
	return cfg
}

// StartPostgres runs a seeded PostgreSQL server for the life of the test.
// driver picks lib/pq or pgx.
func StartPostgres(t *testing.T, driver string) config.Config {
	t.Helper()

	cfg := startServer(t, testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": containerPassword,
			"POSTGRES_DB":       containerDatabase,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(2 * time.Minute),
	}, "5432/tcp")
	cfg.Driver = driver
	cfg.User = "postgres"

	seed(t, cfg)
	return cfg
}

func startServer(t *testing.T, req testcontainers.ContainerRequest, port string) config.Config {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Host = net.JoinHostPort(host, mapped.Port())
	cfg.Database = containerDatabase
	cfg.Password = containerPassword
	return *cfg
}

// seed loads the fixture through the same dialect the reports will use.
func seed(t *testing.T, cfg config.Config) {
	t.Helper()

	d, err := database.DialectFor(cfg.Driver)
	if err != nil {
		t.Fatalf("%v", err)
	}
	db, err := d.Open(cfg)
	if err != nil {
		t.Fatalf("open %s: %v", cfg.Driver, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := pingUntilReady(ctx, db); err != nil {
		t.Fatalf("ping %s: %v", cfg.Driver, err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("%v", err)
	}
	log.Default().Debug("fixture seeded", log.String("driver", cfg.Driver), log.String("host", cfg.Host))
}

// pingUntilReady retries until the server accepts logins; both images
// restart once during initialisation.
func pingUntilReady(ctx context.Context, db *sql.DB) error {
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(500 * time.Millisecond):
		}
	}
}

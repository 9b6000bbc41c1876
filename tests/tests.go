// Package tests holds helpers shared by the integration and end-to-end suites.
package tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/shortlink/internal/config"
)

// FindProjectRoot walks up from the working directory to the directory holding go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

// MigrationsPath returns the migrate source URL of the project migrations.
func MigrationsPath() (string, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return "", err
	}

	return "file://" + filepath.Join(root, "migrations"), nil
}

// StartPostgres runs a throwaway PostgreSQL container and returns its connection settings.
// The container is terminated when the test finishes.
func StartPostgres(t testing.TB) config.Postgres {
	t.Helper()

	ctx := context.Background()

	const (
		pgUser     = "test"
		pgPassword = "test"
		pgDB       = "shortlink"
	)

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDB,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := cont.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get postgres container host: %v", err)
	}

	port, err := cont.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get postgres container port: %v", err)
	}

	return config.Postgres{
		User:     pgUser,
		Password: pgPassword,
		Host:     host,
		Port:     port.Int(),
		DB:       pgDB,
		SSLMode:  "disable",
	}
}

// StartRedis runs a throwaway Redis container and returns its address.
func StartRedis(t testing.TB) string {
	t.Helper()

	ctx := context.Background()

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := cont.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := cont.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get redis container endpoint: %v", err)
	}

	return endpoint
}

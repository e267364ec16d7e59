//go:build integration

// Package containers provides testcontainers-go helpers for integration
// testing against real PostgreSQL and Redis instances.
//
// All helpers are gated behind the "integration" build tag so they do not
// pull Docker-related dependencies into unit test builds. Use them only
// from test files carrying the same tag.
package containers

import (
	"context"
	"fmt"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// DefaultPostgresImage is the container image used for PostgreSQL
// integration tests.
const DefaultPostgresImage = "docker.io/postgres:16-alpine"

// DefaultPostgresDatabase is the database created inside the container.
const DefaultPostgresDatabase = "erp_test"

// DefaultPostgresUser is the superuser for the test container.
const DefaultPostgresUser = "testuser"

// DefaultPostgresPassword is the test superuser password. A deliberately
// weak credential for ephemeral containers only.
const DefaultPostgresPassword = "testpassword"

// PostgresResult holds a started PostgreSQL container and its connection
// string. The caller terminates the container when done:
//
//	defer result.Container.Terminate(ctx)
type PostgresResult struct {
	Container *tcpostgres.PostgresContainer

	// ConnString is a PostgreSQL URI with sslmode=disable, since
	// testcontainers expose the database on localhost without TLS.
	ConnString string
}

// StartPostgres starts a PostgreSQL 16 container and waits for it to
// become ready. On failure to obtain the connection string, the container
// is terminated before the error is returned.
func StartPostgres(ctx context.Context) (*PostgresResult, error) {
	container, err := tcpostgres.Run(ctx,
		DefaultPostgresImage,
		tcpostgres.WithDatabase(DefaultPostgresDatabase),
		tcpostgres.WithUsername(DefaultPostgresUser),
		tcpostgres.WithPassword(DefaultPostgresPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("containers: failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("containers: failed to get connection string: %w", err)
	}

	return &PostgresResult{
		Container:  container,
		ConnString: connStr,
	}, nil
}

// DefaultRedisImage is the container image used for Redis integration tests.
const DefaultRedisImage = "docker.io/redis:7-alpine"

// RedisResult holds a started Redis container and its connection details.
// The caller terminates the container when done.
type RedisResult struct {
	Container *tcredis.RedisContainer

	// Host and Port locate the mapped Redis endpoint.
	Host string
	Port int
}

// StartRedis starts a Redis 7 container without authentication. On failure
// to resolve the endpoint, the container is terminated before the error is
// returned.
func StartRedis(ctx context.Context) (*RedisResult, error) {
	container, err := tcredis.Run(ctx, DefaultRedisImage)
	if err != nil {
		return nil, fmt.Errorf("containers: failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("containers: failed to get redis host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("containers: failed to get redis port: %w", err)
	}

	return &RedisResult{
		Container: container,
		Host:      host,
		Port:      port.Int(),
	}, nil
}

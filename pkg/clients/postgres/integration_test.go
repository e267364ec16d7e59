//go:build integration

// Integration tests that require Docker. Run with:
//
//	go test -v -race -tags=integration ./pkg/clients/postgres/...
package postgres_test

import (
	"context"
	"testing"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

const (
	testDBName     = "erp_test"
	testDBUser     = "testuser"
	testDBPassword = "testpassword"
)

// setupContainer starts a PostgreSQL 16 container and returns a connected
// Client. Container and client are cleaned up when the test completes.
func setupContainer(t *testing.T) *postgres.Client {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("failed to terminate postgres container: %v", termErr)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	cfg := *postgres.DefaultConfig()
	cfg.Host = host
	cfg.Port = port.Int()
	cfg.User = testDBUser
	cfg.Password = testDBPassword
	cfg.Database = testDBName
	cfg.MaxConns = 5
	cfg.MinConns = 1

	client, err := postgres.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(client.Close)

	return client
}

func TestIntegration_Health(t *testing.T) {
	client := setupContainer(t)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health() error: %v", err)
	}
}

func TestIntegration_RoundTrip(t *testing.T) {
	client := setupContainer(t)
	ctx := context.Background()

	_, err := client.Exec(ctx, `
		CREATE TABLE users (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			username TEXT NOT NULL UNIQUE
		)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	tag, err := client.Exec(ctx, "INSERT INTO users (username) VALUES ($1)", "alice")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Errorf("RowsAffected = %d, want 1", tag.RowsAffected())
	}

	var username string
	err = client.QueryRow(ctx, "SELECT username FROM users WHERE id = $1", int64(1)).Scan(&username)
	if err != nil {
		t.Fatalf("query row: %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q, want %q", username, "alice")
	}
}

func TestIntegration_UniqueViolation(t *testing.T) {
	client := setupContainer(t)
	ctx := context.Background()

	if _, err := client.Exec(ctx, "CREATE TABLE tags (name TEXT PRIMARY KEY)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := client.Exec(ctx, "INSERT INTO tags (name) VALUES ('dup')"); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := client.Exec(ctx, "INSERT INTO tags (name) VALUES ('dup')")
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !erperr.HasCode(err, erperr.CodeInternalDatabase) {
		t.Errorf("error code = %v, want %v", erperr.GetCode(err), erperr.CodeInternalDatabase)
	}
	if !postgres.IsUniqueViolation(err) {
		t.Error("error should be recognized as a unique violation")
	}
}

func TestIntegration_Transaction(t *testing.T) {
	client := setupContainer(t)
	ctx := context.Background()

	if _, err := client.Exec(ctx, "CREATE TABLE counters (n INT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	tx, err := client.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO counters (n) VALUES (1)"); err != nil {
		t.Fatalf("tx insert: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	var count int
	if err := client.QueryRow(ctx, "SELECT count(*) FROM counters").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count after rollback = %d, want 0", count)
	}
}

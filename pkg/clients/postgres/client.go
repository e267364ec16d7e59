// Package postgres provides the pooled PostgreSQL client used by the ERP
// services for user, role, audit, and master-data storage.
//
// The client wraps pgxpool with OpenTelemetry spans and structured error
// classification. Connection-level retry is left to pgxpool; callers never
// implement their own reconnect logic.
//
// For unit tests, [NewFromPool] accepts any [Pool] implementation, which
// pgxmock satisfies directly.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// tracerName is the OpenTelemetry instrumentation scope name for this package.
const tracerName = "github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"

// maxStatementAttr caps the length of SQL recorded in span attributes.
const maxStatementAttr = 100

// Pool is the subset of pgxpool operations the client uses. It is satisfied
// by [*pgxpool.Pool] and by pgxmock, enabling unit tests without a database.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var _ Pool = (*pgxpool.Pool)(nil)

// Client wraps a connection pool with tracing and error classification.
// It is safe for concurrent use; create one per database and share it.
type Client struct {
	pool   Pool
	tracer trace.Tracer
	dbName string
}

// NewClient validates the configuration, establishes the pool, and verifies
// connectivity with a ping. The caller owns the client and must Close it.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, erperr.Wrap(err, erperr.CodeValidation, "postgres: failed to parse connection string")
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, erperr.Wrap(err, erperr.CodeUnavailable, "postgres: failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, erperr.Wrap(err, erperr.CodeUnavailable, "postgres: failed to connect to database")
	}

	return &Client{
		pool:   pool,
		tracer: otel.Tracer(tracerName),
		dbName: cfg.Database,
	}, nil
}

// NewFromPool creates a Client over an existing [Pool]. Intended for tests
// injecting pgxmock. The database name is only used in span attributes.
func NewFromPool(pool Pool, dbName string) *Client {
	return &Client{
		pool:   pool,
		tracer: otel.Tracer(tracerName),
		dbName: dbName,
	}
}

// Query executes a query that returns rows. The caller must close the rows.
func (c *Client) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	ctx, span := c.startSpan(ctx, "Query", sql)

	rows, err := c.pool.Query(ctx, sql, args...)
	finishSpan(span, err)
	if err != nil {
		return nil, wrapError(err, "postgres: query failed")
	}
	return rows, nil
}

// QueryRow executes a query that returns at most one row. Errors are
// deferred to Scan, so the span covers the query execution only.
func (c *Client) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	ctx, span := c.startSpan(ctx, "QueryRow", sql)
	defer span.End()

	return c.pool.QueryRow(ctx, sql, args...)
}

// Exec executes a statement that returns no rows.
func (c *Client) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ctx, span := c.startSpan(ctx, "Exec", sql)

	tag, err := c.pool.Exec(ctx, sql, args...)
	finishSpan(span, err)
	if err != nil {
		return tag, wrapError(err, "postgres: exec failed")
	}
	return tag, nil
}

// Begin starts a transaction. Callers should defer tx.Rollback(ctx)
// immediately; rollback after commit is a no-op in pgx.
func (c *Client) Begin(ctx context.Context) (pgx.Tx, error) {
	ctx, span := c.startSpan(ctx, "Begin", "BEGIN")

	tx, err := c.pool.Begin(ctx)
	finishSpan(span, err)
	if err != nil {
		return nil, wrapError(err, "postgres: begin transaction failed")
	}
	return tx, nil
}

// Health pings the database, applying [DefaultHealthTimeout] when the
// context has no deadline. Used by readiness probes.
func (c *Client) Health(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, "Health", "SELECT 1")

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultHealthTimeout)
		defer cancel()
	}

	err := c.pool.Ping(ctx)
	finishSpan(span, err)
	if err != nil {
		return erperr.Wrap(err, erperr.CodeUnavailable, "postgres: health check failed")
	}
	return nil
}

// Close releases all pool resources. Safe to call multiple times.
func (c *Client) Close() {
	c.pool.Close()
}

// IsNoRows reports whether err indicates an empty result set.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// which the stores translate into a duplicate-conflict error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (c *Client) startSpan(ctx context.Context, operation, sql string) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "postgres."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.name", c.dbName),
		attribute.String("db.statement", truncate(sql, maxStatementAttr)),
	)
	return ctx, span
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func wrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return erperr.Wrap(err, erperr.CodeUnavailable, message)
	}
	return erperr.Wrap(err, erperr.CodeInternalDatabase, message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

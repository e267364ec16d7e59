// Package redis provides the Redis client used by the master-data service
// as a read-through cache for user identity lookups.
//
// The client wraps go-redis with OpenTelemetry spans and structured error
// classification. A cache miss is not an error to most callers; use
// [IsCacheMiss] to distinguish it from transport failures.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// tracerName is the OpenTelemetry instrumentation scope name for this package.
const tracerName = "github.com/ZigmaSoftware/erp-final-backend/pkg/clients/redis"

// Cmdable is the subset of go-redis operations the client wraps. Satisfied
// by [*redis.Client] and by fakes in unit tests.
type Cmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

var _ Cmdable = (*redis.Client)(nil)

// Client wraps a Redis connection with tracing and error classification.
// It is safe for concurrent use; create one per Redis instance and share it.
type Client struct {
	cmdable Cmdable
	tracer  trace.Tracer
	dbIndex int
}

// NewClient validates the configuration, connects, and verifies
// connectivity with a ping. The caller owns the client and must Close it.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, erperr.Wrap(err, erperr.CodeUnavailable, "redis: failed to connect to server")
	}

	return &Client{
		cmdable: rdb,
		tracer:  otel.Tracer(tracerName),
		dbIndex: cfg.DB,
	}, nil
}

// NewFromClient creates a Client over an existing [Cmdable]. Intended for
// tests injecting a fake.
func NewFromClient(cmdable Cmdable, dbIndex int) *Client {
	return &Client{
		cmdable: cmdable,
		tracer:  otel.Tracer(tracerName),
		dbIndex: dbIndex,
	}
}

// Set stores a string value under key with the given expiration.
// A zero expiration means no expiry.
func (c *Client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, span := c.startSpan(ctx, "Set", key)

	err := c.cmdable.Set(ctx, key, value, expiration).Err()
	finishSpan(span, err)
	if err != nil {
		return wrapError(err, "redis: set failed")
	}
	return nil
}

// Get returns the string value of a key. A missing key returns an error
// satisfying [IsCacheMiss].
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	ctx, span := c.startSpan(ctx, "Get", key)

	val, err := c.cmdable.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// A miss is an expected outcome, not a span failure.
		finishSpan(span, nil)
		return "", erperr.Wrap(err, erperr.CodeNotFound, "redis: key not found")
	}
	finishSpan(span, err)
	if err != nil {
		return "", wrapError(err, "redis: get failed")
	}
	return val, nil
}

// Del removes one or more keys. Deleting a missing key is not an error.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	ctx, span := c.startSpan(ctx, "Del", fmt.Sprintf("%d keys", len(keys)))

	err := c.cmdable.Del(ctx, keys...).Err()
	finishSpan(span, err)
	if err != nil {
		return wrapError(err, "redis: del failed")
	}
	return nil
}

// Health pings the server. Used by readiness probes.
func (c *Client) Health(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, "Health", "PING")

	err := c.cmdable.Ping(ctx).Err()
	finishSpan(span, err)
	if err != nil {
		return erperr.Wrap(err, erperr.CodeUnavailable, "redis: health check failed")
	}
	return nil
}

// Close releases the underlying connection resources.
func (c *Client) Close() error {
	return c.cmdable.Close()
}

// IsCacheMiss reports whether err resulted from reading a missing key.
func IsCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (c *Client) startSpan(ctx context.Context, operation, statement string) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "redis."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.Int("db.redis.database_index", c.dbIndex),
		attribute.String("db.statement", statement),
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

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/ZigmaSoftware/erp-final-backend/internal/mastersvc"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/redis"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/config"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/token"
)

const shutdownGrace = 10 * time.Second

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.New()
	if path := os.Getenv("MASTER_CONFIG_FILE"); path != "" {
		loader = loader.WithFile(path)
	}
	cfg := config.MustLoad[mastersvc.Config](loader)

	tp := newTracerProvider("master-service")
	otel.SetTracerProvider(tp)
	defer shutdownTracer(tp, logger)

	db, err := postgres.NewClient(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	// The identity cache is best effort: when redis is down the service
	// starts anyway and every lookup goes to the database.
	var cache *redis.Client
	if c, err := redis.NewClient(ctx, cfg.Redis); err != nil {
		logger.Warn("identity cache unavailable, lookups go to the database", "error", err)
	} else {
		cache = c
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("closing identity cache failed", "error", err)
			}
		}()
	}

	codec, err := token.NewCodec(cfg.Token, token.NewKeyProvider(cfg.Token))
	if err != nil {
		return err
	}
	verifier := token.NewVerifier(codec)

	lookup := mastersvc.NewUserLookup(db, nil, cfg.UserCacheTTL, logger)
	if cache != nil {
		lookup = mastersvc.NewUserLookup(db, cache, cfg.UserCacheTTL, logger)
	}
	resolver := auth.NewResolver(verifier, lookup, logger)

	handler := mastersvc.NewHandler(mastersvc.NewStore(db), logger)
	router := mastersvc.NewRouter(&cfg, handler, resolver, logger)

	return serve(ctx, cfg.ListenAddr, router, logger)
}

func newTracerProvider(service string) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
}

func shutdownTracer(tp *sdktrace.TracerProvider, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		logger.Warn("tracer provider shutdown failed", "error", err)
	}
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

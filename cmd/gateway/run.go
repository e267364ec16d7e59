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

	"github.com/ZigmaSoftware/erp-final-backend/internal/gateway"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/config"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/token"
)

const shutdownGrace = 10 * time.Second

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.New()
	if path := os.Getenv("GATEWAY_CONFIG_FILE"); path != "" {
		loader = loader.WithFile(path)
	}
	cfg := config.MustLoad[gateway.Config](loader)

	tp := newTracerProvider("gateway")
	otel.SetTracerProvider(tp)
	defer shutdownTracer(tp, logger)

	// The gateway only verifies tokens; it never issues them, so the
	// private key stays with the auth service.
	codec, err := token.NewCodec(cfg.Token, token.NewKeyProvider(cfg.Token))
	if err != nil {
		return err
	}
	router, err := gateway.NewRouter(&cfg, token.NewVerifier(codec), logger)
	if err != nil {
		return err
	}

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

// serve runs the HTTP server until the context is cancelled, then drains
// in-flight requests within the shutdown grace period.
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

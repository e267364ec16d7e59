// The auth service authenticates users against the shared user store and
// issues the RS256 access and refresh tokens the rest of the platform
// verifies.
package main

import (
	"log/slog"
	"os"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "auth-service")
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("auth service exited", "error", err)
		os.Exit(1)
	}
}

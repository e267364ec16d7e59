// The master service serves the reference-data catalog (geography, sites,
// equipment, suppliers) behind the trust resolver.
package main

import (
	"log/slog"
	"os"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "master-service")
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("master service exited", "error", err)
		os.Exit(1)
	}
}

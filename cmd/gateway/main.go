// The gateway is the single public entry point of the ERP backend. It
// verifies bearer tokens, stamps the identity headers, and reverse-proxies
// to the auth and master-data services.
package main

import (
	"log/slog"
	"os"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "gateway")
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("gateway exited", "error", err)
		os.Exit(1)
	}
}

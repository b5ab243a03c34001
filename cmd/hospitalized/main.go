// Command hospitalized downloads the ISCIII hospitalization series, renders
// the report charts and copies them to the output directory and, with
// --copy-gs, to the Cloud Storage bucket.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/jotavaladouro/covid19/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if code := execute(ctx, newRootCmd(cfg, logger), logger); code != 0 {
		stop()
		os.Exit(code)
	}
}

// execute runs cmd and reports a failure through the configured logger.
func execute(ctx context.Context, cmd *cobra.Command, logger *slog.Logger) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error("hospitalized report failed", "error", err)
		return 1
	}
	return 0
}

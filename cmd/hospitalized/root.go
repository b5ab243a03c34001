package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/jotavaladouro/covid19/internal/adapter/gcs"
	httpadapter "github.com/jotavaladouro/covid19/internal/adapter/http"
	"github.com/jotavaladouro/covid19/internal/adapter/isciii"
	kafkaadapter "github.com/jotavaladouro/covid19/internal/adapter/kafka"
	"github.com/jotavaladouro/covid19/internal/adapter/localfs"
	"github.com/jotavaladouro/covid19/internal/config"
	"github.com/jotavaladouro/covid19/internal/domain"
	"github.com/jotavaladouro/covid19/internal/observability"
	"github.com/jotavaladouro/covid19/internal/pipeline"
	"github.com/jotavaladouro/covid19/internal/publish"
	"github.com/jotavaladouro/covid19/internal/render"
)

const pushJob = "hospitalized_report"

type runOptions struct {
	copyGS bool
	show   bool
}

func newRootCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "hospitalized",
		Short: "Variation of people hospitalized by covid19",
		Long: `hospitalized downloads the ISCIII accumulated series, renders the
hospitalization charts and the summary workbook, and copies them to OUTPUT_DIR.

Example usage:
  hospitalized                 # render and copy to OUTPUT_DIR
  hospitalized --copy-gs       # also upload to GCS_BUCKET
  hospitalized --show          # serve the charts on HTTP_ADDR afterwards
  hospitalized inspect file.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg, opts, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().BoolVar(&opts.copyGS, "copy-gs", false, "also upload the artifacts to the GCS bucket")
	cmd.Flags().BoolVar(&opts.show, "show", false, "serve the charts on HTTP_ADDR until interrupted")
	cmd.AddCommand(newInspectCmd(cfg))
	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts runOptions, out io.Writer, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	var store *gcs.Store
	if opts.copyGS || cfg.PopulationFile == "" {
		s, err := gcs.NewStore(ctx, cfg.GCSBucket, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	stages := pipeline.Stages{
		Fetcher:  isciii.NewClient(cfg.SourceURL, cfg.SourceTimeout, metrics, logger),
		Renderer: render.New(cfg.WorkDir, domain.DefaultCalendarEvents(), metrics, logger),
	}
	if cfg.PopulationFile != "" {
		stages.Population = localfs.NewDir(filepath.Dir(cfg.PopulationFile))
		cfg.PopulationObject = filepath.Base(cfg.PopulationFile)
		logger.Info("population table read from local file", "path", cfg.PopulationFile)
	} else {
		stages.Population = store
	}

	destinations := []publish.Destination{localfs.NewDir(cfg.OutputDir)}
	if opts.copyGS {
		destinations = append(destinations, store)
	}
	stages.Publisher = publish.New(cfg.WorkDir, metrics, logger, destinations...)

	if cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaSummaryTopic, logger)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		stages.Notifier = w
	}

	p := pipeline.New(cfg, stages, out, logger, metrics)
	_, runErr := p.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushMetrics(cfg, metrics, logger)
	}
	if runErr != nil {
		return runErr
	}

	if opts.show {
		return serve(ctx, cfg, p, logger)
	}
	return nil
}

// pushMetrics is best effort: a failed push never fails the run.
func pushMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, cfg.PushgatewayURL, pushJob); err != nil {
		logger.Warn("push metrics failed", "url", cfg.PushgatewayURL, "error", err)
		return
	}
	logger.Debug("metrics pushed", "url", cfg.PushgatewayURL)
}

// serve runs the chart preview server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, ready sharedobs.ReadinessChecker, logger *slog.Logger) error {
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, cfg.WorkDir, cfg.Charts(), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

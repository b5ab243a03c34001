package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jotavaladouro/covid19/internal/config"
	"github.com/jotavaladouro/covid19/internal/domain"
	"github.com/jotavaladouro/covid19/internal/observability"
	"github.com/jotavaladouro/covid19/internal/render"
	"github.com/jotavaladouro/covid19/internal/report"
)

// Fetcher downloads the source snapshot to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, dst string) error
}

// Downloader copies a named reference file to a local path.
type Downloader interface {
	Download(ctx context.Context, name, dst string) error
}

// Renderer writes charts into the work directory.
type Renderer interface {
	Line(name, title string, pts render.Points) error
	Grid(name, title string, panels []render.Panel) error
	Bars(name, title string, bars []render.Bar, reference float64, referenceLabel string) error
	Quadrant(name, title string, pts []render.Labeled, xLabel, yLabel string, yCenter float64) error
}

// Publisher copies finished artifacts out of the work directory.
type Publisher interface {
	Publish(ctx context.Context, names []string) error
}

// Notifier announces a finished run.
type Notifier interface {
	Notify(ctx context.Context, summary domain.RunSummary) error
}

// Stages are the pluggable steps of a run. Notifier may be nil.
type Stages struct {
	Fetcher    Fetcher
	Population Downloader
	Renderer   Renderer
	Publisher  Publisher
	Notifier   Notifier
}

// Pipeline runs the report job once: fetch, load, aggregate, render,
// report, publish.
type Pipeline struct {
	cfg     *config.Config
	stages  Stages
	out     io.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline. The console summary is written to out.
func New(cfg *config.Config, stages Stages, out io.Writer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		stages:  stages,
		out:     out,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("report has not been generated yet")
	}
	return nil
}

// Run executes every stage in order and stops at the first error.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	p.logger.Info("report run started", "source", p.cfg.SourceURL, "work_dir", p.cfg.WorkDir)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	snapshot := filepath.Join(p.cfg.WorkDir, p.cfg.SourceFile)
	if err := p.stage("fetch", func() error {
		return p.stages.Fetcher.Fetch(ctx, snapshot)
	}); err != nil {
		return domain.RunSummary{}, err
	}

	var (
		records     []domain.DailyRecord
		populations []domain.RegionPopulation
	)
	if err := p.stage("load", func() error {
		var err error
		if records, err = p.loadSnapshot(snapshot); err != nil {
			return err
		}
		populations, err = p.loadPopulation(ctx)
		return err
	}); err != nil {
		return domain.RunSummary{}, err
	}

	var (
		week  domain.WeekComparison
		rates domain.PopulationComparison
	)
	if err := p.stage("aggregate", func() error {
		var err error
		week, rates, err = p.aggregate(records, populations)
		return err
	}); err != nil {
		return domain.RunSummary{}, err
	}

	if err := p.stage("render", func() error {
		return p.renderCharts(records, week, rates)
	}); err != nil {
		return domain.RunSummary{}, err
	}

	rep := report.New(records, week, rates)
	if err := p.stage("report", func() error {
		if err := report.WriteWorkbook(filepath.Join(p.cfg.WorkDir, p.cfg.Artifacts.Workbook), rep); err != nil {
			return err
		}
		return report.PrintSummary(p.out, rep)
	}); err != nil {
		return domain.RunSummary{}, err
	}

	artifacts := p.cfg.PublishList()
	if err := p.stage("publish", func() error {
		return p.stages.Publisher.Publish(ctx, artifacts)
	}); err != nil {
		return domain.RunSummary{}, err
	}

	summary := domain.NewRunSummary(records, week, rates, artifacts)
	if p.stages.Notifier != nil {
		if err := p.stage("notify", func() error {
			return p.stages.Notifier.Notify(ctx, summary)
		}); err != nil {
			return domain.RunSummary{}, err
		}
	}

	p.metrics.NationalRate.Set(rates.NationalRate)
	if pct := week.National.PercentDiff; pct != nil {
		p.metrics.NationalWeekOverWeek.Set(*pct)
	}
	p.metrics.LastSuccess.SetToCurrentTime()
	p.ready.Store(true)

	p.logger.Info("report run finished",
		"run_id", summary.RunID,
		"from", summary.From.Format(time.DateOnly),
		"to", summary.To.Format(time.DateOnly),
		"rows", summary.Rows,
		"regions", summary.Regions,
	)
	return summary, nil
}

// stage times fn and prefixes its error with the stage name.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("stage failed", "stage", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Debug("stage finished", "stage", name, "duration", time.Since(start))
	return nil
}

func (p *Pipeline) loadSnapshot(path string) ([]domain.DailyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols := p.cfg.Columns
	records, stats, err := domain.ParseSnapshot(f, domain.LoadOptions{
		RegionColumn:       cols.Region,
		DateColumn:         cols.Date,
		HospitalizedColumn: cols.Hospitalized,
		FooterRows:         p.cfg.SourceFooterRows,
		ExcludedRegions:    p.cfg.ExcludedRegions,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.cfg.SourceFile, err)
	}

	p.metrics.Rows.WithLabelValues("kept").Add(float64(stats.Rows))
	p.metrics.Rows.WithLabelValues("filled").Add(float64(stats.Filled))
	p.metrics.Rows.WithLabelValues("dropped").Add(float64(stats.Dropped))
	p.metrics.Rows.WithLabelValues("excluded").Add(float64(stats.Excluded))
	p.logger.Info("snapshot loaded",
		"rows", stats.Rows,
		"filled", stats.Filled,
		"dropped", stats.Dropped,
		"excluded", stats.Excluded,
	)
	if len(records) == 0 {
		return nil, fmt.Errorf("parse %s: %w", p.cfg.SourceFile, domain.ErrNoRecords)
	}
	return records, nil
}

func (p *Pipeline) loadPopulation(ctx context.Context) ([]domain.RegionPopulation, error) {
	name := p.cfg.PopulationObject
	dst := filepath.Join(p.cfg.WorkDir, filepath.Base(name))
	if err := p.stages.Population.Download(ctx, name, dst); err != nil {
		return nil, fmt.Errorf("population table: %w", err)
	}

	f, err := os.Open(dst)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pops, skipped, err := domain.ParsePopulation(f, domain.PopulationOptions{
		RegionColumn: p.cfg.Columns.PopulationRegion,
		TotalColumn:  p.cfg.Columns.PopulationTotal,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	p.logger.Info("population table loaded", "regions", len(pops), "skipped", skipped)
	return pops, nil
}

func (p *Pipeline) aggregate(records []domain.DailyRecord, pops []domain.RegionPopulation) (domain.WeekComparison, domain.PopulationComparison, error) {
	week, err := domain.WeekOverWeek(records, p.cfg.ComparisonDays)
	if err != nil {
		return week, domain.PopulationComparison{}, err
	}
	if len(week.Rows) == 0 {
		return week, domain.PopulationComparison{}, fmt.Errorf("no region has data on both %s and %s",
			week.Latest.Format(time.DateOnly), week.Prior.Format(time.DateOnly))
	}

	rates, err := domain.PopulationRates(records, pops)
	if err != nil {
		return week, rates, err
	}
	if len(rates.Rows) == 0 {
		return week, rates, errors.New("no region matches the population table")
	}

	p.logger.Info("comparisons computed",
		"latest", week.Latest.Format(time.DateOnly),
		"regions_compared", len(week.Rows),
		"regions_with_population", len(rates.Rows),
		"national_rate", rates.NationalRate,
	)
	return week, rates, nil
}

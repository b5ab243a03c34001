package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "covid_report"

// Metrics holds the Prometheus counters, histograms, and gauges for a report run.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	StageDuration   *prometheus.HistogramVec // labels: stage={fetch,load,aggregate,render,report,publish,notify}

	SourceBytes   prometheus.Counter
	FetchDuration prometheus.Histogram
	Rows          *prometheus.CounterVec // labels: outcome={kept,filled,dropped,excluded}

	ChartsRendered     *prometheus.CounterVec // labels: kind={line,grid,bars,quadrant}
	ArtifactsPublished *prometheus.CounterVec // labels: destination, outcome={success,error}

	NationalRate         prometheus.Gauge
	NationalWeekOverWeek prometheus.Gauge
	LastSuccess          prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a report run is in progress, 0 otherwise.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		SourceBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_bytes_total",
			Help:      "Bytes downloaded from the source snapshot.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Source snapshot download duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Snapshot rows by cleaning outcome.",
		}, []string{"outcome"}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Charts written by kind.",
		}, []string{"kind"}),
		ArtifactsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_published_total",
			Help:      "Artifact copies by destination and outcome.",
		}, []string{"destination", "outcome"}),
		NationalRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "national_rate_per_10000",
			Help:      "Latest national hospitalizations per 10,000 inhabitants.",
		}),
		NationalWeekOverWeek: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "national_week_over_week_percent",
			Help:      "Latest national week-over-week change in percent.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.PipelineRunning,
		m.StageDuration,
		m.SourceBytes,
		m.FetchDuration,
		m.Rows,
		m.ChartsRendered,
		m.ArtifactsPublished,
		m.NationalRate,
		m.NationalWeekOverWeek,
		m.LastSuccess,
	}
}

// NewMetrics creates and registers all report metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Push sends the run's metrics to the Pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	p := push.New(url, job)
	for _, c := range m.collectors() {
		p = p.Collector(c)
	}
	return p.PushContext(ctx)
}

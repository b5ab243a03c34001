package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jotavaladouro/covid19/internal/observability"
)

// Destination stores named artifacts.
type Destination interface {
	Name() string
	Put(ctx context.Context, name, src string) error
}

// Publisher copies artifacts from the work directory to every destination.
// It implements pipeline.Publisher.
type Publisher struct {
	workDir      string
	destinations []Destination
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// New creates a Publisher reading artifacts from workDir.
func New(workDir string, metrics *observability.Metrics, logger *slog.Logger, destinations ...Destination) *Publisher {
	return &Publisher{
		workDir:      workDir,
		destinations: destinations,
		metrics:      metrics,
		logger:       logger,
	}
}

// Publish copies each named artifact to each destination. Every copy is
// attempted; failures are joined and returned once all attempts are done.
func (p *Publisher) Publish(ctx context.Context, names []string) error {
	var errs []error
	for _, dst := range p.destinations {
		copied := 0
		for _, name := range names {
			if err := dst.Put(ctx, name, filepath.Join(p.workDir, name)); err != nil {
				p.metrics.ArtifactsPublished.WithLabelValues(dst.Name(), "error").Inc()
				p.logger.Error("publish artifact failed", "destination", dst.Name(), "artifact", name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %s: %w", dst.Name(), name, err))
				continue
			}
			p.metrics.ArtifactsPublished.WithLabelValues(dst.Name(), "success").Inc()
			copied++
		}
		p.logger.Info("artifacts published", "destination", dst.Name(), "copied", copied, "total", len(names))
	}
	return errors.Join(errs...)
}

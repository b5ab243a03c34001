package isciii

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jotavaladouro/covid19/internal/observability"
)

// Client downloads the published hospitalization snapshot.
// It implements pipeline.Fetcher.
type Client struct {
	url        string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a snapshot client for url.
func NewClient(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads the snapshot to dst, replacing any existing file.
// Redirects are followed; any non-2xx status is an error. There is no retry.
func (c *Client) Fetch(ctx context.Context, dst string) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("snapshot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("snapshot source error: status %d: %s", resp.StatusCode, body)
	}

	n, err := writeFile(dst, resp.Body)
	if err != nil {
		return err
	}

	c.metrics.SourceBytes.Add(float64(n))
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("snapshot downloaded", "url", c.url, "path", dst, "bytes", n)
	return nil
}

// writeFile streams r into a temporary file beside dst and renames it into place.
func writeFile(dst string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("read snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("rename snapshot: %w", err)
	}
	return n, nil
}

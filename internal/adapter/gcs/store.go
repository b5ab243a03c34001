package gcs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// Store reads and writes objects in a Cloud Storage bucket using
// application default credentials.
// It implements publish.Destination and pipeline.Downloader.
type Store struct {
	client *storage.Client
	bucket string
	logger *slog.Logger
}

// NewStore opens a Cloud Storage client for bucket.
func NewStore(ctx context.Context, bucket string, logger *slog.Logger) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket, logger: logger}, nil
}

// Name identifies the destination in logs and metrics.
func (s *Store) Name() string { return "gcs" }

// Put uploads the local file src as object name, overwriting it.
func (s *Store) Put(ctx context.Context, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType(name)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("upload gs://%s/%s: %w", s.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload gs://%s/%s: %w", s.bucket, name, err)
	}

	s.logger.Debug("object uploaded", "bucket", s.bucket, "object", name)
	return nil
}

// Download copies object name to the local file dst.
func (s *Store) Download(ctx context.Context, name, dst string) error {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("read gs://%s/%s: %w", s.bucket, name, err)
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("download gs://%s/%s: %w", s.bucket, name, err)
	}

	s.logger.Debug("object downloaded", "bucket", s.bucket, "object", name, "path", dst)
	return out.Close()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func contentType(name string) string {
	switch ext := filepath.Ext(name); ext {
	case ".csv":
		return "text/csv; charset=windows-1252"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return "application/octet-stream"
}

package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir is a local directory used as an artifact destination or source.
// It implements publish.Destination and pipeline.Downloader.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root. The directory is created on first write.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Name identifies the destination in logs and metrics.
func (d *Dir) Name() string { return "local" }

// Root returns the directory path.
func (d *Dir) Root() string { return d.root }

// Put copies the local file src to name under the directory, overwriting it.
func (d *Dir) Put(ctx context.Context, name, src string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", d.root, err)
	}
	return copyFile(src, filepath.Join(d.root, name))
}

// Download copies name from the directory to dst.
func (d *Dir) Download(ctx context.Context, name, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return copyFile(filepath.Join(d.root, name), dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if same, _ := sameFile(in, dst); same {
		return nil
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

// sameFile reports whether dst already is the open file, so a copy onto
// itself does not truncate it.
func sameFile(in *os.File, dst string) (bool, error) {
	a, err := in.Stat()
	if err != nil {
		return false, err
	}
	b, err := os.Stat(dst)
	if err != nil {
		return false, err
	}
	return os.SameFile(a, b), nil
}

package katrng

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rayozzie/katrng/pkg/trace"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// OpenOutput opens path for writing. An empty path or "-" means stdout. An
// existing file is only replaced when clear is set.
func OpenOutput(ctx context.Context, path string, clear bool) (io.WriteCloser, error) {
	log := trace.FromContext(ctx).WithPrefix("OUTPUT")
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("output path is a directory: %s", abs)
	case err == nil && !clear:
		return nil, fmt.Errorf("output file already exists: %s. Use -clear to overwrite it", abs)
	case err == nil:
		log.Infof("Overwriting output file: %s", abs)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("cannot access output file %s: %w", abs, err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	log.Debugf("Writing to %s", abs)
	return f, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so an interrupted run never leaves a truncated state file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Package fileutil provides small filesystem helpers shared by the staging
// and pipeline layers.
package fileutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// SaveStream writes the reader's contents to path, creating parent
// directories as needed. The partial file is removed on error.
func SaveStream(r io.Reader, path string) (int64, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return written, nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// RemoveTreeQuiet deletes path recursively, logging failures at debug level
// instead of returning them. Used for best-effort staging cleanup.
func RemoveTreeQuiet(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := os.RemoveAll(path); err != nil && logger != nil {
		logger.Debug("cleanup failed", slog.String("path", path), slog.Any("error", err))
	}
}

// Package extract writes archive entries beneath a destination directory.
package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Sink writes entries under destDir. Files go to a temporary file in the
// target directory and are renamed into place on Commit, so partially
// written files are never visible at their final paths.
type Sink struct {
	destDir       string
	overwrite     bool
	preserveMode  bool
	preserveTimes bool
}

// Option configures a Sink.
type Option func(*Sink)

// WithOverwrite allows replacing existing files. By default an existing
// file fails the entry with fs.ErrExist.
func WithOverwrite(overwrite bool) Option {
	return func(s *Sink) {
		s.overwrite = overwrite
	}
}

// WithPreserveMode applies permission bits from entry metadata.
// By default files use umask defaults.
func WithPreserveMode(preserve bool) Option {
	return func(s *Sink) {
		s.preserveMode = preserve
	}
}

// WithPreserveTimes applies modification times from entry metadata.
func WithPreserveTimes(preserve bool) Option {
	return func(s *Sink) {
		s.preserveTimes = preserve
	}
}

// NewSink creates a Sink writing under destDir. Parent directories are
// created as needed.
func NewSink(destDir string, opts ...Option) *Sink {
	s := &Sink{destDir: destDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dest maps a slash-separated entry path to its on-disk location.
func (s *Sink) dest(name string) string {
	return filepath.Join(s.destDir, filepath.FromSlash(name))
}

// MkDir creates a directory entry along with any missing parents.
func (s *Sink) MkDir(name string, mode fs.FileMode) error {
	destPath := s.dest(name)
	if err := os.MkdirAll(destPath, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", destPath, err)
	}
	if s.preserveMode && mode.Perm() != 0 {
		if err := os.Chmod(destPath, mode.Perm()); err != nil {
			return fmt.Errorf("chmod %s: %w", destPath, err)
		}
	}
	return nil
}

// Create opens a Writer for one file entry. When the target exists and
// overwrite is disabled, it fails with an error wrapping fs.ErrExist and
// leaves the existing file untouched.
func (s *Sink) Create(name string, mode fs.FileMode, modTime time.Time) (*Writer, error) {
	destPath := s.dest(name)
	if !s.overwrite {
		if _, err := os.Lstat(destPath); err == nil {
			return nil, &fs.PathError{Op: "create", Path: destPath, Err: fs.ErrExist}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", destPath, err)
		}
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	tempFile, err := os.CreateTemp(dir, ".unpack-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &Writer{
		sink:     s,
		destPath: destPath,
		tempFile: tempFile,
		mode:     mode,
		modTime:  modTime,
	}, nil
}

// Writer accumulates one entry's data in a temp file and renames it to
// the final path on Commit.
type Writer struct {
	sink     *Sink
	destPath string
	tempFile *os.File
	mode     fs.FileMode
	modTime  time.Time
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.tempFile.Write(p)
}

// Commit closes the temp file, applies metadata, and renames it into place.
func (w *Writer) Commit() error {
	tempPath := w.tempFile.Name()

	if err := w.tempFile.Close(); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}

	if w.sink.preserveMode && w.mode.Perm() != 0 {
		if err := os.Chmod(tempPath, w.mode.Perm()); err != nil {
			_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
			return fmt.Errorf("chmod: %w", err)
		}
	}

	if w.sink.preserveTimes && !w.modTime.IsZero() {
		if err := os.Chtimes(tempPath, w.modTime, w.modTime); err != nil {
			_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
			return fmt.Errorf("chtimes: %w", err)
		}
	}

	if err := os.Rename(tempPath, w.destPath); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", w.destPath, err)
	}
	return nil
}

// Discard closes and removes the temp file.
func (w *Writer) Discard() error {
	tempPath := w.tempFile.Name()
	_ = w.tempFile.Close() //nolint:errcheck // we're cleaning up
	return os.Remove(tempPath)
}

package unpack

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/unpack/internal/extract"
	"github.com/meigma/unpack/internal/pathutil"
)

// ExtractStats reports what ExtractTo wrote.
type ExtractStats struct {
	// FileCount is the number of files committed to disk.
	FileCount int

	// DirCount is the number of directory entries created.
	DirCount int

	// TotalBytes is the number of entry bytes written.
	TotalBytes int64
}

// ProgressEvent is a progress update for one entry during extraction.
type ProgressEvent struct {
	// Path is the entry being written.
	Path string

	// BytesDone is the number of bytes written so far. BytesTotal is the
	// entry's size hint; zero when the container does not record one.
	BytesDone, BytesTotal int64
}

// ProgressFunc receives progress updates. It is called synchronously on
// the extracting goroutine after each written chunk and once more when
// the entry is committed, so it must return quickly.
type ProgressFunc func(ProgressEvent)

// ExtractOption configures ExtractTo.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	overwrite     bool
	preserveMode  bool
	preserveTimes bool
	password      string
	passwordSet   bool
	progress      ProgressFunc
}

// ExtractWithOverwrite allows replacing existing files. By default an
// existing destination file aborts the operation with an error wrapping
// fs.ErrExist, leaving the existing content unchanged.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(c *extractConfig) {
		c.overwrite = overwrite
	}
}

// ExtractWithPreserveMode applies permission bits from entry metadata.
// By default files use umask defaults.
func ExtractWithPreserveMode(preserve bool) ExtractOption {
	return func(c *extractConfig) {
		c.preserveMode = preserve
	}
}

// ExtractWithPreserveTimes applies modification times from entry
// metadata. Enabled by default; pass false to keep write-time stamps.
func ExtractWithPreserveTimes(preserve bool) ExtractOption {
	return func(c *extractConfig) {
		c.preserveTimes = preserve
	}
}

// ExtractWithPassword overrides the session password for this operation.
func ExtractWithPassword(password string) ExtractOption {
	return func(c *extractConfig) {
		c.password = password
		c.passwordSet = true
	}
}

// ExtractWithProgress reports per-entry progress to fn.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(c *extractConfig) {
		c.progress = fn
	}
}

// ExtractTo extracts every entry beneath destDir in archive order.
//
// Directories are created as listed; files are written through a temp
// file in the target directory and renamed into place, with parent
// directories created as needed and modification times restored from
// entry metadata. Entry paths that would escape destDir fail with
// ErrBadData before anything is written for them.
//
// A failure aborts the operation: previously extracted entries remain on
// disk, nothing partial appears at the failing entry's path, and the
// returned error names the entry. The returned stats count the work
// committed before the failure.
func (a *Archive) ExtractTo(destDir string, opts ...ExtractOption) (stats ExtractStats, err error) {
	cfg := extractConfig{preserveTimes: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	password := a.password
	if cfg.passwordSet {
		password = cfg.password
	}

	r, err := a.open(ModeExtract, password)
	if err != nil {
		return stats, a.wrap("extract", "", err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = a.wrap("extract", "", cerr)
		}
	}()

	sink := extract.NewSink(destDir,
		extract.WithOverwrite(cfg.overwrite),
		extract.WithPreserveMode(cfg.preserveMode),
		extract.WithPreserveTimes(cfg.preserveTimes),
	)
	buf, release := a.buffer()
	defer release()

	for {
		h, nerr := r.Next()
		if errors.Is(nerr, ErrEndOfArchive) {
			a.log().Debug("extracted archive",
				"path", a.path, "dest", destDir,
				"files", stats.FileCount, "dirs", stats.DirCount, "bytes", stats.TotalBytes)
			return stats, nil
		}
		if nerr != nil {
			return stats, a.wrap("extract", "", nerr)
		}
		if !pathutil.Within(h.Path) {
			return stats, a.wrap("extract", h.Path, fmt.Errorf("%w: entry path escapes destination", ErrBadData))
		}

		if h.IsDir {
			if derr := sink.MkDir(h.Path, h.Mode); derr != nil {
				return stats, a.wrap("extract", h.Path, fmt.Errorf("%w: %w", ErrCreate, derr))
			}
			stats.DirCount++
			continue
		}

		written, werr := extractEntry(r, sink, h, buf, cfg.progress)
		if werr != nil {
			return stats, a.wrap("extract", h.Path, werr)
		}
		stats.FileCount++
		stats.TotalBytes += written
	}
}

// extractEntry streams the current entry into the sink and commits it.
func extractEntry(r Reader, sink *extract.Sink, h *Entry, buf []byte, progress ProgressFunc) (int64, error) {
	w, err := sink.Create(h.Path, h.Mode, h.ModTime)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCreate, err)
	}

	var written int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				_ = w.Discard() //nolint:errcheck // already failing
				return 0, fmt.Errorf("%w: %w", ErrWrite, werr)
			}
			written += int64(n)
			if progress != nil {
				progress(ProgressEvent{Path: h.Path, BytesDone: written, BytesTotal: h.Size})
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = w.Discard() //nolint:errcheck // already failing
			return 0, rerr
		}
	}

	if err := w.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCreate, err)
	}
	if progress != nil {
		progress(ProgressEvent{Path: h.Path, BytesDone: written, BytesTotal: h.Size})
	}
	return written, nil
}

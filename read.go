package unpack

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/meigma/unpack/internal/pathutil"
)

// ReadFile extracts one entry into memory.
//
// The archive is scanned in order for the first file entry whose
// normalized path equals name; directories never match. A full scan
// without a match fails with ErrEntryNotFound. The result is presized
// from the entry's size hint and grows if the decoder delivers more.
// Entries over the session's size cap fail with ErrNoMemory before any
// data is read.
func (a *Archive) ReadFile(name string, opts ...ReadOption) (data []byte, err error) {
	want := pathutil.Normalize(name)
	r, err := a.open(ModeExtract, a.readPassword(opts))
	if err != nil {
		return nil, a.wrap("read", name, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			data, err = nil, a.wrap("read", name, cerr)
		}
	}()

	for {
		h, nerr := r.Next()
		if errors.Is(nerr, ErrEndOfArchive) {
			return nil, a.wrap("read", name, ErrEntryNotFound)
		}
		if nerr != nil {
			return nil, a.wrap("read", name, nerr)
		}
		if h.IsDir || h.Path != want {
			continue
		}
		data, nerr = a.readAll(r, h)
		if nerr != nil {
			return nil, a.wrap("read", name, nerr)
		}
		a.log().Debug("read entry", "path", a.path, "entry", h.Path, "bytes", len(data))
		return data, nil
	}
}

// ReadFileBuffered streams one entry through fn, one call per chunk, in
// order and on the calling goroutine. Each chunk is exactly the bytes one
// decoder read produced, at most the session's buffer size; the slice is
// reused and only valid during the call.
//
// A nil return means every chunk was delivered and the decoder signaled a
// clean end. A non-nil error from fn aborts the stream and is returned;
// this mode has no successful early stop (use Walk with fs.SkipAll for
// that). A zero-length entry succeeds with zero calls.
func (a *Archive) ReadFileBuffered(name string, fn func(chunk []byte) error, opts ...ReadOption) (err error) {
	want := pathutil.Normalize(name)
	r, err := a.open(ModeExtract, a.readPassword(opts))
	if err != nil {
		return a.wrap("read", name, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = a.wrap("read", name, cerr)
		}
	}()

	for {
		h, nerr := r.Next()
		if errors.Is(nerr, ErrEndOfArchive) {
			return a.wrap("read", name, ErrEntryNotFound)
		}
		if nerr != nil {
			return a.wrap("read", name, nerr)
		}
		if h.IsDir || h.Path != want {
			continue
		}

		buf, release := a.buffer()
		defer release()
		for {
			n, rerr := r.Read(buf)
			if n > 0 {
				if cberr := fn(buf[:n]); cberr != nil {
					return a.wrap("read", name, cberr)
				}
			}
			if rerr == io.EOF {
				return nil
			}
			if rerr != nil {
				return a.wrap("read", name, rerr)
			}
		}
	}
}

// WalkFunc visits one file entry with its full data. Returning fs.SkipAll
// stops the walk; any other non-nil error aborts it.
type WalkFunc func(path string, data []byte) error

// Walk reads every file entry in archive order and invokes fn once per
// entry with the entry's complete data. Directory entries are never
// opened for data and never visited.
//
// fn returning fs.SkipAll stops the walk immediately and Walk returns
// nil: stopping early is success. Any other non-nil error aborts the walk
// and propagates. Entries over the session's size cap fail with
// ErrNoMemory.
func (a *Archive) Walk(fn WalkFunc, opts ...ReadOption) (err error) {
	r, err := a.open(ModeExtract, a.readPassword(opts))
	if err != nil {
		return a.wrap("walk", "", err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = a.wrap("walk", "", cerr)
		}
	}()

	for {
		h, nerr := r.Next()
		if errors.Is(nerr, ErrEndOfArchive) {
			return nil
		}
		if nerr != nil {
			return a.wrap("walk", "", nerr)
		}
		if h.IsDir {
			continue
		}
		data, rerr := a.readAll(r, h)
		if rerr != nil {
			return a.wrap("walk", h.Path, rerr)
		}
		if werr := fn(h.Path, data); werr != nil {
			if errors.Is(werr, fs.SkipAll) {
				return nil
			}
			return a.wrap("walk", h.Path, werr)
		}
	}
}

// readAll drains the current entry into memory, presized from the header
// hint and bounded by the session's size cap.
func (a *Archive) readAll(r Reader, h *Entry) ([]byte, error) {
	if h.Size > a.maxFileSize {
		return nil, fmt.Errorf("%w: entry %s is %d bytes (cap %d)", ErrNoMemory, h.Path, h.Size, a.maxFileSize)
	}
	hint := h.Size
	if hint < 0 {
		hint = 0
	}
	data := make([]byte, 0, hint)

	buf, release := a.buffer()
	defer release()
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if int64(len(data))+int64(n) > a.maxFileSize {
				return nil, fmt.Errorf("%w: entry %s exceeds cap %d", ErrNoMemory, h.Path, a.maxFileSize)
			}
			data = append(data, buf[:n]...)
		}
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

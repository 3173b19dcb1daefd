package unpack

import (
	"errors"
	"iter"

	"github.com/meigma/unpack/internal/codec"
)

// Entry describes one archive entry: its slash-separated path,
// uncompressed size, permission bits, modification time, and whether it
// is a directory or password protected.
type Entry = codec.Header

// Entries returns a lazy iterator over the catalog in archive order.
//
// Like List, every call opens a fresh decoder pass; breaking out of the
// range closes it. A scan failure is yielded as the final pair's error,
// after which iteration stops.
func (a *Archive) Entries(opts ...ReadOption) iter.Seq2[Entry, error] {
	password := a.readPassword(opts)
	return func(yield func(Entry, error) bool) {
		r, err := a.open(ModeList, password)
		if err != nil {
			yield(Entry{}, a.wrap("list", "", err))
			return
		}
		defer func() {
			_ = r.Close() //nolint:errcheck // iterator teardown; List reports close failures
		}()
		for {
			h, err := r.Next()
			if errors.Is(err, ErrEndOfArchive) {
				return
			}
			if err != nil {
				yield(Entry{}, a.wrap("list", "", err))
				return
			}
			if !yield(*h, nil) {
				return
			}
		}
	}
}

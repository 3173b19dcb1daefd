// Package codec defines the decoding contract the unpack session drives.
//
// A Codec opens archives of one format. A Reader is a forward-only pass
// over one archive: Next advances to the following entry header, Read
// streams the current entry's data. Readers are single-goroutine; the
// session opens a fresh reader per operation and closes it before
// returning.
package codec

import (
	"io/fs"
	"time"
)

// Mode tells the codec what a reader will be used for. Adapters that do
// not distinguish header walks from data extraction may ignore it.
type Mode int

const (
	// ModeList marks a pass that reads headers only.
	ModeList Mode = iota

	// ModeExtract marks a pass that reads entry data.
	ModeExtract
)

// String returns "list" or "extract".
func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeExtract:
		return "extract"
	default:
		return "unknown"
	}
}

// OpenOptions carries per-pass decoder parameters.
type OpenOptions struct {
	// Password decrypts protected entries and headers. Empty means none.
	Password string
}

// Header describes one archive entry.
type Header struct {
	// Path is the entry path: slash-separated, cleaned, relative.
	Path string

	// Size is the uncompressed size in bytes. Zero for directories and
	// for entries whose size the container does not record.
	Size int64

	// Mode holds the permission bits recorded in the archive, if any.
	Mode fs.FileMode

	// ModTime is the recorded modification time. May be the zero time.
	ModTime time.Time

	// IsDir reports whether the entry is a directory.
	IsDir bool

	// Encrypted reports whether reading the entry requires a password.
	Encrypted bool
}

// Reader is a forward-only decoder pass over one archive.
//
// Next returns ErrEndOfArchive after the last entry. Read returns the
// current entry's data and io.EOF at the entry's end. The end of an entry
// is always signaled explicitly: a read that exactly fills p is not an
// end condition. Reading a directory entry returns io.EOF immediately.
type Reader interface {
	Next() (*Header, error)
	Read(p []byte) (int, error)
	Close() error
}

// Codec opens archives of one format.
type Codec interface {
	// Name identifies the format, such as "rar", "7z", or "zip".
	Name() string

	// Open starts a pass over the archive at path.
	Open(path string, mode Mode, opts OpenOptions) (Reader, error)
}

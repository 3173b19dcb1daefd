package unpack

import (
	"errors"
	"fmt"

	"github.com/meigma/unpack/internal/codec"
)

// Errors re-exported from the codec layer. Every decoder failure wraps
// exactly one of these.
var (
	// ErrEndOfArchive wraps failures caused by a container that ends
	// prematurely. Clean archive ends never surface as errors.
	ErrEndOfArchive = codec.ErrEndOfArchive

	// ErrNoMemory is returned when a buffer cannot be allocated, including
	// entries that exceed the session's in-memory size cap.
	ErrNoMemory = codec.ErrNoMemory

	// ErrBadData is returned when entry data fails to decode or checksum.
	ErrBadData = codec.ErrBadData

	// ErrBadArchive is returned when a recognized container is malformed.
	ErrBadArchive = codec.ErrBadArchive

	// ErrUnknownFormat is returned when content matches no supported format.
	ErrUnknownFormat = codec.ErrUnknownFormat

	// ErrOpen is returned when the archive file or one of its volumes
	// cannot be opened.
	ErrOpen = codec.ErrOpen

	// ErrCreate is returned when an output file or directory cannot be
	// created or finalized, including write conflicts (see fs.ErrExist).
	ErrCreate = codec.ErrCreate

	// ErrClose is returned when closing the archive or an output fails.
	ErrClose = codec.ErrClose

	// ErrRead is returned when reading archive bytes fails at the OS level.
	ErrRead = codec.ErrRead

	// ErrWrite is returned when writing extracted bytes fails.
	ErrWrite = codec.ErrWrite

	// ErrHeaderTooLarge is returned when a header exceeds the decoder's
	// buffer.
	ErrHeaderTooLarge = codec.ErrHeaderTooLarge

	// ErrUnknown is returned for failures no other sentinel describes.
	ErrUnknown = codec.ErrUnknown

	// ErrMissingPassword is returned when a password is required or the
	// supplied one is rejected.
	ErrMissingPassword = codec.ErrMissingPassword
)

// Sentinel errors specific to the session layer; no codec produces these.
var (
	// ErrArchiveNotFound is returned by Open when the bound path does not
	// exist. It is reported before any decoder is consulted.
	ErrArchiveNotFound = errors.New("unpack: archive not found")

	// ErrEntryNotFound is returned when no entry matches after a full
	// catalog scan.
	ErrEntryNotFound = errors.New("unpack: entry not found")
)

// ArchiveError carries the operation, archive path, and entry involved
// in a failure. It wraps the underlying cause, so errors.Is reaches both
// the taxonomy sentinel and OS-level sentinels such as fs.ErrExist.
type ArchiveError struct {
	Op    string // "open", "list", "extract", "read", "walk"
	Path  string // archive path
	Entry string // entry path, when the failure is entry-specific
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("unpack %s %s (entry %s): %v", e.Op, e.Path, e.Entry, e.Err)
	}
	return fmt.Sprintf("unpack %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

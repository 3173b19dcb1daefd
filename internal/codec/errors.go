package codec

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// Sentinel errors for every condition a decoder reports. Adapters wrap
// each failure so exactly one of these matches via errors.Is, with the
// library's own error preserved underneath.
var (
	// ErrEndOfArchive is returned by Reader.Next after the last entry. It
	// also wraps failures caused by a container that ends prematurely.
	ErrEndOfArchive = errors.New("unpack: end of archive")

	// ErrNoMemory is returned when a buffer cannot be allocated, including
	// entries that exceed a configured in-memory size limit.
	ErrNoMemory = errors.New("unpack: cannot allocate memory")

	// ErrBadData is returned when entry data fails to decode or checksum.
	ErrBadData = errors.New("unpack: bad data")

	// ErrBadArchive is returned when a recognized container is malformed.
	ErrBadArchive = errors.New("unpack: bad archive")

	// ErrUnknownFormat is returned when content matches no supported format.
	ErrUnknownFormat = errors.New("unpack: unknown archive format")

	// ErrOpen is returned when the archive file or one of its volumes
	// cannot be opened.
	ErrOpen = errors.New("unpack: open failed")

	// ErrCreate is returned when an output file or directory cannot be
	// created or finalized.
	ErrCreate = errors.New("unpack: create failed")

	// ErrClose is returned when closing the archive or an output fails.
	ErrClose = errors.New("unpack: close failed")

	// ErrRead is returned when reading archive bytes fails at the OS level.
	ErrRead = errors.New("unpack: read failed")

	// ErrWrite is returned when writing extracted bytes fails.
	ErrWrite = errors.New("unpack: write failed")

	// ErrHeaderTooLarge is returned when a header exceeds the decoder's
	// buffer.
	ErrHeaderTooLarge = errors.New("unpack: header too large for buffer")

	// ErrUnknown is returned for failures no other sentinel describes.
	ErrUnknown = errors.New("unpack: unknown failure")

	// ErrMissingPassword is returned when a password is required or the
	// supplied one is rejected.
	ErrMissingPassword = errors.New("unpack: password required")
)

// passwordish reports whether err reads like a password failure. Decoder
// libraries share no sentinel for this, so the message is the only
// portable signal.
func passwordish(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

// fileError reports whether err originated in the OS layer rather than
// the decoder.
func fileError(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe)
}

// classifyOpen wraps a failure from opening an archive whose format was
// already recognized.
func classifyOpen(err error) error {
	switch {
	case passwordish(err):
		return fmt.Errorf("%w: %w", ErrMissingPassword, err)
	case fileError(err):
		return fmt.Errorf("%w: %w", ErrOpen, err)
	default:
		return fmt.Errorf("%w: %w", ErrBadArchive, err)
	}
}

// classifyNext wraps a failure from advancing to the next header.
func classifyNext(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		return ErrEndOfArchive
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", ErrEndOfArchive, err)
	case passwordish(err):
		return fmt.Errorf("%w: %w", ErrMissingPassword, err)
	case fileError(err):
		return fmt.Errorf("%w: %w", ErrRead, err)
	default:
		return fmt.Errorf("%w: %w", ErrBadArchive, err)
	}
}

// classifyRead wraps a failure from reading entry data. io.EOF never
// reaches this; it is the end-of-entry signal, not a failure.
func classifyRead(err error) error {
	switch {
	case passwordish(err):
		return fmt.Errorf("%w: %w", ErrMissingPassword, err)
	case fileError(err):
		return fmt.Errorf("%w: %w", ErrRead, err)
	default:
		return fmt.Errorf("%w: %w", ErrBadData, err)
	}
}

// classifyClose wraps a failure from closing the archive.
func classifyClose(err error) error {
	return fmt.Errorf("%w: %w", ErrClose, err)
}

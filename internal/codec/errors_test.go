package codec

import (
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOpen(t *testing.T) {
	t.Parallel()

	pathErr := &fs.PathError{Op: "open", Path: "x.rar", Err: fs.ErrPermission}
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "password message", err: errors.New("archive: incorrect password"), want: ErrMissingPassword},
		{name: "encryption message", err: errors.New("unsupported encryption version"), want: ErrMissingPassword},
		{name: "os failure", err: pathErr, want: ErrOpen},
		{name: "anything else", err: errors.New("truncated signature"), want: ErrBadArchive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := classifyOpen(tc.err)
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.err, "the library error must stay in the chain")
		})
	}
}

func TestClassifyNext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "clean end", err: io.EOF, want: ErrEndOfArchive},
		{name: "wrapped clean end", err: &fs.PathError{Op: "read", Path: "x", Err: io.EOF}, want: ErrEndOfArchive},
		{name: "truncated container", err: io.ErrUnexpectedEOF, want: ErrEndOfArchive},
		{name: "encrypted headers", err: errors.New("rardecode: incorrect password"), want: ErrMissingPassword},
		{name: "os failure", err: &fs.PathError{Op: "read", Path: "x.rar", Err: fs.ErrClosed}, want: ErrRead},
		{name: "anything else", err: errors.New("bad header crc"), want: ErrBadArchive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, classifyNext(tc.err), tc.want)
		})
	}
}

func TestClassifyNext_CleanEndIsBare(t *testing.T) {
	t.Parallel()

	// A clean end is a scan terminator, not a failure; nothing to unwrap.
	assert.Equal(t, ErrEndOfArchive, classifyNext(io.EOF))
}

func TestClassifyNext_TruncationKeepsTheCause(t *testing.T) {
	t.Parallel()

	got := classifyNext(io.ErrUnexpectedEOF)
	assert.ErrorIs(t, got, ErrEndOfArchive)
	assert.ErrorIs(t, got, io.ErrUnexpectedEOF)
}

func TestClassifyRead(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "password message", err: errors.New("sevenzip: password required"), want: ErrMissingPassword},
		{name: "os failure", err: &fs.PathError{Op: "read", Path: "x.7z", Err: fs.ErrClosed}, want: ErrRead},
		{name: "decode failure", err: errors.New("flate: corrupt input"), want: ErrBadData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := classifyRead(tc.err)
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestClassifyClose(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad file descriptor")
	got := classifyClose(cause)
	assert.ErrorIs(t, got, ErrClose)
	assert.ErrorIs(t, got, cause)
}

// Package codectest provides a scripted in-memory codec for tests.
package codectest

import (
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/meigma/unpack/internal/codec"
)

// Entry scripts one archive entry served by a [Codec].
type Entry struct {
	Header codec.Header
	Data   []byte

	// NextErr is returned by Next in place of this entry's header.
	NextErr error

	// ReadErr is returned once Data is exhausted, in place of io.EOF.
	ReadErr error
}

// File returns a regular file entry holding data.
func File(path string, data []byte) Entry {
	return Entry{
		Header: codec.Header{Path: path, Size: int64(len(data)), Mode: 0o644},
		Data:   data,
	}
}

// Dir returns a directory entry.
func Dir(path string) Entry {
	return Entry{
		Header: codec.Header{Path: path, Mode: 0o755 | fs.ModeDir, IsDir: true},
	}
}

// EncryptedFile returns a file entry that only decodes with the codec's
// configured password.
func EncryptedFile(path string, data []byte) Entry {
	e := File(path, data)
	e.Header.Encrypted = true
	return e
}

// Codec is a scripted codec.Codec that records every call, so tests can
// assert pass discipline: how many passes were opened, with which modes
// and passwords, and that each pass was closed again.
type Codec struct {
	mu sync.Mutex

	// Entries are served in order by every pass.
	Entries []Entry

	// Password decrypts encrypted entries. When HeaderPassword is set,
	// opening the archive at all requires it.
	Password       string
	HeaderPassword bool

	// OpenErr fails Open unconditionally. CloseErr fails Close; the
	// close is still counted.
	OpenErr  error
	CloseErr error

	// OpenCalls counts Open attempts, including failed ones. CloseCalls
	// counts closed passes.
	OpenCalls  int
	CloseCalls int
	NextCalls  int
	ReadCalls  int
	Modes      []codec.Mode
	Passwords  []string

	handles int // passes handed out
}

var _ codec.Codec = (*Codec)(nil)

func (c *Codec) Name() string { return "test" }

// Open starts a scripted pass over the entries.
func (c *Codec) Open(_ string, mode codec.Mode, opts codec.OpenOptions) (codec.Reader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.OpenCalls++
	c.Modes = append(c.Modes, mode)
	c.Passwords = append(c.Passwords, opts.Password)
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	if c.HeaderPassword && opts.Password != c.Password {
		return nil, fmt.Errorf("%w: headers are encrypted", codec.ErrMissingPassword)
	}
	c.handles++
	return &reader{c: c, password: opts.Password}, nil
}

// Balanced reports whether every pass handed out has been closed. Failed
// opens hand out nothing and need no close.
func (c *Codec) Balanced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles == c.CloseCalls
}

type reader struct {
	c        *Codec
	password string
	idx      int
	cur      *Entry
	off      int
	closed   bool
}

func (r *reader) Next() (*codec.Header, error) {
	r.c.mu.Lock()
	r.c.NextCalls++
	r.c.mu.Unlock()

	r.cur = nil
	if r.idx >= len(r.c.Entries) {
		return nil, codec.ErrEndOfArchive
	}
	e := &r.c.Entries[r.idx]
	r.idx++
	if e.NextErr != nil {
		return nil, e.NextErr
	}
	r.cur = e
	r.off = 0
	h := e.Header
	return &h, nil
}

func (r *reader) Read(p []byte) (int, error) {
	r.c.mu.Lock()
	r.c.ReadCalls++
	r.c.mu.Unlock()

	if r.cur == nil || r.cur.Header.IsDir {
		return 0, io.EOF
	}
	if r.cur.Header.Encrypted && r.password != r.c.Password {
		return 0, fmt.Errorf("%w: entry %s", codec.ErrMissingPassword, r.cur.Header.Path)
	}
	if r.off >= len(r.cur.Data) {
		if r.cur.ReadErr != nil {
			return 0, r.cur.ReadErr
		}
		return 0, io.EOF
	}
	n := copy(p, r.cur.Data[r.off:])
	r.off += n
	return n, nil
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	r.c.CloseCalls++
	return r.c.CloseErr
}

package unpack

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/meigma/unpack/internal/codec"
)

const (
	// DefaultBufferSize is the chunk buffer size for streaming reads.
	DefaultBufferSize = 64 << 10

	// DefaultMaxFileSize caps single entries read into memory by ReadFile
	// and Walk. ExtractTo and ReadFileBuffered stream and are not capped.
	DefaultMaxFileSize = 256 << 20
)

// Archive is a session bound to one archive file.
//
// The session holds no decoder state: every operation opens a fresh
// decoder pass and closes it before returning, so a failed call leaves
// nothing open and results always reflect the file at call time. Methods
// are safe for concurrent use as long as SetPassword is not called while
// another operation is in flight.
type Archive struct {
	path        string
	password    string
	codec       Codec // nil selects by format on each operation
	bufferSize  int
	maxFileSize int64
	logger      *slog.Logger
}

// Open binds a session to the archive at path.
//
// The file must exist: a missing file fails with ErrArchiveNotFound
// before any decoder is consulted. No format probing happens here, so
// binding to a file that is not an archive succeeds and the first
// operation reports ErrUnknownFormat or ErrBadArchive instead.
func Open(path string, opts ...Option) (*Archive, error) {
	a := &Archive{
		path:        path,
		bufferSize:  DefaultBufferSize,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ArchiveError{Op: "open", Path: path, Err: fmt.Errorf("%w: %w", ErrArchiveNotFound, err)}
		}
		return nil, &ArchiveError{Op: "open", Path: path, Err: fmt.Errorf("%w: %w", ErrOpen, err)}
	}
	a.log().Debug("session bound", "path", path)
	return a, nil
}

// Path returns the bound archive path.
func (a *Archive) Path() string {
	return a.path
}

// SetPassword replaces the stored default password used by operations
// that are not given an explicit one. Calling it while an operation is
// in flight is a data race.
func (a *Archive) SetPassword(password string) {
	a.password = password
}

func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// open starts a decoder pass for one operation.
func (a *Archive) open(mode Mode, password string) (Reader, error) {
	c := a.codec
	if c == nil {
		var err error
		c, err = codec.ForPath(a.path)
		if err != nil {
			return nil, err
		}
	}
	return c.Open(a.path, mode, OpenOptions{Password: password})
}

// wrap attaches operation context to err.
func (a *Archive) wrap(op, entry string, err error) error {
	return &ArchiveError{Op: op, Path: a.path, Entry: entry, Err: err}
}

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, DefaultBufferSize)
		return &b
	},
}

// buffer returns a chunk buffer and its release func. Default-sized
// buffers are pooled.
func (a *Archive) buffer() ([]byte, func()) {
	if a.bufferSize == DefaultBufferSize {
		bp := bufPool.Get().(*[]byte)
		return *bp, func() { bufPool.Put(bp) }
	}
	return make([]byte, a.bufferSize), func() {}
}

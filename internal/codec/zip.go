package codec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/unpack/internal/pathutil"
)

// zipEncryptedFlag is bit 0 of the general purpose flags.
const zipEncryptedFlag = 0x1

// zipCodec decodes zip archives. Encrypted entries list fine but cannot
// be read: the library ships no zip crypto, so data reads fail with
// ErrMissingPassword regardless of the password supplied.
type zipCodec struct{}

func (zipCodec) Name() string { return "zip" }

func (zipCodec) Open(path string, _ Mode, _ OpenOptions) (Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, classifyOpen(err)
	}
	return &zipReader{zr: zr}, nil
}

type zipReader struct {
	zr  *zip.ReadCloser
	idx int
	f   *zip.File
	cur io.ReadCloser
}

func (r *zipReader) Next() (*Header, error) {
	if r.cur != nil {
		_ = r.cur.Close() //nolint:errcheck // advancing discards the stream
		r.cur = nil
	}
	r.f = nil
	if r.idx >= len(r.zr.File) {
		return nil, ErrEndOfArchive
	}
	f := r.zr.File[r.idx]
	r.idx++
	r.f = f
	return &Header{
		Path:      pathutil.Normalize(f.Name),
		Size:      int64(f.UncompressedSize64),
		Mode:      f.Mode(),
		ModTime:   f.Modified,
		IsDir:     f.FileInfo().IsDir(),
		Encrypted: f.Flags&zipEncryptedFlag != 0,
	}, nil
}

func (r *zipReader) Read(p []byte) (int, error) {
	if r.f == nil || r.f.FileInfo().IsDir() {
		return 0, io.EOF
	}
	if r.cur == nil {
		if r.f.Flags&zipEncryptedFlag != 0 {
			return 0, fmt.Errorf("%w: zip encryption is not supported (entry %s)", ErrMissingPassword, r.f.Name)
		}
		rc, err := r.f.Open()
		if err != nil {
			return 0, classifyRead(err)
		}
		r.cur = rc
	}
	n, err := r.cur.Read(p)
	if err != nil && err != io.EOF {
		return n, classifyRead(err)
	}
	return n, err
}

func (r *zipReader) Close() error {
	if r.cur != nil {
		_ = r.cur.Close() //nolint:errcheck // stream dies with the archive
		r.cur = nil
	}
	if err := r.zr.Close(); err != nil {
		return classifyClose(err)
	}
	return nil
}

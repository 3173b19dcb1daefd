package codec

import (
	"io"

	"github.com/bodgit/sevenzip"

	"github.com/meigma/unpack/internal/pathutil"
)

// sevenZipCodec decodes 7z archives. The library indexes entries up
// front; the adapter walks them in stored order and opens each stream
// lazily so header-only passes never touch entry data. The container
// exposes no per-entry encryption flag, so password failures surface as
// open or read errors instead of Header.Encrypted.
type sevenZipCodec struct{}

func (sevenZipCodec) Name() string { return "7z" }

func (sevenZipCodec) Open(path string, _ Mode, opts OpenOptions) (Reader, error) {
	var (
		rc  *sevenzip.ReadCloser
		err error
	)
	if opts.Password != "" {
		rc, err = sevenzip.OpenReaderWithPassword(path, opts.Password)
	} else {
		rc, err = sevenzip.OpenReader(path)
	}
	if err != nil {
		return nil, classifyOpen(err)
	}
	return &sevenZipReader{rc: rc}, nil
}

type sevenZipReader struct {
	rc  *sevenzip.ReadCloser
	idx int
	f   *sevenzip.File
	cur io.ReadCloser
}

func (r *sevenZipReader) Next() (*Header, error) {
	if r.cur != nil {
		_ = r.cur.Close() //nolint:errcheck // advancing discards the stream
		r.cur = nil
	}
	r.f = nil
	if r.idx >= len(r.rc.File) {
		return nil, ErrEndOfArchive
	}
	f := r.rc.File[r.idx]
	r.idx++
	r.f = f
	info := f.FileInfo()
	return &Header{
		Path:    pathutil.Normalize(f.Name),
		Size:    int64(f.UncompressedSize),
		Mode:    info.Mode(),
		ModTime: f.Modified,
		IsDir:   info.IsDir(),
	}, nil
}

func (r *sevenZipReader) Read(p []byte) (int, error) {
	if r.f == nil || r.f.FileInfo().IsDir() {
		return 0, io.EOF
	}
	if r.cur == nil {
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

func (r *sevenZipReader) Close() error {
	if r.cur != nil {
		_ = r.cur.Close() //nolint:errcheck // stream dies with the archive
		r.cur = nil
	}
	if err := r.rc.Close(); err != nil {
		return classifyClose(err)
	}
	return nil
}

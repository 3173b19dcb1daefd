package codec

import (
	"io"

	"github.com/nwaples/rardecode/v2"

	"github.com/meigma/unpack/internal/pathutil"
)

// rarCodec decodes RAR3 and RAR5 archives, including multi-volume sets,
// which the library follows transparently.
type rarCodec struct{}

func (rarCodec) Name() string { return "rar" }

func (rarCodec) Open(path string, _ Mode, opts OpenOptions) (Reader, error) {
	var ropts []rardecode.Option
	if opts.Password != "" {
		ropts = append(ropts, rardecode.Password(opts.Password))
	}
	rc, err := rardecode.OpenReader(path, ropts...)
	if err != nil {
		return nil, classifyOpen(err)
	}
	return &rarReader{rc: rc}, nil
}

type rarReader struct {
	rc *rardecode.ReadCloser
}

func (r *rarReader) Next() (*Header, error) {
	h, err := r.rc.Next()
	if err != nil {
		return nil, classifyNext(err)
	}
	return &Header{
		Path:      pathutil.Normalize(h.Name),
		Size:      h.UnPackedSize,
		Mode:      h.Mode(),
		ModTime:   h.ModificationTime,
		IsDir:     h.IsDir,
		Encrypted: h.Encrypted || h.HeaderEncrypted,
	}, nil
}

func (r *rarReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && err != io.EOF {
		return n, classifyRead(err)
	}
	return n, err
}

func (r *rarReader) Close() error {
	if err := r.rc.Close(); err != nil {
		return classifyClose(err)
	}
	return nil
}

package codec

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic markers for the supported containers.
var (
	magicRar3 = []byte{0x52, 0x61, 0x72, 0x21, 0x1a, 0x07, 0x00}       // Rar!..\x00
	magicRar5 = []byte{0x52, 0x61, 0x72, 0x21, 0x1a, 0x07, 0x01, 0x00} // Rar!..\x01\x00
	magic7z   = []byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c}             // 7z....
	magicZip  = []byte{0x50, 0x4b}                                     // PK
)

// ForPath returns the codec for the archive at path. The leading bytes
// decide; the file extension is the fallback for containers whose marker
// sits past the start, such as self-extracting RAR archives.
func ForPath(path string) (Codec, error) {
	head, err := readHead(path)
	if err != nil {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(head, magicRar5), bytes.HasPrefix(head, magicRar3):
		return rarCodec{}, nil
	case bytes.HasPrefix(head, magic7z):
		return sevenZipCodec{}, nil
	case bytes.HasPrefix(head, magicZip):
		return zipCodec{}, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".rar", ".cbr":
		return rarCodec{}, nil
	case ".zip", ".cbz":
		return zipCodec{}, nil
	case ".7z", ".cb7":
		return sevenZipCodec{}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	head := make([]byte, 8)
	n, err := io.ReadFull(f, head)
	cerr := f.Close()
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if cerr != nil {
		return nil, classifyClose(cerr)
	}
	return head[:n], nil
}

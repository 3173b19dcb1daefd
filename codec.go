package unpack

import "github.com/meigma/unpack/internal/codec"

// Re-export the decoder seam so custom codecs can be plugged in through
// WithCodec.
type (
	// Codec opens archives of one format.
	Codec = codec.Codec

	// Reader is a forward-only decoder pass over one archive. Next
	// returns ErrEndOfArchive after the last entry; Read returns the
	// current entry's data with io.EOF as the explicit end-of-entry
	// signal.
	Reader = codec.Reader

	// OpenOptions carries per-pass decoder parameters.
	OpenOptions = codec.OpenOptions

	// Mode tells a codec what a pass will be used for.
	Mode = codec.Mode
)

// Re-export pass modes.
const (
	// ModeList marks a pass that reads headers only.
	ModeList = codec.ModeList

	// ModeExtract marks a pass that reads entry data.
	ModeExtract = codec.ModeExtract
)

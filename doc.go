// Package unpack reads RAR, 7z, and zip archives through one session type.
//
// A session is bound to a single archive path and an optional password.
// It lists entries, extracts to disk, reads single entries into memory,
// streams entries through chunk callbacks, and answers password questions.
// All parsing and decompression is delegated to format codecs; the session
// adds lifecycle discipline and a uniform error taxonomy on top.
//
// # Quick Start
//
// Open an archive and extract it:
//
//	a, err := unpack.Open("assets.rar", unpack.WithPassword("s3cret"))
//	if err != nil {
//	    return err
//	}
//	stats, err := a.ExtractTo("./out", unpack.ExtractWithOverwrite(true))
//
// List entries and read one into memory:
//
//	entries, err := a.List()
//	...
//	data, err := a.ReadFile("docs/readme.md")
//
// Stream a large entry without buffering it whole:
//
//	err = a.ReadFileBuffered("video.mkv", func(chunk []byte) error {
//	    _, werr := dst.Write(chunk)
//	    return werr
//	})
//
// # Sessions and handles
//
// A session holds no decoder state. Every operation opens a fresh decoder
// pass over the file and closes it before returning, on success and on
// every error path. Results always reflect the file at call time, and
// concurrent operations on one session do not observe each other. The one
// caveat is SetPassword: mutating the stored password while an operation
// is in flight is a data race the caller must avoid.
//
// # Errors
//
// Failures wrap a sentinel from the error taxonomy (ErrBadData,
// ErrMissingPassword, ErrUnknownFormat, ...) inside an [*ArchiveError]
// carrying the operation, archive path, and entry involved. Match with
// errors.Is and errors.As.
package unpack

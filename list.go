package unpack

import (
	"errors"
	"io"
)

// List scans every header and returns the catalog in archive order.
//
// The catalog is rebuilt on every call and never cached, so the result
// always reflects the file at call time. A header failure mid-scan aborts
// the listing and returns the error; there are no partial catalogs.
func (a *Archive) List(opts ...ReadOption) (entries []Entry, err error) {
	r, err := a.open(ModeList, a.readPassword(opts))
	if err != nil {
		return nil, a.wrap("list", "", err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			entries, err = nil, a.wrap("list", "", cerr)
		}
	}()

	for {
		h, nerr := r.Next()
		if errors.Is(nerr, ErrEndOfArchive) {
			a.log().Debug("listed archive", "path", a.path, "entries", len(entries))
			return entries, nil
		}
		if nerr != nil {
			return nil, a.wrap("list", "", nerr)
		}
		entries = append(entries, *h)
	}
}

// IsPasswordProtected reports whether reading the archive requires a
// password, by scanning headers for encryption flags. Archives whose
// headers themselves cannot be read without a password also report true.
//
// The answer is advisory: it never requires a correct password, and scan
// failures unrelated to passwords report false. Use List to observe the
// failure itself.
func (a *Archive) IsPasswordProtected() bool {
	r, err := a.open(ModeList, a.password)
	if err != nil {
		return errors.Is(err, ErrMissingPassword)
	}
	defer func() {
		_ = r.Close() //nolint:errcheck // advisory scan
	}()

	for {
		h, err := r.Next()
		if err != nil {
			// Includes the clean end of the archive: no encrypted
			// entries were seen.
			return errors.Is(err, ErrMissingPassword)
		}
		if h.Encrypted {
			return true
		}
	}
}

// ValidatePassword reports whether the effective password decodes the
// archive's first file entry. Unprotected archives validate any password.
//
// The answer is advisory: corrupt archives and I/O failures report false
// just like a wrong password. Use ReadFile to observe the failure itself.
func (a *Archive) ValidatePassword(opts ...ReadOption) bool {
	r, err := a.open(ModeExtract, a.readPassword(opts))
	if err != nil {
		return false
	}
	defer func() {
		_ = r.Close() //nolint:errcheck // advisory check
	}()

	buf, release := a.buffer()
	defer release()

	for {
		h, err := r.Next()
		if errors.Is(err, ErrEndOfArchive) {
			// No file entries; nothing contradicts the password.
			return true
		}
		if err != nil {
			return false
		}
		if h.IsDir {
			continue
		}
		for {
			_, rerr := r.Read(buf)
			if rerr == io.EOF {
				return true
			}
			if rerr != nil {
				return false
			}
		}
	}
}

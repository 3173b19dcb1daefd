// Package pathutil normalizes slash-separated archive entry paths.
package pathutil

import (
	"io/fs"
	"path"
	"strings"
)

// Normalize converts an archive entry name to a cleaned, slash-separated,
// relative path. Backslash separators from Windows-built archives are
// converted, leading slashes dropped, and "." and ".." elements resolved
// where possible. Leading ".." elements that cannot be resolved are kept
// so Within can reject them.
func Normalize(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimLeft(name, "/")
	return path.Clean(name)
}

// Within reports whether a normalized entry path stays inside an
// extraction root: relative, no remaining ".." elements, and not the
// root itself.
func Within(name string) bool {
	return name != "." && fs.ValidPath(name)
}

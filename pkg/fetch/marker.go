package fetch

import (
	"os"
	"path/filepath"
	"strings"
)

// Marker file names. One convention for both fetch variants: a plain
// text file beside the fetched content holding exactly the installed
// ref or version.
const (
	// SourceMarker records the checked-out git ref.
	SourceMarker = ".depsync_ref"

	// PackageMarker records the installed package stamp.
	PackageMarker = ".depsync_version"
)

// readMarker returns the recorded string, or "" when the marker is
// absent or unreadable. A missing marker just means the fetch has to
// happen.
func readMarker(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// writeMarker records value. Callers invoke it only after the
// corresponding fetch fully succeeded.
func writeMarker(dir, name, value string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(value), 0644)
}

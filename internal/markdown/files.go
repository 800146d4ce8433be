package markdown

import (
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the file extensions the viewer opens.
var SupportedExtensions = []string{".md", ".markdown", ".txt"}

// IsSupportedFile reports whether path has one of the supported extensions.
// The comparison ignores case and performs no I/O.
func IsSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

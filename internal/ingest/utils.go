package ingest

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/sugar-reports/constants"
)

// AllowedExt checks if a file extension is in the allowed set (pdf only).
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(p string) bool {
	base := filepath.Base(p)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// isReportKey reports whether a slash-separated key names a PDF with no
// hidden path segment.
func isReportKey(key string) bool {
	if key == "" || strings.HasSuffix(key, "/") {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}
	return AllowedExt(path.Ext(key))
}

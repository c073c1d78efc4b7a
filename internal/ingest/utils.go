package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/port-compliance/constants"
)

// Allowed checks the file extension against constants.AllowedExtensions.
func Allowed(path string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

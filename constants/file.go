package constants

import "strings"

// MIMEPDF is the only upload type the compliance pipeline accepts.
const MIMEPDF = "application/pdf"

// BytesPerMB is the binary megabyte used for all size ceilings.
const BytesPerMB = 1024 * 1024

// AllowedExtensions holds the file extensions picked up by directory ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MIMEFromExt maps a file extension to the MIME type a browser would declare for it.
func MIMEFromExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return MIMEPDF
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Ellipsize truncates s to n runes and appends "..." only when something was cut.
func Ellipsize(s string, n int) string {
	t := TruncateRunes(s, n)
	if len(t) < len(s) {
		return t + "..."
	}
	return s
}

// SHA256Hex returns the hex-encoded sha256 of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// FormatBR renders t the way port operators read timestamps (dd/mm/yyyy HH:MM).
func FormatBR(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

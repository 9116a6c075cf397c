package textutil

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/encoding/charmap"
)

// IsASCII reports whether every byte of s is below 0x80.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// DecodeLegacy renders map text for display. Map editors write entity
// values in Windows-1252, so non-ASCII bytes are decoded from that code page.
func DecodeLegacy(s string) string {
	if IsASCII(s) {
		return s
	}
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// Hash computes a SHA-256 hex hash of b for cache keys.
func Hash(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package resource

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnrepresentablePath is returned when a value holds a byte outside ASCII.
	ErrUnrepresentablePath = errors.New("unrepresentable path")
	// ErrUnknownFormat marks a value whose extension is not a known resource format.
	ErrUnknownFormat = errors.New("unknown resource format")
)

// Formats lists the file extensions the engine loads from a game directory.
var Formats = []string{
	".mdl",
	".wav",
	".spr",
	".wad",
	".tga",
	".bmp",
	".txt",
}

// Normalize lower-cases ASCII letters and turns backslashes into forward
// slashes. Values containing a byte with the high bit set are rejected.
func Normalize(value string) (string, error) {
	var b strings.Builder
	b.Grow(len(value))

	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c&0x80 != 0:
			return "", fmt.Errorf("%w: byte 0x%02x at offset %d", ErrUnrepresentablePath, c, i)
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c == '\\':
			c = '/'
		}
		b.WriteByte(c)
	}

	return b.String(), nil
}

// Extension returns the suffix of value starting at its last '.', or "" if
// there is none.
func Extension(value string) string {
	idx := strings.LastIndexByte(value, '.')
	if idx < 0 {
		return ""
	}
	return value[idx:]
}

// IsKnownFormat reports whether ext is one of Formats, ignoring case.
func IsKnownFormat(ext string) bool {
	if ext == "" {
		return false
	}
	for _, f := range Formats {
		if strings.EqualFold(ext, f) {
			return true
		}
	}
	return false
}

// Base returns the part of path after its last '/'.
func Base(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

package util

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidFileName is returned for names that cannot be stored safely.
var ErrInvalidFileName = errors.New("invalid file name")

const maxFileNameRunes = 200

// SanitizeFileName makes an uploaded file name safe to use as an object key
// segment: separators become underscores, control characters are dropped and
// the result is capped in length. Traversal patterns are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	out := []rune(strings.TrimSpace(b.String()))
	if len(out) == 0 {
		return "", ErrInvalidFileName
	}
	if len(out) > maxFileNameRunes {
		out = out[len(out)-maxFileNameRunes:]
	}
	return string(out), nil
}

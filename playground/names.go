package playground

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxNameLength bounds a playground name in bytes.
const MaxNameLength = 255

// NormalizeName returns name in NFC form with surrounding space removed, or
// ErrInvalidName if the result is empty, too long, or contains spaces,
// control characters or path separators.
func NormalizeName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(n) > MaxNameLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxNameLength)
	}
	for _, r := range n {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' || r == '\\' {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidName, n, r)
		}
	}
	return n, nil
}

// Package slug derives URL slugs from titles.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Make lowercases the input, maps runs of non-alphanumerics to single
// hyphens and trims the result. Empty input yields "untitled".
func Make(input string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(input) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// Non-ASCII letters pass through; the web stack serves
			// percent-encoded UTF-8 slugs fine.
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}

// Unique returns base or the first numbered variant that exists reports
// free. After ten collisions it falls back to a random suffix rather
// than scanning forever.
func Unique(base string, exists func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; i <= 11; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8]), nil
}

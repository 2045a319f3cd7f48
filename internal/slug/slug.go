// Package slug derives canonical anchor identifiers from heading text.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Anchor converts heading text into its anchor identifier: lower-case,
// strip everything that is not a letter, digit, whitespace, or hyphen,
// then collapse whitespace runs into single hyphens. This must stay
// bit-exact with the publishing platform's slugger — anchor validation
// compares the result against raw fragments.
func Anchor(heading string) string {
	s := strings.ToLower(strings.TrimSpace(heading))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return whitespaceRe.ReplaceAllString(b.String(), "-")
}

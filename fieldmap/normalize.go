package fieldmap

import (
	"strings"
	"unicode"
)

// isDiacritic reports the Arabic marks stripped from headers: fathatan,
// fatha and the Quranic annotation signs U+0610..U+061A.
func isDiacritic(r rune) bool {
	return r == '\u064B' || r == '\u064E' || (r >= '\u0610' && r <= '\u061A')
}

// NormalizeHeader canonicalizes a raw column header for matching: trimmed,
// lower-cased, with all whitespace and Arabic diacritics removed.
// NormalizeHeader(NormalizeHeader(h)) == NormalizeHeader(h).
func NormalizeHeader(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\uFEFF' || isDiacritic(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package models

import (
	"strings"
	"unicode"
)

// Fingerprint derives the stable cache key for a (artist, title, album)
// tuple. Each field is case-folded, punctuation-stripped, and
// whitespace-collapsed before being joined with "|", so cosmetic differences
// in the program log never produce distinct keys.
//
// Fingerprint is idempotent: feeding normalized fields back in yields the
// same key.
func Fingerprint(artist, title, album string) string {
	return Normalize(artist) + "|" + Normalize(title) + "|" + Normalize(album)
}

// Normalize lowercases s, drops everything except letters, digits, and
// spaces, and collapses runs of whitespace to a single space. Album
// comparison in the matcher uses the same normalization as the fingerprint.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

package model

import (
	"strings"
	"unicode"
)

// Slug derives a file name stem from a node label: lowercase, with every run of
// whitespace replaced by a single hyphen. Slug(Slug(s)) == Slug(s).
func Slug(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	inSpace := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

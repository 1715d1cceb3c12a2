package csv

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cellCleaner composes the per-cell text normalization applied to every
// parsed value: NFC composition (real exports mix composed and decomposed
// accents) followed by mapping non-ASCII space separators (NBSP and friends)
// onto plain spaces.
var cellCleaner = transform.Chain(
	norm.NFC,
	runes.Map(func(r rune) rune {
		if r != ' ' && unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}),
)

// CleanCell normalizes a raw cell value. On transform failure the input is
// returned unchanged; a malformed cell is the validator's problem, not the
// parser's.
func CleanCell(s string) string {
	if isASCII(s) {
		return s
	}
	out, _, err := transform.String(cellCleaner, s)
	if err != nil {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

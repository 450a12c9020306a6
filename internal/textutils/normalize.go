// Package textutils normalizes extracted text for keyword matching and diagnostics.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Includes no-break and narrow no-break spaces, common in French PDFs.
var whitespace = regexp.MustCompile(`[\s\p{Zs}]+`)

// Normalizer rewrites text so that keywords and documents compare equal
// regardless of layout whitespace, and optionally case and diacritics.
type Normalizer struct {
	CaseSensitive bool
	FoldAccents   bool
}

// Normalize collapses every whitespace run to a single space, trims, lowercases
// unless CaseSensitive, and strips combining marks when FoldAccents is set.
func (n Normalizer) Normalize(s string) string {
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if !n.CaseSensitive {
		s = strings.ToLower(s)
	}
	if n.FoldAccents {
		s = FoldAccents(s)
	}
	return s
}

// FoldAccents removes diacritics: "Facture Numéro" becomes "Facture Numero".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Snippet returns at most limit runes of s, with whitespace collapsed,
// followed by "..." when s was cut.
func Snippet(s string, limit int) string {
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics and case-folds s so "Éclair" and "eclair" compare
// equal. Transformers are stateful, so a fresh chain is built per call.
func Fold(s string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(chain, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// ContainsFolded reports whether query occurs in s ignoring case and accents.
// An empty query is contained in every string.
func ContainsFolded(s, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(query))
}

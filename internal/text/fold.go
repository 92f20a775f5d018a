// Package text turns free-form promise and vote text into comparable keyword sets.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics, turns apostrophes and punctuation into
// spaces and collapses whitespace. "Je m'engage à réduire" becomes "je m engage a reduire".
func Fold(s string) string {
	// Transformers carry state, so build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Words splits folded text into words
func Words(folded string) []string {
	return strings.Fields(folded)
}

// Stem applies light plural folding: "impots" -> "impot", "milliards" -> "milliard".
// Words of four runes or fewer and words ending in "ss" are kept as-is.
func Stem(word string) string {
	if utf8.RuneCountInString(word) <= 4 {
		return word
	}
	if strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		return word[:len(word)-1]
	}
	return word
}

// HasDigit reports whether any word contains a digit
func HasDigit(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}

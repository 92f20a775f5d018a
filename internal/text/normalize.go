package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Normalizer turns text into keyword lists. It is immutable after construction
// and safe for concurrent use.
type Normalizer struct {
	stopWords   map[string]struct{}
	boilerplate []*regexp.Regexp
	minLength   int
}

// NewNormalizer builds a normalizer. Stop-words are folded and stemmed;
// boilerplate patterns are applied to folded text.
func NewNormalizer(stopWords []string, boilerplate []*regexp.Regexp, minLength int) *Normalizer {
	if minLength <= 0 {
		minLength = 4
	}
	stops := make(map[string]struct{}, len(stopWords)*2)
	for _, sw := range stopWords {
		for _, w := range Words(Fold(sw)) {
			stops[w] = struct{}{}
			stops[Stem(w)] = struct{}{}
		}
	}
	return &Normalizer{
		stopWords:   stops,
		boilerplate: boilerplate,
		minLength:   minLength,
	}
}

// Clean folds text and strips procedural boilerplate (bill readings, article
// and amendment references) that would otherwise dominate the keyword set
func (n *Normalizer) Clean(s string) string {
	folded := Fold(s)
	for _, re := range n.boilerplate {
		folded = re.ReplaceAllString(folded, " ")
	}
	return strings.Join(strings.Fields(folded), " ")
}

// Keywords folds s and returns its distinct keywords in order of appearance:
// at least minLength runes, stop-words removed, plurals folded
func (n *Normalizer) Keywords(s string) []string {
	return n.keywords(Fold(s))
}

// ActionKeywords cleans an action description before extracting keywords
func (n *Normalizer) ActionKeywords(description string) []string {
	return n.keywords(n.Clean(description))
}

func (n *Normalizer) keywords(folded string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range Words(folded) {
		if utf8.RuneCountInString(w) < n.minLength {
			continue
		}
		if n.IsStopWord(w) {
			continue
		}
		stem := Stem(w)
		if seen[stem] {
			continue
		}
		seen[stem] = true
		out = append(out, stem)
	}
	return out
}

// IsStopWord reports whether a folded word is a stop-word
func (n *Normalizer) IsStopWord(word string) bool {
	if _, ok := n.stopWords[word]; ok {
		return true
	}
	_, ok := n.stopWords[Stem(word)]
	return ok
}

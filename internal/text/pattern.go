package text

import "strings"

// Pattern is a folded word sequence matched against folded text. A word
// ending in "*" matches any word with that prefix, so "refus*" matches
// "refuse", "refuser" and "refusons".
type Pattern struct {
	Raw    string
	words  []string
	prefix []bool
}

// CompilePattern folds raw and records prefix markers
func CompilePattern(raw string) Pattern {
	p := Pattern{Raw: raw}
	for _, field := range strings.Fields(raw) {
		isPrefix := strings.HasSuffix(field, "*")
		parts := Words(Fold(strings.TrimSuffix(field, "*")))
		for i, w := range parts {
			p.words = append(p.words, w)
			// Only the last word of a split token keeps the prefix marker
			p.prefix = append(p.prefix, isPrefix && i == len(parts)-1)
		}
	}
	return p
}

// CompilePatterns compiles every entry, skipping blanks
func CompilePatterns(raw []string) []Pattern {
	patterns := make([]Pattern, 0, len(raw))
	for _, r := range raw {
		p := CompilePattern(r)
		if len(p.words) == 0 {
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// Match reports whether the pattern occurs as a contiguous word run
func (p Pattern) Match(words []string) bool {
	n := len(p.words)
	if n == 0 || n > len(words) {
		return false
	}
	for start := 0; start+n <= len(words); start++ {
		ok := true
		for i := 0; i < n; i++ {
			if !p.matchWord(i, words[start+i]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (p Pattern) matchWord(i int, word string) bool {
	if p.prefix[i] {
		return strings.HasPrefix(word, p.words[i])
	}
	return word == p.words[i]
}

// FirstMatch returns the first pattern that matches, if any
func FirstMatch(patterns []Pattern, words []string) (Pattern, bool) {
	for _, p := range patterns {
		if p.Match(words) {
			return p, true
		}
	}
	return Pattern{}, false
}

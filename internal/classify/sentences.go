package classify

import (
	"strings"
	"unicode/utf8"
)

// splitSentences splits text on terminators followed by whitespace. Newlines
// also end a sentence since speeches and manifestos are often bulleted.
func splitSentences(input string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		sentence = strings.TrimLeft(sentence, "-•* ")
		n := utf8.RuneCountInString(sentence)
		if n >= minSentenceLength && n <= maxSentenceLength {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	runes := []rune(input)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			flush()
			continue
		}
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' || r == ';' {
			// Look ahead to avoid splitting "5.3" or "M.Dupont"
			if i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\t' {
				flush()
			}
		}
	}
	flush()

	return sentences
}

// dedupeCandidates removes repeated sentences, keeping the first
func dedupeCandidates(candidates []Candidate) []Candidate {
	seen := make(map[string]bool)
	var unique []Candidate

	for _, c := range candidates {
		key := strings.ToLower(strings.TrimSpace(c.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, c)
		}
	}

	return unique
}

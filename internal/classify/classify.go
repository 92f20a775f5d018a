// Package classify decides whether free text contains promises, which policy
// category they belong to and whether they can be checked against votes.
package classify

import (
	"strings"
	"time"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/ppiankov/politikcred/internal/text"
)

const (
	// StrongConfidence is assigned to first-person commitments ("je m'engage", "I will")
	StrongConfidence = 0.9
	// WeakConfidence is assigned to aspirational statements ("il faut", "we must")
	WeakConfidence = 0.6

	minSentenceLength = 10
	maxSentenceLength = 500
)

// Candidate is a sentence classified as a promise
type Candidate struct {
	Text       string         `json:"text"`
	Category   model.Category `json:"category"`
	Confidence float64        `json:"confidence"`
	Actionable bool           `json:"actionable"`
	Cue        string         `json:"cue"`      // The commitment cue that fired
	Sentence   int            `json:"sentence"` // Index of the sentence in the input
	SourceURL  string         `json:"source_url,omitempty"`
}

// Classifier is a pure function over text, backed by a compiled rule table
type Classifier struct {
	rules *rules.Compiled
}

// New creates a classifier over a compiled rule table
func New(r *rules.Compiled) *Classifier {
	return &Classifier{rules: r}
}

// Classify splits input into sentences and returns every sentence with a
// decisive commitment cue. Sentences with a hedge are dropped regardless of
// other cues; sentences without any cue are not promises.
func (c *Classifier) Classify(input, sourceURL string) []Candidate {
	var candidates []Candidate
	for i, sentence := range splitSentences(input) {
		cand, ok := c.ClassifySentence(sentence)
		if !ok {
			continue
		}
		cand.Sentence = i
		cand.SourceURL = sourceURL
		candidates = append(candidates, cand)
	}
	return dedupeCandidates(candidates)
}

// Category returns the first keyword bucket matching text, or other
func (c *Classifier) Category(sentence string) model.Category {
	return c.rules.Category(text.Words(text.Fold(sentence)))
}

// ClassifySentence classifies a single sentence
func (c *Classifier) ClassifySentence(sentence string) (Candidate, bool) {
	words := text.Words(text.Fold(sentence))
	if len(words) == 0 {
		return Candidate{}, false
	}

	if _, hedged := text.FirstMatch(c.rules.Hedges, words); hedged {
		return Candidate{}, false
	}

	var (
		confidence float64
		cue        text.Pattern
	)
	if p, ok := text.FirstMatch(c.rules.Strong, words); ok {
		confidence, cue = StrongConfidence, p
	} else if p, ok := text.FirstMatch(c.rules.Weak, words); ok {
		confidence, cue = WeakConfidence, p
	} else {
		return Candidate{}, false
	}

	return Candidate{
		Text:       strings.TrimSpace(sentence),
		Category:   c.rules.Category(words),
		Confidence: confidence,
		Actionable: c.actionable(words),
		Cue:        cue.Raw,
	}, true
}

// actionable reports whether the sentence names something a vote can settle:
// a figure, a deadline, or a legislative verb
func (c *Classifier) actionable(words []string) bool {
	if text.HasDigit(words) {
		return true
	}
	if _, ok := text.FirstMatch(c.rules.Measurable, words); ok {
		return true
	}
	_, ok := text.FirstMatch(c.rules.Actionable, words)
	return ok
}

// ToPromise turns an accepted candidate into a pending promise
func (cand Candidate) ToPromise(id, officialID string, source model.Source, statedAt time.Time) (*model.Promise, error) {
	if source.URL == "" {
		source.URL = cand.SourceURL
	}
	return model.NewPromise(id, officialID, cand.Text, cand.Category, cand.Confidence, cand.Actionable, source, statedAt)
}

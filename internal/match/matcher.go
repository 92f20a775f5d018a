package match

import (
	"context"
	"fmt"

	"github.com/ppiankov/politikcred/internal/embed"
	"github.com/ppiankov/politikcred/internal/model"
	log "github.com/sirupsen/logrus"
)

// Thresholds are the versioned acceptance thresholds. The keyword and
// embedding paths produce differently distributed scores, so each has its own.
type Thresholds struct {
	Keyword   float64
	Embedding float64
	Version   string
}

// ThresholdsFromConfig reads thresholds from the runtime configuration
func ThresholdsFromConfig(mc model.MatchingConfig) Thresholds {
	return Thresholds{
		Keyword:   mc.KeywordThreshold,
		Embedding: mc.EmbeddingThreshold,
		Version:   mc.ThresholdVersion,
	}
}

// For returns the threshold for a scoring method
func (t Thresholds) For(m model.Method) float64 {
	if m == model.MethodEmbedding {
		return t.Embedding
	}
	return t.Keyword
}

// Candidate is one scored promise/action pair
type Candidate struct {
	Action    *model.Action
	Score     float64
	Method    model.Method
	Breakdown Breakdown // Keyword path only
}

// Outcome is the result of matching one promise against an official's actions
type Outcome struct {
	Best        *Candidate
	Accepted    bool
	Threshold   float64
	Fallback    bool // Embedding path failed and keyword scores were used
	FallbackErr error
}

// Best returns the highest-scoring candidate. Exact ties keep the first seen,
// so callers control tie-breaking through candidate order.
func Best(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, true
}

// Matcher finds the best action for a promise and applies the acceptance
// threshold. It is immutable and safe for concurrent use.
type Matcher struct {
	scorer     *Scorer
	embedder   embed.Provider
	thresholds Thresholds
}

// NewMatcher creates a matcher. embedder may be nil, in which case only the
// keyword path is used.
func NewMatcher(scorer *Scorer, embedder embed.Provider, thresholds Thresholds) *Matcher {
	return &Matcher{
		scorer:     scorer,
		embedder:   embedder,
		thresholds: thresholds,
	}
}

// Scorer returns the keyword scorer
func (m *Matcher) Scorer() *Scorer {
	return m.scorer
}

// Thresholds returns the active thresholds
func (m *Matcher) Thresholds() Thresholds {
	return m.thresholds
}

// Match scores promise against actions (profiled with Scorer.ProfileActions)
// and keeps the best. The embedding path is preferred when configured; any
// provider failure falls back to keyword scores for this promise.
func (m *Matcher) Match(ctx context.Context, promise *model.Promise, actions []ActionProfile) Outcome {
	if len(actions) == 0 {
		return Outcome{}
	}

	var (
		candidates []Candidate
		out        Outcome
	)

	if m.embedder != nil {
		var err error
		candidates, err = m.embeddingCandidates(ctx, promise, actions)
		if err != nil {
			log.WithFields(log.Fields{
				"promise_id": promise.ID,
				"provider":   m.embedder.Name(),
			}).WithError(err).Warn("Embedding provider unavailable, using keyword scores")
			out.Fallback = true
			out.FallbackErr = err
			candidates = nil
		}
	}

	if candidates == nil {
		candidates = m.keywordCandidates(promise, actions)
	}

	best, ok := Best(candidates)
	if !ok {
		return out
	}
	out.Best = &best
	out.Threshold = m.thresholds.For(best.Method)
	out.Accepted = best.Score >= out.Threshold
	return out
}

func (m *Matcher) keywordCandidates(promise *model.Promise, actions []ActionProfile) []Candidate {
	p := m.scorer.ProfilePromise(promise.Text)
	out := make([]Candidate, len(actions))
	for i, a := range actions {
		b := m.scorer.Score(p, a)
		out[i] = Candidate{
			Action:    a.Action,
			Score:     b.Score,
			Method:    model.MethodKeyword,
			Breakdown: b,
		}
	}
	return out
}

func (m *Matcher) embeddingCandidates(ctx context.Context, promise *model.Promise, actions []ActionProfile) ([]Candidate, error) {
	pv, err := m.embedder.Embed(ctx, promise.Text)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, len(actions))
	for i, a := range actions {
		av, err := m.embedder.Embed(ctx, a.Action.Description)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", a.Action.ID, err)
		}
		out[i] = Candidate{
			Action: a.Action,
			Score:  embed.Cosine(pv, av),
			Method: model.MethodEmbedding,
		}
	}
	return out, nil
}

// Explain renders the scoring part of a verification explanation
func (c Candidate) Explain(t Thresholds) string {
	threshold := t.For(c.Method)
	if c.Method == model.MethodEmbedding {
		return fmt.Sprintf("embedding cosine %.3f >= threshold %.2f (thresholds %s)", c.Score, threshold, t.Version)
	}
	b := c.Breakdown
	return fmt.Sprintf("keyword score %.3f = jaccard %d/%d (%.3f) + literal bonus %.2f for %v, >= threshold %.2f (thresholds %s)",
		c.Score, b.Intersection, b.Union, b.Jaccard, b.Bonus, b.LiteralHits, threshold, t.Version)
}

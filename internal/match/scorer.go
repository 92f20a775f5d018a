// Package match pairs pending promises with recorded actions and decides
// whether each pairing means the promise was kept, broken or partially kept.
package match

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/ppiankov/politikcred/internal/text"
)

// Breakdown is the reconstructable arithmetic behind a keyword score
type Breakdown struct {
	Jaccard      float64  `json:"jaccard"` // |A∩B| / |A∪B| over expanded sets
	Intersection int      `json:"intersection"`
	Union        int      `json:"union"`
	LiteralHits  []string `json:"literal_hits"` // Promise keywords found verbatim in the cleaned action
	Bonus        float64  `json:"bonus"`
	Score        float64  `json:"score"` // min(Jaccard + Bonus, 1)
}

// PromiseProfile is the keyword view of a promise text
type PromiseProfile struct {
	Text     string
	Keywords []string
	Expanded text.Set
}

// ActionProfile is the keyword view of an action, computed once per run
type ActionProfile struct {
	Action   *model.Action
	Cleaned  string
	Keywords []string
	Expanded text.Set
}

// Scorer computes bounded relatedness between promise and action texts
type Scorer struct {
	rules        *rules.Compiled
	literalBonus float64
}

// NewScorer creates a scorer. literalBonus is added per promise keyword found
// verbatim in the cleaned action text.
func NewScorer(r *rules.Compiled, literalBonus float64) *Scorer {
	return &Scorer{rules: r, literalBonus: literalBonus}
}

// ProfilePromise extracts and expands promise keywords
func (s *Scorer) ProfilePromise(promiseText string) PromiseProfile {
	kws := s.rules.Normalizer.Keywords(promiseText)
	return PromiseProfile{
		Text:     promiseText,
		Keywords: kws,
		Expanded: s.rules.Expander.Expand(kws),
	}
}

// ProfileAction strips procedural boilerplate, then extracts and expands keywords
func (s *Scorer) ProfileAction(a *model.Action) ActionProfile {
	kws := s.rules.Normalizer.ActionKeywords(a.Description)
	return ActionProfile{
		Action:   a,
		Cleaned:  s.rules.Normalizer.Clean(a.Description),
		Keywords: kws,
		Expanded: s.rules.Expander.Expand(kws),
	}
}

// ProfileActions profiles actions in the order candidates are considered:
// by date, then id
func (s *Scorer) ProfileActions(actions []*model.Action) []ActionProfile {
	sorted := make([]*model.Action, len(actions))
	copy(sorted, actions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := make([]ActionProfile, len(sorted))
	for i, a := range sorted {
		out[i] = s.ProfileAction(a)
	}
	return out
}

// Score is the keyword-path score of a promise against an action
func (s *Scorer) Score(p PromiseProfile, a ActionProfile) Breakdown {
	b := Breakdown{}
	b.Jaccard, b.Intersection, b.Union = Jaccard(p.Expanded, a.Expanded)

	for _, kw := range p.Keywords {
		if strings.Contains(a.Cleaned, kw) {
			b.LiteralHits = append(b.LiteralHits, kw)
		}
	}
	b.Bonus = float64(len(b.LiteralHits)) * s.literalBonus
	b.Score = math.Min(b.Jaccard+b.Bonus, 1)
	if b.Score < 0 {
		b.Score = 0
	}
	return b
}

// KeywordScore scores raw texts directly
func (s *Scorer) KeywordScore(promiseText, actionDescription string) Breakdown {
	return s.Score(s.ProfilePromise(promiseText), s.ProfileAction(&model.Action{Description: actionDescription}))
}

// Jaccard returns |a∩b| / |a∪b| with the raw counts. Two empty sets score 0.
func Jaccard(a, b text.Set) (float64, int, int) {
	inter := 0
	for w := range a {
		if b.Has(w) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0, 0, 0
	}
	return float64(inter) / float64(union), inter, union
}

package match

import (
	"fmt"
	"strings"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/ppiankov/politikcred/internal/text"
)

// Polarity is the direction of a promise
type Polarity string

const (
	PolarityPositive     Polarity = "positive"     // Commits to create, build, protect...
	PolarityNegative     Polarity = "negative"     // Commits to refuse, oppose, ban, reduce...
	PolarityUndetermined Polarity = "undetermined" // No decisive cue
)

// Decision is the outcome of the match-type rule table with everything needed
// to reconstruct it
type Decision struct {
	MatchType     model.MatchType `json:"match_type"`
	Polarity      Polarity        `json:"polarity"`
	PolarityCue   string          `json:"polarity_cue,omitempty"`
	Recorded      model.Position  `json:"recorded_position"`
	Effective     model.Position  `json:"effective_position"`
	Inverted      bool            `json:"inverted"`
	Procedure     string          `json:"procedure,omitempty"` // Matched inversion phrase
	Justification string          `json:"justification"`
}

// Decider applies the deterministic match-type rule table
type Decider struct {
	rules *rules.Compiled
}

// NewDecider creates a decider over a compiled rule table
func NewDecider(r *rules.Compiled) *Decider {
	return &Decider{rules: r}
}

// Polarity detects the direction of a promise. Opposition cues are decisive;
// otherwise a commitment cue makes it positive; otherwise a reduction cue
// ("réduire", "supprimer", "ban") makes it negative.
func (d *Decider) Polarity(promiseText string) (Polarity, string) {
	words := text.Words(text.Fold(promiseText))

	if p, ok := text.FirstMatch(d.rules.Opposition, words); ok {
		return PolarityNegative, p.Raw
	}
	if p, ok := text.FirstMatch(d.rules.Positive, words); ok {
		return PolarityPositive, p.Raw
	}
	if p, ok := text.FirstMatch(d.rules.Reduction, words); ok {
		return PolarityNegative, p.Raw
	}
	return PolarityUndetermined, ""
}

// Decide compares promise polarity with the action's recorded position,
// inverting for/against when the action is a no-confidence motion, a motion
// of rejection or a suppression amendment
func (d *Decider) Decide(promiseText string, action *model.Action) Decision {
	dec := Decision{Recorded: action.Position, Effective: action.Position}
	dec.Polarity, dec.PolarityCue = d.Polarity(promiseText)

	if phrase, ok := d.rules.IsInversion(text.Fold(action.Description)); ok {
		dec.Procedure = phrase
		dec.Inverted = true
		dec.Effective = action.Position.Invert()
	}

	switch {
	case dec.Effective == model.PositionAbstain || dec.Effective == model.PositionAbsent:
		dec.MatchType = model.MatchPartial
	case dec.Polarity == PolarityUndetermined:
		dec.MatchType = model.MatchPartial
	case aligned(dec.Polarity, dec.Effective):
		dec.MatchType = model.MatchKept
	default:
		dec.MatchType = model.MatchBroken
	}

	dec.Justification = dec.justify()
	return dec
}

// aligned reports whether an effective for/against position follows the promise
func aligned(p Polarity, effective model.Position) bool {
	return (p == PolarityPositive && effective == model.PositionFor) ||
		(p == PolarityNegative && effective == model.PositionAgainst)
}

func (d Decision) justify() string {
	var b strings.Builder

	if d.Polarity == PolarityUndetermined {
		b.WriteString("promise polarity undetermined (no decisive cue)")
	} else {
		fmt.Fprintf(&b, "promise polarity %s (cue %q)", d.Polarity, d.PolarityCue)
	}

	fmt.Fprintf(&b, "; recorded position %s", d.Recorded)
	if d.Inverted {
		fmt.Fprintf(&b, "; procedure %q inverts for/against, effective position %s", d.Procedure, d.Effective)
	}

	switch {
	case d.Effective == model.PositionAbstain || d.Effective == model.PositionAbsent:
		fmt.Fprintf(&b, "; %s counts as partial", d.Effective)
	case d.Polarity == PolarityUndetermined:
		b.WriteString("; undetermined polarity counts as partial")
	case d.MatchType == model.MatchKept:
		fmt.Fprintf(&b, "; %s aligns with a %s promise", d.Effective, d.Polarity)
	default:
		fmt.Fprintf(&b, "; %s contradicts a %s promise", d.Effective, d.Polarity)
	}

	fmt.Fprintf(&b, " => %s", d.MatchType)
	return b.String()
}

package rules

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/text"
)

// Compiled is the immutable, ready-to-use form of a rule table. It holds no
// mutable state and is safe to share across goroutines.
type Compiled struct {
	Normalizer *text.Normalizer
	Expander   *text.Expander

	Strong     []text.Pattern
	Weak       []text.Pattern
	Hedges     []text.Pattern
	Measurable []text.Pattern
	Actionable []text.Pattern

	Opposition []text.Pattern
	Positive   []text.Pattern
	Reduction  []text.Pattern

	Categories []CompiledBucket
	Inversion  []*regexp.Regexp

	positions map[string]model.Position
}

// CompiledBucket is a category with compiled keyword patterns
type CompiledBucket struct {
	Category model.Category
	Keywords []text.Pattern
}

// Compile validates and compiles r. Invalid regexps, unknown categories or
// unknown positions are reported as errors.
func Compile(r Rules, minKeywordLength int) (*Compiled, error) {
	boilerplate, err := compileRegexps("boilerplate", r.Boilerplate)
	if err != nil {
		return nil, err
	}
	inversion, err := compileRegexps("inversion", r.Inversion)
	if err != nil {
		return nil, err
	}

	c := &Compiled{
		Normalizer: text.NewNormalizer(r.StopWords, boilerplate, minKeywordLength),
		Expander:   text.NewExpander(r.Synonyms),
		Strong:     text.CompilePatterns(r.StrongCues),
		Weak:       text.CompilePatterns(r.WeakCues),
		Hedges:     text.CompilePatterns(r.HedgeCues),
		Measurable: text.CompilePatterns(r.MeasurableCues),
		Actionable: text.CompilePatterns(r.ActionableCues),
		Opposition: text.CompilePatterns(r.OppositionCues),
		Positive:   text.CompilePatterns(r.PositiveCues),
		Reduction:  text.CompilePatterns(r.ReductionCues),
		Inversion:  inversion,
		positions:  make(map[string]model.Position),
	}

	for _, b := range r.Categories {
		if !b.Category.Valid() {
			return nil, fmt.Errorf("rules: unknown category %q", b.Category)
		}
		c.Categories = append(c.Categories, CompiledBucket{
			Category: b.Category,
			Keywords: text.CompilePatterns(b.Keywords),
		})
	}

	for pos, labels := range r.Positions {
		if !pos.Valid() {
			return nil, fmt.Errorf("rules: unknown position %q", pos)
		}
		for _, l := range labels {
			c.positions[text.Fold(l)] = pos
		}
	}

	return c, nil
}

// DefaultMinKeywordLength is the shortest token kept as a keyword
const DefaultMinKeywordLength = 4

var compileDefault = sync.OnceValue(func() *Compiled {
	c, err := Compile(Default(), DefaultMinKeywordLength)
	if err != nil {
		panic(err)
	}
	return c
})

// MustCompileDefault returns the built-in table, compiled once per process.
// It panics if the built-in table itself is broken.
func MustCompileDefault() *Compiled {
	return compileDefault()
}

// Position maps a raw recorded position label ("Pour", "contre", "Non votant")
// to its canonical value
func (c *Compiled) Position(raw string) (model.Position, bool) {
	folded := text.Fold(raw)
	if p := model.Position(folded); p.Valid() {
		return p, true
	}
	p, ok := c.positions[folded]
	return p, ok
}

// Category returns the first bucket matching any of the folded words
func (c *Compiled) Category(words []string) model.Category {
	for _, b := range c.Categories {
		if _, ok := text.FirstMatch(b.Keywords, words); ok {
			return b.Category
		}
	}
	return model.CategoryOther
}

// IsInversion reports whether a folded action description names a procedure
// whose for/against semantics run opposite to the underlying policy, returning
// the matched phrase
func (c *Compiled) IsInversion(folded string) (string, bool) {
	for _, re := range c.Inversion {
		if m := re.FindString(folded); m != "" {
			return m, true
		}
	}
	return "", false
}

func compileRegexps(name string, raw []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(raw))
	for _, r := range raw {
		re, err := regexp.Compile(r)
		if err != nil {
			return nil, fmt.Errorf("rules: compile %s pattern %q: %w", name, r, err)
		}
		out = append(out, re)
	}
	return out, nil
}

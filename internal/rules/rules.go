// Package rules holds the declarative heuristic tables used by the classifier,
// the similarity scorer and the match-type decider. The table is loaded once per
// run, compiled, and shared read-only.
package rules

import (
	"fmt"
	"os"

	"github.com/ppiankov/politikcred/internal/model"
	"gopkg.in/yaml.v3"
)

// Rules is the raw, editable rule table. Cue entries use the pattern syntax of
// text.CompilePattern: folded words, with a trailing "*" for prefix matches.
type Rules struct {
	StopWords   []string            `yaml:"stop_words"`
	Synonyms    map[string][]string `yaml:"synonyms"`    // Domain keyword -> synonyms
	Boilerplate []string            `yaml:"boilerplate"` // Regexps over folded action text

	StrongCues []string `yaml:"strong_cues"` // First-person commitment markers
	WeakCues   []string `yaml:"weak_cues"`   // Aspirational markers
	HedgeCues  []string `yaml:"hedge_cues"`  // Conditionals that veto classification

	Categories     []CategoryBucket `yaml:"categories"` // Ordered: first matching bucket wins
	MeasurableCues []string         `yaml:"measurable_cues"`
	ActionableCues []string         `yaml:"actionable_cues"`

	OppositionCues []string `yaml:"opposition_cues"` // Decisive negative polarity
	PositiveCues   []string `yaml:"positive_cues"`
	ReductionCues  []string `yaml:"reduction_cues"` // Negative only when no commitment cue is present

	Inversion []string                    `yaml:"inversion"` // Regexps over folded action text
	Positions map[model.Position][]string `yaml:"positions"` // Canonical position -> raw labels
}

// CategoryBucket maps a category to its keyword patterns
type CategoryBucket struct {
	Category model.Category `yaml:"category"`
	Keywords []string       `yaml:"keywords"`
}

// LoadFile overlays a YAML rule file on top of the defaults. Lists present in
// the file replace the default lists; synonym entries are merged by key.
func LoadFile(path string) (Rules, error) {
	r := Default()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return r, nil
}

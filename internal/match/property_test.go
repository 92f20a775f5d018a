package match

import (
	"math"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/ppiankov/politikcred/internal/text"
)

var vocabulary = []string{
	"impot", "taxe", "energie", "electricite", "retraite", "pension", "hopital",
	"ecole", "budget", "dette", "police", "climat", "europe", "logement",
}

// genWords generates word lists drawn from the domain vocabulary
func genWords() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, len(vocabulary)-1).Map(func(i int) string {
		return vocabulary[i]
	}))
}

func TestProperty_ScoreBounded(t *testing.T) {
	s := newTestScorer()
	properties := gopter.NewProperties(nil)

	properties.Property("keyword score stays in [0,1]", prop.ForAll(
		func(promise, action string) bool {
			b := s.KeywordScore(promise, action)
			return b.Score >= 0 && b.Score <= 1 && b.Jaccard >= 0 && b.Jaccard <= 1
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("keyword score stays in [0,1] on domain vocabulary", prop.ForAll(
		func(a, b []string) bool {
			sc := s.KeywordScore(joinWords(a), joinWords(b))
			return sc.Score >= 0 && sc.Score <= 1
		},
		genWords(),
		genWords(),
	))

	properties.TestingRun(t)
}

func TestProperty_JaccardIsIntersectionOverUnion(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("jaccard equals |a∩b|/|a∪b|", prop.ForAll(
		func(a, b []string) bool {
			sa, sb := text.NewSet(a...), text.NewSet(b...)
			j, _, _ := Jaccard(sa, sb)

			union := text.NewSet(a...)
			for w := range sb {
				union[w] = struct{}{}
			}
			inter := 0
			for w := range sa {
				if sb.Has(w) {
					inter++
				}
			}
			if len(union) == 0 {
				return j == 0
			}
			return math.Abs(j-float64(inter)/float64(len(union))) < 1e-12
		},
		genWords(),
		genWords(),
	))

	properties.Property("jaccard is symmetric", prop.ForAll(
		func(a, b []string) bool {
			j1, _, _ := Jaccard(text.NewSet(a...), text.NewSet(b...))
			j2, _, _ := Jaccard(text.NewSet(b...), text.NewSet(a...))
			return j1 == j2
		},
		genWords(),
		genWords(),
	))

	properties.TestingRun(t)
}

func TestProperty_BestIsMaximum(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("best has the maximum score and is first among equals", prop.ForAll(
		func(scores []float64) bool {
			cands := make([]Candidate, len(scores))
			for i, sc := range scores {
				cands[i] = Candidate{Score: sc, Breakdown: Breakdown{Intersection: i}}
			}
			best, ok := Best(cands)
			if len(scores) == 0 {
				return !ok
			}
			first := -1
			for i, sc := range scores {
				if sc > best.Score {
					return false
				}
				if sc == best.Score && first < 0 {
					first = i
				}
			}
			return best.Breakdown.Intersection == first
		},
		gen.SliceOf(gen.IntRange(0, len(scoreLevels)-1).Map(func(i int) float64 {
			return scoreLevels[i]
		})),
	))

	properties.TestingRun(t)
}

// Few distinct levels so ties are frequent
var scoreLevels = []float64{0, 0.1, 0.25, 0.5, 1}

func joinWords(ws []string) string {
	return strings.Join(ws, " ")
}

package match

import (
	"math"
	"testing"
	"time"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/ppiankov/politikcred/internal/text"
)

func newTestScorer() *Scorer {
	return NewScorer(rules.MustCompileDefault(), 0.05)
}

func TestScorer_ScenarioA(t *testing.T) {
	s := newTestScorer()

	b := s.KeywordScore(
		"Je m'engage à réduire les impôts de 5 milliards d'euros d'ici 2027",
		"Projet de loi de finances — baisse d'impôt de 4 milliards",
	)

	if b.Score < 0.10 {
		t.Errorf("Expected score above the keyword threshold, got %.3f", b.Score)
	}
	if len(b.LiteralHits) != 2 {
		t.Errorf("Expected literal hits impot and milliard, got %v", b.LiteralHits)
	}
	if math.Abs(b.Bonus-0.10) > 1e-9 {
		t.Errorf("Expected bonus 0.10, got %.3f", b.Bonus)
	}
	if math.Abs(b.Score-(b.Jaccard+b.Bonus)) > 1e-9 {
		t.Errorf("Expected score = jaccard + bonus below the cap, got %.3f vs %.3f+%.3f", b.Score, b.Jaccard, b.Bonus)
	}
}

func TestScorer_BoilerplateDoesNotMatch(t *testing.T) {
	s := newTestScorer()

	// Two unrelated bills that only share procedural phrasing
	b := s.KeywordScore(
		"Projet de loi relatif à la pêche, article 3, première lecture",
		"Projet de loi relatif aux retraites, article 3, première lecture",
	)
	if b.Score > 0.2 {
		t.Errorf("Expected boilerplate to be stripped, got score %.3f with breakdown %+v", b.Score, b)
	}
}

func TestScorer_SynonymExpansion(t *testing.T) {
	s := newTestScorer()

	b := s.KeywordScore("We will cut the energy bill for every household", "Plafonnement du prix de l'électricité")
	if b.Intersection == 0 {
		t.Errorf("Expected energy synonyms to overlap with electricite, got %+v", b)
	}
}

func TestScorer_Cap(t *testing.T) {
	s := NewScorer(rules.MustCompileDefault(), 0.5)

	b := s.KeywordScore("impôts retraites hôpitaux", "impôts retraites hôpitaux")
	if b.Score != 1 {
		t.Errorf("Expected score capped at 1, got %.3f", b.Score)
	}
}

func TestScorer_EmptyTexts(t *testing.T) {
	s := newTestScorer()
	b := s.KeywordScore("", "")
	if b.Score != 0 || b.Union != 0 {
		t.Errorf("Expected zero score for empty texts, got %+v", b)
	}
}

func TestJaccard(t *testing.T) {
	a := text.NewSet("impot", "taxe", "budget")
	b := text.NewSet("taxe", "budget", "dette", "deficit")

	j, inter, union := Jaccard(a, b)
	if inter != 2 || union != 5 {
		t.Errorf("Expected 2/5, got %d/%d", inter, union)
	}
	if math.Abs(j-0.4) > 1e-9 {
		t.Errorf("Expected 0.4, got %v", j)
	}
}

func TestScorer_ProfileActionsOrder(t *testing.T) {
	s := newTestScorer()
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	actions := []*model.Action{
		{ID: "b", OccurredAt: day(2)},
		{ID: "c", OccurredAt: day(1)},
		{ID: "a", OccurredAt: day(2)},
	}
	got := s.ProfileActions(actions)

	want := []string{"c", "a", "b"}
	for i, p := range got {
		if p.Action.ID != want[i] {
			t.Errorf("Expected order %v, got %s at %d", want, p.Action.ID, i)
		}
	}
	if actions[0].ID != "b" {
		t.Error("Expected input slice to be left untouched")
	}
}

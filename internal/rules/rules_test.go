package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/text"
)

func TestCompileDefault(t *testing.T) {
	c, err := Compile(Default(), 4)
	if err != nil {
		t.Fatalf("Expected default rules to compile, got %v", err)
	}
	if c.Expander.Groups() == 0 {
		t.Error("Expected synonym groups")
	}
	if len(c.Categories) != len(model.Categories)-1 {
		t.Errorf("Expected a bucket per non-other category, got %d", len(c.Categories))
	}
}

func TestCompiled_Position(t *testing.T) {
	c := MustCompileDefault()

	tests := map[string]model.Position{
		"Pour":       model.PositionFor,
		"contre":     model.PositionAgainst,
		"Abstention": model.PositionAbstain,
		"Non votant": model.PositionAbsent,
		"non-votant": model.PositionAbsent,
		"against":    model.PositionAgainst,
		"for":        model.PositionFor,
	}
	for raw, want := range tests {
		got, ok := c.Position(raw)
		if !ok || got != want {
			t.Errorf("Position(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}

	if _, ok := c.Position("peut-être"); ok {
		t.Error("Expected unknown label to be rejected")
	}
}

func TestCompiled_Category(t *testing.T) {
	c := MustCompileDefault()

	tests := []struct {
		text string
		want model.Category
	}{
		{"réduire les impôts de 5 milliards", model.CategoryEconomic},
		{"recruter 10000 policiers", model.CategorySecurity},
		{"fermer les centrales à charbon pour le climat", model.CategoryEnvironmental},
		{"ouvrir de nouveaux hôpitaux", model.CategoryHealthcare},
		{"changer la devise nationale", model.CategoryOther},
	}
	for _, tt := range tests {
		if got := c.Category(text.Words(text.Fold(tt.text))); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestCompiled_IsInversion(t *testing.T) {
	c := MustCompileDefault()

	inverted := []string{
		"Motion de censure déposée en application de l'article 49-3",
		"Motion de rejet préalable du projet de loi immigration",
		"Amendement n°123 visant à supprimer l'article 7",
		"Vote of no confidence in the government",
	}
	for _, d := range inverted {
		if _, ok := c.IsInversion(text.Fold(d)); !ok {
			t.Errorf("Expected inversion for %q", d)
		}
	}

	if _, ok := c.IsInversion(text.Fold("Projet de loi de finances pour 2025")); ok {
		t.Error("Ordinary bill should not be an inversion")
	}
}

func TestCompile_RejectsInvalid(t *testing.T) {
	r := Default()
	r.Inversion = append(r.Inversion, "(unclosed")
	if _, err := Compile(r, 4); err == nil {
		t.Error("Expected error for invalid regexp")
	}

	r = Default()
	r.Categories = append(r.Categories, CategoryBucket{Category: "astrology"})
	if _, err := Compile(r, 4); err == nil {
		t.Error("Expected error for unknown category")
	}

	r = Default()
	r.Positions["maybe"] = []string{"peut etre"}
	if _, err := Compile(r, 4); err == nil {
		t.Error("Expected error for unknown position")
	}
}

func TestLoadFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
hedge_cues:
  - "sous reserve"
synonyms:
  transport:
    - train
    - rail
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if len(r.HedgeCues) != 1 || r.HedgeCues[0] != "sous reserve" {
		t.Errorf("Expected hedge cues to be replaced, got %v", r.HedgeCues)
	}
	if _, ok := r.Synonyms["transport"]; !ok {
		t.Error("Expected new synonym group")
	}
	if _, ok := r.Synonyms["energie"]; !ok {
		t.Error("Expected default synonym groups to survive the overlay")
	}
	if len(r.StrongCues) == 0 {
		t.Error("Expected untouched lists to keep defaults")
	}
}

func TestLoadFile_Empty(t *testing.T) {
	r, err := LoadFile("")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.StopWords) == 0 {
		t.Error("Expected defaults when no path is given")
	}
}

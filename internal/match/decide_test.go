package match

import (
	"strings"
	"testing"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
)

func newTestDecider() *Decider {
	return NewDecider(rules.MustCompileDefault())
}

func TestDecider_Polarity(t *testing.T) {
	d := newTestDecider()

	tests := []struct {
		text string
		want Polarity
	}{
		{"Je m'engage à réduire les impôts de 5 milliards d'euros d'ici 2027", PolarityPositive},
		{"Je refuse toute nouvelle réglementation européenne", PolarityNegative},
		{"Nous nous opposerons à la réforme des retraites", PolarityNegative},
		{"We will build 100 new schools", PolarityPositive},
		{"Je ne voterai jamais une hausse d'impôt", PolarityNegative},
		{"Supprimer la taxe d'habitation", PolarityNegative},
		{"Il faut une France plus juste", PolarityUndetermined},
	}
	for _, tt := range tests {
		if got, _ := d.Polarity(tt.text); got != tt.want {
			t.Errorf("Polarity(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestDecider_DecisionTable(t *testing.T) {
	d := newTestDecider()
	positive := "Je m'engage à protéger les hôpitaux publics"
	negative := "Je refuse la fermeture des maternités"
	neutral := "Il faut une France plus juste"
	ordinary := "Projet de loi relatif à l'organisation du système de santé"

	tests := []struct {
		name     string
		promise  string
		position model.Position
		want     model.MatchType
	}{
		{"positive for", positive, model.PositionFor, model.MatchKept},
		{"positive against", positive, model.PositionAgainst, model.MatchBroken},
		{"negative against", negative, model.PositionAgainst, model.MatchKept},
		{"negative for", negative, model.PositionFor, model.MatchBroken},
		{"abstain", positive, model.PositionAbstain, model.MatchPartial},
		{"absent", negative, model.PositionAbsent, model.MatchPartial},
		{"undetermined", neutral, model.PositionFor, model.MatchPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := d.Decide(tt.promise, &model.Action{Description: ordinary, Position: tt.position})
			if dec.MatchType != tt.want {
				t.Errorf("Decide() = %s, want %s (%s)", dec.MatchType, tt.want, dec.Justification)
			}
			if dec.Inverted {
				t.Error("Ordinary bill should not invert")
			}
			if !strings.HasSuffix(dec.Justification, "=> "+string(tt.want)) {
				t.Errorf("Justification should end with the outcome, got %q", dec.Justification)
			}
		})
	}
}

func TestDecider_ScenarioB(t *testing.T) {
	d := newTestDecider()

	dec := d.Decide("Je refuse toute nouvelle réglementation européenne", &model.Action{
		Description: "Proposition de loi pour une réglementation européenne renforcée",
		Position:    model.PositionFor,
	})
	if dec.MatchType != model.MatchBroken {
		t.Errorf("Expected broken, got %s (%s)", dec.MatchType, dec.Justification)
	}
	if dec.Polarity != PolarityNegative {
		t.Errorf("Expected negative polarity, got %s", dec.Polarity)
	}
}

func TestDecider_ScenarioC_Inversion(t *testing.T) {
	d := newTestDecider()

	dec := d.Decide("Je m'oppose à la politique du gouvernement sur les retraites", &model.Action{
		Description: "Motion de censure du gouvernement sur la réforme des retraites",
		Position:    model.PositionFor,
	})
	if dec.MatchType != model.MatchKept {
		t.Errorf("Expected kept, got %s (%s)", dec.MatchType, dec.Justification)
	}
	if !dec.Inverted || dec.Effective != model.PositionAgainst {
		t.Errorf("Expected inversion to against, got inverted=%v effective=%s", dec.Inverted, dec.Effective)
	}
	if !strings.Contains(dec.Justification, "motion de censure") {
		t.Errorf("Expected justification to name the procedure, got %q", dec.Justification)
	}
}

func TestDecider_SuppressionAmendment(t *testing.T) {
	d := newTestDecider()

	// Voting for deleting a protective article goes against a positive promise
	dec := d.Decide("Je m'engage à protéger le littoral", &model.Action{
		Description: "Amendement n°42 visant à supprimer l'article 5 sur la protection du littoral",
		Position:    model.PositionFor,
	})
	if dec.MatchType != model.MatchBroken {
		t.Errorf("Expected broken, got %s (%s)", dec.MatchType, dec.Justification)
	}
}

func TestDecider_InversionKeepsAbstention(t *testing.T) {
	d := newTestDecider()

	dec := d.Decide("Je refuse cette réforme", &model.Action{
		Description: "Motion de rejet préalable",
		Position:    model.PositionAbstain,
	})
	if dec.MatchType != model.MatchPartial {
		t.Errorf("Expected partial, got %s", dec.MatchType)
	}
}

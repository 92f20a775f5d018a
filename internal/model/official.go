package model

import (
	"strings"
	"time"

	"github.com/ppiankov/politikcred/internal/text"
)

// Official is the office-holder whose promises and actions are tracked
type Official struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	FirstName        string      `json:"first_name,omitempty"`
	LastName         string      `json:"last_name,omitempty"`
	Party            string      `json:"party,omitempty"`
	Position         string      `json:"position"` // Député, Sénateur, Ministre, Maire...
	Orientation      Orientation `json:"orientation,omitempty"`
	CredibilityScore float64     `json:"credibility_score"` // Cached projection of the latest history entry
	CreatedAt        time.Time   `json:"created_at"`
}

// Orientation is the coarse political orientation derived from the party
type Orientation string

const (
	OrientationLeft        Orientation = "left"
	OrientationCenterLeft  Orientation = "center-left"
	OrientationCenter      Orientation = "center"
	OrientationCenterRight Orientation = "center-right"
	OrientationRight       Orientation = "right"
)

// partyOrientations is checked in order; the first substring hit wins
var partyOrientations = []struct {
	party       string
	orientation Orientation
}{
	{"la france insoumise", OrientationLeft},
	{"parti socialiste", OrientationCenterLeft},
	{"europe ecologie", OrientationCenterLeft},
	{"renaissance", OrientationCenter},
	{"modem", OrientationCenter},
	{"agir", OrientationCenter},
	{"les republicains", OrientationCenterRight},
	{"lr", OrientationCenterRight},
	{"rassemblement national", OrientationRight},
	{"reconquete", OrientationRight},
}

// OrientationForParty maps a party label to an orientation, defaulting to
// center. Labels are folded so "Les Républicains" and "LES REPUBLICAINS" agree.
func OrientationForParty(party string) Orientation {
	lower := text.Fold(party)
	if lower == "" {
		return OrientationCenter
	}
	for _, po := range partyOrientations {
		if po.party == "lr" {
			// Short acronym: match whole words only
			for _, word := range strings.Fields(lower) {
				if word == "lr" {
					return po.orientation
				}
			}
			continue
		}
		if strings.Contains(lower, po.party) {
			return po.orientation
		}
	}
	return OrientationCenter
}

// CredibilityTier labels a credibility score for display
func CredibilityTier(score float64) string {
	switch {
	case score >= 80:
		return "high"
	case score >= 60:
		return "medium"
	default:
		return "low"
	}
}

// DedupeKey identifies an official across sources (first_last, lowercased)
func (o Official) DedupeKey() string {
	key := strings.ToLower(strings.TrimSpace(o.FirstName)) + "_" + strings.ToLower(strings.TrimSpace(o.LastName))
	return strings.ReplaceAll(key, " ", "_")
}

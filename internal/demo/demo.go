// Package demo generates a synthetic dataset for trying the pipeline end to
// end. Names are fictional. The output is raw input only: no verifications,
// scores or match decisions are ever generated here, so everything the demo
// shows comes from the real matcher.
package demo

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ppiankov/politikcred/internal/dataset"
	"github.com/ppiankov/politikcred/internal/model"
)

// Options sizes the generated dataset
type Options struct {
	Seed                int64
	Officials           int
	PromisesPerOfficial int
	ActionsPerOfficial  int
	Start               time.Time // First promise date
}

// DefaultOptions returns a small dataset that exercises every match type
func DefaultOptions() Options {
	return Options{
		Seed:                1,
		Officials:           5,
		PromisesPerOfficial: 4,
		ActionsPerOfficial:  8,
		Start:               time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

var (
	firstNames = []string{"Camille", "Louis", "Inès", "Hugo", "Margaux", "Théo", "Sarah", "Nathan", "Chloé", "Yanis"}
	lastNames  = []string{"Fontaine", "Marchal", "Leclerc", "Barbier", "Garnier", "Royer", "Perrin", "Morel", "Caron", "Aubry"}
	parties    = []string{"Parti socialiste", "Renaissance", "MoDem", "Les Republicains", "Europe Ecologie", "Divers"}
	positions  = []string{"Député", "Députée", "Sénateur", "Sénatrice", "Maire"}
)

// theme pairs a promise with actions that support or contradict it
type theme struct {
	category model.Category
	promise  func(amount, year int) string
	action   func(amount int) string
	against  string // Procedural motion whose vote runs opposite to the policy
}

var themes = []theme{
	{
		category: model.CategoryEconomic,
		promise: func(amount, year int) string {
			return fmt.Sprintf("Je m'engage à réduire les impôts de %d milliards d'euros d'ici %d", amount, year)
		},
		action: func(amount int) string {
			return fmt.Sprintf("Projet de loi de finances: baisse de l'impôt sur le revenu de %d milliards", amount)
		},
		against: "Motion de rejet du projet de loi de finances",
	},
	{
		category: model.CategoryEnvironmental,
		promise: func(_, year int) string {
			return fmt.Sprintf("Nous allons fermer les centrales à charbon avant %d", year)
		},
		action:  func(int) string { return "Projet de loi relatif à la fermeture des centrales à charbon" },
		against: "Motion de censure sur la loi climat et résilience",
	},
	{
		category: model.CategoryHealthcare,
		promise: func(amount, _ int) string {
			return fmt.Sprintf("Je promets de recruter %d infirmiers dans les hôpitaux publics", amount*100)
		},
		action: func(amount int) string {
			return fmt.Sprintf("Projet de loi de financement de la sécurité sociale: recrutement de %d infirmiers à l'hôpital", amount*100)
		},
		against: "Question préalable sur le financement de l'hôpital",
	},
	{
		category: model.CategoryEducation,
		promise: func(amount, _ int) string {
			return fmt.Sprintf("Je m'engage à construire %d écoles dans les quartiers prioritaires", amount)
		},
		action: func(int) string {
			return "Proposition de loi pour la construction d'écoles dans les quartiers prioritaires"
		},
		against: "Motion de rejet préalable sur les écoles",
	},
	{
		category: model.CategorySecurity,
		promise: func(amount, _ int) string {
			return fmt.Sprintf("Nous allons recruter %d policiers supplémentaires", amount*100)
		},
		action: func(int) string {
			return "Loi d'orientation et de programmation du ministère de l'intérieur: recrutement de policiers"
		},
		against: "Motion de censure sur la programmation de la sécurité intérieure",
	},
	{
		category: model.CategorySocial,
		promise: func(amount, _ int) string {
			return fmt.Sprintf("Je m'engage à augmenter le minimum vieillesse de %d euros", amount*10)
		},
		action:  func(int) string { return "Projet de loi portant revalorisation du minimum vieillesse" },
		against: "Motion de rejet sur la revalorisation du minimum vieillesse",
	},
}

// unrelated actions give the matcher something to reject
var unrelated = []string{
	"Proposition de loi relative à la pêche en haute mer",
	"Projet de loi autorisant la ratification d'un accord fiscal bilatéral",
	"Proposition de résolution sur le patrimoine ferroviaire",
	"Projet de loi relatif à l'organisation des jeux olympiques",
}

// Generate builds a synthetic dataset. The same options always yield the
// same dataset.
func Generate(opts Options) *dataset.Dataset {
	rng := rand.New(rand.NewSource(opts.Seed))
	if opts.Start.IsZero() {
		opts.Start = DefaultOptions().Start
	}
	promises := max(0, min(opts.PromisesPerOfficial, len(themes)))

	ds := &dataset.Dataset{Provenance: dataset.ProvenanceSynthetic}
	synthetic := model.Source{Type: dataset.ProvenanceSynthetic}

	for i := 0; i < opts.Officials; i++ {
		officialID := fmt.Sprintf("demo-official-%03d", i+1)
		ds.Officials = append(ds.Officials, dataset.OfficialRecord{
			ID:        officialID,
			FirstName: firstNames[i%len(firstNames)],
			LastName:  lastName(i),
			Party:     parties[rng.Intn(len(parties))],
			Position:  positions[rng.Intn(len(positions))],
		})

		picked := rng.Perm(len(themes))[:promises]
		for j, idx := range picked {
			th := themes[idx]
			stated := opts.Start.AddDate(0, 0, rng.Intn(90))
			ds.Promises = append(ds.Promises, dataset.PromiseRecord{
				ID:         fmt.Sprintf("%s-promise-%02d", officialID, j+1),
				OfficialID: officialID,
				Text:       th.promise(5+rng.Intn(50), stated.Year()+3),
				Category:   string(th.category),
				StatedAt:   stated.Format("2006-01-02"),
				Source:     synthetic,
			})
		}

		for k := 0; k < opts.ActionsPerOfficial; k++ {
			description, category := unrelated[rng.Intn(len(unrelated))], model.CategoryOther
			if r := rng.Intn(10); r < 7 && len(picked) > 0 {
				th := themes[picked[rng.Intn(len(picked))]]
				description, category = th.action(5+rng.Intn(50)), th.category
				if r >= 5 {
					description = th.against
				}
			}
			occurred := opts.Start.AddDate(1, 0, rng.Intn(365))
			ds.Actions = append(ds.Actions, dataset.ActionRecord{
				ID:          fmt.Sprintf("%s-action-%02d", officialID, k+1),
				OfficialID:  officialID,
				OccurredAt:  occurred.Format("2006-01-02"),
				Description: description,
				Position:    votePosition(rng),
				Category:    string(category),
				Source:      synthetic,
				ExternalRef: fmt.Sprintf("DEMO-%04d", rng.Intn(10000)),
			})
		}
	}
	return ds
}

// lastName gives the first hundred officials distinct first/last pairs
func lastName(i int) string {
	name := lastNames[(i/len(firstNames)+3*i)%len(lastNames)]
	if i >= len(firstNames)*len(lastNames) {
		name = fmt.Sprintf("%s-%d", name, i/(len(firstNames)*len(lastNames)))
	}
	return name
}

// votePosition favors recorded votes over abstention and absence
func votePosition(rng *rand.Rand) string {
	switch r := rng.Intn(20); {
	case r < 10:
		return "pour"
	case r < 16:
		return "contre"
	case r < 18:
		return "abstention"
	default:
		return "non votant"
	}
}

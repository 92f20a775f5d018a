package demo

import (
	"context"
	"reflect"
	"testing"

	"github.com/ppiankov/politikcred/internal/dataset"
	"github.com/ppiankov/politikcred/internal/engine"
	"github.com/ppiankov/politikcred/internal/metrics"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/ppiankov/politikcred/internal/store"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(DefaultOptions())
	b := Generate(DefaultOptions())
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different datasets")
	}

	opts := DefaultOptions()
	opts.Seed = 2
	if reflect.DeepEqual(a, Generate(opts)) {
		t.Error("different seeds produced the same dataset")
	}
}

func TestGenerateShape(t *testing.T) {
	opts := DefaultOptions()
	ds := Generate(opts)

	if ds.Provenance != dataset.ProvenanceSynthetic {
		t.Errorf("provenance = %q", ds.Provenance)
	}
	if len(ds.Officials) != opts.Officials {
		t.Errorf("officials = %d, want %d", len(ds.Officials), opts.Officials)
	}
	if len(ds.Promises) != opts.Officials*opts.PromisesPerOfficial {
		t.Errorf("promises = %d", len(ds.Promises))
	}
	if len(ds.Actions) != opts.Officials*opts.ActionsPerOfficial {
		t.Errorf("actions = %d", len(ds.Actions))
	}

	keys := map[string]bool{}
	for _, o := range ds.Officials {
		key := model.Official{FirstName: o.FirstName, LastName: o.LastName}.DedupeKey()
		if keys[key] {
			t.Errorf("duplicate official name %s", key)
		}
		keys[key] = true
	}
	for _, p := range ds.Promises {
		if p.Confidence != 0 {
			t.Errorf("promise %s carries a confidence; classification belongs to the classifier", p.ID)
		}
		if p.Source.Type != dataset.ProvenanceSynthetic {
			t.Errorf("promise %s source type = %q", p.ID, p.Source.Type)
		}
	}
}

func TestLastNameUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 250; i++ {
		key := firstNames[i%len(firstNames)] + " " + lastName(i)
		if seen[key] {
			t.Fatalf("official %d repeats name %s", i, key)
		}
		seen[key] = true
	}
}

func TestGenerateZeroPromises(t *testing.T) {
	opts := DefaultOptions()
	opts.PromisesPerOfficial = 0
	ds := Generate(opts)
	if len(ds.Promises) != 0 {
		t.Errorf("promises = %d", len(ds.Promises))
	}
	for _, a := range ds.Actions {
		if a.Category != string(model.CategoryOther) {
			t.Errorf("action %s should be unrelated without promises", a.ID)
		}
	}
}

// The demo dataset goes through the same import and matching path as real
// data and produces verifications only through the matcher.
func TestDemoThroughPipeline(t *testing.T) {
	ctx := context.Background()
	cfg := model.DefaultConfig()
	compiled := rules.MustCompileDefault()
	s := store.NewMemory()

	im := dataset.NewImporter(s, compiled, model.ImportConfig{BatchSize: 50}, cfg.Credibility.Baseline)
	report, err := im.Import(ctx, Generate(DefaultOptions()))
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 0 {
		t.Fatalf("import failures: %v", report.Errors)
	}
	if report.Promises == 0 || report.Actions == 0 {
		t.Fatalf("nothing imported: %+v", report)
	}

	eng := engine.New(cfg, compiled, nil, engine.RepositoriesFrom(s), metrics.New())
	summary, err := eng.MatchAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Matched == 0 {
		t.Errorf("expected at least one match: %+v", summary)
	}

	officials, err := s.ListOfficials(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range officials {
		verifications, err := s.ListVerifications(ctx, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range verifications {
			if v.Method != model.MethodKeyword {
				t.Errorf("verification %s method = %s, want keyword without an embedder", v.ID, v.Method)
			}
		}
	}
}

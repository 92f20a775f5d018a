package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/ppiankov/politikcred/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `{
  "provenance": "assemblee-nationale",
  "officials": [
    {"first_name": " Jeanne ", "last_name": "Martin", "party": "Parti socialiste", "position": "Députée"},
    {"first_name": "Jeanne", "last_name": "Martin", "position": "Députée"},
    {"name": "Paul Durand", "party": "Les Républicains", "position": "Sénateur"},
    {"first_name": "Sans", "last_name": "Mandat"}
  ],
  "promises": [
    {"id": "p-1", "official_id": "off-1", "text": "Je m'engage à réduire les impôts de 5 milliards d'euros d'ici 2027", "stated_at": "2022-04-01", "source": {"type": "speech", "url": "https://example.org/discours"}},
    {"id": "p-2", "official_id": "off-1", "text": "Peut-être que nous pourrions baisser les impôts", "stated_at": "2022-04-01", "source": {"type": "speech"}},
    {"id": "p-3", "official_id": "off-1", "text": "Nous allons construire des écoles", "category": "education", "confidence": 0.8, "actionable": true, "stated_at": "01/05/2022", "source": {"type": "manifesto"}},
    {"id": "p-1", "official_id": "off-1", "text": "Je m'engage à réduire les impôts de 5 milliards d'euros d'ici 2027", "stated_at": "2022-04-01", "source": {"type": "speech"}},
    {"id": "p-4", "official_id": "off-1", "text": "Je promets la lune", "stated_at": "avril 2022", "source": {"type": "speech"}}
  ],
  "actions": [
    {"id": "a-1", "official_id": "off-1", "occurred_at": "2023-12-19T00:00:00Z", "description": "Projet de loi de finances", "position": "Pour", "category": "economic", "source": {"type": "vote"}, "external_ref": "4321"},
    {"id": "a-2", "official_id": "off-1", "occurred_at": "2023-12-20", "description": "Loi sur la pêche", "position": "non votant", "source": {"type": "vote"}},
    {"id": "a-3", "official_id": "off-1", "occurred_at": "2023-12-21", "description": "Loi inconnue", "position": "peut-être", "source": {"type": "vote"}},
    {"official_id": "", "occurred_at": "2023-12-21", "description": "Sans député", "position": "pour", "source": {"type": "vote"}}
  ]
}`

func newImporter(repo Repository) *Importer {
	im := NewImporter(repo, rules.MustCompileDefault(), model.ImportConfig{BatchSize: 2}, 100)
	im.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return im
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader(`{"officials": [], "votes": []}`))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	ds, err := Load(strings.NewReader(sampleDataset))
	require.NoError(t, err)

	s := store.NewMemory()
	report, err := newImporter(s).Import(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Officials)
	assert.Equal(t, 2, report.Promises, "p-1 and p-3")
	assert.Equal(t, 2, report.Actions, "a-1 and a-2")
	assert.Equal(t, 2, report.Duplicates, "repeated official and repeated p-1")
	assert.Equal(t, 3, report.Skipped, "official without position, hedged promise, action without official")
	assert.Equal(t, 2, report.Failed, "bad date and unknown position")
	assert.Len(t, report.Errors, 2)

	officials, err := s.ListOfficials(context.Background())
	require.NoError(t, err)
	require.Len(t, officials, 2)
	byName := map[string]*model.Official{}
	for _, o := range officials {
		byName[o.Name] = o
	}
	jeanne := byName["Jeanne Martin"]
	require.NotNil(t, jeanne)
	assert.Equal(t, model.OrientationCenterLeft, jeanne.Orientation)
	assert.Equal(t, 100.0, jeanne.CredibilityScore)
	assert.Equal(t, StableID("official", "jeanne_martin"), jeanne.ID)
	require.NotNil(t, byName["Paul Durand"])

	p1, err := s.GetPromise(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryEconomic, p1.Category)
	assert.Equal(t, 0.9, p1.Confidence)
	assert.True(t, p1.Actionable)
	assert.Equal(t, model.StatusPending, p1.Status)

	p3, err := s.GetPromise(context.Background(), "p-3")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryEducation, p3.Category)
	assert.Equal(t, 0.8, p3.Confidence)
	assert.Equal(t, time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC), p3.StatedAt)

	a1, err := s.GetAction(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, model.PositionFor, a1.Position)
	assert.Equal(t, model.CategoryEconomic, a1.Category)
	assert.Equal(t, "4321", a1.ExternalRef)

	a2, err := s.GetAction(context.Background(), "a-2")
	require.NoError(t, err)
	assert.Equal(t, model.PositionAbsent, a2.Position)
}

func TestImportIsRepeatable(t *testing.T) {
	ds, err := Load(strings.NewReader(sampleDataset))
	require.NoError(t, err)
	s := store.NewMemory()
	im := newImporter(s)

	_, err = im.Import(context.Background(), ds)
	require.NoError(t, err)
	report, err := im.Import(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Promises)
	assert.Equal(t, 0, report.Actions)
	assert.Equal(t, 6, report.Duplicates, "one repeated official, three promises, two actions")
}

func TestImportSyntheticSourceType(t *testing.T) {
	ds := &Dataset{
		Provenance: ProvenanceSynthetic,
		Officials:  []OfficialRecord{{ID: "off-1", Name: "Test", Position: "Maire"}},
		Promises: []PromiseRecord{{
			ID: "p-1", OfficialID: "off-1", Text: "Je m'engage à rénover la piscine municipale",
			Source: model.Source{Type: "speech"},
		}},
	}
	s := store.NewMemory()
	_, err := newImporter(s).Import(context.Background(), ds)
	require.NoError(t, err)

	p, err := s.GetPromise(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, ProvenanceSynthetic, p.Source.Type)
}

func TestImportCategoryWithoutClassification(t *testing.T) {
	ds := &Dataset{
		Officials: []OfficialRecord{{ID: "off-1", Name: "Test", Position: "Députée"}},
		Promises: []PromiseRecord{
			{ID: "p-1", OfficialID: "off-1", Text: "Baisser la TVA sur les produits de première nécessité", Confidence: 0.7, Actionable: true},
			{ID: "p-2", OfficialID: "off-1", Text: "Retrouver la fierté", Confidence: 0.6},
		},
	}
	s := store.NewMemory()
	report, err := newImporter(s).Import(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Promises)
	assert.Zero(t, report.Failed)

	p1, err := s.GetPromise(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryEconomic, p1.Category)
	assert.Equal(t, 0.7, p1.Confidence, "a supplied confidence is kept")
	p2, err := s.GetPromise(context.Background(), "p-2")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryOther, p2.Category)
}

// failingBatch rejects every batch so the importer falls back to single rows
type failingBatch struct {
	*store.Memory
	batches int
}

func (f *failingBatch) UpsertOfficials(ctx context.Context, officials []*model.Official) error {
	f.batches++
	return errors.New("batch rejected")
}

func (f *failingBatch) UpsertOfficial(ctx context.Context, o *model.Official) error {
	if o.Name == "Bad Row" {
		return errors.New("constraint failed")
	}
	return f.Memory.UpsertOfficial(ctx, o)
}

func TestImportFallsBackToRows(t *testing.T) {
	repo := &failingBatch{Memory: store.NewMemory()}
	ds := &Dataset{Officials: []OfficialRecord{
		{Name: "Anne Un", Position: "Maire"},
		{Name: "Bad Row", Position: "Maire"},
		{Name: "Claire Trois", Position: "Maire"},
	}}

	report, err := newImporter(repo).Import(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.batches, "batch size 2 over 3 officials")
	assert.Equal(t, 2, report.Officials)
	assert.Equal(t, 1, report.Failed)
}

func TestImportStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ds := &Dataset{Promises: []PromiseRecord{{ID: "p", OfficialID: "o", Text: "Je m'engage à tout"}}}

	_, err := newImporter(store.NewMemory()).Import(ctx, ds)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		err  bool
	}{
		{"", time.Time{}, false},
		{"2022-04-01", time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC), false},
		{"2022-04-01T10:30:00+02:00", time.Date(2022, 4, 1, 8, 30, 0, 0, time.UTC), false},
		{"19/12/2023", time.Date(2023, 12, 19, 0, 0, 0, 0, time.UTC), false},
		{"décembre 2023", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}
}

func TestStableID(t *testing.T) {
	assert.Equal(t, StableID("promise", "a", "b"), StableID("promise", "a", "b"))
	assert.NotEqual(t, StableID("promise", "a", "b"), StableID("action", "a", "b"))
	assert.NotEqual(t, StableID("promise", "ab", ""), StableID("promise", "a", "b"))
}

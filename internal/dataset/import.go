package dataset

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/politikcred/internal/classify"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	log "github.com/sirupsen/logrus"
)

// Repository is the write side of the store used by the importer
type Repository interface {
	UpsertOfficials(ctx context.Context, officials []*model.Official) error
	UpsertOfficial(ctx context.Context, o *model.Official) error
	InsertPromise(ctx context.Context, p *model.Promise) error
	InsertAction(ctx context.Context, a *model.Action) error
}

// Report summarizes an import
type Report struct {
	Officials  int      `json:"officials"`
	Promises   int      `json:"promises"`
	Actions    int      `json:"actions"`
	Duplicates int      `json:"duplicates"` // Already stored, or repeated in the file
	Skipped    int      `json:"skipped"`    // Incomplete or not a promise
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

func (r *Report) fail(format string, args ...interface{}) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Importer cleans records and writes them in batches
type Importer struct {
	repo       Repository
	rules      *rules.Compiled
	classifier *classify.Classifier
	cfg        model.ImportConfig
	baseline   float64
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewImporter creates an importer. Officials are created at the ledger
// baseline score.
func NewImporter(repo Repository, compiled *rules.Compiled, cfg model.ImportConfig, baseline float64) *Importer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Importer{
		repo:       repo,
		rules:      compiled,
		classifier: classify.New(compiled),
		cfg:        cfg,
		baseline:   baseline,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Import writes officials, then promises, then actions. Individual record
// failures are reported, not returned; an error means the import stopped.
func (im *Importer) Import(ctx context.Context, ds *Dataset) (Report, error) {
	var report Report

	if err := im.importOfficials(ctx, ds.Officials, &report); err != nil {
		return report, err
	}

	for _, r := range ds.Promises {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		im.importPromise(ctx, r, ds.Provenance, &report)
	}

	for _, r := range ds.Actions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		im.importAction(ctx, r, ds.Provenance, &report)
	}

	log.WithFields(log.Fields{
		"officials":  report.Officials,
		"promises":   report.Promises,
		"actions":    report.Actions,
		"duplicates": report.Duplicates,
		"skipped":    report.Skipped,
		"failed":     report.Failed,
	}).Info("Dataset imported")
	return report, nil
}

func (im *Importer) importOfficials(ctx context.Context, records []OfficialRecord, report *Report) error {
	var officials []*model.Official
	seen := make(map[string]bool)
	for _, r := range records {
		o, ok := cleanOfficial(r, im.baseline)
		if !ok {
			report.Skipped++
			continue
		}
		key := dedupeKey(o)
		if seen[key] || seen["id:"+o.ID] {
			report.Duplicates++
			continue
		}
		seen[key] = true
		seen["id:"+o.ID] = true
		officials = append(officials, o)
	}

	for start := 0; start < len(officials); start += im.cfg.BatchSize {
		end := start + im.cfg.BatchSize
		if end > len(officials) {
			end = len(officials)
		}
		batch := officials[start:end]

		if err := im.repo.UpsertOfficials(ctx, batch); err != nil {
			log.WithField("batch_start", start).WithError(err).Warn("Batch insert failed, retrying row by row")
			for _, o := range batch {
				if err := im.repo.UpsertOfficial(ctx, o); err != nil {
					report.fail("official %s (%s): %v", o.ID, o.Name, err)
					continue
				}
				report.Officials++
			}
		} else {
			report.Officials += len(batch)
		}

		if end < len(officials) {
			if err := im.sleep(ctx, im.cfg.BatchDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

func (im *Importer) importPromise(ctx context.Context, r PromiseRecord, provenance string, report *Report) {
	if r.OfficialID == "" || r.Text == "" {
		report.Skipped++
		return
	}
	statedAt, err := ParseDate(r.StatedAt)
	if err != nil {
		report.fail("promise %q: %v", r.ID, err)
		return
	}

	category := model.Category(r.Category)
	confidence := r.Confidence
	actionable := r.Actionable
	if confidence == 0 {
		cand, ok := im.classifier.ClassifySentence(r.Text)
		if !ok {
			report.Skipped++
			return
		}
		confidence = cand.Confidence
		actionable = cand.Actionable
		category = cmp.Or(category, cand.Category)
	}
	if category == "" {
		category = im.classifier.Category(r.Text)
	}

	source := r.Source
	if provenance == ProvenanceSynthetic {
		source.Type = ProvenanceSynthetic
	}
	id := r.ID
	if id == "" {
		id = StableID("promise", r.OfficialID, r.Text, r.StatedAt)
	}

	p, err := model.NewPromise(id, r.OfficialID, r.Text, category, confidence, actionable, source, statedAt)
	if err != nil {
		report.fail("promise %s: %v", id, err)
		return
	}
	err = im.repo.InsertPromise(ctx, p)
	switch {
	case errors.Is(err, model.ErrDuplicate):
		report.Duplicates++
	case err != nil:
		report.fail("promise %s: %v", id, err)
	default:
		report.Promises++
	}
}

func (im *Importer) importAction(ctx context.Context, r ActionRecord, provenance string, report *Report) {
	if r.OfficialID == "" || r.Description == "" {
		report.Skipped++
		return
	}
	position, ok := im.rules.Position(r.Position)
	if !ok {
		report.fail("action %q: unknown position %q", r.ID, r.Position)
		return
	}
	occurredAt, err := ParseDate(r.OccurredAt)
	if err != nil {
		report.fail("action %q: %v", r.ID, err)
		return
	}

	source := r.Source
	if provenance == ProvenanceSynthetic {
		source.Type = ProvenanceSynthetic
	}
	id := r.ID
	if id == "" {
		id = StableID("action", r.OfficialID, r.ExternalRef, r.Description, r.OccurredAt)
	}

	a, err := model.NewAction(id, r.OfficialID, r.Description, position, occurredAt, source)
	if err != nil {
		report.fail("action %s: %v", id, err)
		return
	}
	a.ExternalRef = r.ExternalRef
	if c := model.Category(r.Category); c.Valid() {
		a.Category = c
	}

	err = im.repo.InsertAction(ctx, a)
	switch {
	case errors.Is(err, model.ErrDuplicate):
		report.Duplicates++
	case err != nil:
		report.fail("action %s: %v", id, err)
	default:
		report.Actions++
	}
}

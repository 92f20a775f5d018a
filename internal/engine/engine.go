// Package engine runs the verification pipeline: match pending promises to
// actions, decide the match type, persist verifications with their ledger
// entries, and recompute consistency scores.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/politikcred/internal/embed"
	"github.com/ppiankov/politikcred/internal/ledger"
	"github.com/ppiankov/politikcred/internal/match"
	"github.com/ppiankov/politikcred/internal/metrics"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/ppiankov/politikcred/internal/score"
	"github.com/ppiankov/politikcred/internal/worker"
	log "github.com/sirupsen/logrus"
)

// Item error stages
const (
	StageList   = "list"
	StageVerify = "verify"
	StageInsert = "insert"
	StageLedger = "ledger"
	StageStatus = "status"
	StageScore  = "score"
)

// Engine is safe for concurrent use across officials. Promises of one
// official are matched sequentially.
type Engine struct {
	repos   Repositories
	matcher *match.Matcher
	decider *match.Decider
	ledger  *ledger.Ledger
	calc    *score.Calculator
	batch   *worker.BatchProcessor
	metrics *metrics.Metrics
	newID   func() string
}

// New builds an engine from configuration. embedder may be nil to use the
// keyword path only; m may be nil to skip metrics.
func New(cfg *model.Config, compiled *rules.Compiled, embedder embed.Provider, repos Repositories, m *metrics.Metrics) *Engine {
	scorer := match.NewScorer(compiled, cfg.Matching.LiteralBonus)
	return &Engine{
		repos:   repos,
		matcher: match.NewMatcher(scorer, embedder, match.ThresholdsFromConfig(cfg.Matching)),
		decider: match.NewDecider(compiled),
		ledger:  ledger.New(cfg.Credibility, repos.Credibility),
		calc:    score.NewCalculator(cfg.Scoring),
		batch:   worker.NewBatchProcessor(cfg.Concurrency.Workers),
		metrics: m,
		newID:   func() string { return uuid.NewString() },
	}
}

// Ledger returns the credibility ledger the engine appends to
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// MatchOfficial matches every pending promise of one official. It returns an
// error only when the official's promises or actions cannot be listed;
// per-promise failures are reported in the summary.
func (e *Engine) MatchOfficial(ctx context.Context, officialID string) (model.MatchSummary, error) {
	start := time.Now()
	summary := model.MatchSummary{Officials: 1}

	promises, err := e.repos.Promises.ListPendingPromises(ctx, officialID)
	if err != nil {
		return summary, fmt.Errorf("list pending promises for %s: %w", officialID, err)
	}
	if len(promises) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	actions, err := e.repos.Actions.ListActions(ctx, officialID)
	if err != nil {
		return summary, fmt.Errorf("list actions for %s: %w", officialID, err)
	}
	profiles := e.matcher.Scorer().ProfileActions(actions)

	for i, p := range promises {
		if ctx.Err() != nil {
			summary.Skipped = len(promises) - i
			break
		}
		summary.Promises++
		e.matchPromise(ctx, p, profiles, &summary)
	}

	summary.Duration = time.Since(start)
	log.WithFields(log.Fields{
		"official_id": officialID,
		"promises":    summary.Promises,
		"matched":     summary.Matched,
		"unmatched":   summary.Unmatched,
		"failed":      summary.Failed,
	}).Debug("Official matched")
	return summary, nil
}

func (e *Engine) matchPromise(ctx context.Context, p *model.Promise, actions []match.ActionProfile, s *model.MatchSummary) {
	fields := log.Fields{"official_id": p.OfficialID, "promise_id": p.ID}
	fail := func(stage string, err error) {
		s.Failed++
		s.Errors = append(s.Errors, model.ItemError{OfficialID: p.OfficialID, PromiseID: p.ID, Stage: stage, Err: err.Error()})
		e.metrics.Promise(metrics.OutcomeFailed)
		log.WithFields(fields).WithField("stage", stage).WithError(err).Error("Promise processing failed")
	}

	out := e.matcher.Match(ctx, p, actions)
	if out.Fallback {
		s.Fallbacks++
		e.metrics.Fallback()
	}
	if out.Best != nil {
		e.metrics.MatchScore(out.Best.Method, out.Best.Score)
		fields["method"] = out.Best.Method
		fields["score"] = out.Best.Score
		fields["threshold"] = out.Threshold
	}
	if !out.Accepted {
		s.Unmatched++
		e.metrics.Promise(metrics.OutcomeUnmatched)
		log.WithFields(fields).Debug("No action cleared the threshold, promise stays pending")
		return
	}

	// An accepted match is written in full even if the run stops meanwhile:
	// verification, ledger entry and status land together or are retried.
	ctx = context.WithoutCancel(ctx)

	action := out.Best.Action
	decision := e.decider.Decide(p.Text, action)
	explanation := out.Best.Explain(e.matcher.Thresholds()) + "; " + decision.Justification

	v, err := model.NewVerification(e.newID(), p, action, decision.MatchType, out.Best.Score, out.Best.Method, explanation)
	if err != nil {
		fail(StageVerify, err)
		return
	}

	err = e.repos.Verifications.InsertVerification(ctx, v)
	switch {
	case errors.Is(err, model.ErrDuplicate):
		s.Duplicates++
		e.metrics.Promise(metrics.OutcomeDuplicate)
		existing, ferr := e.repos.Verifications.FindVerification(ctx, p.ID, action.ID)
		if ferr != nil {
			fail(StageInsert, ferr)
			return
		}
		// A run interrupted between insert and ledger append leaves the
		// verification without its entry
		has, herr := e.repos.Credibility.HasHistoryFor(ctx, existing.ID)
		if herr != nil {
			fail(StageLedger, herr)
			return
		}
		if !has {
			if err := e.applyLedger(ctx, existing, p, action); err != nil {
				fail(StageLedger, err)
				return
			}
		}
	case err != nil:
		fail(StageInsert, err)
		return
	default:
		if err := e.applyLedger(ctx, v, p, action); err != nil {
			fail(StageLedger, err)
			return
		}
		s.Matched++
		e.metrics.Promise(metrics.OutcomeMatched)
	}

	if err := e.repos.Promises.UpdatePromiseStatus(ctx, p.ID, model.StatusVerified); err != nil {
		fail(StageStatus, err)
		return
	}

	log.WithFields(fields).WithFields(log.Fields{
		"action_id":  action.ID,
		"match_type": decision.MatchType,
		"polarity":   decision.Polarity,
		"inverted":   decision.Inverted,
	}).Debug("Promise verified")
}

func (e *Engine) applyLedger(ctx context.Context, v *model.Verification, p *model.Promise, a *model.Action) error {
	entry, err := e.ledger.Apply(ctx, v, p, a)
	if err != nil {
		return err
	}
	e.metrics.Ledger(entry.Reason)
	return nil
}

// MatchAll matches every official with pending promises, concurrently up to
// the configured worker count. It returns an error only when the pending set
// cannot be listed.
func (e *Engine) MatchAll(ctx context.Context) (model.MatchSummary, error) {
	start := time.Now()
	var summary model.MatchSummary

	pending, err := e.repos.Promises.ListPendingPromises(ctx, "")
	if err != nil {
		return summary, fmt.Errorf("list pending promises: %w", err)
	}

	var officials []string
	perOfficial := make(map[string]int)
	for _, p := range pending {
		if perOfficial[p.OfficialID] == 0 {
			officials = append(officials, p.OfficialID)
		}
		perOfficial[p.OfficialID]++
	}

	results, skipped := e.batch.ProcessOfficials(ctx, officials, func(ctx context.Context, officialID string) (interface{}, error) {
		return e.MatchOfficial(ctx, officialID)
	})

	for _, r := range results {
		s, _ := r.Value.(model.MatchSummary)
		summary.Merge(s)
		if r.Error != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, model.ItemError{OfficialID: r.OfficialID, Stage: StageList, Err: r.Error.Error()})
			log.WithField("official_id", r.OfficialID).WithError(r.Error).Error("Official matching failed")
		}
	}
	summary.Cancelled = len(skipped)
	for _, id := range skipped {
		summary.Skipped += perOfficial[id]
	}
	summary.Duration = time.Since(start)
	e.metrics.Run("match", summary.Duration)

	log.WithFields(log.Fields{
		"officials":  summary.Officials,
		"promises":   summary.Promises,
		"matched":    summary.Matched,
		"unmatched":  summary.Unmatched,
		"duplicates": summary.Duplicates,
		"fallbacks":  summary.Fallbacks,
		"failed":     summary.Failed,
		"cancelled":  summary.Cancelled,
		"skipped":    summary.Skipped,
		"duration":   summary.Duration.Round(time.Millisecond),
	}).Info("Matching run complete")
	return summary, nil
}

// CalculateScore recomputes and replaces one official's consistency score
func (e *Engine) CalculateScore(ctx context.Context, officialID string) (*model.ConsistencyScore, error) {
	cs, err := e.calculateScore(ctx, officialID)
	e.metrics.Score(err)
	return cs, err
}

func (e *Engine) calculateScore(ctx context.Context, officialID string) (*model.ConsistencyScore, error) {
	verifications, err := e.repos.Verifications.ListVerifications(ctx, officialID)
	if err != nil {
		return nil, fmt.Errorf("list verifications for %s: %w", officialID, err)
	}
	actions, err := e.repos.Actions.ListActions(ctx, officialID)
	if err != nil {
		return nil, fmt.Errorf("list actions for %s: %w", officialID, err)
	}

	cs := e.calc.Calculate(officialID, verifications, actions)
	if err := e.repos.Scores.ReplaceConsistencyScore(ctx, &cs); err != nil {
		return nil, fmt.Errorf("replace consistency score for %s: %w", officialID, err)
	}
	return &cs, nil
}

// CalculateAllScores recomputes every official's score. One official's
// failure never aborts the run.
func (e *Engine) CalculateAllScores(ctx context.Context) (model.ScoreSummary, error) {
	start := time.Now()
	var summary model.ScoreSummary

	officials, err := e.repos.Officials.ListOfficials(ctx)
	if err != nil {
		return summary, fmt.Errorf("list officials: %w", err)
	}
	ids := make([]string, len(officials))
	for i, o := range officials {
		ids[i] = o.ID
	}

	results, skipped := e.batch.ProcessOfficials(ctx, ids, func(ctx context.Context, officialID string) (interface{}, error) {
		return e.CalculateScore(ctx, officialID)
	})

	for _, r := range results {
		if r.Error != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, model.ItemError{OfficialID: r.OfficialID, Stage: StageScore, Err: r.Error.Error()})
			log.WithField("official_id", r.OfficialID).WithError(r.Error).Error("Score calculation failed")
			continue
		}
		summary.Updated++
	}
	for _, id := range skipped {
		summary.Failed++
		summary.Errors = append(summary.Errors, model.ItemError{OfficialID: id, Stage: StageScore, Err: "run cancelled"})
	}
	summary.Duration = time.Since(start)
	e.metrics.Run("score", summary.Duration)

	log.WithFields(log.Fields{
		"updated":  summary.Updated,
		"failed":   summary.Failed,
		"duration": summary.Duration.Round(time.Millisecond),
	}).Info("Scoring run complete")
	return summary, nil
}

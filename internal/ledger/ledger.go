// Package ledger maintains each official's bounded credibility score as an
// append-only chain of evidenced history entries.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/ppiankov/politikcred/internal/model"
	log "github.com/sirupsen/logrus"
)

// Repository is the credibility store contract. AppendHistory must reject an
// entry whose PreviousScore differs from the latest NewScore with
// model.ErrChainBroken, assign the next Sequence and refresh the official's
// cached score in the same write.
type Repository interface {
	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error
	CurrentScore(ctx context.Context, officialID string) (float64, error) // model.ErrNotFound without history
}

// Ledger applies credibility deltas
type Ledger struct {
	cfg   model.CredibilityConfig
	repo  Repository
	newID func() string
}

// New creates a ledger over repo
func New(cfg model.CredibilityConfig, repo Repository) *Ledger {
	return &Ledger{
		cfg:   cfg,
		repo:  repo,
		newID: func() string { return uuid.NewString() },
	}
}

// Delta is the bounded score change for a match: the base delta for the match
// type scaled by 0.5 + 0.5*confidence, so weak matches move the score less
func (l *Ledger) Delta(matchType model.MatchType, confidence float64) float64 {
	var base float64
	switch matchType {
	case model.MatchKept:
		base = l.cfg.KeptDelta
	case model.MatchBroken:
		base = l.cfg.BrokenDelta
	default:
		base = l.cfg.PartialDelta
	}
	confidence = model.Clamp(confidence, 0, 1)
	return round2(base * (0.5 + 0.5*confidence))
}

// Current returns the official's current score, seeding the chain with an
// initial_score entry at the baseline when there is no history yet
func (l *Ledger) Current(ctx context.Context, officialID string) (float64, error) {
	score, err := l.repo.CurrentScore(ctx, officialID)
	if err == nil {
		return score, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return 0, fmt.Errorf("read credibility score: %w", err)
	}

	entry, err := model.NewHistoryEntry(l.newID(), officialID, l.cfg.Baseline, l.cfg.Baseline,
		model.ReasonInitialScore, "Initial credibility score at the baseline; no verified promises yet.", nil, 1, l.cfg.Min, l.cfg.Max)
	if err != nil {
		return 0, err
	}
	if err := l.repo.AppendHistory(ctx, entry); err != nil {
		return 0, fmt.Errorf("seed credibility history: %w", err)
	}
	return l.cfg.Baseline, nil
}

// Apply appends the history entry for a newly accepted verification
func (l *Ledger) Apply(ctx context.Context, v *model.Verification, promise *model.Promise, action *model.Action) (*model.HistoryEntry, error) {
	if !v.Bound() || action == nil {
		return nil, fmt.Errorf("verification %s is not bound to an action", v.ID)
	}

	return l.append(ctx, v.OfficialID, l.Delta(v.MatchType, v.Confidence), model.ReasonFor(v.MatchType),
		Describe(promise, action, v), sources(promise.Source.URL, action.Source.URL), v.Confidence, v.ID)
}

// Adjust appends a manual adjustment. The description must state the factual
// basis for the change.
func (l *Ledger) Adjust(ctx context.Context, officialID string, delta float64, description string, evidence []string) (*model.HistoryEntry, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("manual adjustment requires a description")
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("manual adjustment delta %v: %w", delta, model.ErrOutOfRange)
	}
	return l.append(ctx, officialID, round2(delta), model.ReasonManualAdjustment, description, sources(evidence...), 1, "")
}

func (l *Ledger) append(ctx context.Context, officialID string, delta float64, reason model.Reason, description string, evidence []string, confidence float64, verificationID string) (*model.HistoryEntry, error) {
	previous, err := l.Current(ctx, officialID)
	if err != nil {
		return nil, err
	}

	next := round2(previous + delta)
	if next < l.cfg.Min || next > l.cfg.Max {
		clamped := model.Clamp(next, l.cfg.Min, l.cfg.Max)
		log.WithFields(log.Fields{
			"official_id": officialID,
			"previous":    previous,
			"delta":       delta,
			"unclamped":   next,
			"clamped":     clamped,
		}).Warn("Credibility score left its range, clamping")
		next = clamped
	}

	entry, err := model.NewHistoryEntry(l.newID(), officialID, previous, next, reason, description, evidence, confidence, l.cfg.Min, l.cfg.Max)
	if err != nil {
		return nil, err
	}
	entry.VerificationID = verificationID
	if err := l.repo.AppendHistory(ctx, entry); err != nil {
		return nil, fmt.Errorf("append credibility history: %w", err)
	}
	return entry, nil
}

// VerifyChain checks that entries (ordered by sequence) form an unbroken chain
// within [lo, hi]
func VerifyChain(entries []model.HistoryEntry, lo, hi float64) error {
	for i, e := range entries {
		if e.NewScore < lo || e.NewScore > hi || e.PreviousScore < lo || e.PreviousScore > hi {
			return fmt.Errorf("entry %d (%s): score outside [%v, %v]: %w", e.Sequence, e.ID, lo, hi, model.ErrOutOfRange)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		if e.PreviousScore != prev.NewScore {
			return fmt.Errorf("entry %d previous %.2f != entry %d new %.2f: %w",
				e.Sequence, e.PreviousScore, prev.Sequence, prev.NewScore, model.ErrChainBroken)
		}
		if e.Sequence != prev.Sequence+1 {
			return fmt.Errorf("sequence gap between %d and %d: %w", prev.Sequence, e.Sequence, model.ErrChainBroken)
		}
	}
	return nil
}

func sources(urls ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package model

import (
	"fmt"
	"math"
	"time"
)

// Reason is why a credibility score changed
type Reason string

const (
	ReasonPromiseKept      Reason = "promise_kept"
	ReasonPromiseBroken    Reason = "promise_broken"
	ReasonPromisePartial   Reason = "promise_partial"
	ReasonManualAdjustment Reason = "manual_adjustment"
	ReasonInitialScore     Reason = "initial_score"
)

// Valid reports whether r is a known reason
func (r Reason) Valid() bool {
	switch r {
	case ReasonPromiseKept, ReasonPromiseBroken, ReasonPromisePartial, ReasonManualAdjustment, ReasonInitialScore:
		return true
	}
	return false
}

// ReasonFor maps a match type to its ledger reason
func ReasonFor(m MatchType) Reason {
	switch m {
	case MatchKept:
		return ReasonPromiseKept
	case MatchBroken:
		return ReasonPromiseBroken
	default:
		return ReasonPromisePartial
	}
}

// HistoryEntry is one immutable, evidenced credibility change. Append-only.
type HistoryEntry struct {
	ID             string    `json:"id"`
	OfficialID     string    `json:"official_id"`
	Sequence       int       `json:"sequence"` // Assigned by the store, 1-based per official
	PreviousScore  float64   `json:"previous_score"`
	NewScore       float64   `json:"new_score"`
	Delta          float64   `json:"delta"`
	Reason         Reason    `json:"reason"`
	Description    string    `json:"description"`
	Sources        []string  `json:"sources,omitempty"`
	VerificationID string    `json:"verification_id,omitempty"`
	Confidence     float64   `json:"confidence"`
	Disputed       bool      `json:"disputed"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewHistoryEntry validates an entry; both scores must lie in [lo, hi]
func NewHistoryEntry(id, officialID string, previous, next float64, reason Reason, description string, sources []string, confidence float64, lo, hi float64) (*HistoryEntry, error) {
	if !reason.Valid() {
		return nil, fmt.Errorf("history entry %s: unknown reason %q", id, reason)
	}
	if previous < lo || previous > hi || math.IsNaN(previous) {
		return nil, fmt.Errorf("history entry %s: previous score %v: %w", id, previous, ErrOutOfRange)
	}
	if next < lo || next > hi || math.IsNaN(next) {
		return nil, fmt.Errorf("history entry %s: new score %v: %w", id, next, ErrOutOfRange)
	}
	if err := CheckUnit("history confidence", confidence); err != nil {
		return nil, err
	}
	return &HistoryEntry{
		ID:            id,
		OfficialID:    officialID,
		PreviousScore: previous,
		NewScore:      next,
		Delta:         math.Round((next-previous)*100) / 100,
		Reason:        reason,
		Description:   description,
		Sources:       sources,
		Confidence:    confidence,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

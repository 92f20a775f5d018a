// Package store persists officials, promises, actions, verifications,
// consistency scores and the credibility history.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/politikcred/internal/model"
)

// Store is the full persistence contract. The engine and ledger depend on
// narrower slices of it.
type Store interface {
	UpsertOfficial(ctx context.Context, o *model.Official) error
	UpsertOfficials(ctx context.Context, officials []*model.Official) error // All or nothing
	GetOfficial(ctx context.Context, id string) (*model.Official, error)
	ListOfficials(ctx context.Context) ([]*model.Official, error)

	InsertPromise(ctx context.Context, p *model.Promise) error // model.ErrDuplicate on an existing id
	GetPromise(ctx context.Context, id string) (*model.Promise, error)
	ListPendingPromises(ctx context.Context, officialID string) ([]*model.Promise, error) // "" lists every official
	UpdatePromiseStatus(ctx context.Context, id string, status model.VerificationStatus) error

	InsertAction(ctx context.Context, a *model.Action) error // model.ErrDuplicate on an existing id
	GetAction(ctx context.Context, id string) (*model.Action, error)
	ListActions(ctx context.Context, officialID string) ([]*model.Action, error)

	InsertVerification(ctx context.Context, v *model.Verification) error // model.ErrDuplicate on promise+action
	GetVerification(ctx context.Context, id string) (*model.Verification, error)
	FindVerification(ctx context.Context, promiseID, actionID string) (*model.Verification, error)
	ListVerifications(ctx context.Context, officialID string) ([]*model.Verification, error)
	SetVerificationDisputed(ctx context.Context, id string, disputed bool) error

	ReplaceConsistencyScore(ctx context.Context, s *model.ConsistencyScore) error
	GetConsistencyScore(ctx context.Context, officialID string) (*model.ConsistencyScore, error)

	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error
	CurrentScore(ctx context.Context, officialID string) (float64, error) // model.ErrNotFound without history
	ListHistory(ctx context.Context, officialID string) ([]model.HistoryEntry, error)
	HasHistoryFor(ctx context.Context, verificationID string) (bool, error)

	Close() error
}

// Open returns the store selected by cfg.Driver
func Open(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		return NewMemory(), nil
	case "sqlite3", "sqlite", "":
		return OpenSQL(ctx, "sqlite3", cfg.DSN)
	case "pgx", "postgres", "postgresql":
		return OpenSQL(ctx, "pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unknown driver %q (use sqlite3, pgx or memory)", cfg.Driver)
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("store: %s %s: %w", kind, id, model.ErrNotFound)
}

func duplicate(kind, id string) error {
	return fmt.Errorf("store: %s %s: %w", kind, id, model.ErrDuplicate)
}

// checkChain enforces the previous == latest invariant for a new entry
func checkChain(entry *model.HistoryEntry, latest float64, hasLatest bool) error {
	if !hasLatest {
		return nil
	}
	if entry.PreviousScore != latest {
		return fmt.Errorf("store: official %s: previous score %.2f does not continue latest %.2f: %w",
			entry.OfficialID, entry.PreviousScore, latest, model.ErrChainBroken)
	}
	return nil
}

package engine

import (
	"context"

	"github.com/ppiankov/politikcred/internal/model"
)

// PromiseRepository lists pending promises and records their status
type PromiseRepository interface {
	ListPendingPromises(ctx context.Context, officialID string) ([]*model.Promise, error) // "" lists every official
	UpdatePromiseStatus(ctx context.Context, id string, status model.VerificationStatus) error
}

// ActionRepository lists the recorded actions of one official
type ActionRepository interface {
	ListActions(ctx context.Context, officialID string) ([]*model.Action, error)
}

// VerificationRepository persists verifications. InsertVerification returns
// model.ErrDuplicate when the promise+action pair already exists.
type VerificationRepository interface {
	InsertVerification(ctx context.Context, v *model.Verification) error
	FindVerification(ctx context.Context, promiseID, actionID string) (*model.Verification, error)
	ListVerifications(ctx context.Context, officialID string) ([]*model.Verification, error)
}

// CredibilityRepository is the append-only history store
type CredibilityRepository interface {
	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error
	CurrentScore(ctx context.Context, officialID string) (float64, error)
	HasHistoryFor(ctx context.Context, verificationID string) (bool, error)
}

// ScoreRepository stores the materialized consistency score
type ScoreRepository interface {
	ReplaceConsistencyScore(ctx context.Context, s *model.ConsistencyScore) error
}

// OfficialRepository lists officials for batch scoring
type OfficialRepository interface {
	ListOfficials(ctx context.Context) ([]*model.Official, error)
}

// Repositories groups the collaborators the engine reads and writes
type Repositories struct {
	Promises      PromiseRepository
	Actions       ActionRepository
	Verifications VerificationRepository
	Credibility   CredibilityRepository
	Scores        ScoreRepository
	Officials     OfficialRepository
}

// Backend is satisfied by a single store implementing every repository
type Backend interface {
	PromiseRepository
	ActionRepository
	VerificationRepository
	CredibilityRepository
	ScoreRepository
	OfficialRepository
}

// RepositoriesFrom wires every repository to one backend
func RepositoriesFrom(b Backend) Repositories {
	return Repositories{
		Promises:      b,
		Actions:       b,
		Verifications: b,
		Credibility:   b,
		Scores:        b,
		Officials:     b,
	}
}

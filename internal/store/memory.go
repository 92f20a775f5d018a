package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/politikcred/internal/model"
)

// Memory is an in-process store for tests and dry runs
type Memory struct {
	mu            sync.RWMutex
	officials     map[string]model.Official
	promises      map[string]model.Promise
	actions       map[string]model.Action
	verifications map[string]model.Verification
	pairs         map[string]string // promise|action -> verification id
	scores        map[string]model.ConsistencyScore
	history       map[string][]model.HistoryEntry
}

// NewMemory creates an empty memory store
func NewMemory() *Memory {
	return &Memory{
		officials:     make(map[string]model.Official),
		promises:      make(map[string]model.Promise),
		actions:       make(map[string]model.Action),
		verifications: make(map[string]model.Verification),
		pairs:         make(map[string]string),
		scores:        make(map[string]model.ConsistencyScore),
		history:       make(map[string][]model.HistoryEntry),
	}
}

func pairKey(promiseID, actionID string) string {
	return promiseID + "|" + actionID
}

func (m *Memory) UpsertOfficial(ctx context.Context, o *model.Official) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertOfficial(o)
	return nil
}

func (m *Memory) UpsertOfficials(ctx context.Context, officials []*model.Official) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range officials {
		m.upsertOfficial(o)
	}
	return nil
}

func (m *Memory) upsertOfficial(o *model.Official) {
	stored := *o
	if existing, ok := m.officials[o.ID]; ok {
		// The cached score is owned by the ledger
		stored.CredibilityScore = existing.CredibilityScore
		stored.CreatedAt = existing.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.officials[o.ID] = stored
}

func (m *Memory) GetOfficial(ctx context.Context, id string) (*model.Official, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.officials[id]
	if !ok {
		return nil, notFound("official", id)
	}
	return &o, nil
}

func (m *Memory) ListOfficials(ctx context.Context) ([]*model.Official, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Official, 0, len(m.officials))
	for _, o := range m.officials {
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) InsertPromise(ctx context.Context, p *model.Promise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.promises[p.ID]; ok {
		return duplicate("promise", p.ID)
	}
	m.promises[p.ID] = *p
	return nil
}

func (m *Memory) GetPromise(ctx context.Context, id string) (*model.Promise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.promises[id]
	if !ok {
		return nil, notFound("promise", id)
	}
	return &p, nil
}

func (m *Memory) ListPendingPromises(ctx context.Context, officialID string) ([]*model.Promise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Promise
	for _, p := range m.promises {
		if p.Status != model.StatusPending {
			continue
		}
		if officialID != "" && p.OfficialID != officialID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OfficialID != out[j].OfficialID {
			return out[i].OfficialID < out[j].OfficialID
		}
		if !out[i].StatedAt.Equal(out[j].StatedAt) {
			return out[i].StatedAt.Before(out[j].StatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) UpdatePromiseStatus(ctx context.Context, id string, status model.VerificationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promises[id]
	if !ok {
		return notFound("promise", id)
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	m.promises[id] = p
	return nil
}

func (m *Memory) InsertAction(ctx context.Context, a *model.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.actions[a.ID]; ok {
		return duplicate("action", a.ID)
	}
	m.actions[a.ID] = *a
	return nil
}

func (m *Memory) GetAction(ctx context.Context, id string) (*model.Action, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.actions[id]
	if !ok {
		return nil, notFound("action", id)
	}
	return &a, nil
}

func (m *Memory) ListActions(ctx context.Context, officialID string) ([]*model.Action, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Action
	for _, a := range m.actions {
		if a.OfficialID != officialID {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) InsertVerification(ctx context.Context, v *model.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(v.PromiseID, v.ActionID)
	if _, ok := m.pairs[key]; ok {
		return duplicate("verification for promise", v.PromiseID)
	}
	if _, ok := m.verifications[v.ID]; ok {
		return duplicate("verification", v.ID)
	}
	m.verifications[v.ID] = *v
	m.pairs[key] = v.ID
	return nil
}

func (m *Memory) GetVerification(ctx context.Context, id string) (*model.Verification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.verifications[id]
	if !ok {
		return nil, notFound("verification", id)
	}
	return &v, nil
}

func (m *Memory) FindVerification(ctx context.Context, promiseID, actionID string) (*model.Verification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.pairs[pairKey(promiseID, actionID)]
	if !ok {
		return nil, notFound("verification for promise", promiseID)
	}
	v := m.verifications[id]
	return &v, nil
}

func (m *Memory) ListVerifications(ctx context.Context, officialID string) ([]*model.Verification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Verification
	for _, v := range m.verifications {
		if v.OfficialID != officialID {
			continue
		}
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SetVerificationDisputed(ctx context.Context, id string, disputed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[id]
	if !ok {
		return notFound("verification", id)
	}
	v.Disputed = disputed
	v.UpdatedAt = time.Now().UTC()
	m.verifications[id] = v

	if p, ok := m.promises[v.PromiseID]; ok {
		p.Status = model.StatusVerified
		if disputed {
			p.Status = model.StatusDisputed
		}
		p.UpdatedAt = v.UpdatedAt
		m.promises[p.ID] = p
	}
	return nil
}

func (m *Memory) ReplaceConsistencyScore(ctx context.Context, s *model.ConsistencyScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *s
	stored.Signals = append([]model.Signal(nil), s.Signals...)
	m.scores[s.OfficialID] = stored
	return nil
}

func (m *Memory) GetConsistencyScore(ctx context.Context, officialID string) (*model.ConsistencyScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[officialID]
	if !ok {
		return nil, notFound("consistency score", officialID)
	}
	return &s, nil
}

func (m *Memory) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chain := m.history[entry.OfficialID]
	var latest float64
	if len(chain) > 0 {
		latest = chain[len(chain)-1].NewScore
	}
	if err := checkChain(entry, latest, len(chain) > 0); err != nil {
		return err
	}

	entry.Sequence = len(chain) + 1
	stored := *entry
	stored.Sources = append([]string(nil), entry.Sources...)
	m.history[entry.OfficialID] = append(chain, stored)

	if o, ok := m.officials[entry.OfficialID]; ok {
		o.CredibilityScore = entry.NewScore
		m.officials[o.ID] = o
	}
	return nil
}

func (m *Memory) CurrentScore(ctx context.Context, officialID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.history[officialID]
	if len(chain) == 0 {
		return 0, notFound("credibility history for official", officialID)
	}
	return chain[len(chain)-1].NewScore, nil
}

func (m *Memory) ListHistory(ctx context.Context, officialID string) ([]model.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.HistoryEntry(nil), m.history[officialID]...), nil
}

func (m *Memory) HasHistoryFor(ctx context.Context, verificationID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, chain := range m.history {
		for _, e := range chain {
			if e.VerificationID == verificationID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *Memory) Close() error {
	return nil
}

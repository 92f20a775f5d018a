package model

import (
	"fmt"
	"time"
)

// MatchType is the outcome of comparing promise polarity to action position
type MatchType string

const (
	MatchKept    MatchType = "kept"
	MatchBroken  MatchType = "broken"
	MatchPartial MatchType = "partial"
)

// Valid reports whether m is a known match type
func (m MatchType) Valid() bool {
	return m == MatchKept || m == MatchBroken || m == MatchPartial
}

// Method records how a verification was produced
type Method string

const (
	MethodKeyword   Method = "keyword"
	MethodEmbedding Method = "embedding"
	MethodManual    Method = "manual"
)

// Valid reports whether m is a known method
func (m Method) Valid() bool {
	return m == MethodKeyword || m == MethodEmbedding || m == MethodManual
}

// Verification is the accepted pairing of one promise to one action
type Verification struct {
	ID          string    `json:"id"`
	OfficialID  string    `json:"official_id"`
	PromiseID   string    `json:"promise_id"`
	ActionID    string    `json:"action_id,omitempty"` // Empty until matched
	MatchType   MatchType `json:"match_type"`
	Confidence  float64   `json:"confidence"`
	Method      Method    `json:"method"`
	Explanation string    `json:"explanation"`
	Disputed    bool      `json:"disputed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Bound reports whether the verification references an action
func (v Verification) Bound() bool {
	return v.ActionID != ""
}

// NewVerification pairs a promise with an action. Both must belong to the same official.
func NewVerification(id string, promise *Promise, action *Action, matchType MatchType, confidence float64, method Method, explanation string) (*Verification, error) {
	if promise == nil {
		return nil, fmt.Errorf("verification %s: promise is required", id)
	}
	if action != nil && action.OfficialID != promise.OfficialID {
		return nil, fmt.Errorf("verification %s (promise %s, action %s): %w", id, promise.ID, action.ID, ErrOfficialMismatch)
	}
	if !matchType.Valid() {
		return nil, fmt.Errorf("verification %s: unknown match type %q", id, matchType)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("verification %s: unknown method %q", id, method)
	}
	if err := CheckUnit("match confidence", confidence); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	v := &Verification{
		ID:          id,
		OfficialID:  promise.OfficialID,
		PromiseID:   promise.ID,
		MatchType:   matchType,
		Confidence:  confidence,
		Method:      method,
		Explanation: explanation,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if action != nil {
		v.ActionID = action.ID
	}
	return v, nil
}

package model

import (
	"fmt"
	"time"
)

// ItemError records a failure against one official or promise without aborting a run
type ItemError struct {
	OfficialID string `json:"official_id"`
	PromiseID  string `json:"promise_id,omitempty"`
	Stage      string `json:"stage"` // list, insert, status, ledger, score
	Err        string `json:"error"`
}

func (e ItemError) Error() string {
	if e.PromiseID != "" {
		return fmt.Sprintf("%s: official %s promise %s: %s", e.Stage, e.OfficialID, e.PromiseID, e.Err)
	}
	return fmt.Sprintf("%s: official %s: %s", e.Stage, e.OfficialID, e.Err)
}

// MatchSummary reports a matching run
type MatchSummary struct {
	Officials  int           `json:"officials"`
	Promises   int           `json:"promises"`
	Matched    int           `json:"matched"`    // New verifications written
	Unmatched  int           `json:"unmatched"`  // No action cleared the threshold; stays pending
	Duplicates int           `json:"duplicates"` // Verification already existed
	Fallbacks  int           `json:"fallbacks"`  // Embedding path unavailable, keyword path used
	Failed     int           `json:"failed"`
	Cancelled  int           `json:"cancelled"` // Officials not processed because the run stopped
	Skipped    int           `json:"skipped"`   // Pending promises left untouched because the run stopped
	Errors     []ItemError   `json:"errors,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Merge folds another summary's counts into s
func (s *MatchSummary) Merge(o MatchSummary) {
	s.Officials += o.Officials
	s.Promises += o.Promises
	s.Matched += o.Matched
	s.Unmatched += o.Unmatched
	s.Duplicates += o.Duplicates
	s.Fallbacks += o.Fallbacks
	s.Failed += o.Failed
	s.Cancelled += o.Cancelled
	s.Skipped += o.Skipped
	s.Errors = append(s.Errors, o.Errors...)
}

// ScoreSummary reports a batch score calculation
type ScoreSummary struct {
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Errors   []ItemError   `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

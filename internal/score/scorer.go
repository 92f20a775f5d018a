// Package score aggregates an official's verifications into a consistency
// score. Every component is reported as a signal carrying its formula and
// inputs so the number can be reconstructed by hand.
package score

import (
	"fmt"
	"math"
	"time"

	"github.com/ppiankov/politikcred/internal/model"
)

// Calculator computes consistency scores. It is stateless apart from weights.
type Calculator struct {
	cfg model.ScoringConfig
	now func() time.Time
}

// NewCalculator creates a calculator with the given weights
func NewCalculator(cfg model.ScoringConfig) *Calculator {
	if cfg.ExpectedActions <= 0 {
		cfg.ExpectedActions = 50
	}
	return &Calculator{cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// Overall is (kept*100 + partial*50) / max(kept+broken+partial, 1)
func Overall(kept, broken, partial int) float64 {
	total := kept + broken + partial
	if total < 1 {
		total = 1
	}
	return float64(kept*100+partial*50) / float64(total)
}

// Calculate recomputes the consistency score from scratch. Only verifications
// bound to an action and not under dispute are counted.
func (c *Calculator) Calculate(officialID string, verifications []*model.Verification, actions []*model.Action) model.ConsistencyScore {
	cs := model.ConsistencyScore{
		OfficialID:   officialID,
		CalculatedAt: c.now(),
	}

	var counted, disputed []*model.Verification
	for _, v := range verifications {
		if !v.Bound() || v.OfficialID != officialID {
			continue
		}
		if v.Disputed {
			disputed = append(disputed, v)
			continue
		}
		counted = append(counted, v)
		switch v.MatchType {
		case model.MatchKept:
			cs.Kept++
		case model.MatchBroken:
			cs.Broken++
		case model.MatchPartial:
			cs.Partial++
		}
	}

	var signals []model.Signal

	cs.OverallScore = round2(Overall(cs.Kept, cs.Broken, cs.Partial))
	signals = append(signals, c.recordSignal(cs, len(disputed)))

	var sig model.Signal
	cs.AttendanceRate, sig = c.attendance(actions)
	signals = append(signals, sig)

	cs.LegislativeActivity, sig = c.activity(actions)
	signals = append(signals, sig)

	cs.DataQuality, sig = c.dataQuality(counted)
	signals = append(signals, sig)

	cs.CompositeScore, sig = c.composite(cs)
	signals = append(signals, sig)

	cs.Signals = signals
	return cs
}

func (c *Calculator) recordSignal(cs model.ConsistencyScore, disputed int) model.Signal {
	total := cs.Total()

	severity := model.SeverityInfo
	if total == 0 {
		severity = model.SeverityWarning
	} else if cs.OverallScore < 50 {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalPromiseRecord,
		Severity:    severity,
		Description: fmt.Sprintf("%d kept, %d broken, %d partial of %d matched promises", cs.Kept, cs.Broken, cs.Partial, total),
		Data: map[string]interface{}{
			"kept":     cs.Kept,
			"broken":   cs.Broken,
			"partial":  cs.Partial,
			"disputed": disputed,
			"score":    cs.OverallScore,
			"formula":  "(kept*100 + partial*50) / max(kept+broken+partial, 1)",
		},
	}
}

// attendance is the share of recorded actions where the official was present
func (c *Calculator) attendance(actions []*model.Action) (float64, model.Signal) {
	if len(actions) == 0 {
		return 0, model.Signal{
			Type:        model.SignalAttendance,
			Severity:    model.SeverityWarning,
			Description: "No recorded actions",
			Data:        map[string]interface{}{"actions": 0},
		}
	}

	present := 0
	for _, a := range actions {
		if a.Position != model.PositionAbsent {
			present++
		}
	}
	rate := float64(present) / float64(len(actions))

	severity := model.SeverityInfo
	if rate < 0.5 {
		severity = model.SeverityWarning
	}

	return rate, model.Signal{
		Type:        model.SignalAttendance,
		Severity:    severity,
		Description: fmt.Sprintf("Present for %d of %d recorded votes", present, len(actions)),
		Data: map[string]interface{}{
			"present": present,
			"actions": len(actions),
			"rate":    rate,
			"formula": "actions_not_absent / actions",
		},
	}
}

// activity is the volume of recorded actions relative to the expected volume
func (c *Calculator) activity(actions []*model.Action) (float64, model.Signal) {
	expected := c.cfg.ExpectedActions
	measure := math.Min(float64(len(actions))/float64(expected), 1)

	severity := model.SeverityInfo
	if measure < 0.2 {
		severity = model.SeverityWarning
	}

	return measure, model.Signal{
		Type:        model.SignalActivity,
		Severity:    severity,
		Description: fmt.Sprintf("%d recorded actions (expected %d)", len(actions), expected),
		Data: map[string]interface{}{
			"actions":  len(actions),
			"expected": expected,
			"measure":  measure,
			"formula":  "min(actions / expected_actions, 1)",
		},
	}
}

// dataQuality is the share of counted matches whose confidence clears the
// evidence floor
func (c *Calculator) dataQuality(counted []*model.Verification) (float64, model.Signal) {
	if len(counted) == 0 {
		return 0, model.Signal{
			Type:        model.SignalDataQuality,
			Severity:    model.SeverityWarning,
			Description: "No matched promises to assess",
			Data:        map[string]interface{}{"matches": 0},
		}
	}

	sufficient := 0
	for _, v := range counted {
		if v.Confidence >= c.cfg.EvidenceConfidence {
			sufficient++
		}
	}
	quality := float64(sufficient) / float64(len(counted))

	severity := model.SeverityInfo
	if quality < 0.5 {
		severity = model.SeverityWarning
	}

	return quality, model.Signal{
		Type:        model.SignalDataQuality,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d matches have confidence >= %.2f", sufficient, len(counted), c.cfg.EvidenceConfidence),
		Data: map[string]interface{}{
			"sufficient": sufficient,
			"matches":    len(counted),
			"floor":      c.cfg.EvidenceConfidence,
			"quality":    quality,
			"formula":    "matches_with_confidence_at_or_above_floor / matches",
		},
	}
}

func (c *Calculator) composite(cs model.ConsistencyScore) (float64, model.Signal) {
	w := c.cfg
	value := round2(w.ConsistencyWeight*cs.OverallScore +
		w.AttendanceWeight*cs.AttendanceRate*100 +
		w.ActivityWeight*cs.LegislativeActivity*100)

	return value, model.Signal{
		Type:        model.SignalComposite,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Composite score %.2f", value),
		Data: map[string]interface{}{
			"consistency_weight": w.ConsistencyWeight,
			"attendance_weight":  w.AttendanceWeight,
			"activity_weight":    w.ActivityWeight,
			"score":              value,
			"formula":            "consistency_weight*overall + attendance_weight*attendance*100 + activity_weight*activity*100",
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

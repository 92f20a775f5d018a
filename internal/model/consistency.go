package model

import "time"

// ConsistencyScore is the materialized view over an official's bound verifications.
// It is fully recomputed on every run.
type ConsistencyScore struct {
	OfficialID          string    `json:"official_id"`
	Kept                int       `json:"kept"`
	Broken              int       `json:"broken"`
	Partial             int       `json:"partial"`
	AttendanceRate      float64   `json:"attendance_rate"`      // [0,1]
	LegislativeActivity float64   `json:"legislative_activity"` // [0,1]
	DataQuality         float64   `json:"data_quality"`         // [0,1] share of matches with sufficient evidence
	OverallScore        float64   `json:"overall_score"`        // (kept*100 + partial*50) / max(total, 1)
	CompositeScore      float64   `json:"composite_score"`      // Weighted blend with attendance and activity
	Signals             []Signal  `json:"signals,omitempty"`
	CalculatedAt        time.Time `json:"calculated_at"`
}

// Total returns the number of scored verifications
func (c ConsistencyScore) Total() int {
	return c.Kept + c.Broken + c.Partial
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Formula and inputs
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalPromiseRecord SignalType = "promise_record" // Kept/broken/partial breakdown
	SignalAttendance    SignalType = "attendance"     // Share of votes attended
	SignalActivity      SignalType = "activity"       // Legislative activity volume
	SignalDataQuality   SignalType = "data_quality"   // Evidence sufficiency
	SignalComposite     SignalType = "composite"      // Final blend
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

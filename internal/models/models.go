// Package models holds the value types shared by every stage of readback
// analysis. All of them are created fresh per analysis call and are never
// mutated after they are returned.
package models

import "time"

// Severity ranks how dangerous a finding is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight maps a severity onto 4 (critical) .. 1 (low). Unknown severities weigh 0.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MoreSevere returns whichever of s and other ranks higher
func (s Severity) MoreSevere(other Severity) Severity {
	if other.Weight() > s.Weight() {
		return other
	}
	return s
}

// Valid reports whether s is one of the four known labels
func (s Severity) Valid() bool {
	return s.Weight() > 0
}

// Quality is the overall verdict on a readback
type Quality string

const (
	QualityComplete  Quality = "complete"
	QualityPartial   Quality = "partial"
	QualityMissing   Quality = "missing"
	QualityIncorrect Quality = "incorrect"
)

// Speaker identifies who transmitted an utterance
type Speaker string

const (
	SpeakerATC     Speaker = "ATC"
	SpeakerPilot   Speaker = "PILOT"
	SpeakerUnknown Speaker = "UNKNOWN"
)

// Utterance is one transmission of plain text
type Utterance struct {
	Text     string  `json:"text"`
	Speaker  Speaker `json:"speaker,omitempty"`
	Callsign string  `json:"callsign,omitempty"`
}

// AnalysisResult is the primary output of readback validation.
// IsCorrect is true exactly when Errors is empty.
type AnalysisResult struct {
	IsCorrect        bool            `json:"is_correct"`
	Quality          Quality         `json:"quality"`
	Confidence       float64         `json:"confidence"`
	Errors           []ReadbackError `json:"errors"`
	ExpectedResponse string          `json:"expected_response"`
	ActualResponse   string          `json:"actual_response"`
	Corrections      []string        `json:"corrections"`
	InstructionType  string          `json:"instruction_type"`
}

// HasErrorType reports whether any finding has the given type
func (r *AnalysisResult) HasErrorType(t ErrorType) bool {
	for _, e := range r.Errors {
		if e.Type == t {
			return true
		}
	}
	return false
}

// MostSevere returns the highest severity across all findings, or "" when there are none
func (r *AnalysisResult) MostSevere() Severity {
	var worst Severity
	for _, e := range r.Errors {
		worst = worst.MoreSevere(e.Severity)
	}
	return worst
}

// HistoryEntry is one prior exchange outcome for the same session.
// Type is empty for a correct exchange.
type HistoryEntry struct {
	Type      ErrorType `json:"type"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// Trend describes the direction a session's error severity is moving
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// SequenceState is derived from a session's history
type SequenceState struct {
	ErrorTrend        Trend     `json:"error_trend"`
	ConsecutiveErrors int       `json:"consecutive_errors"`
	Escalating        bool      `json:"escalating"`
	DominantErrorType ErrorType `json:"dominant_error_type,omitempty"`
	WindowSize        int       `json:"window_size"`
}

// SafetyVector is one weighted factor of the safety assessment
type SafetyVector struct {
	Factor             string  `json:"factor"`
	Score              float64 `json:"score"`
	Weight             float64 `json:"weight"`
	Description        string  `json:"description"`
	MitigationRequired bool    `json:"mitigation_required"`
}

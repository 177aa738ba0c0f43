package sqlite

import (
	"time"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/models"
)

// ExchangeRecord is one analysed instruction/readback pair of a session
type ExchangeRecord struct {
	ID              int64              `json:"id"`
	SessionID       string             `json:"session_id"`
	Callsign        string             `json:"callsign,omitempty"`
	Instruction     string             `json:"instruction"`
	Readback        string             `json:"readback"`
	InstructionType string             `json:"instruction_type"`
	Quality         models.Quality     `json:"quality"`
	IsCorrect       bool               `json:"is_correct"`
	ErrorCount      int                `json:"error_count"`
	ErrorType       models.ErrorType   `json:"error_type,omitempty"` // type of the most severe finding
	Severity        models.Severity    `json:"severity"`             // low when correct
	Phase           models.FlightPhase `json:"phase,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
	CreatedAt       time.Time          `json:"created_at"`
}

// HistoryEntry converts the record into the input of the sequence tracker
func (r *ExchangeRecord) HistoryEntry() models.HistoryEntry {
	return models.HistoryEntry{
		Type:      r.ErrorType,
		Severity:  r.Severity,
		Timestamp: r.Timestamp,
	}
}

// NewExchangeRecord flattens an analysis for storage. A correct exchange is
// stored with low severity so it breaks a run of consecutive errors.
func NewExchangeRecord(sessionID string, req analyzer.Request, res analyzer.ExtendedResult, at time.Time) *ExchangeRecord {
	rec := &ExchangeRecord{
		SessionID:       sessionID,
		Callsign:        req.Callsign,
		Instruction:     req.Instruction,
		Readback:        req.Readback,
		InstructionType: res.InstructionType,
		Quality:         res.OverallQuality,
		IsCorrect:       res.Correct(),
		Severity:        models.SeverityLow,
		Phase:           res.Phase,
		Timestamp:       at.UTC(),
	}

	all := res.AllErrors()
	rec.ErrorCount = len(all)
	weight := 0
	for _, e := range all {
		if w := e.Severity.Weight(); w > weight {
			rec.ErrorType, rec.Severity, weight = e.Type, e.Severity, w
		}
	}
	return rec
}

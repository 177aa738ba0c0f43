package evaluation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/readback"
)

// Training labels
const (
	LabelCorrect   = "correct"
	LabelIncorrect = "incorrect"
)

// TrainingRecord is one flattened exchange for an external training pipeline
type TrainingRecord struct {
	Instruction      string             `json:"instruction"`
	CorrectResponse  string             `json:"correct_response"`
	Response         string             `json:"response"`
	Label            string             `json:"label"`
	Phase            models.FlightPhase `json:"phase,omitempty"`
	ErrorType        models.ErrorType   `json:"error_type,omitempty"`
	CriticalElements []string           `json:"critical_elements"`
}

// TrainingRecords flattens analysed exchanges. ErrorType is the type of the
// most severe finding; CriticalElements are the safety-critical components
// of the instruction.
func TrainingRecords(results []Result) []TrainingRecord {
	out := make([]TrainingRecord, 0, len(results))
	for _, res := range results {
		a := res.Analysis
		rec := TrainingRecord{
			Instruction:      res.Exchange.ATC,
			CorrectResponse:  readback.ExpectedReadback(res.Exchange.ATC, res.Exchange.Callsign),
			Response:         res.Exchange.Pilot,
			Label:            LabelCorrect,
			Phase:            res.Phase(),
			CriticalElements: []string{},
		}
		if !a.Correct() {
			rec.Label = LabelIncorrect
			rec.ErrorType = worstType(a.AllErrors())
		}
		if a.Multipart != nil {
			for _, c := range a.Multipart.Components {
				if c.IsCritical {
					rec.CriticalElements = append(rec.CriticalElements, string(c.Type))
				}
			}
		}
		out = append(out, rec)
	}
	return out
}

// worstType returns the type of the first finding with the highest severity
func worstType(errs []models.ReadbackError) models.ErrorType {
	var (
		best   models.ErrorType
		weight int
	)
	for _, e := range errs {
		if w := e.Severity.Weight(); w > weight {
			best, weight = e.Type, w
		}
	}
	return best
}

// WriteJSONL writes one JSON object per line
func WriteJSONL(w io.Writer, records []TrainingRecord) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

// Package safety scores an analysed exchange along five weighted factors and
// derives a single contextual severity from the flight phase.
package safety

import (
	"fmt"
	"math"

	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/multipart"
)

// Factor names
const (
	FactorCriticalAccuracy = "critical_parameter_accuracy"
	FactorCompleteness     = "readback_completeness"
	FactorPhaseCompliance  = "phase_specific_compliance"
	FactorMultipart        = "multipart_handling"
	FactorConfusion        = "parameter_confusion_risk"
)

const (
	accuracyPenalty   = 25
	phasePenalty      = 20
	missingPartsScore = 40
	confusionScore    = 30
)

// Input is everything the scorer looks at for one exchange
type Input struct {
	// Errors are the validator findings, PhaseErrors those of the phase detectors
	Errors      []models.ReadbackError
	PhaseErrors []models.ReadbackError
	Multipart   multipart.Analysis
	Phase       models.FlightPhase
}

// Assessment is the scored outcome
type Assessment struct {
	Vectors            []models.SafetyVector `json:"safety_vectors"`
	Score              float64               `json:"overall_safety_score"`
	ContextualSeverity models.Severity       `json:"contextual_severity"`
}

// MitigationRequired reports whether any factor is below its threshold
func (a Assessment) MitigationRequired() bool {
	for _, v := range a.Vectors {
		if v.MitigationRequired {
			return true
		}
	}
	return false
}

// Assess computes the vectors, their weighted mean and the contextual severity
func Assess(in Input) Assessment {
	vectors := Vectors(in)
	return Assessment{
		Vectors:            vectors,
		Score:              Overall(vectors),
		ContextualSeverity: ContextualSeverity(in.Phase, in.all()),
	}
}

// all returns validator findings followed by phase findings
func (in Input) all() []models.ReadbackError {
	out := make([]models.ReadbackError, 0, len(in.Errors)+len(in.PhaseErrors))
	out = append(out, in.Errors...)
	return append(out, in.PhaseErrors...)
}

// Vectors returns the five factors in fixed order
func Vectors(in Input) []models.SafetyVector {
	all := in.all()

	accuracyHits, confused := 0, false
	for _, e := range all {
		if e.Severity == models.SeverityCritical || e.Type == models.ErrTransposition || e.Type == models.ErrWrongValue {
			accuracyHits++
		}
		if e.Type.IsConfusion() {
			confused = true
		}
	}

	accuracy := floor(100 - float64(accuracyPenalty*accuracyHits))
	completeness := float64(in.Multipart.ReadbackCompleteness)
	compliance := floor(100 - float64(phasePenalty*len(in.PhaseErrors)))

	phaseWeight := 0.2
	if in.Phase.IsSafetyCritical() {
		phaseWeight = 0.3
	}

	multi := completeness
	if in.Multipart.CriticalPartsMissing {
		multi = missingPartsScore
	}

	confusion := 100.0
	if confused {
		confusion = confusionScore
	}

	return []models.SafetyVector{
		vector(FactorCriticalAccuracy, accuracy, 0.3, 75,
			fmt.Sprintf("%d critical, transposed or wrong values", accuracyHits)),
		vector(FactorCompleteness, completeness, 0.2, 80,
			fmt.Sprintf("%d%% of instruction components read back", in.Multipart.ReadbackCompleteness)),
		vector(FactorPhaseCompliance, compliance, phaseWeight, 80,
			fmt.Sprintf("%d %s phase findings", len(in.PhaseErrors), in.Phase)),
		vector(FactorMultipart, multi, 0.15, 60, multipartDescription(in.Multipart)),
		vector(FactorConfusion, confusion, 0.15, 50, confusionDescription(confused)),
	}
}

func vector(factor string, score, weight, threshold float64, description string) models.SafetyVector {
	return models.SafetyVector{
		Factor:             factor,
		Score:              score,
		Weight:             weight,
		Description:        description,
		MitigationRequired: score < threshold,
	}
}

func multipartDescription(a multipart.Analysis) string {
	if a.CriticalPartsMissing {
		return fmt.Sprintf("%d of %d components missing, including critical ones", len(a.Missing()), len(a.Components))
	}
	return fmt.Sprintf("%d of %d components missing", len(a.Missing()), len(a.Components))
}

func confusionDescription(confused bool) string {
	if confused {
		return "parameter or magnitude confusion detected"
	}
	return "no parameter confusion"
}

// Overall is the weight-normalised mean of the vector scores, rounded to one decimal
func Overall(vectors []models.SafetyVector) float64 {
	var sum, weights float64
	for _, v := range vectors {
		sum += v.Score * v.Weight
		weights += v.Weight
	}
	if weights == 0 {
		return 100
	}
	return math.Round(sum/weights*10) / 10
}

func floor(score float64) float64 {
	return math.Max(0, score)
}

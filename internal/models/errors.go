package models

import "fmt"

// ErrorType is the closed set of readback finding kinds
type ErrorType string

const (
	ErrWrongValue             ErrorType = "wrong_value"
	ErrMissingElement         ErrorType = "missing_element"
	ErrIncompleteReadback     ErrorType = "incomplete_readback"
	ErrParameterConfusion     ErrorType = "parameter_confusion"
	ErrTransposition          ErrorType = "transposition"
	ErrHearback               ErrorType = "hearback_error"
	ErrExtraElement           ErrorType = "extra_element"
	ErrConditionOmitted       ErrorType = "condition_omitted"
	ErrConditionViolated      ErrorType = "condition_violated"
	ErrConstraintMissing      ErrorType = "constraint_missing"
	ErrRogerSubstitution      ErrorType = "roger_substitution"
	ErrWrongDirection         ErrorType = "wrong_direction"
	ErrMissingCallsign        ErrorType = "missing_callsign"
	ErrCriticalConfusion      ErrorType = "critical_confusion"
	ErrWrongRunway            ErrorType = "wrong_runway"
	ErrMissingDesignator      ErrorType = "missing_designator"
	ErrNonNativePronunciation ErrorType = "non_native_pronunciation"
	ErrNonNativeGrammar       ErrorType = "non_native_grammar"
	ErrNonNativeWordOrder     ErrorType = "non_native_word_order"
	ErrNonNativeStress        ErrorType = "non_native_stress"
)

// AllErrorTypes lists every ErrorType in declaration order
var AllErrorTypes = []ErrorType{
	ErrWrongValue, ErrMissingElement, ErrIncompleteReadback, ErrParameterConfusion,
	ErrTransposition, ErrHearback, ErrExtraElement, ErrConditionOmitted,
	ErrConditionViolated, ErrConstraintMissing, ErrRogerSubstitution, ErrWrongDirection,
	ErrMissingCallsign, ErrCriticalConfusion, ErrWrongRunway, ErrMissingDesignator,
	ErrNonNativePronunciation, ErrNonNativeGrammar, ErrNonNativeWordOrder, ErrNonNativeStress,
}

// Valid reports whether t belongs to the closed taxonomy
func (t ErrorType) Valid() bool {
	for _, known := range AllErrorTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsMismatch reports whether t means the pilot said something wrong, as
// opposed to leaving something out. Mismatches make a readback incorrect.
func (t ErrorType) IsMismatch() bool {
	switch t {
	case ErrWrongValue, ErrTransposition, ErrParameterConfusion, ErrCriticalConfusion,
		ErrConditionViolated, ErrRogerSubstitution, ErrWrongDirection, ErrWrongRunway,
		ErrHearback, ErrExtraElement:
		return true
	}
	return false
}

// IsConfusion reports whether t is a cross-parameter or magnitude confusion
func (t ErrorType) IsConfusion() bool {
	return t == ErrParameterConfusion || t == ErrCriticalConfusion
}

// Detail is the kind-specific payload of a ReadbackError. The set of
// implementations is closed to this package.
type Detail interface {
	detailKind() string
}

// MagnitudeDetail marks a value read back at 10x or 100x the cleared value
type MagnitudeDetail struct {
	Factor int `json:"factor"`
}

// TranspositionDetail lists the digit positions that differ
type TranspositionDetail struct {
	Positions []int `json:"positions"`
}

// ConditionDetail carries the parsed condition or constraint phrase
type ConditionDetail struct {
	Kind   string `json:"kind"`
	Phrase string `json:"phrase"`
}

// PhaseDetail is attached by the phase-specific detectors
type PhaseDetail struct {
	Phase        FlightPhase `json:"phase"`
	Correction   string      `json:"correction"`
	ICAORef      string      `json:"icao_reference"`
	SafetyImpact string      `json:"safety_impact"`
}

// SimilarityDetail records a phonetic near miss (waypoints, callsigns)
type SimilarityDetail struct {
	Score float64 `json:"score"`
}

func (MagnitudeDetail) detailKind() string     { return "magnitude" }
func (TranspositionDetail) detailKind() string { return "transposition" }
func (ConditionDetail) detailKind() string     { return "condition" }
func (PhaseDetail) detailKind() string         { return "phase" }
func (SimilarityDetail) detailKind() string    { return "similarity" }

// DetailKind names the payload variant, or "" when there is none
func DetailKind(d Detail) string {
	if d == nil {
		return ""
	}
	return d.detailKind()
}

// ReadbackError is one finding. ExpectedValue and ActualValue are empty when
// the value could not be determined, which means "cannot verify" rather than
// "verified absent".
type ReadbackError struct {
	Type          ErrorType `json:"type"`
	Parameter     string    `json:"parameter"`
	ExpectedValue string    `json:"expected_value,omitempty"`
	ActualValue   string    `json:"actual_value,omitempty"`
	Severity      Severity  `json:"severity"`
	Explanation   string    `json:"explanation"`
	ReferenceCode string    `json:"reference_code,omitempty"`
	Detail        Detail    `json:"detail,omitempty"`
}

func (e ReadbackError) String() string {
	return fmt.Sprintf("%s[%s] %s: %s", e.Type, e.Severity, e.Parameter, e.Explanation)
}

// Magnitude returns the magnitude payload if present
func (e ReadbackError) Magnitude() (MagnitudeDetail, bool) {
	d, ok := e.Detail.(MagnitudeDetail)
	return d, ok
}

// Phase returns the phase payload if present
func (e ReadbackError) Phase() (PhaseDetail, bool) {
	d, ok := e.Detail.(PhaseDetail)
	return d, ok
}

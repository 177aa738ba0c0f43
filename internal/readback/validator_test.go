package readback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/readback-check/internal/models"
)

func TestAcknowledgmentOnly(t *testing.T) {
	r := Validate("climb and maintain flight level three five zero", "Roger", "")

	assert.False(t, r.IsCorrect)
	assert.Equal(t, models.QualityMissing, r.Quality)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, models.ErrIncompleteReadback, r.Errors[0].Type)
	assert.Equal(t, models.SeverityHigh, r.Errors[0].Severity)
	assert.Equal(t, "climb and maintain flight level 350", r.ExpectedResponse)
	assert.NotEmpty(t, r.Corrections)
}

func TestTurnDirectionMismatch(t *testing.T) {
	r := Validate("turn right heading two seven zero", "left heading two seven zero, PAL123", "")

	require.Len(t, r.Errors, 1)
	e := r.Errors[0]
	assert.Equal(t, models.ErrWrongValue, e.Type)
	assert.Equal(t, "turn direction", e.Parameter)
	assert.Equal(t, models.SeverityCritical, e.Severity)
	assert.Equal(t, "right", e.ExpectedValue)
	assert.Equal(t, "left", e.ActualValue)
	assert.Equal(t, models.QualityIncorrect, r.Quality)
}

func TestAltimeterTransposition(t *testing.T) {
	r := Validate("altimeter one zero one three", "altimeter one zero three one, PAL456", "")

	require.Len(t, r.Errors, 1)
	e := r.Errors[0]
	assert.Equal(t, models.ErrTransposition, e.Type)
	assert.Equal(t, models.SeverityCritical, e.Severity)
	assert.Equal(t, "1013", e.ExpectedValue)
	assert.Equal(t, "1031", e.ActualValue)
	assert.Equal(t, "transposition", models.DetailKind(e.Detail))
	assert.Equal(t, 0.95, r.Confidence)
}

func TestConditionOmitted(t *testing.T) {
	r := Validate(
		"when passing flight level two five zero descend flight level one eight zero",
		"descend flight level one eight zero, CEB789",
		"",
	)

	require.Len(t, r.Errors, 1)
	e := r.Errors[0]
	assert.Equal(t, models.ErrConditionOmitted, e.Type)
	assert.Equal(t, models.SeverityHigh, e.Severity)
	assert.Equal(t, models.QualityPartial, r.Quality)
	assert.Equal(t, 0.9, r.Confidence)

	cond, ok := e.Detail.(models.ConditionDetail)
	require.True(t, ok)
	assert.Equal(t, "WHEN", cond.Kind)
}

func TestRogerSubstitution(t *testing.T) {
	r := Validate("cleared for takeoff runway two four", "Roger, PAL123", "")

	require.Len(t, r.Errors, 1)
	assert.Equal(t, models.ErrRogerSubstitution, r.Errors[0].Type)
	assert.Equal(t, models.SeverityCritical, r.Errors[0].Severity)
	assert.Equal(t, models.QualityIncorrect, r.Quality)
}

func TestMagnitudeError(t *testing.T) {
	r := Validate("descend to one thousand five hundred feet", "descend to fifteen thousand feet", "")

	require.Len(t, r.Errors, 1)
	e := r.Errors[0]
	assert.Equal(t, models.ErrCriticalConfusion, e.Type)
	assert.NotEqual(t, models.ErrWrongValue, e.Type)
	assert.NotEqual(t, models.ErrTransposition, e.Type)
	assert.Equal(t, models.SeverityCritical, e.Severity)
	assert.Contains(t, e.Explanation, "10x")

	m, ok := e.Magnitude()
	require.True(t, ok)
	assert.Equal(t, 10, m.Factor)
}

func TestParameterConfusion(t *testing.T) {
	r := Validate("turn right heading two seven zero", "climb two seven zero", "")

	require.Len(t, r.Errors, 1)
	assert.Equal(t, models.ErrParameterConfusion, r.Errors[0].Type)
	assert.Equal(t, models.SeverityCritical, r.Errors[0].Severity)
	assert.Equal(t, models.QualityIncorrect, r.Quality)
}

func TestConditionViolated(t *testing.T) {
	r := Validate(
		"when passing flight level two five zero descend flight level one eight zero",
		"when passing two five zero, descending now flight level one eight zero",
		"",
	)

	require.Len(t, r.Errors, 1)
	assert.Equal(t, models.ErrConditionViolated, r.Errors[0].Type)
	assert.Equal(t, models.SeverityCritical, r.Errors[0].Severity)
}

func TestConstraintMissing(t *testing.T) {
	r := Validate(
		"descend and maintain four thousand, cross LUBAN at or above six thousand",
		"descend and maintain four thousand",
		"",
	)

	assert.True(t, r.HasErrorType(models.ErrConstraintMissing))
	assert.False(t, r.HasErrorType(models.ErrWrongValue))
	assert.Equal(t, models.QualityPartial, r.Quality)
}

func TestConstraintQualifierDropped(t *testing.T) {
	r := Validate(
		"descend and maintain four thousand, cross LUBAN at or above six thousand",
		"descend four thousand, cross LUBAN at six thousand",
		"",
	)

	assert.False(t, r.IsCorrect)
	require.True(t, r.HasErrorType(models.ErrConstraintMissing))
	assert.NotEqual(t, models.QualityComplete, r.Quality)

	r = Validate(
		"descend and maintain four thousand, cross LUBAN at or below six thousand",
		"descend four thousand, cross LUBAN at or below six thousand",
		"",
	)
	assert.False(t, r.HasErrorType(models.ErrConstraintMissing))
}

func TestRunwayFindings(t *testing.T) {
	r := Validate("cleared to land runway two four left", "cleared to land runway two four, PAL123", "")
	require.Len(t, r.Errors, 1)
	assert.Equal(t, models.ErrMissingDesignator, r.Errors[0].Type)

	r = Validate("cleared to land runway two four left", "cleared to land runway two six left, PAL123", "")
	require.Len(t, r.Errors, 1)
	assert.Equal(t, models.ErrWrongRunway, r.Errors[0].Type)
	assert.Equal(t, models.SeverityCritical, r.Errors[0].Severity)
}

func TestMultipartOmission(t *testing.T) {
	r := Validate(
		"climb and maintain flight level three five zero, turn right heading two seven zero, squawk four five two one",
		"climb flight level three five zero, right heading two seven zero",
		"",
	)

	require.Len(t, r.Errors, 1)
	e := r.Errors[0]
	assert.Equal(t, models.ErrMissingElement, e.Type)
	assert.Equal(t, "squawk", e.Parameter)
	assert.Equal(t, models.SeverityHigh, e.Severity)
	assert.Equal(t, models.QualityPartial, r.Quality)
}

func TestCallsign(t *testing.T) {
	instruction := "climb and maintain flight level three five zero"

	r := Validate(instruction, "climb and maintain flight level three five zero", "PAL123")
	require.Len(t, r.Errors, 1)
	assert.Equal(t, models.ErrMissingCallsign, r.Errors[0].Type)
	assert.Equal(t, models.SeverityLow, r.Errors[0].Severity)

	r = Validate(instruction, "climb and maintain flight level three five zero, PAL one two three", "PAL123")
	assert.True(t, r.IsCorrect)
	assert.Equal(t, "climb and maintain flight level 350, PAL123", r.ExpectedResponse)
}

func TestEmptyAndUnknownInstructions(t *testing.T) {
	r := Validate("", "roger", "")
	assert.Equal(t, "unknown", r.InstructionType)
	assert.LessOrEqual(t, r.Confidence, 0.5)
	assert.True(t, r.IsCorrect)
	assert.Empty(t, r.Errors)

	r = Validate("good morning", "good morning", "")
	assert.Equal(t, "unknown", r.InstructionType)
	assert.LessOrEqual(t, r.Confidence, 0.5)
}

var instructions = []string{
	"climb and maintain flight level three five zero",
	"turn right heading two seven zero",
	"altimeter one zero one three",
	"when passing flight level two five zero descend flight level one eight zero",
	"cleared for takeoff runway two four",
	"PAL123 cleared to land runway two four left",
	"contact departure one two four decimal seven",
	"squawk seven seven zero zero",
	"reduce speed two one zero knots",
	"cleared ILS approach runway two four left",
	"descend and maintain four thousand, cross LUBAN at or above six thousand",
	"hold short runway two four",
	"proceed direct BOREG",
	"go around, climb and maintain three thousand feet, fly runway heading",
	"maintain three thousand until established on the localizer",
	"contact tower",
	"CEB789 good morning, descend to one thousand five hundred feet",
}

func TestExpectedReadbackIsAccepted(t *testing.T) {
	for _, instruction := range instructions {
		t.Run(instruction, func(t *testing.T) {
			expected := ExpectedReadback(instruction, "")
			r := Validate(instruction, expected, "")
			assert.True(t, r.IsCorrect, "expected readback %q: %v", expected, r.Errors)
			assert.Empty(t, r.Errors)
			assert.Equal(t, models.QualityComplete, r.Quality)
		})
	}
}

func TestResultConsistency(t *testing.T) {
	readbacks := []string{"", "roger", "wilco PAL123", "climb flight level three five zero", "left heading two seven zero", "one zero three one"}
	for _, instruction := range instructions {
		for _, rb := range readbacks {
			r := Validate(instruction, rb, "")
			assert.Equal(t, len(r.Errors) == 0, r.IsCorrect, "%q / %q", instruction, rb)
			if r.Quality == models.QualityComplete {
				assert.True(t, r.IsCorrect)
			}
			assert.GreaterOrEqual(t, r.Confidence, 0.0)
			assert.LessOrEqual(t, r.Confidence, 1.0)
			for _, e := range r.Errors {
				assert.True(t, e.Type.Valid(), "%s", e.Type)
				assert.True(t, e.Severity.Valid(), "%s", e.Severity)
			}
		}
	}
}

func TestExpectedReadback(t *testing.T) {
	assert.Equal(t,
		"climb and maintain flight level 350, PAL123",
		ExpectedReadback("PAL123 good morning, climb and maintain flight level three five zero", ""))
	assert.Equal(t, "squawk 7700, N123AB", ExpectedReadback("squawk seven seven zero zero", "n123ab"))
	assert.Equal(t, "", ExpectedReadback("", ""))
}

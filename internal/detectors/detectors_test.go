package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/readback-check/internal/models"
)

func detect(d Detector, phase models.FlightPhase, instruction, readback string) []models.ReadbackError {
	return d.Detect(Exchange{Instruction: instruction, Readback: readback, Phase: phase})
}

func only(t *testing.T, errs []models.ReadbackError) models.ReadbackError {
	t.Helper()
	require.Len(t, errs, 1, "%v", errs)
	return errs[0]
}

func TestGates(t *testing.T) {
	dep, app := Departure(), Approach()

	assert.True(t, dep.Applies(models.PhaseTakeoff))
	assert.True(t, dep.Applies(models.PhaseClimb))
	assert.False(t, dep.Applies(models.PhaseCruise))
	assert.False(t, dep.Applies(models.PhaseApproach))

	assert.True(t, app.Applies(models.PhaseFinalApproach))
	assert.True(t, app.Applies(models.PhaseGoAround))
	assert.False(t, app.Applies(models.PhaseTaxi))

	x := Exchange{
		Instruction: "cleared ILS approach runway two four",
		Readback:    "cleared RNAV approach runway two four",
		Phase:       models.PhaseCruise,
	}
	assert.Empty(t, Run(All(), x))

	x.Phase = models.PhaseApproach
	assert.Len(t, Run(All(), x), 1)
}

func TestRuleNames(t *testing.T) {
	assert.Len(t, Rules(Departure()), 8)
	assert.Len(t, Rules(Approach()), 7)
	assert.Contains(t, Rules(Approach()), "qnh_not_confirmed")
}

func TestDepartureRules(t *testing.T) {
	d := Departure()

	tests := []struct {
		name        string
		instruction string
		readback    string
		kind        models.ErrorType
		parameter   string
		severity    models.Severity
	}{
		{
			name:        "sid omission",
			instruction: "cleared to Manila via BOREG one alpha departure, climb flight level one two zero",
			readback:    "cleared to Manila, climb flight level one two zero",
			kind:        models.ErrMissingElement,
			parameter:   "departure route",
			severity:    models.SeverityHigh,
		},
		{
			name:        "runway heading omission",
			instruction: "fly runway heading",
			readback:    "wilco",
			kind:        models.ErrMissingElement,
			parameter:   "runway heading",
			severity:    models.SeverityHigh,
		},
		{
			name:        "expedite not acknowledged",
			instruction: "expedite climb flight level two four zero",
			readback:    "climb flight level two four zero",
			kind:        models.ErrMissingElement,
			parameter:   "expedite",
			severity:    models.SeverityMedium,
		},
		{
			name:        "conditional line up",
			instruction: "behind the landing A320 line up and wait runway two four behind",
			readback:    "line up and wait runway two four",
			kind:        models.ErrConditionOmitted,
			parameter:   "condition",
			severity:    models.SeverityHigh,
		},
		{
			name:        "noise abatement",
			instruction: "cleared for takeoff runway two four, noise abatement procedure alpha",
			readback:    "cleared for takeoff runway two four",
			kind:        models.ErrMissingElement,
			parameter:   "noise abatement",
			severity:    models.SeverityLow,
		},
		{
			name:        "handoff frequency",
			instruction: "contact departure one two four decimal seven",
			readback:    "departure one two four decimal five",
			kind:        models.ErrWrongValue,
			parameter:   "frequency",
			severity:    models.SeverityHigh,
		},
		{
			name:        "direct to",
			instruction: "proceed direct BOREG",
			readback:    "proceeding",
			kind:        models.ErrMissingElement,
			parameter:   "waypoint",
			severity:    models.SeverityMedium,
		},
		{
			name:        "continue climb",
			instruction: "continue climb flight level two four zero",
			readback:    "climb flight level two two zero",
			kind:        models.ErrWrongValue,
			parameter:   "altitude",
			severity:    models.SeverityCritical,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := only(t, detect(d, models.PhaseDeparture, tt.instruction, tt.readback))
			assert.Equal(t, tt.kind, e.Type)
			assert.Equal(t, tt.parameter, e.Parameter)
			assert.Equal(t, tt.severity, e.Severity)

			pd, ok := e.Phase()
			require.True(t, ok)
			assert.Equal(t, models.PhaseDeparture, pd.Phase)
			assert.NotEmpty(t, pd.Correction)
			assert.NotEmpty(t, pd.SafetyImpact)
			assert.Contains(t, pd.ICAORef, "ICAO")
			assert.Equal(t, pd.ICAORef, e.ReferenceCode)
		})
	}
}

func TestApproachRules(t *testing.T) {
	a := Approach()

	e := only(t, detect(a, models.PhaseApproach,
		"cleared ILS approach runway two four left",
		"cleared RNAV approach runway two four left"))
	assert.Equal(t, models.ErrWrongValue, e.Type)
	assert.Equal(t, "ILS", e.ExpectedValue)
	assert.Equal(t, "RNAV", e.ActualValue)
	assert.Equal(t, models.SeverityCritical, e.Severity)

	e = only(t, detect(a, models.PhaseArrival,
		"cross LUBAN at or above six thousand",
		"cross LUBAN"))
	assert.Equal(t, models.ErrConstraintMissing, e.Type)

	e = only(t, detect(a, models.PhaseApproach,
		"cleared ILS approach runway two four, cross LUBAN at or above five thousand",
		"cleared ILS approach runway two four, cross LUBAN at five thousand"))
	assert.Equal(t, models.ErrConstraintMissing, e.Type)
	assert.Equal(t, "crossing restriction", e.Parameter)
	assert.Contains(t, e.ExpectedValue, "or above")

	e = only(t, detect(a, models.PhaseApproach,
		"descend altitude three thousand, QNH one zero one three",
		"descend altitude three thousand"))
	assert.Equal(t, "altimeter", e.Parameter)
	assert.Equal(t, models.SeverityCritical, e.Severity)

	e = only(t, detect(a, models.PhaseApproach,
		"cleared visual approach runway two four, traffic is a Cessna on two mile final",
		"cleared visual approach runway two four"))
	assert.Equal(t, "traffic in sight", e.Parameter)
}

func TestGoAroundSubChecks(t *testing.T) {
	a := Approach()
	instruction := "go around, climb and maintain three thousand feet, fly heading two seven zero"

	assert.Empty(t, detect(a, models.PhaseGoAround, instruction,
		"going around, climb and maintain three thousand feet, heading two seven zero"))

	errs := detect(a, models.PhaseGoAround, instruction, "roger")
	require.Len(t, errs, 3)
	assert.Equal(t, "go around", errs[0].Parameter)
	assert.Equal(t, "altitude", errs[1].Parameter)
	assert.Equal(t, "heading", errs[2].Parameter)
	assert.Equal(t, models.SeverityHigh, errs[2].Severity)

	e := only(t, detect(a, models.PhaseGoAround,
		"go around, fly runway heading",
		"going around"))
	assert.Equal(t, "runway heading", e.ExpectedValue)
}

func TestCorrectReadbacksPass(t *testing.T) {
	exchanges := []struct {
		phase models.FlightPhase
		text  string
	}{
		{models.PhaseDeparture, "cleared to Manila via BOREG one alpha departure, climb flight level one two zero"},
		{models.PhaseTakeoff, "cleared for takeoff runway two four, fly runway heading"},
		{models.PhaseClimb, "expedite climb flight level two four zero"},
		{models.PhaseDeparture, "contact departure one two four decimal seven"},
		{models.PhaseClimb, "proceed direct BOREG"},
		{models.PhaseApproach, "cleared ILS approach runway two four left"},
		{models.PhaseArrival, "cross LUBAN at or above six thousand"},
		{models.PhaseApproach, "QNH one zero one three"},
	}
	for _, x := range exchanges {
		assert.Empty(t, Run(All(), Exchange{Instruction: x.text, Readback: x.text, Phase: x.phase}), x.text)
	}
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityOrdering(t *testing.T) {
	assert.Equal(t, 4, SeverityCritical.Weight())
	assert.Equal(t, 1, SeverityLow.Weight())
	assert.Equal(t, 0, Severity("bogus").Weight())

	assert.Equal(t, SeverityCritical, SeverityHigh.MoreSevere(SeverityCritical))
	assert.Equal(t, SeverityHigh, SeverityHigh.MoreSevere(SeverityLow))
	assert.Equal(t, SeverityMedium, Severity("").MoreSevere(SeverityMedium))
}

func TestErrorTypeTaxonomy(t *testing.T) {
	assert.Len(t, AllErrorTypes, 20)
	for _, et := range AllErrorTypes {
		assert.True(t, et.Valid(), "%s should be valid", et)
	}
	assert.False(t, ErrorType("made_up").Valid())

	assert.True(t, ErrTransposition.IsMismatch())
	assert.True(t, ErrRogerSubstitution.IsMismatch())
	assert.False(t, ErrMissingElement.IsMismatch())
	assert.False(t, ErrConditionOmitted.IsMismatch())
}

func TestResultHelpers(t *testing.T) {
	r := AnalysisResult{Errors: []ReadbackError{
		{Type: ErrMissingElement, Severity: SeverityMedium},
		{Type: ErrTransposition, Severity: SeverityCritical, Detail: TranspositionDetail{Positions: []int{2, 3}}},
	}}
	assert.True(t, r.HasErrorType(ErrTransposition))
	assert.False(t, r.HasErrorType(ErrWrongValue))
	assert.Equal(t, SeverityCritical, r.MostSevere())
	assert.Equal(t, "transposition", DetailKind(r.Errors[1].Detail))
	assert.Equal(t, "", DetailKind(r.Errors[0].Detail))

	_, ok := r.Errors[1].Magnitude()
	assert.False(t, ok)
}

func TestPhaseGroups(t *testing.T) {
	assert.Len(t, AllPhases, 15)
	assert.Equal(t, 0, PhaseGround.Index())
	assert.Equal(t, 14, PhaseRollout.Index())
	assert.Equal(t, -1, FlightPhase("hover").Index())

	assert.True(t, PhaseTakeoff.IsDeparture())
	assert.False(t, PhaseCruise.IsDeparture())
	assert.True(t, PhaseFinalApproach.IsApproach())
	assert.False(t, PhaseCruise.IsApproach())
	assert.Equal(t, CoarseEnroute, PhaseCruise.Coarse())
	assert.Equal(t, CoarseLanding, PhaseLanding.Coarse())
}

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		instruction string
		want        InstructionType
	}{
		{"climb and maintain flight level three five zero", TypeAltitude},
		{"turn right heading two seven zero", TypeHeading},
		{"altimeter one zero one three", TypeAltimeter},
		{"when passing flight level two five zero descend flight level one eight zero", TypeAltitude},
		{"cleared for takeoff runway two four", TypeTakeoffClearance},
		{"PAL123 cleared to land runway two four left", TypeLandingClearance},
		{"line up and wait runway 24", TypeLineUpAndWait},
		{"go around, climb and maintain three thousand", TypeGoAround},
		{"hold short runway two four", TypeHoldShort},
		{"cleared ILS approach runway two four left", TypeApproachClearance},
		{"squawk seven seven zero zero", TypeSquawk},
		{"reduce speed two one zero knots", TypeSpeed},
		{"contact departure one two four decimal seven", TypeFrequencyChange},
		{"proceed direct BOREG", TypeDirectTo},
		{"taxi to holding point runway 24 via alpha", TypeTaxi},
		{"traffic two o'clock five miles opposite direction", TypeInformation},
		{"descend and maintain 3000 feet, reduce speed 180 knots", TypeAltitude},
		{"good morning", TypeUnknown},
		{"", TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.instruction, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.instruction))
		})
	}
}

func TestRulesAreOrderedByPriority(t *testing.T) {
	rs := Rules()
	require.NotEmpty(t, rs)
	for i := 1; i < len(rs); i++ {
		assert.GreaterOrEqual(t, rs[i-1].Priority, rs[i].Priority, "%s before %s", rs[i-1].Type, rs[i].Type)
	}
	assert.Equal(t, TypeTakeoffClearance, rs[0].Type)

	// Callers get a copy
	rs[0].Priority = -1
	assert.Equal(t, 100, Rules()[0].Priority)
}

func TestRuleFlags(t *testing.T) {
	assert.True(t, IsClearance(TypeTakeoffClearance))
	assert.True(t, IsClearance(TypeHoldShort))
	assert.False(t, IsClearance(TypeAltitude))
	assert.False(t, IsClearance(TypeUnknown))

	assert.True(t, IsInformational(TypeInformation))
	assert.False(t, IsInformational(TypeSquawk))

	r, ok := RuleFor(TypeAltimeter)
	require.True(t, ok)
	assert.Equal(t, []Element{ElementAltimeter}, r.RequiredElements)

	_, ok = RuleFor(TypeUnknown)
	assert.False(t, ok)
}

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		param   Parameter
		text    string
		primary bool
		want    string
		ok      bool
	}{
		{"feet", ParamAltitude, "descend to one thousand five hundred feet", false, "1500", true},
		{"flight level", ParamAltitude, "climb flight level three five zero", false, "FL350", true},
		{"contextual altitude", ParamAltitude, "descend and maintain three thousand", false, "3000", true},
		{"speed is not altitude", ParamAltitude, "maintain two five zero knots", false, "", false},
		{"positional only when primary", ParamAltitude, "three five zero", false, "", false},
		{"positional altitude", ParamAltitude, "three five zero", true, "350", true},
		{"heading", ParamHeading, "left heading two seven zero, PAL123", false, "270", true},
		{"heading padded", ParamHeading, "turn left ninety", false, "090", true},
		{"speed", ParamSpeed, "reduce speed two one zero knots", false, "210", true},
		{"squawk", ParamSquawk, "squawk seven seven zero zero", false, "7700", true},
		{"frequency", ParamFrequency, "contact departure one two four decimal seven", false, "124.7", true},
		{"altimeter hpa", ParamAltimeter, "altimeter one zero one three", false, "1013", true},
		{"altimeter inches", ParamAltimeter, "altimeter two niner decimal niner two", false, "2992", true},
		{"runway designator", ParamRunway, "cleared for takeoff runway two four left", false, "24L", true},
		{"runway written", ParamRunway, "runway 06r", false, "06R", true},
		{"approach", ParamApproach, "cleared ILS approach runway two four", false, "ILS", true},
		{"localizer", ParamApproach, "cleared localizer runway two four", false, "LOC", true},
		{"waypoint", ParamWaypoint, "proceed direct BOREG", false, "BOREG", true},
		{"nothing", ParamAltitude, "roger", true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.param, tt.text, tt.primary)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractDirection(t *testing.T) {
	dir, ok := ExtractDirection("turn right heading two seven zero")
	assert.True(t, ok)
	assert.Equal(t, "right", dir)

	dir, ok = ExtractDirection("left heading two seven zero, PAL123")
	assert.True(t, ok)
	assert.Equal(t, "left", dir)

	_, ok = ExtractDirection("cleared to land runway two four left")
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name             string
		param            Parameter
		expected, actual string
		kind             MatchKind
	}{
		{"flight level without keyword", ParamAltitude, "FL350", "350", MatchEqual},
		{"flight level in feet", ParamAltitude, "FL350", "35000", MatchEqual},
		{"altitude magnitude", ParamAltitude, "1500", "15000", MatchMagnitude},
		{"altitude transposition", ParamAltitude, "FL350", "FL530", MatchTransposition},
		{"altitude wrong", ParamAltitude, "FL180", "FL190", MatchDifferent},
		{"altimeter transposition", ParamAltimeter, "1013", "1031", MatchTransposition},
		{"frequency trailing zero", ParamFrequency, "124.7", "124.70", MatchEqual},
		{"frequency without decimal", ParamFrequency, "124.7", "1247", MatchEqual},
		{"runway designator missing", ParamRunway, "24L", "24", MatchDesignatorMissing},
		{"runway designator wrong", ParamRunway, "24L", "24R", MatchDifferent},
		{"runway transposition", ParamRunway, "24", "42", MatchTransposition},
		{"waypoint near miss", ParamWaypoint, "BOREG", "BOREK", MatchEqual},
		{"waypoint different", ParamWaypoint, "BOREG", "SANTO", MatchDifferent},
		{"heading", ParamHeading, "270", "090", MatchDifferent},
		{"approach", ParamApproach, "ILS", "RNAV", MatchDifferent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Compare(tt.param, tt.expected, tt.actual).Kind)
		})
	}

	c := Compare(ParamAltitude, "1500", "15000")
	assert.Equal(t, 10, c.Factor)
	c = Compare(ParamAltitude, "1500", "150000")
	assert.Equal(t, 100, c.Factor)
	assert.Equal(t, []int{2, 3}, Compare(ParamAltimeter, "1013", "1031").Positions)
}

func TestPresent(t *testing.T) {
	assert.True(t, Present(ParamAltitude, "FL350", "three five zero, PAL123"))
	assert.True(t, Present(ParamFrequency, "124.7", "one two four seven"))
	assert.True(t, Present(ParamRunway, "24L", "two four left"))
	assert.True(t, Present(ParamWaypoint, "BOREG", "direct borek"))
	assert.True(t, Present(ParamApproach, "LOC", "localizer two four"))
	assert.False(t, Present(ParamSquawk, "4521", "squawk four five two two"))
	assert.False(t, Present(ParamAltitude, "", "anything"))
}

func TestMentions(t *testing.T) {
	assert.True(t, Mentions(ParamAltitude, "descend flight level one eight zero"))
	assert.False(t, Mentions(ParamHeading, "descend flight level one eight zero"))
	assert.True(t, Mentions(ParamHeading, "turn left two seven zero"))
}

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCallsign(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		callsign string
		want     string
	}{
		{"written flight number", "Roger, PAL123", "", "roger"},
		{"spoken callsign", "descend flight level one eight zero, PAL one two three", "PAL123", "descend flight level 180"},
		{"leading callsign", "PAL123 climb flight level three five zero", "PAL123", "climb flight level 350"},
		{"registration", "squawk seven seven zero zero, N123AB", "N123AB", "squawk 7700"},
		{"nothing to strip", "altimeter one zero one three", "", "altimeter 1013"},
		{"flight level is not a callsign", "FL350", "", "flight level 350"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCallsign(tt.text, tt.callsign))
		})
	}
}

func TestCallsignPatterns(t *testing.T) {
	assert.True(t, IsFlightNumber("PAL123"))
	assert.True(t, IsFlightNumber("ceb789a"))
	assert.False(t, IsFlightNumber("fl350"))
	assert.False(t, IsFlightNumber("runway"))

	assert.True(t, IsTailNumber("N123AB"))
	assert.True(t, IsTailNumber("C-FKWZ"))
	assert.False(t, IsTailNumber("boreg"))
	assert.False(t, IsTailNumber("FL350"))
}

func TestContainsCallsign(t *testing.T) {
	assert.True(t, ContainsCallsign("wilco, PAL123", "PAL123"))
	assert.True(t, ContainsCallsign("wilco, pal one two three", "PAL123"))
	assert.False(t, ContainsCallsign("wilco", "PAL123"))
	assert.False(t, ContainsCallsign("wilco, PAL123", ""))
}

func TestExtractCallsign(t *testing.T) {
	assert.Equal(t, "PAL123", ExtractCallsign("PAL123, climb flight level three five zero"))
	assert.Equal(t, "N123AB", ExtractCallsign("squawk 7700 N123AB"))
	assert.Equal(t, "", ExtractCallsign("proceed direct BOREG"))
}

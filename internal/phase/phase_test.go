package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yegors/readback-check/internal/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		instruction string
		readback    string
		want        models.FlightPhase
	}{
		{"takeoff", "cleared for takeoff runway two four", "cleared for takeoff runway two four, PAL123", models.PhaseTakeoff},
		{"landing", "cleared to land runway two four", "cleared to land two four", models.PhaseLanding},
		{"go around", "go around, climb and maintain three thousand feet", "going around, three thousand", models.PhaseGoAround},
		{"approach", "cleared ILS approach runway two four", "cleared ILS two four", models.PhaseApproach},
		{"departure", "contact departure one two four decimal seven", "one two four decimal seven", models.PhaseDeparture},
		{"descent", "descend flight level one eight zero", "descend one eight zero", models.PhaseDescent},
		{"climb", "climb and maintain flight level three five zero", "climb flight level three five zero", models.PhaseClimb},
		{"taxi", "taxi to holding point runway two four via alpha", "taxi holding point two four", models.PhaseTaxi},
		{"line up", "line up and wait runway two four", "line up and wait", models.PhaseLineUp},
		{"rollout", "vacate left via bravo, contact ground", "vacate left", models.PhaseRollout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.instruction, tt.readback)
			assert.Equal(t, tt.want, got.Phase)
			assert.Greater(t, got.Confidence, 0.0)
		})
	}
}

func TestDetectDefaultsToCruise(t *testing.T) {
	got := Detect("squawk four five two one", "squawk four five two one")
	assert.Equal(t, models.PhaseCruise, got.Phase)
	assert.Equal(t, 0.0, got.Confidence)

	got = Detect("", "")
	assert.Equal(t, models.PhaseCruise, got.Phase)
	assert.Equal(t, 0, got.Score)
}

func TestConfidence(t *testing.T) {
	got := Detect("cleared ILS approach runway two four", "")
	assert.Equal(t, 1.0, got.Confidence)

	got = Detect("contact departure one two four decimal seven", "")
	assert.Equal(t, 14, got.Score)
	assert.Equal(t, 0.7, got.Confidence)

	exchanges := [][2]string{
		{"go around, go around, missed approach, climb runway heading", "going around"},
		{"cleared for takeoff runway two four, wind two seven zero one zero knots", "cleared for takeoff"},
		{"roger", "roger"},
	}
	for _, e := range exchanges {
		c := Detect(e[0], e[1]).Confidence
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestScores(t *testing.T) {
	scores := Scores("cleared to land runway two four", "")
	assert.Equal(t, 17, scores[models.PhaseLanding])
	assert.Equal(t, 2, scores[models.PhaseTakeoff])
	assert.Len(t, scores, len(signatures))
}

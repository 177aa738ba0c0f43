package analyzer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/pkg/logger"
)

func newAnalyzer(t *testing.T, cacheSize int) *Analyzer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CacheSize = cacheSize
	a, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	return a
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	m, err = ParseMode("Departure")
	require.NoError(t, err)
	assert.Equal(t, ModeDeparture, m)

	_, err = ParseMode("cruise")
	assert.Error(t, err)

	_, err = New(Config{DefaultMode: "cruise"}, nil)
	assert.Error(t, err)
}

func TestBasicModeHasNoExtensions(t *testing.T) {
	a := newAnalyzer(t, 0)
	r := a.Analyze(Request{
		Instruction: "climb and maintain flight level three five zero",
		Readback:    "Roger",
		Mode:        ModeBasic,
	})

	assert.Equal(t, models.QualityMissing, r.Quality)
	assert.Empty(t, r.Phase)
	assert.Nil(t, r.Multipart)
	assert.Nil(t, r.Safety)
	assert.Nil(t, r.Sequence)
}

func TestAutoModeRunsApproachDetector(t *testing.T) {
	a := newAnalyzer(t, 0)
	r := a.Analyze(Request{
		Instruction: "PAL123 cleared ILS approach runway two four left",
		Readback:    "cleared RNAV approach runway two four left, PAL123",
		Callsign:    "PAL123",
	})

	assert.Equal(t, ModeAuto, r.Mode)
	assert.True(t, r.Phase.IsApproach(), "phase %s", r.Phase)
	assert.False(t, r.Correct())

	var all []models.ErrorType
	for _, e := range r.AllErrors() {
		all = append(all, e.Type)
	}
	assert.Contains(t, all, models.ErrWrongValue)
	require.NotNil(t, r.Safety)
	assert.Len(t, r.Safety.Vectors, 5)
	assert.Equal(t, models.SeverityCritical, r.Safety.ContextualSeverity)
}

func TestForcedDepartureMode(t *testing.T) {
	a := newAnalyzer(t, 0)
	r := a.Analyze(Request{
		Instruction: "fly runway heading, climb and maintain five thousand feet",
		Readback:    "climb and maintain five thousand feet",
		Mode:        ModeDeparture,
	})

	require.NotNil(t, r.Multipart)
	assert.True(t, r.Phase.IsDeparture())
	assert.False(t, r.Correct())

	var params []string
	for _, e := range r.AllErrors() {
		params = append(params, e.Parameter)
	}
	assert.Contains(t, params, "runway heading")
}

func TestOverallVerdictCountsPhaseFindings(t *testing.T) {
	missed := models.ReadbackError{Type: models.ErrMissingElement, Parameter: "runway heading", Severity: models.SeverityHigh}
	wrong := models.ReadbackError{Type: models.ErrWrongValue, Parameter: "approach type", Severity: models.SeverityHigh}

	r := ExtendedResult{AnalysisResult: models.AnalysisResult{IsCorrect: true, Quality: models.QualityComplete}}
	r.settle()
	assert.True(t, r.OverallCorrect)
	assert.Equal(t, models.QualityComplete, r.OverallQuality)

	r.PhaseErrors = []models.ReadbackError{missed}
	r.settle()
	assert.False(t, r.OverallCorrect)
	assert.Equal(t, models.QualityPartial, r.OverallQuality)
	assert.True(t, r.IsCorrect)
	assert.Equal(t, models.QualityComplete, r.Quality)

	r.PhaseErrors = []models.ReadbackError{missed, wrong}
	r.settle()
	assert.Equal(t, models.QualityIncorrect, r.OverallQuality)

	r = ExtendedResult{
		AnalysisResult: models.AnalysisResult{Quality: models.QualityMissing, Errors: []models.ReadbackError{missed}},
		PhaseErrors:    []models.ReadbackError{wrong},
	}
	r.settle()
	assert.Equal(t, models.QualityMissing, r.OverallQuality)

	a := newAnalyzer(t, 0)
	got := a.Analyze(Request{
		Instruction: "fly runway heading, climb and maintain five thousand feet",
		Readback:    "climb and maintain five thousand feet",
		Mode:        ModeDeparture,
	})
	require.NotEmpty(t, got.AllErrors())
	assert.False(t, got.OverallCorrect)
	assert.NotEqual(t, models.QualityComplete, got.OverallQuality)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, false, payload["correct"])
	assert.NotEqual(t, "complete", payload["overall_quality"])
}

func TestPhaseErrorsDoNotRepeatValidatorFindings(t *testing.T) {
	a := newAnalyzer(t, 0)
	r := a.Analyze(Request{
		Instruction: "contact departure one two four decimal seven",
		Readback:    "departure one two four decimal five",
		Mode:        ModeDeparture,
	})

	seen := map[string]int{}
	for _, e := range r.AllErrors() {
		seen[string(e.Type)+"|"+e.Parameter]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, k)
	}
}

func TestEmptyInstructionSkipsDetectors(t *testing.T) {
	a := newAnalyzer(t, 0)
	r := a.Analyze(Request{Instruction: "", Readback: "roger", Mode: ModeApproach})

	assert.Equal(t, "unknown", r.InstructionType)
	assert.LessOrEqual(t, r.Confidence, 0.5)
	assert.Empty(t, r.PhaseErrors)
	assert.Nil(t, r.Safety)
}

func TestHistoryProducesSequenceState(t *testing.T) {
	a := newAnalyzer(t, 16)
	now := time.Now()
	req := Request{
		Instruction: "altimeter one zero one three",
		Readback:    "altimeter one zero three one",
		History: []models.HistoryEntry{
			{Type: models.ErrMissingCallsign, Severity: models.SeverityLow, Timestamp: now.Add(-3 * time.Minute)},
			{Type: models.ErrMissingElement, Severity: models.SeverityMedium, Timestamp: now.Add(-2 * time.Minute)},
			{Type: models.ErrWrongValue, Severity: models.SeverityHigh, Timestamp: now.Add(-time.Minute)},
		},
	}
	r := a.Analyze(req)

	require.NotNil(t, r.Sequence)
	assert.True(t, r.Sequence.Escalating)
	assert.Equal(t, 3, r.Sequence.WindowSize)
	assert.Equal(t, 0, a.cache.Len())
}

func TestCacheReturnsSameResult(t *testing.T) {
	a := newAnalyzer(t, 4)
	req := Request{
		Instruction: "turn right heading two seven zero",
		Readback:    "left heading two seven zero, PAL123",
	}

	first := a.Analyze(req)
	assert.Equal(t, 1, a.cache.Len())
	second := a.Analyze(req)
	assert.Equal(t, first, second)

	req.Mode = ModeBasic
	a.Analyze(req)
	assert.Equal(t, 2, a.cache.Len())
}

// Package analyzer is the entry point of readback analysis. It runs the
// semantic validator, then, depending on the mode, the flight-phase
// detector, the phase-specific detectors, multi-part decomposition, safety
// scoring and sequence tracking, and returns one combined result.
package analyzer

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yegors/readback-check/internal/detectors"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/multipart"
	"github.com/yegors/readback-check/internal/normalize"
	"github.com/yegors/readback-check/internal/phase"
	"github.com/yegors/readback-check/internal/readback"
	"github.com/yegors/readback-check/internal/safety"
	"github.com/yegors/readback-check/internal/sequence"
	"github.com/yegors/readback-check/pkg/logger"
)

// Mode selects how much analysis runs beyond the semantic validator
type Mode string

const (
	// ModeBasic runs the semantic validator only
	ModeBasic Mode = "basic"
	// ModeDeparture forces the departure detector
	ModeDeparture Mode = "departure"
	// ModeApproach forces the approach detector
	ModeApproach Mode = "approach"
	// ModeAuto lets the detected flight phase pick the detectors
	ModeAuto Mode = "auto"
)

// Modes lists every accepted mode
var Modes = []Mode{ModeBasic, ModeDeparture, ModeApproach, ModeAuto}

// ParseMode validates s. The empty string means auto.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown analysis mode: %s", s)
}

// Request is one exchange to analyze
type Request struct {
	Instruction string                `json:"instruction"`
	Readback    string                `json:"readback"`
	Callsign    string                `json:"callsign,omitempty"`
	Mode        Mode                  `json:"mode,omitempty"`
	History     []models.HistoryEntry `json:"history,omitempty"`
}

// ExtendedResult is the validator result plus the phase, multi-part, safety
// and sequence extensions. Extensions not computed for the mode are nil.
// IsCorrect and Quality describe the validator alone; OverallCorrect and
// OverallQuality also count phase findings.
type ExtendedResult struct {
	models.AnalysisResult
	OverallCorrect  bool                   `json:"correct"`
	OverallQuality  models.Quality         `json:"overall_quality"`
	Mode            Mode                   `json:"mode"`
	Phase           models.FlightPhase     `json:"flight_phase,omitempty"`
	PhaseConfidence float64                `json:"phase_confidence"`
	PhaseErrors     []models.ReadbackError `json:"phase_specific_errors,omitempty"`
	Multipart       *multipart.Analysis    `json:"multipart_analysis,omitempty"`
	Safety          *safety.Assessment     `json:"safety,omitempty"`
	Sequence        *models.SequenceState  `json:"sequence_state,omitempty"`
}

// Correct is true when neither the validator nor a phase detector found anything
func (r ExtendedResult) Correct() bool {
	return r.IsCorrect && len(r.PhaseErrors) == 0
}

// settle fills the overall verdict. Phase findings downgrade a complete or
// partial validator verdict; missing and incorrect are kept.
func (r *ExtendedResult) settle() {
	r.OverallCorrect = r.Correct()
	r.OverallQuality = r.Quality
	if len(r.PhaseErrors) == 0 || r.Quality == models.QualityMissing || r.Quality == models.QualityIncorrect {
		return
	}
	r.OverallQuality = models.QualityPartial
	for _, e := range r.PhaseErrors {
		if e.Type.IsMismatch() {
			r.OverallQuality = models.QualityIncorrect
			return
		}
	}
}

// AllErrors returns validator findings followed by phase findings
func (r ExtendedResult) AllErrors() []models.ReadbackError {
	out := make([]models.ReadbackError, 0, len(r.Errors)+len(r.PhaseErrors))
	out = append(out, r.Errors...)
	return append(out, r.PhaseErrors...)
}

// MostSevere returns the worst severity over all findings, or "" when clean
func (r ExtendedResult) MostSevere() models.Severity {
	var worst models.Severity
	for _, e := range r.AllErrors() {
		worst = worst.MoreSevere(e.Severity)
	}
	return worst
}

// Config controls an Analyzer
type Config struct {
	// CacheSize bounds the memo of history-free analyses; 0 disables it
	CacheSize int
	// DefaultMode is used when a request carries no mode
	DefaultMode Mode
}

// DefaultConfig returns the analyzer defaults
func DefaultConfig() Config {
	return Config{CacheSize: 1024, DefaultMode: ModeAuto}
}

type cacheKey struct {
	instruction string
	readback    string
	callsign    string
	mode        Mode
}

// Analyzer runs readback analysis. It is safe for concurrent use.
type Analyzer struct {
	cache       *lru.Cache[cacheKey, ExtendedResult]
	detectors   []detectors.Detector
	defaultMode Mode
	logger      *logger.Logger
}

// New creates an analyzer
func New(cfg Config, log *logger.Logger) (*Analyzer, error) {
	if log == nil {
		log = logger.NewNop()
	}
	mode := cfg.DefaultMode
	if mode == "" {
		mode = ModeAuto
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	a := &Analyzer{
		detectors:   detectors.All(),
		defaultMode: mode,
		logger:      log.Named("analyzer"),
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[cacheKey, ExtendedResult](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create analysis cache: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// Analyze validates one exchange. Requests without history are memoised
// since their result depends on the text alone.
func (a *Analyzer) Analyze(req Request) ExtendedResult {
	mode := req.Mode
	if mode == "" {
		mode = a.defaultMode
	}

	key := cacheKey{req.Instruction, req.Readback, req.Callsign, mode}
	if a.cache != nil && len(req.History) == 0 {
		if r, ok := a.cache.Get(key); ok {
			return r
		}
	}

	r := a.analyze(req.Instruction, req.Readback, req.Callsign, mode)
	r.settle()
	if len(req.History) > 0 {
		state := sequence.Track(req.History)
		r.Sequence = &state
	} else if a.cache != nil {
		a.cache.Add(key, r)
	}

	a.logger.Debug("Analyzed exchange",
		logger.String("mode", string(mode)),
		logger.String("instruction_type", r.InstructionType),
		logger.String("quality", string(r.Quality)),
		logger.String("phase", string(r.Phase)),
		logger.Int("errors", len(r.Errors)),
		logger.Int("phase_errors", len(r.PhaseErrors)),
	)
	return r
}

func (a *Analyzer) analyze(instruction, rb, callsign string, mode Mode) ExtendedResult {
	r := ExtendedResult{
		AnalysisResult: readback.Validate(instruction, rb, callsign),
		Mode:           mode,
	}
	if mode == ModeBasic || strings.TrimSpace(instruction) == "" {
		return r
	}

	detected := phase.Detect(instruction, rb)
	r.Phase, r.PhaseConfidence = detected.Phase, detected.Confidence

	x := detectors.Exchange{
		Instruction: instruction,
		Readback:    rb,
		Callsign:    callsign,
		Phase:       r.Phase,
	}
	var found []models.ReadbackError
	switch mode {
	case ModeDeparture:
		if !x.Phase.IsDeparture() {
			x.Phase = models.PhaseDeparture
		}
		found = detectors.Departure().Detect(x)
	case ModeApproach:
		if !x.Phase.IsApproach() {
			x.Phase = models.PhaseApproach
		}
		found = detectors.Approach().Detect(x)
	default:
		found = detectors.Run(a.detectors, x)
	}
	r.Phase = x.Phase
	r.PhaseErrors = dedupe(r.Errors, found)

	mp := multipart.Analyze(
		normalize.StripCallsign(instruction, callsign),
		normalize.StripCallsign(rb, callsign),
	)
	r.Multipart = &mp

	assessment := safety.Assess(safety.Input{
		Errors:      r.Errors,
		PhaseErrors: r.PhaseErrors,
		Multipart:   mp,
		Phase:       x.Phase,
	})
	r.Safety = &assessment
	return r
}

// dedupe drops phase findings the validator already reported for the same
// parameter with the same type
func dedupe(base, found []models.ReadbackError) []models.ReadbackError {
	if len(found) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(base))
	for _, e := range base {
		seen[string(e.Type)+"|"+e.Parameter] = true
	}
	out := make([]models.ReadbackError, 0, len(found))
	for _, e := range found {
		k := string(e.Type) + "|" + e.Parameter
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Package detectors holds the phase-specific rule sets layered on top of the
// general readback validator. Each Detector decides from the flight phase
// whether it applies and reports findings with an ICAO reference and a
// flight-safety impact statement.
package detectors

import (
	"github.com/yegors/readback-check/internal/command"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/normalize"
)

// Exchange is one instruction/readback pair with its detected phase
type Exchange struct {
	Instruction string
	Readback    string
	Callsign    string
	Phase       models.FlightPhase
}

// Detector is a phase-specific rule set
type Detector interface {
	Name() string
	Applies(phase models.FlightPhase) bool
	Detect(x Exchange) []models.ReadbackError
}

// All returns every detector in evaluation order
func All() []Detector {
	return []Detector{Departure(), Approach()}
}

// Run applies every detector whose phase gate admits x.Phase
func Run(detectors []Detector, x Exchange) []models.ReadbackError {
	var out []models.ReadbackError
	for _, d := range detectors {
		if d.Applies(x.Phase) {
			out = append(out, d.Detect(x)...)
		}
	}
	return out
}

// prepared is an exchange with callsigns removed and the instruction parsed
type prepared struct {
	phase models.FlightPhase
	inst  string
	rb    string
	cmd   command.StructuredCommand
}

func prepare(x Exchange) *prepared {
	inst := normalize.StripCallsign(x.Instruction, x.Callsign)
	return &prepared{
		phase: x.Phase,
		inst:  inst,
		rb:    normalize.StripCallsign(x.Readback, x.Callsign),
		cmd:   command.Parse(inst),
	}
}

// rule is one check of a rule set. It returns nil when nothing is wrong.
type rule struct {
	name  string
	check func(p *prepared) *models.ReadbackError
}

// ruleSet is a Detector built from a gate and an ordered list of rules
type ruleSet struct {
	name  string
	gate  func(models.FlightPhase) bool
	rules []rule
}

func (s ruleSet) Name() string { return s.name }

func (s ruleSet) Applies(phase models.FlightPhase) bool { return s.gate(phase) }

func (s ruleSet) Detect(x Exchange) []models.ReadbackError {
	p := prepare(x)
	var out []models.ReadbackError
	for _, r := range s.rules {
		if e := r.check(p); e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// Rules lists the rule names of d, or nil for detectors not built from rules
func Rules(d Detector) []string {
	s, ok := d.(ruleSet)
	if !ok {
		return nil
	}
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.name
	}
	return names
}

// finding builds a phase-tagged error
type finding struct {
	kind       models.ErrorType
	parameter  string
	expected   string
	actual     string
	severity   models.Severity
	message    string
	correction string
	icao       string
	impact     string
}

func (f finding) on(p *prepared) *models.ReadbackError {
	return &models.ReadbackError{
		Type:          f.kind,
		Parameter:     f.parameter,
		ExpectedValue: f.expected,
		ActualValue:   f.actual,
		Severity:      f.severity,
		Explanation:   f.message,
		ReferenceCode: f.icao,
		Detail: models.PhaseDetail{
			Phase:        p.phase,
			Correction:   f.correction,
			ICAORef:      f.icao,
			SafetyImpact: f.impact,
		},
	}
}

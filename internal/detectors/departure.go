package detectors

import (
	"regexp"
	"strings"

	"github.com/yegors/readback-check/internal/command"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/normalize"
)

const (
	refDepartureClearance = "ICAO Doc 4444 4.5.7.2"
	refReadbackItems      = "ICAO Doc 4444 12.3.1.2"
	refConditional        = "ICAO Doc 9432 2.3.4"
	refNoiseAbatement     = "ICAO Doc 8168 Vol I Part V"
	refTransfer           = "ICAO Doc 4444 12.3.4.9"
)

var (
	sidPattern          = regexp.MustCompile(`\b([a-z]{3,6}) ?(\d[a-z]?)(?: ([a-z]+))? departure\b`)
	conditionalLineUp   = regexp.MustCompile(`\bbehind\b`)
	handoffPattern      = regexp.MustCompile(`\b(?:contact|monitor) (departure|radar|approach|control|center|centre)\b`)
	climbPattern        = regexp.MustCompile(`\b(?:continue climb|climb|climbing)\b`)
	expeditePattern     = regexp.MustCompile(`\bexpedit(?:e|ing)\b`)
	noisePattern        = regexp.MustCompile(`\bnoise abatement\b`)
	runwayHeadingPhrase = regexp.MustCompile(`\brunway heading\b`)
	directPattern       = regexp.MustCompile(`\bdirect\b`)
)

// Departure returns the rule set for line-up through climb
func Departure() Detector {
	return ruleSet{
		name: "departure",
		gate: models.FlightPhase.IsDeparture,
		rules: []rule{
			{"sid_omission", checkSID},
			{"runway_heading_omission", checkRunwayHeading},
			{"expedite_not_acknowledged", checkExpedite},
			{"conditional_clearance_omission", checkConditionalClearance},
			{"noise_abatement_omission", checkNoiseAbatement},
			{"handoff_frequency_mismatch", checkHandoffFrequency},
			{"direct_to_omission", checkDirectTo},
			{"climb_altitude_mismatch", checkClimbAltitude},
		},
	}
}

func checkSID(p *prepared) *models.ReadbackError {
	m := sidPattern.FindStringSubmatch(normalize.Normalize(p.inst))
	if m == nil || m[1] == "runway" {
		return nil
	}
	name := m[1]
	if _, _, ok := normalize.BestMatch(name, normalize.Tokens(p.rb), command.WaypointThreshold); ok {
		return nil
	}
	sid := strings.ToUpper(strings.TrimSpace(name + " " + m[2] + " " + m[3]))
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  "departure route",
		expected:   sid,
		severity:   models.SeverityHigh,
		message:    "SID " + sid + " was not read back",
		correction: "Read back the departure: " + sid + " departure",
		icao:       refDepartureClearance,
		impact:     "Flying the wrong departure route risks terrain and traffic conflicts after takeoff",
	}.on(p)
}

func checkRunwayHeading(p *prepared) *models.ReadbackError {
	if !runwayHeadingPhrase.MatchString(normalize.Normalize(p.inst)) ||
		runwayHeadingPhrase.MatchString(normalize.Normalize(p.rb)) {
		return nil
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  "runway heading",
		expected:   "runway heading",
		severity:   models.SeverityHigh,
		message:    "Runway heading instruction was not read back",
		correction: "Read back: fly runway heading",
		icao:       refReadbackItems,
		impact:     "An early turn after departure can lead into parallel departure or arrival traffic",
	}.on(p)
}

func checkExpedite(p *prepared) *models.ReadbackError {
	if !expeditePattern.MatchString(normalize.Normalize(p.inst)) ||
		expeditePattern.MatchString(normalize.Normalize(p.rb)) {
		return nil
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  "expedite",
		expected:   "expedite",
		severity:   models.SeverityMedium,
		message:    "Expedite was not acknowledged",
		correction: "Acknowledge the expedite together with the cleared level",
		icao:       refReadbackItems,
		impact:     "A normal rate of climb may not clear the traffic the controller is separating from",
	}.on(p)
}

func checkConditionalClearance(p *prepared) *models.ReadbackError {
	if !conditionalLineUp.MatchString(normalize.Normalize(p.inst)) ||
		conditionalLineUp.MatchString(normalize.Normalize(p.rb)) {
		return nil
	}
	return finding{
		kind:       models.ErrConditionOmitted,
		parameter:  "condition",
		expected:   "behind",
		severity:   models.SeverityHigh,
		message:    "Conditional clearance was read back without its condition",
		correction: "Read back the condition first, then the clearance",
		icao:       refConditional,
		impact:     "Lining up before the preceding aircraft has passed can cause a runway incursion",
	}.on(p)
}

func checkNoiseAbatement(p *prepared) *models.ReadbackError {
	if !noisePattern.MatchString(normalize.Normalize(p.inst)) ||
		strings.Contains(normalize.Normalize(p.rb), "noise") {
		return nil
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  "noise abatement",
		expected:   "noise abatement",
		severity:   models.SeverityLow,
		message:    "Noise abatement procedure was not acknowledged",
		correction: "Acknowledge the noise abatement procedure",
		icao:       refNoiseAbatement,
		impact:     "Departure profile may violate local noise restrictions",
	}.on(p)
}

func checkHandoffFrequency(p *prepared) *models.ReadbackError {
	if !handoffPattern.MatchString(normalize.Normalize(p.inst)) {
		return nil
	}
	want, ok := command.Extract(command.ParamFrequency, p.inst, true)
	if !ok {
		return nil
	}
	got, ok := command.Extract(command.ParamFrequency, p.rb, true)
	if !ok || command.Compare(command.ParamFrequency, want, got).Kind == command.MatchEqual {
		return nil
	}
	return finding{
		kind:       models.ErrWrongValue,
		parameter:  string(command.ParamFrequency),
		expected:   want,
		actual:     got,
		severity:   models.SeverityHigh,
		message:    "Handoff frequency read back as " + got + " instead of " + want,
		correction: "Read back the frequency: " + want,
		icao:       refTransfer,
		impact:     "Contact with departure control is lost during the climb-out",
	}.on(p)
}

func checkDirectTo(p *prepared) *models.ReadbackError {
	if !directPattern.MatchString(normalize.Normalize(p.inst)) {
		return nil
	}
	fix, ok := command.Extract(command.ParamWaypoint, p.inst, false)
	if !ok || command.Present(command.ParamWaypoint, fix, p.rb) {
		return nil
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  string(command.ParamWaypoint),
		expected:   fix,
		severity:   models.SeverityMedium,
		message:    "Direct-to waypoint " + fix + " was not read back",
		correction: "Read back: direct " + fix,
		icao:       refReadbackItems,
		impact:     "The aircraft may continue on the published route instead of the shortcut",
	}.on(p)
}

func checkClimbAltitude(p *prepared) *models.ReadbackError {
	if !climbPattern.MatchString(normalize.Normalize(p.inst)) {
		return nil
	}
	want, ok := command.Extract(command.ParamAltitude, p.inst, false)
	if !ok {
		return nil
	}
	got, ok := command.Extract(command.ParamAltitude, p.rb, false)
	if !ok || command.Compare(command.ParamAltitude, want, got).Kind == command.MatchEqual {
		return nil
	}
	return finding{
		kind:       models.ErrWrongValue,
		parameter:  string(command.ParamAltitude),
		expected:   want,
		actual:     got,
		severity:   models.SeverityCritical,
		message:    "Climb read back to " + command.Display(command.ParamAltitude, got) + " instead of " + command.Display(command.ParamAltitude, want),
		correction: "Read back: climb " + command.Display(command.ParamAltitude, want),
		icao:       refReadbackItems,
		impact:     "Level bust on climb-out into traffic at the wrong level",
	}.on(p)
}

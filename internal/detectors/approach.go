package detectors

import (
	"regexp"
	"strings"

	"github.com/yegors/readback-check/internal/command"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/normalize"
)

const (
	refApproachClearance = "ICAO Doc 4444 6.5.1.5"
	refLevelConstraint   = "ICAO Doc 4444 6.5.2.3"
	refAltimeter         = "ICAO Doc 4444 12.3.1.2"
	refMissedApproach    = "ICAO Doc 8168 Vol I Part II"
	refVisualApproach    = "ICAO Doc 4444 6.5.3"
)

var (
	crossingPattern  = regexp.MustCompile(`\bcross ([a-z]{3,5})(?: at)?(?: (or above|or below))? (flight level \d{2,3}|\d{3,5})\b`)
	goAroundPattern  = regexp.MustCompile(`\bgo(?:ing)? around\b`)
	visualPattern    = regexp.MustCompile(`\bvisual\b`)
	trafficPattern   = regexp.MustCompile(`\btraffic\b`)
	inSightPattern   = regexp.MustCompile(`\b(?:in sight|traffic|looking)\b`)
	runwayHeadingAny = regexp.MustCompile(`\b(?:runway heading|heading)\b`)
)

// Approach returns the rule set for arrival through landing
func Approach() Detector {
	return ruleSet{
		name: "approach",
		gate: models.FlightPhase.IsApproach,
		rules: []rule{
			{"approach_type_mismatch", checkApproachType},
			{"crossing_restriction_omission", checkCrossingRestriction},
			{"qnh_not_confirmed", checkQNH},
			{"go_around_not_acknowledged", checkGoAroundPhrase},
			{"go_around_altitude_omission", checkGoAroundAltitude},
			{"go_around_heading_omission", checkGoAroundHeading},
			{"traffic_in_sight_omission", checkTrafficInSight},
		},
	}
}

func checkApproachType(p *prepared) *models.ReadbackError {
	want, ok := command.Extract(command.ParamApproach, p.inst, false)
	if !ok {
		return nil
	}
	got, ok := command.Extract(command.ParamApproach, p.rb, false)
	if !ok || command.Compare(command.ParamApproach, want, got).Kind == command.MatchEqual {
		return nil
	}
	return finding{
		kind:       models.ErrWrongValue,
		parameter:  string(command.ParamApproach),
		expected:   want,
		actual:     got,
		severity:   models.SeverityCritical,
		message:    "ATC cleared " + want + " approach, pilot read back " + got,
		correction: "Read back the cleared approach: " + want + " approach",
		icao:       refApproachClearance,
		impact:     "Flying a different approach procedure than cleared removes the protected obstacle clearance",
	}.on(p)
}

func checkCrossingRestriction(p *prepared) *models.ReadbackError {
	m := crossingPattern.FindStringSubmatch(normalize.Normalize(p.inst))
	if m == nil {
		return nil
	}
	fix, qualifier := m[1], m[2]
	alt, ok := command.Extract(command.ParamAltitude, m[3], true)
	if !ok {
		return nil
	}
	rbTokens := normalize.Tokens(p.rb)
	_, _, fixOK := normalize.BestMatch(fix, rbTokens, command.WaypointThreshold)
	qualifierOK := qualifier == "" || strings.Contains(" "+strings.Join(rbTokens, " ")+" ", " "+qualifier+" ")
	if fixOK && qualifierOK && command.Present(command.ParamAltitude, alt, p.rb) {
		return nil
	}
	return finding{
		kind:       models.ErrConstraintMissing,
		parameter:  "crossing restriction",
		expected:   m[0],
		severity:   models.SeverityHigh,
		message:    "Crossing restriction at " + fix + " was not read back in full",
		correction: "Read back the restriction: " + m[0],
		icao:       refLevelConstraint,
		impact:     "Missing a crossing altitude breaks separation with crossing or holding traffic",
	}.on(p)
}

func checkQNH(p *prepared) *models.ReadbackError {
	want, ok := command.Extract(command.ParamAltimeter, p.inst, false)
	if !ok || command.Present(command.ParamAltimeter, want, p.rb) {
		return nil
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  string(command.ParamAltimeter),
		expected:   want,
		severity:   models.SeverityCritical,
		message:    "Altimeter setting " + want + " was not confirmed",
		correction: "Read back the altimeter setting: " + want,
		icao:       refAltimeter,
		impact:     "A wrong altimeter setting puts the aircraft at a different true altitude on the approach",
	}.on(p)
}

func isGoAround(p *prepared) bool {
	return goAroundPattern.MatchString(normalize.Normalize(p.inst))
}

func checkGoAroundPhrase(p *prepared) *models.ReadbackError {
	if !isGoAround(p) || goAroundPattern.MatchString(normalize.Normalize(p.rb)) {
		return nil
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  "go around",
		expected:   "going around",
		severity:   models.SeverityCritical,
		message:    "Go-around instruction was not acknowledged",
		correction: "Acknowledge with: going around",
		icao:       refMissedApproach,
		impact:     "The controller cannot confirm the aircraft has discontinued the approach",
	}.on(p)
}

func checkGoAroundAltitude(p *prepared) *models.ReadbackError {
	if !isGoAround(p) {
		return nil
	}
	want, ok := command.Extract(command.ParamAltitude, p.inst, false)
	if !ok || command.Present(command.ParamAltitude, want, p.rb) {
		return nil
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  string(command.ParamAltitude),
		expected:   want,
		severity:   models.SeverityCritical,
		message:    "Missed approach altitude " + command.Display(command.ParamAltitude, want) + " was not read back",
		correction: "Read back: climb " + command.Display(command.ParamAltitude, want),
		icao:       refMissedApproach,
		impact:     "An unconfirmed missed approach altitude risks conflict with departing traffic",
	}.on(p)
}

func checkGoAroundHeading(p *prepared) *models.ReadbackError {
	if !isGoAround(p) {
		return nil
	}
	want, ok := command.Extract(command.ParamHeading, p.inst, false)
	if ok {
		if command.Present(command.ParamHeading, want, p.rb) {
			return nil
		}
	} else {
		if !runwayHeadingAny.MatchString(normalize.Normalize(p.inst)) ||
			runwayHeadingAny.MatchString(normalize.Normalize(p.rb)) {
			return nil
		}
		want = "runway heading"
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  string(command.ParamHeading),
		expected:   want,
		severity:   models.SeverityHigh,
		message:    "Missed approach heading was not read back",
		correction: "Read back the heading: " + want,
		icao:       refMissedApproach,
		impact:     "A wrong turn on the go-around can lead into terrain or parallel approach traffic",
	}.on(p)
}

func checkTrafficInSight(p *prepared) *models.ReadbackError {
	inst := normalize.Normalize(p.inst)
	if !visualPattern.MatchString(inst) || !trafficPattern.MatchString(inst) ||
		inSightPattern.MatchString(normalize.Normalize(p.rb)) {
		return nil
	}
	return finding{
		kind:       models.ErrMissingElement,
		parameter:  "traffic in sight",
		expected:   "traffic in sight",
		severity:   models.SeverityHigh,
		message:    "Visual approach accepted without reporting the traffic in sight",
		correction: "Report the preceding traffic in sight before accepting the visual approach",
		icao:       refVisualApproach,
		impact:     "Visual separation is only valid once the pilot has the traffic in sight",
	}.on(p)
}

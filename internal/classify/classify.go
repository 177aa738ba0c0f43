// Package classify assigns a free-text controller instruction to an
// instruction type using a priority-ordered rule table.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yegors/readback-check/internal/normalize"
)

// InstructionType is the category of a controller instruction
type InstructionType string

const (
	TypeTakeoffClearance  InstructionType = "takeoff_clearance"
	TypeLandingClearance  InstructionType = "landing_clearance"
	TypeLineUpAndWait     InstructionType = "line_up_and_wait"
	TypeGoAround          InstructionType = "go_around"
	TypeHoldShort         InstructionType = "hold_short"
	TypeApproachClearance InstructionType = "approach_clearance"
	TypeAltimeter         InstructionType = "altimeter_setting"
	TypeSquawk            InstructionType = "squawk"
	TypeAltitude          InstructionType = "altitude_change"
	TypeHeading           InstructionType = "heading_change"
	TypeSpeed             InstructionType = "speed_change"
	TypeFrequencyChange   InstructionType = "frequency_change"
	TypeDirectTo          InstructionType = "direct_to"
	TypeHolding           InstructionType = "holding"
	TypeTaxi              InstructionType = "taxi"
	TypeDepartureRoute    InstructionType = "departure_clearance"
	TypeInformation       InstructionType = "traffic_information"
	TypeUnknown           InstructionType = "unknown"
)

// Element is a sub-element a correct readback of some instruction type must contain
type Element string

const (
	ElementAltitude      Element = "altitude"
	ElementHeading       Element = "heading"
	ElementDirection     Element = "direction"
	ElementSpeed         Element = "speed"
	ElementRunway        Element = "runway"
	ElementApproachType  Element = "approach type"
	ElementWaypoint      Element = "waypoint"
	ElementFrequency     Element = "frequency"
	ElementSquawk        Element = "squawk"
	ElementAltimeter     Element = "altimeter"
	ElementExpedite      Element = "expedite"
	ElementTakeoff       Element = "takeoff clearance"
	ElementLanding       Element = "landing clearance"
	ElementLineUp        Element = "line up"
	ElementHoldShort     Element = "hold short"
	ElementGoAround      Element = "go around"
	ElementRunwayHeading Element = "runway heading"
	ElementSID           Element = "departure route"
	ElementTaxiRoute     Element = "taxi route"
)

// Rule is one row of the classification table
type Rule struct {
	Type             InstructionType
	Patterns         []*regexp.Regexp
	Priority         int
	RequiredElements []Element
	// Clearance marks rules whose bare acknowledgment is a Roger/Wilco
	// substitution rather than a merely incomplete readback.
	Clearance bool
	// Informational rules carry nothing the pilot must read back.
	Informational bool
}

// Matches reports whether any pattern of r matches text
func (r Rule) Matches(text string) bool {
	for _, p := range r.Patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// rules is sorted by descending priority at init and never modified afterwards.
// Safety-critical clearances come first because plain numbers are shared by
// altitude, speed and heading instructions.
var rules = []Rule{
	{
		Type:             TypeTakeoffClearance,
		Patterns:         patterns(`\bcleared (for )?take ?off\b`, `\btake ?off clearance\b`),
		Priority:         100,
		RequiredElements: []Element{ElementTakeoff, ElementRunway},
		Clearance:        true,
	},
	{
		Type:             TypeLandingClearance,
		Patterns:         patterns(`\bcleared (to|for) land\b`, `\bcleared touch and go\b`, `\bcleared (for the )?option\b`),
		Priority:         98,
		RequiredElements: []Element{ElementLanding, ElementRunway},
		Clearance:        true,
	},
	{
		Type:             TypeLineUpAndWait,
		Patterns:         patterns(`\bline up and wait\b`, `\bline up\b`, `\bposition and hold\b`),
		Priority:         96,
		RequiredElements: []Element{ElementLineUp, ElementRunway},
		Clearance:        true,
	},
	{
		Type:             TypeGoAround,
		Patterns:         patterns(`\bgo around\b`, `\bexecute (the )?missed approach\b`),
		Priority:         95,
		RequiredElements: []Element{ElementGoAround, ElementAltitude, ElementHeading},
		Clearance:        true,
	},
	{
		Type:             TypeHoldShort,
		Patterns:         patterns(`\bhold short\b`, `\bhold position\b`),
		Priority:         94,
		RequiredElements: []Element{ElementHoldShort, ElementRunway},
		Clearance:        true,
	},
	{
		Type: TypeApproachClearance,
		Patterns: patterns(
			`\bcleared (for )?(the )?(ils|rnav|rnp|vor|ndb|gps|loc|localizer|visual)\b.*\bapproach\b`,
			`\bcleared (for )?(the )?approach\b`,
			`\bcleared (for )?(the )?(ils|rnav|rnp|vor|ndb|gps|localizer|visual)\b`,
		),
		Priority:         90,
		RequiredElements: []Element{ElementApproachType, ElementRunway},
		Clearance:        true,
	},
	{
		Type:             TypeDepartureRoute,
		Patterns:         patterns(`\bcleared to [a-z]+ via\b`, `\b[a-z]+ \d[a-z]? departure\b`, `\bsid\b`),
		Priority:         88,
		RequiredElements: []Element{ElementSID, ElementAltitude, ElementSquawk},
		Clearance:        true,
	},
	{
		Type:             TypeAltimeter,
		Patterns:         patterns(`\baltimeter\b`, `\bqnh\b`, `\bqfe\b`),
		Priority:         85,
		RequiredElements: []Element{ElementAltimeter},
	},
	{
		Type:             TypeSquawk,
		Patterns:         patterns(`\bsquawk\b`, `\btransponder code\b`),
		Priority:         84,
		RequiredElements: []Element{ElementSquawk},
	},
	{
		Type: TypeAltitude,
		Patterns: patterns(
			`\b(climb|descend)\b`,
			`\bflight level \d{2,3}\b`,
			`\bmaintain \d{3,5}\b`,
			`\b\d{3,5} feet\b`,
			`\baltitude\b`,
		),
		Priority:         80,
		RequiredElements: []Element{ElementAltitude, ElementExpedite},
	},
	{
		Type:             TypeHeading,
		Patterns:         patterns(`\bheading \d{1,3}\b`, `\bturn (left|right)\b`, `\bfly heading\b`),
		Priority:         75,
		RequiredElements: []Element{ElementHeading, ElementDirection},
	},
	{
		Type:             TypeSpeed,
		Patterns:         patterns(`\b(reduce|increase) (speed|to)\b`, `\bspeed \d{2,3}\b`, `\b\d{2,3} knots\b`, `\bmach\b`),
		Priority:         70,
		RequiredElements: []Element{ElementSpeed},
	},
	{
		Type:             TypeFrequencyChange,
		Patterns:         patterns(`\bcontact\b`, `\bmonitor\b`, `\bfrequency\b`, `\b1[1-3]\d\.\d{1,3}\b`),
		Priority:         65,
		RequiredElements: []Element{ElementFrequency},
	},
	{
		Type:             TypeHolding,
		Patterns:         patterns(`\bhold (at|over)\b`, `\bholding (pattern|as published)\b`),
		Priority:         62,
		RequiredElements: []Element{ElementWaypoint},
	},
	{
		Type:             TypeDirectTo,
		Patterns:         patterns(`\bdirect( to)? [a-z]{3,5}\b`, `\bproceed\b`),
		Priority:         60,
		RequiredElements: []Element{ElementWaypoint},
	},
	{
		Type:             TypeTaxi,
		Patterns:         patterns(`\btaxi\b`, `\bvia (taxiway )?[a-z]\d?\b`),
		Priority:         50,
		RequiredElements: []Element{ElementTaxiRoute, ElementRunway},
	},
	{
		Type:          TypeInformation,
		Patterns:      patterns(`\btraffic\b`, `\bwind\b`, `\binformation [a-z]+\b`, `\bradar contact\b`, `\bcaution\b`),
		Priority:      10,
		Informational: true,
	},
}

var rulesByType map[InstructionType]Rule

func init() {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	rulesByType = make(map[InstructionType]Rule, len(rules))
	for _, r := range rules {
		rulesByType[r.Type] = r
	}
}

// Rules returns a copy of the table in evaluation order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// RuleFor returns the rule for t. Unknown types yield a zero Rule and false.
func RuleFor(t InstructionType) (Rule, bool) {
	r, ok := rulesByType[t]
	return r, ok
}

// Classify returns the highest-priority type with a pattern matching either
// the raw (lower-cased) or the number-normalized instruction, or TypeUnknown.
func Classify(instruction string) InstructionType {
	raw := strings.ToLower(strings.TrimSpace(instruction))
	if raw == "" {
		return TypeUnknown
	}
	norm := normalize.Normalize(raw)
	for _, r := range rules {
		if r.Matches(raw) || r.Matches(norm) {
			return r.Type
		}
	}
	return TypeUnknown
}

// IsClearance reports whether t is a clearance whose bare acknowledgment is unsafe
func IsClearance(t InstructionType) bool {
	return rulesByType[t].Clearance
}

// IsInformational reports whether t carries nothing to read back
func IsInformational(t InstructionType) bool {
	return rulesByType[t].Informational
}

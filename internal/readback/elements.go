package readback

import (
	"fmt"
	"regexp"

	"github.com/yegors/readback-check/internal/classify"
	"github.com/yegors/readback-check/internal/command"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/normalize"
)

// phraseElement is a required element identified by wording alone
type phraseElement struct {
	instruction *regexp.Regexp
	readback    *regexp.Regexp
}

var phraseElements = map[classify.Element]phraseElement{
	classify.ElementTakeoff: {
		regexp.MustCompile(`\btake ?off\b`),
		regexp.MustCompile(`\btake ?off\b`),
	},
	classify.ElementLanding: {
		regexp.MustCompile(`\bcleared (to|for) land\b|\btouch and go\b|\boption\b`),
		regexp.MustCompile(`\bland(ing)?\b|\btouch and go\b|\boption\b`),
	},
	classify.ElementLineUp: {
		regexp.MustCompile(`\bline up\b|\bposition and hold\b`),
		regexp.MustCompile(`\b(line|lining) up\b|\bposition and hold\b`),
	},
	classify.ElementHoldShort: {
		regexp.MustCompile(`\bhold(ing)? (short|position)\b`),
		regexp.MustCompile(`\bhold(ing)? (short|position)\b`),
	},
	classify.ElementGoAround: {
		regexp.MustCompile(`\bgo around\b|\bmissed approach\b`),
		regexp.MustCompile(`\bgo(ing)? around\b|\bmissed approach\b`),
	},
	classify.ElementRunwayHeading: {
		regexp.MustCompile(`\brunway heading\b`),
		regexp.MustCompile(`\brunway heading\b`),
	},
	classify.ElementExpedite: {
		regexp.MustCompile(`\bexpedite\b`),
		regexp.MustCompile(`\bexpedit(e|ing)\b`),
	},
}

// namedElements must echo a name taken from the instruction
var namedElements = map[classify.Element]*regexp.Regexp{
	classify.ElementSID:       regexp.MustCompile(`\b([a-z]+) \d[a-z]? departure\b`),
	classify.ElementTaxiRoute: regexp.MustCompile(`\bvia (?:taxiway )?([a-z]+)\b`),
}

// valueElements map onto command parameters
var valueElements = map[classify.Element]command.Parameter{
	classify.ElementAltitude:     command.ParamAltitude,
	classify.ElementHeading:      command.ParamHeading,
	classify.ElementSpeed:        command.ParamSpeed,
	classify.ElementRunway:       command.ParamRunway,
	classify.ElementApproachType: command.ParamApproach,
	classify.ElementWaypoint:     command.ParamWaypoint,
	classify.ElementFrequency:    command.ParamFrequency,
	classify.ElementSquawk:       command.ParamSquawk,
	classify.ElementAltimeter:    command.ParamAltimeter,
}

// ElementSeverity is the severity of omitting a required element
func ElementSeverity(el classify.Element) models.Severity {
	switch el {
	case classify.ElementAltitude, classify.ElementRunway, classify.ElementAltimeter, classify.ElementRunwayHeading:
		return models.SeverityCritical
	case classify.ElementHeading, classify.ElementSquawk, classify.ElementFrequency, classify.ElementApproachType:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

func elementParameter(el classify.Element) string {
	if el == classify.ElementDirection {
		return string(command.ParamDirection)
	}
	if p, ok := valueElements[el]; ok {
		return string(p)
	}
	return string(el)
}

// elementStatus reports whether the instruction carries el, its expected
// wording, and whether the readback carries it too
func (x *exchange) elementStatus(el classify.Element) (required bool, expected string, present bool) {
	if p, ok := valueElements[el]; ok {
		v, ok := command.Extract(p, x.cmd.Body(), p == x.cmd.Parameter)
		if !ok {
			return false, "", false
		}
		return true, command.Display(p, v), command.Present(p, v, x.rb)
	}
	if el == classify.ElementDirection {
		dir, ok := command.ExtractDirection(x.cmd.Body())
		if !ok {
			return false, "", false
		}
		_, found := command.ExtractDirection(x.rb)
		return true, "turn " + dir, found
	}
	if pe, ok := phraseElements[el]; ok {
		m := pe.instruction.FindString(x.inst)
		if m == "" {
			return false, "", false
		}
		return true, m, pe.readback.MatchString(x.rb)
	}
	if re, ok := namedElements[el]; ok {
		m := re.FindStringSubmatch(x.inst)
		if m == nil {
			return false, "", false
		}
		_, _, found := normalize.BestMatch(m[1], normalize.Tokens(x.rb), command.WaypointThreshold)
		return true, m[1], found
	}
	return false, "", false
}

// checkRequiredElements tests each element the instruction type requires.
// An element is only required when the instruction itself contains it, and
// a parameter that already has a finding is not reported again.
func (x *exchange) checkRequiredElements() {
	for _, el := range x.rule.RequiredElements {
		param := elementParameter(el)
		if x.hasError(param) {
			continue
		}
		required, expected, present := x.elementStatus(el)
		if !required || present {
			continue
		}
		x.add(models.ReadbackError{
			Type:          models.ErrMissingElement,
			Parameter:     param,
			ExpectedValue: expected,
			Severity:      ElementSeverity(el),
			Explanation:   fmt.Sprintf("required %s not read back", el),
			ReferenceCode: refReadback,
		})
	}
}

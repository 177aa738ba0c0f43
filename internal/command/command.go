// Package command parses a controller instruction into a StructuredCommand:
// the action, its parameter and canonical value, plus any condition,
// constraint and immediacy marker. The three clause extractors run
// independently over the same normalized text.
package command

import (
	"regexp"
	"strings"

	"github.com/yegors/readback-check/internal/normalize"
)

// ConditionType is the trigger word of a conditional clause
type ConditionType string

const (
	ConditionWhen   ConditionType = "WHEN"
	ConditionUntil  ConditionType = "UNTIL"
	ConditionAfter  ConditionType = "AFTER"
	ConditionAt     ConditionType = "AT"
	ConditionOnce   ConditionType = "ONCE"
	ConditionBefore ConditionType = "BEFORE"
	ConditionUpon   ConditionType = "UPON"
)

// Condition is a clause that delays or bounds execution of the instruction
type Condition struct {
	Type   ConditionType `json:"type"`
	Phrase string        `json:"phrase"`
	// TriggerValue is a flight level, altitude, waypoint or "established"
	TriggerValue string `json:"trigger_value,omitempty"`
}

// ConstraintType is the kind of altitude restriction
type ConstraintType string

const (
	ConstraintAtOrAbove ConstraintType = "AT_OR_ABOVE"
	ConstraintAtOrBelow ConstraintType = "AT_OR_BELOW"
	ConstraintNotAbove  ConstraintType = "NOT_ABOVE"
	ConstraintNotBelow  ConstraintType = "NOT_BELOW"
	ConstraintCross     ConstraintType = "CROSS"
)

// Constraint is an altitude restriction attached to the instruction
type Constraint struct {
	Type     ConstraintType `json:"type"`
	Phrase   string         `json:"phrase"`
	Value    string         `json:"value,omitempty"`
	Waypoint string         `json:"waypoint,omitempty"`
	// Qualifier is "or above" or "or below" on a crossing restriction
	Qualifier string `json:"qualifier,omitempty"`
}

// StructuredCommand is the parsed form of one instruction
type StructuredCommand struct {
	Action      string      `json:"action"`
	Parameter   Parameter   `json:"parameter"`
	Value       string      `json:"value"`
	Unit        string      `json:"unit,omitempty"`
	Modifier    string      `json:"modifier,omitempty"`
	Condition   *Condition  `json:"condition,omitempty"`
	Constraint  *Constraint `json:"constraint,omitempty"`
	IsImmediate bool        `json:"is_immediate"`
	RawText     string      `json:"raw_text"`

	body string
}

// IsConditional reports whether a condition was parsed
func (c StructuredCommand) IsConditional() bool {
	return c.Condition != nil
}

// Body is the normalized text with the condition phrase removed. Values are
// extracted from the body so trigger values are not mistaken for targets.
func (c StructuredCommand) Body() string {
	return c.body
}

var conditionWords = map[string]ConditionType{
	"when":   ConditionWhen,
	"until":  ConditionUntil,
	"after":  ConditionAfter,
	"once":   ConditionOnce,
	"before": ConditionBefore,
	"upon":   ConditionUpon,
}

// actionVerbs end a condition phrase and name the command's action
var actionVerbs = map[string]Parameter{
	"climb":      ParamAltitude,
	"descend":    ParamAltitude,
	"maintain":   ParamAltitude,
	"climbing":   ParamAltitude,
	"descending": ParamAltitude,
	"turning":    ParamHeading,
	"turn":       ParamHeading,
	"fly":        ParamHeading,
	"reduce":     ParamSpeed,
	"increase":   ParamSpeed,
	"squawk":     ParamSquawk,
	"contact":    ParamFrequency,
	"monitor":    ParamFrequency,
	"cleared":    ParamRunway,
	"line":       ParamRunway,
	"hold":       ParamRunway,
	"taxi":       ParamRunway,
	"vacate":     ParamRunway,
	"cross":      ParamWaypoint,
	"proceed":    ParamWaypoint,
	"direct":     ParamWaypoint,
	"expedite":   ParamAltitude,
	"go":         ParamAltitude,
	"continue":   ParamAltitude,
	"join":       ParamApproach,
	"intercept":  ParamApproach,
	"report":     "",
	"resume":     "",
}

// Preferred value categories per action when the verb's own category has no value
var actionFallbacks = map[string][]Parameter{
	"cleared": {ParamRunway, ParamApproach, ParamWaypoint, ParamAltitude},
	"go":      {ParamAltitude, ParamHeading},
}

// Words carrying no meaning for condition matching
var genericWords = map[string]bool{
	"flight": true, "level": true, "feet": true, "the": true, "a": true,
	"of": true, "to": true, "and": true, "on": true,
}

var triggerPrefixes = map[string]bool{
	"passing": true, "reaching": true, "crossing": true, "over": true,
	"abeam": true, "at": true, "leaving": true, "past": true,
}

// Keywords returns the words of the phrase a readback must echo for the
// condition to count as acknowledged
func (c Condition) Keywords() []string {
	var out []string
	for _, t := range normalize.Tokens(c.Phrase) {
		if genericWords[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MentionedIn reports whether any condition keyword appears in text
func (c Condition) MentionedIn(text string) bool {
	tokens := make(map[string]bool)
	for _, t := range normalize.Tokens(text) {
		tokens[t] = true
	}
	for _, kw := range c.Keywords() {
		if tokens[kw] {
			return true
		}
	}
	return false
}

type constraintPattern struct {
	kind ConstraintType
	re   *regexp.Regexp
}

const altitudeExpr = `(flight level \d{2,3}|\d{3,5})(?: feet)?`

var constraintPatterns = []constraintPattern{
	{ConstraintCross, regexp.MustCompile(`\bcross(?:ing)? ([a-z]{3,5}) at (?:or (above|below) )?` + altitudeExpr)},
	{ConstraintAtOrAbove, regexp.MustCompile(`\bat or above ` + altitudeExpr)},
	{ConstraintAtOrBelow, regexp.MustCompile(`\bat or below ` + altitudeExpr)},
	{ConstraintNotAbove, regexp.MustCompile(`\bnot above ` + altitudeExpr)},
	{ConstraintNotBelow, regexp.MustCompile(`\bnot below ` + altitudeExpr)},
}

// constraintMarkers must appear in a readback that acknowledges the constraint
var constraintMarkers = map[ConstraintType]string{
	ConstraintAtOrAbove: "or above",
	ConstraintAtOrBelow: "or below",
	ConstraintNotAbove:  "not above",
	ConstraintNotBelow:  "not below",
}

var immediacyPattern = regexp.MustCompile(`\b(now|immediately|no delay|without delay|right away)\b`)

// IsImmediate reports whether text demands or claims immediate execution
func IsImmediate(text string) bool {
	return immediacyPattern.MatchString(normalize.Normalize(text))
}

// Parse builds the StructuredCommand for instruction. It never fails; parts
// that cannot be determined are left empty.
func Parse(instruction string) StructuredCommand {
	norm := normalize.Normalize(instruction)
	cmd := StructuredCommand{
		RawText:     instruction,
		IsImmediate: immediacyPattern.MatchString(norm),
	}

	cond, start, end := parseCondition(norm)
	cmd.Condition = cond
	cmd.body = norm
	if cond != nil {
		tokens := strings.Fields(norm)
		rest := append(append([]string{}, tokens[:start]...), tokens[end:]...)
		cmd.body = strings.Join(rest, " ")
	}
	cmd.Constraint = parseConstraint(norm)

	cmd.Action = firstAction(cmd.body)
	cmd.Parameter, cmd.Value = primaryValue(cmd.Action, cmd.body)
	if cmd.Value != "" {
		cmd.Unit = Unit(cmd.Parameter, cmd.Value)
	}
	if dir, ok := ExtractDirection(cmd.body); ok {
		cmd.Modifier = dir
	} else if strings.Contains(cmd.body, "expedite") {
		cmd.Modifier = "expedite"
	}
	return cmd
}

// parseCondition finds the first conditional clause in normalized text and
// returns it with its token span [start, end)
func parseCondition(norm string) (*Condition, int, int) {
	tokens := strings.Fields(norm)
	for i, tok := range tokens {
		word := strings.TrimRight(tok, ",.;:!?)\"'")
		kind, ok := conditionWords[word]
		if !ok {
			if word != "at" || i+1 >= len(tokens) || strings.TrimRight(tokens[i+1], ",.;:!?") == "or" {
				continue
			}
			kind = ConditionAt
		}

		end, byVerb := phraseEnd(tokens, i)
		if end-i < 2 {
			continue
		}
		// "cross BOREG at 5000" is a constraint; AT is a condition only when an
		// action follows it
		if kind == ConditionAt && !byVerb {
			continue
		}
		phrase := strings.TrimRight(strings.Join(tokens[i:end], " "), ",.;:!?")
		return &Condition{
			Type:         kind,
			Phrase:       phrase,
			TriggerValue: triggerValue(tokens[i:end]),
		}, i, end
	}
	return nil, 0, 0
}

// phraseEnd returns the index after the last token of a condition phrase
// starting at i, and whether the phrase was ended by an action verb
func phraseEnd(tokens []string, i int) (int, bool) {
	if strings.ContainsAny(tokens[i], ",.;") {
		return i + 1, false
	}
	for j := i + 1; j < len(tokens); j++ {
		word := strings.TrimRight(tokens[j], ",.;:!?)\"'")
		if _, ok := actionVerbs[word]; ok {
			return j, true
		}
		if word != tokens[j] {
			return j + 1, false
		}
	}
	return len(tokens), false
}

func triggerValue(tokens []string) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = strings.TrimRight(t, ",.;:!?)\"'")
	}
	for i, w := range words {
		if w == "established" {
			return "established"
		}
		if w == "level" && i > 0 && words[i-1] == "flight" && i+1 < len(words) {
			if v, ok := flightLevel([]string{"", words[i+1]}); ok {
				return v
			}
		}
		if normalize.IsNumeric(w) && len(w) >= 3 {
			if i > 0 && words[i-1] == "level" {
				continue
			}
			return w
		}
		if i > 0 && triggerPrefixes[words[i-1]] && !normalize.IsNumeric(w) {
			if v, ok := waypoint([]string{"", w}); ok && len(w) >= 3 && len(w) <= 5 {
				return v
			}
		}
	}
	return ""
}

func parseConstraint(norm string) *Constraint {
	for _, cp := range constraintPatterns {
		m := cp.re.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		c := &Constraint{Type: cp.kind, Phrase: m[0]}
		alt := m[len(m)-1]
		if fl, ok := strings.CutPrefix(alt, "flight level "); ok {
			c.Value, _ = flightLevel([]string{"", fl})
		} else {
			c.Value = alt
		}
		if cp.kind == ConstraintCross {
			c.Waypoint = strings.ToUpper(m[1])
			if m[2] != "" {
				c.Qualifier = "or " + m[2]
			}
		}
		return c
	}
	return nil
}

// AcknowledgedIn reports whether readback carries the constraint's marker
// words and, for crossing restrictions, the fix, altitude and qualifier
func (c Constraint) AcknowledgedIn(readback string) bool {
	norm := " " + strings.Join(normalize.Tokens(readback), " ") + " "
	if c.Type == ConstraintCross {
		if !Present(ParamWaypoint, c.Waypoint, readback) {
			return false
		}
		if c.Value != "" && !Present(ParamAltitude, c.Value, readback) {
			return false
		}
		return c.Qualifier == "" || strings.Contains(norm, " "+c.Qualifier+" ")
	}
	return strings.Contains(norm, " "+constraintMarkers[c.Type]+" ")
}

func firstAction(body string) string {
	for _, t := range normalize.Tokens(body) {
		if _, ok := actionVerbs[t]; ok {
			return t
		}
	}
	return ""
}

func primaryValue(action, body string) (Parameter, string) {
	candidates := actionFallbacks[action]
	if p := actionVerbs[action]; p != "" && candidates == nil {
		candidates = []Parameter{p}
	}
	for _, p := range candidates {
		if v, ok := Extract(p, body, false); ok {
			return p, v
		}
	}
	for _, p := range ValueParameters {
		if v, ok := Extract(p, body, false); ok {
			return p, v
		}
	}
	if len(candidates) > 0 {
		if v, ok := Extract(candidates[0], body, true); ok {
			return candidates[0], v
		}
		return candidates[0], ""
	}
	return "", ""
}

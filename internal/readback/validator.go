// Package readback checks a pilot's readback against the controller's
// instruction. Validate runs an ordered series of checks, each of which may
// add findings to the result; only the acknowledgment and parameter-confusion
// checks end validation early.
package readback

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yegors/readback-check/internal/classify"
	"github.com/yegors/readback-check/internal/command"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/multipart"
	"github.com/yegors/readback-check/internal/normalize"
)

const (
	confidenceCorrect  = 1.0
	confidenceValue    = 0.95
	confidenceOmission = 0.9
	confidenceUnknown  = 0.5
)

// ackWords carry no readback content
var ackWords = map[string]bool{
	"roger": true, "wilco": true, "copy": true, "copied": true, "affirm": true,
	"affirmative": true, "ok": true, "okay": true, "yes": true, "understood": true,
	"will": true, "comply": true, "thanks": true, "thank": true, "you": true,
	"cheers": true, "good": true, "day": true, "morning": true, "afternoon": true,
	"evening": true, "bye": true, "sir": true, "uh": true, "um": true, "er": true,
}

// safetyCritical instructions must never be answered with a bare acknowledgment
var safetyCritical = []*regexp.Regexp{
	regexp.MustCompile(`\bcleared (for |to )?(take ?off|land|touch and go|(the )?option)\b`),
	regexp.MustCompile(`\bline up\b`),
	regexp.MustCompile(`\bhold (short|position)\b`),
	regexp.MustCompile(`\bgo around\b`),
	regexp.MustCompile(`\bcross runway\b`),
	regexp.MustCompile(`\bcleared (for )?(the )?(ils|rnav|rnp|vor|ndb|gps|localizer|visual|approach)\b`),
	regexp.MustCompile(`\b(immediately|expedite)\b`),
}

// Severity of a wrong value per parameter
var wrongValueSeverity = map[command.Parameter]models.Severity{
	command.ParamAltitude:  models.SeverityCritical,
	command.ParamHeading:   models.SeverityCritical,
	command.ParamRunway:    models.SeverityCritical,
	command.ParamAltimeter: models.SeverityCritical,
	command.ParamSquawk:    models.SeverityHigh,
	command.ParamFrequency: models.SeverityHigh,
	command.ParamSpeed:     models.SeverityHigh,
	command.ParamApproach:  models.SeverityHigh,
	command.ParamWaypoint:  models.SeverityHigh,
}

// ICAO Doc 4444 12.3.1.2 lists the items that must always be read back
const refReadback = "ICAO Doc 4444 12.3.1.2"

// ICAO Doc 9432 covers conditional clearances and their readback
const refConditional = "ICAO Doc 9432 2.3.4"

type exchange struct {
	instruction string
	readback    string
	callsign    string

	kind     classify.InstructionType
	rule     classify.Rule
	inst     string // instruction with callsign removed, normalized
	rb       string // readback with callsign removed, normalized
	cmd      command.StructuredCommand
	rbCmd    command.StructuredCommand
	expected string
	errors   []models.ReadbackError
}

// Validate checks readback against instruction. callsign may be empty; when
// given, its absence from the readback is reported. Validate never fails:
// anything it cannot interpret degrades to fewer, lower-confidence findings.
func Validate(instruction, readback, callsign string) models.AnalysisResult {
	if len(normalize.Tokens(instruction)) == 0 {
		return models.AnalysisResult{
			IsCorrect:       true,
			Quality:         models.QualityComplete,
			Confidence:      0,
			Errors:          []models.ReadbackError{},
			ActualResponse:  strings.TrimSpace(readback),
			Corrections:     []string{},
			InstructionType: string(classify.TypeUnknown),
		}
	}

	x := &exchange{
		instruction: instruction,
		readback:    readback,
		callsign:    callsign,
		kind:        classify.Classify(instruction),
		inst:        normalize.StripCallsign(instruction, callsign),
		rb:          normalize.StripCallsign(readback, callsign),
	}
	x.rule, _ = classify.RuleFor(x.kind)
	x.cmd = command.Parse(x.inst)
	x.rbCmd = command.Parse(x.rb)
	x.expected = ExpectedReadback(instruction, callsign)

	if x.checkAcknowledgment() {
		return x.result(models.QualityMissing)
	}
	if x.checkParameterConfusion() {
		return x.result("")
	}
	x.checkValues()
	x.checkDirection()
	x.checkRequiredElements()
	x.checkMultipart()
	x.checkCondition()
	x.checkConstraint()
	x.checkCallsign()
	return x.result("")
}

func (x *exchange) add(e models.ReadbackError) {
	x.errors = append(x.errors, e)
}

func (x *exchange) hasError(parameter string) bool {
	for _, e := range x.errors {
		if e.Parameter == parameter {
			return true
		}
	}
	return false
}

func meaningfulTokens(text string) []string {
	var out []string
	for _, t := range normalize.Tokens(text) {
		if !ackWords[t] {
			out = append(out, t)
		}
	}
	return out
}

// hasCriticalElement reports whether the readback carries a number with a
// matching parameter keyword, such as "altimeter 1013" or "runway 24"
func hasCriticalElement(readback string) bool {
	for _, p := range []command.Parameter{
		command.ParamAltitude, command.ParamHeading, command.ParamSpeed, command.ParamSquawk,
		command.ParamFrequency, command.ParamAltimeter, command.ParamRunway,
	} {
		if _, ok := command.Extract(p, readback, false); ok {
			return true
		}
	}
	return false
}

// echoes reports whether every meaningful instruction word is in the readback
func echoes(instruction, readback []string) bool {
	if len(instruction) == 0 {
		return false
	}
	seen := make(map[string]bool, len(readback))
	for _, t := range readback {
		seen[t] = true
	}
	for _, t := range instruction {
		if !seen[t] {
			return false
		}
	}
	return true
}

func isSafetyCritical(kind classify.InstructionType, instruction string) bool {
	if classify.IsClearance(kind) {
		return true
	}
	norm := normalize.Normalize(instruction)
	for _, re := range safetyCritical {
		if re.MatchString(norm) {
			return true
		}
	}
	return false
}

// checkAcknowledgment ends validation when the readback is no more than an
// acknowledgment. Safety-critical clearances answered that way are a
// Roger/Wilco substitution; anything else is an incomplete readback.
func (x *exchange) checkAcknowledgment() bool {
	if classify.IsInformational(x.kind) {
		return false
	}
	required := meaningfulTokens(x.inst)
	if len(required) == 0 {
		return false
	}
	words := meaningfulTokens(x.rb)
	if len(words) >= 3 || hasCriticalElement(x.rb) || echoes(required, words) {
		return false
	}

	if isSafetyCritical(x.kind, x.inst) && len(words) == 0 {
		x.add(models.ReadbackError{
			Type:          models.ErrRogerSubstitution,
			Parameter:     "clearance",
			ExpectedValue: x.expected,
			ActualValue:   strings.TrimSpace(x.readback),
			Severity:      models.SeverityCritical,
			Explanation:   "safety-critical instruction acknowledged with Roger/Wilco instead of a full readback",
			ReferenceCode: refReadback,
		})
		return true
	}
	x.add(models.ReadbackError{
		Type:          models.ErrIncompleteReadback,
		Parameter:     "readback",
		ExpectedValue: x.expected,
		ActualValue:   strings.TrimSpace(x.readback),
		Severity:      models.SeverityHigh,
		Explanation:   "readback does not repeat the instruction's content",
		ReferenceCode: refReadback,
	})
	return true
}

var primaryParameter = map[classify.InstructionType]command.Parameter{
	classify.TypeAltitude: command.ParamAltitude,
	classify.TypeHeading:  command.ParamHeading,
	classify.TypeSpeed:    command.ParamSpeed,
}

// checkParameterConfusion looks for a readback phrased in another value
// category than the instruction, e.g. a heading read back as an altitude
func (x *exchange) checkParameterConfusion() bool {
	want, ok := primaryParameter[x.kind]
	if !ok || command.Mentions(want, x.rb) {
		return false
	}
	for _, other := range []command.Parameter{command.ParamAltitude, command.ParamHeading, command.ParamSpeed} {
		if other == want || !command.Mentions(other, x.rb) || command.Mentions(other, x.inst) {
			continue
		}
		expected, _ := command.Extract(want, x.cmd.Body(), true)
		actual, _ := command.Extract(other, x.rbCmd.Body(), true)
		x.add(models.ReadbackError{
			Type:          models.ErrParameterConfusion,
			Parameter:     string(want),
			ExpectedValue: expected,
			ActualValue:   actual,
			Severity:      models.SeverityCritical,
			Explanation:   fmt.Sprintf("%s instruction read back as %s", want, other),
			ReferenceCode: refReadback,
		})
		return true
	}
	return false
}

// readbackValue extracts p from the readback. The positional fallback is not
// used for a number that another parameter's keyword already claims.
func (x *exchange) readbackValue(p command.Parameter, primary bool) (string, bool) {
	body := x.rbCmd.Body()
	if v, ok := command.Extract(p, body, false); ok || !primary {
		return v, ok
	}
	v, ok := command.Extract(p, body, true)
	if !ok {
		return "", false
	}
	for _, q := range command.ValueParameters {
		if q == p {
			continue
		}
		if qv, ok := command.Extract(q, body, false); ok && normalize.DigitsOnly(qv) == normalize.DigitsOnly(v) {
			return "", false
		}
	}
	return v, true
}

func (x *exchange) checkValues() {
	for _, p := range command.ValueParameters {
		primary := p == x.cmd.Parameter
		expected, ok := command.Extract(p, x.cmd.Body(), primary)
		if !ok {
			continue
		}
		actual, ok := x.readbackValue(p, primary)
		if !ok {
			continue
		}
		x.compareValue(p, expected, actual)
	}
}

func (x *exchange) compareValue(p command.Parameter, expected, actual string) {
	c := command.Compare(p, expected, actual)
	e := models.ReadbackError{
		Parameter:     string(p),
		ExpectedValue: expected,
		ActualValue:   actual,
		ReferenceCode: refReadback,
	}
	switch c.Kind {
	case command.MatchEqual:
		return
	case command.MatchTransposition:
		e.Type = models.ErrTransposition
		e.Severity = models.SeverityCritical
		e.Explanation = fmt.Sprintf("%s digits transposed: read back %s instead of %s", p, actual, expected)
		e.Detail = models.TranspositionDetail{Positions: c.Positions}
	case command.MatchMagnitude:
		e.Type = models.ErrCriticalConfusion
		e.Severity = models.SeverityCritical
		e.Explanation = magnitudeExplanation(p, expected, actual, c.Factor)
		e.Detail = models.MagnitudeDetail{Factor: c.Factor}
	case command.MatchDesignatorMissing:
		e.Type = models.ErrMissingDesignator
		e.Severity = models.SeverityHigh
		e.Explanation = fmt.Sprintf("runway designator omitted: read back %s, cleared %s", actual, expected)
	default:
		e.Type = models.ErrWrongValue
		if p == command.ParamRunway {
			e.Type = models.ErrWrongRunway
		}
		e.Severity = wrongValueSeverity[p]
		e.Explanation = fmt.Sprintf("%s read back as %s, instruction was %s", p, actual, expected)
		if p == command.ParamWaypoint {
			e.Detail = models.SimilarityDetail{Score: c.Similarity}
		}
	}
	x.add(e)
}

func magnitudeExplanation(p command.Parameter, expected, actual string, factor int) string {
	if factor < 0 {
		return fmt.Sprintf("magnitude error: %s read back as %s, 1/%d of the cleared %s", p, actual, -factor, expected)
	}
	return fmt.Sprintf("magnitude error: %s read back as %s, %dx the cleared %s", p, actual, factor, expected)
}

// checkDirection compares turn directions independently of the heading value
func (x *exchange) checkDirection() {
	want, ok := command.ExtractDirection(x.cmd.Body())
	if !ok {
		return
	}
	got, ok := command.ExtractDirection(x.rbCmd.Body())
	if !ok || got == want {
		return
	}
	x.add(models.ReadbackError{
		Type:          models.ErrWrongValue,
		Parameter:     string(command.ParamDirection),
		ExpectedValue: want,
		ActualValue:   got,
		Severity:      models.SeverityCritical,
		Explanation:   fmt.Sprintf("turn direction read back as %s, instruction was %s", got, want),
		ReferenceCode: refReadback,
	})
}

func (x *exchange) checkMultipart() {
	analysis := multipart.AnalyzeCommand(x.cmd, x.rb)
	for _, c := range analysis.Missing() {
		if c.Type == multipart.ComponentCondition || x.hasError(string(c.Type)) {
			continue
		}
		x.add(models.ReadbackError{
			Type:          models.ErrMissingElement,
			Parameter:     string(c.Type),
			ExpectedValue: c.ExpectedReadback,
			Severity:      c.Severity,
			Explanation:   fmt.Sprintf("%s component of a multi-part instruction not read back", c.Type),
			ReferenceCode: refReadback,
		})
	}
}

func (x *exchange) checkCondition() {
	cond := x.cmd.Condition
	if cond == nil {
		return
	}
	detail := models.ConditionDetail{Kind: string(cond.Type), Phrase: cond.Phrase}
	if !cond.MentionedIn(x.rb) {
		x.add(models.ReadbackError{
			Type:          models.ErrConditionOmitted,
			Parameter:     "condition",
			ExpectedValue: cond.Phrase,
			Severity:      models.SeverityHigh,
			Explanation:   fmt.Sprintf("conditional clause %q not read back", cond.Phrase),
			ReferenceCode: refConditional,
			Detail:        detail,
		})
	}
	if !x.cmd.IsImmediate && command.IsImmediate(x.rb) {
		x.add(models.ReadbackError{
			Type:          models.ErrConditionViolated,
			Parameter:     "condition",
			ExpectedValue: cond.Phrase,
			ActualValue:   strings.TrimSpace(x.readback),
			Severity:      models.SeverityCritical,
			Explanation:   fmt.Sprintf("readback claims immediate action on an instruction conditional on %q", cond.Phrase),
			ReferenceCode: refConditional,
			Detail:        detail,
		})
	}
}

func (x *exchange) checkConstraint() {
	c := x.cmd.Constraint
	if c == nil || c.AcknowledgedIn(x.rb) {
		return
	}
	x.add(models.ReadbackError{
		Type:          models.ErrConstraintMissing,
		Parameter:     "constraint",
		ExpectedValue: c.Phrase,
		Severity:      models.SeverityHigh,
		Explanation:   fmt.Sprintf("altitude restriction %q not read back", c.Phrase),
		ReferenceCode: refReadback,
		Detail:        models.ConditionDetail{Kind: string(c.Type), Phrase: c.Phrase},
	})
}

func (x *exchange) checkCallsign() {
	if strings.TrimSpace(x.callsign) == "" || normalize.ContainsCallsign(x.readback, x.callsign) {
		return
	}
	x.add(models.ReadbackError{
		Type:          models.ErrMissingCallsign,
		Parameter:     "callsign",
		ExpectedValue: strings.ToUpper(strings.TrimSpace(x.callsign)),
		Severity:      models.SeverityLow,
		Explanation:   "readback does not include the aircraft callsign",
		ReferenceCode: "ICAO Doc 4444 12.3.1.5",
	})
}

// result derives quality and confidence from the collected findings. An
// explicit quality overrides the derivation.
func (x *exchange) result(quality models.Quality) models.AnalysisResult {
	r := models.AnalysisResult{
		IsCorrect:        len(x.errors) == 0,
		Errors:           x.errors,
		ExpectedResponse: x.expected,
		ActualResponse:   strings.TrimSpace(x.readback),
		InstructionType:  string(x.kind),
		Corrections:      []string{},
	}
	if r.Errors == nil {
		r.Errors = []models.ReadbackError{}
	}

	mismatch := false
	for _, e := range x.errors {
		if e.Type.IsMismatch() {
			mismatch = true
		}
	}
	switch {
	case len(x.errors) == 0:
		r.Quality = models.QualityComplete
		r.Confidence = confidenceCorrect
	case mismatch:
		r.Quality = models.QualityIncorrect
		r.Confidence = confidenceValue
	default:
		r.Quality = models.QualityPartial
		r.Confidence = confidenceOmission
	}
	if quality != "" && len(x.errors) > 0 && !mismatch {
		r.Quality = quality
	}
	if x.kind == classify.TypeUnknown && r.Confidence > confidenceUnknown {
		r.Confidence = confidenceUnknown
	}

	seen := make(map[string]bool)
	for _, e := range x.errors {
		if c := correctionFor(e, x.expected); c != "" && !seen[c] {
			seen[c] = true
			r.Corrections = append(r.Corrections, c)
		}
	}
	return r
}

func correctionFor(e models.ReadbackError, expected string) string {
	switch e.Type {
	case models.ErrRogerSubstitution:
		return fmt.Sprintf("Read back the full clearance: %q", expected)
	case models.ErrIncompleteReadback:
		return fmt.Sprintf("Read back the instruction in full: %q", expected)
	case models.ErrConditionOmitted:
		return fmt.Sprintf("Include the condition %q in the readback", e.ExpectedValue)
	case models.ErrConditionViolated:
		return fmt.Sprintf("Do not act before the condition %q is met", e.ExpectedValue)
	case models.ErrConstraintMissing:
		return fmt.Sprintf("Include the restriction %q in the readback", e.ExpectedValue)
	case models.ErrMissingCallsign:
		return "End the readback with the callsign " + e.ExpectedValue
	case models.ErrParameterConfusion:
		return fmt.Sprintf("Read back the %s, not another parameter: %q", e.Parameter, expected)
	}
	if e.ExpectedValue != "" {
		return fmt.Sprintf("Read back %s as %s", e.Parameter, e.ExpectedValue)
	}
	return ""
}

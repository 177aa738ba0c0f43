package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yegors/readback-check/internal/normalize"
)

// Parameter is a value category carried by an instruction
type Parameter string

const (
	ParamAltitude  Parameter = "altitude"
	ParamHeading   Parameter = "heading"
	ParamSpeed     Parameter = "speed"
	ParamSquawk    Parameter = "squawk"
	ParamFrequency Parameter = "frequency"
	ParamAltimeter Parameter = "altimeter"
	ParamRunway    Parameter = "runway"
	ParamApproach  Parameter = "approach type"
	ParamWaypoint  Parameter = "waypoint"
	ParamDirection Parameter = "turn direction"
)

// ValueParameters lists the value categories in scanning order
var ValueParameters = []Parameter{
	ParamAltitude, ParamHeading, ParamSpeed, ParamSquawk, ParamFrequency,
	ParamRunway, ParamApproach, ParamWaypoint, ParamAltimeter,
}

// WaypointThreshold is the Jaro-Winkler score above which two waypoint
// names are taken to be the same fix
const WaypointThreshold = 0.85

type valuePattern struct {
	re     *regexp.Regexp
	format func(m []string) (string, bool)
}

type extractor struct {
	keyword    []valuePattern
	contextual []valuePattern
	positional []valuePattern
}

func vp(expr string, format func(m []string) (string, bool)) valuePattern {
	return valuePattern{re: regexp.MustCompile(expr), format: format}
}

// Words that the waypoint patterns would otherwise capture
var notWaypoints = map[string]bool{
	"the": true, "and": true, "runway": true, "level": true, "flight": true,
	"left": true, "right": true, "to": true, "at": true, "or": true,
	"above": true, "below": true, "feet": true, "heading": true, "then": true,
	"when": true, "until": true, "after": true, "via": true, "for": true,
	"speed": true, "climb": true, "hold": true, "short": true, "taxiway": true,
	"now": true, "point": true, "tower": true, "ground": true, "radar": true,
	"ils": true, "vor": true, "ndb": true, "rnav": true, "gps": true,
}

var extractors = map[Parameter]extractor{
	ParamAltitude: {
		keyword: []valuePattern{
			vp(`\bflight level (\d{2,3})\b`, flightLevel),
			vp(`\b(\d{3,5}) (?:feet|ft)\b`, feet),
			vp(`\baltitude (\d{3,5})\b`, feet),
		},
		contextual: []valuePattern{
			vp(`\b(?:climb|descend|climbing|descending|maintain|maintaining|leaving|reaching)(?: (?:and|to|maintain|maintaining|altitude|now|immediately|expedite))* (\d{3,5})\b(?: (knots|kts|degrees))?`, feet),
		},
		positional: []valuePattern{vp(`\b(\d{3,5})\b(?: (knots|kts|degrees))?`, feet)},
	},
	ParamHeading: {
		keyword: []valuePattern{vp(`\bheading (\d{1,3})\b`, heading)},
		contextual: []valuePattern{
			vp(`\bturn (?:left|right)(?: to)? (\d{1,3})\b`, heading),
			vp(`\bfly (\d{3})\b`, heading),
			vp(`\b(\d{1,3}) degrees\b`, heading),
		},
		positional: []valuePattern{vp(`\b(\d{1,3})\b`, heading)},
	},
	ParamSpeed: {
		keyword: []valuePattern{
			vp(`\bspeed (\d{2,3})\b`, plain),
			vp(`\b(\d{2,3}) (?:knots|kts)\b`, plain),
			vp(`\bmach (?:decimal |point )?(\d{1,2})\b`, mach),
		},
		contextual: []valuePattern{vp(`\b(?:reduce|increase)(?: speed)?(?: to)? (\d{2,3})\b`, plain)},
		positional: []valuePattern{vp(`\b(\d{2,3})\b`, plain)},
	},
	ParamSquawk: {
		keyword: []valuePattern{
			vp(`\b(?:squawk|squawking|transponder|code)(?: code)? ([0-7]{4})\b`, plain),
		},
		positional: []valuePattern{vp(`\b([0-7]{4})\b`, plain)},
	},
	ParamFrequency: {
		keyword: []valuePattern{
			vp(`\b(?:frequency|on) (\d{3}\.\d{1,3}|1[1-3]\d{1,4})\b`, plain),
			vp(`\b(1[1-3]\d\.\d{1,3})\b`, plain),
		},
		contextual: []valuePattern{
			vp(`\b(?:contact|monitor)(?: [a-z]+){0,3} (\d{3}\.\d{1,3}|1[1-3]\d{1,4})\b`, plain),
		},
		positional: []valuePattern{vp(`\b(1[1-3]\d(?:\.\d{1,3})?)\b`, plain)},
	},
	ParamAltimeter: {
		keyword: []valuePattern{
			vp(`\b(?:altimeter|qnh|qfe)(?: setting)?(?: is)? (\d{2}\.\d{2}|\d{3,4})\b`, digits),
		},
		positional: []valuePattern{vp(`\b(\d{2}\.\d{2}|\d{4})\b`, digits)},
	},
	ParamRunway: {
		keyword: []valuePattern{
			vp(`\brunway (\d{1,2})([lrc])?\b(?: (left|right|center|centre))?`, runway),
		},
		positional: []valuePattern{
			vp(`\b(\d{1,2})([lrc])?\b(?: (left|right|center|centre))?`, runway),
		},
	},
	ParamApproach: {
		keyword: []valuePattern{
			vp(`\b(ils|rnav|rnp|vor|ndb|gps|localizer|loc|visual|lpv)\b`, approach),
		},
	},
	ParamWaypoint: {
		keyword: []valuePattern{
			vp(`\bdirect(?: to)? ([a-z]{3,5})\b`, waypoint),
			vp(`\b(?:cross|crossing|over|overhead|proceed to|hold at|holding at|via) ([a-z]{3,5})\b`, waypoint),
		},
	},
}

func plain(m []string) (string, bool) { return m[1], true }

func digits(m []string) (string, bool) { return normalize.DigitsOnly(m[1]), true }

func flightLevel(m []string) (string, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 {
		return "", false
	}
	return "FL" + pad(n, 3), true
}

// feet rejects numbers followed by a speed or heading unit
func feet(m []string) (string, bool) {
	if len(m) > 2 && m[2] != "" {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 100 {
		return "", false
	}
	return strconv.Itoa(n), true
}

func heading(m []string) (string, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 360 {
		return "", false
	}
	return pad(n, 3), true
}

func mach(m []string) (string, bool) { return "M" + m[1], true }

func runway(m []string) (string, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 36 {
		return "", false
	}
	designator := strings.ToUpper(m[2])
	if designator == "" && len(m) > 3 && m[3] != "" {
		designator = strings.ToUpper(m[3][:1])
	}
	return pad(n, 2) + designator, true
}

func approach(m []string) (string, bool) {
	switch m[1] {
	case "localizer":
		return "LOC", true
	default:
		return strings.ToUpper(m[1]), true
	}
}

func waypoint(m []string) (string, bool) {
	if notWaypoints[m[1]] {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// Extract returns the canonical value of p in text. Keyword-adjacent numbers
// win over contextual ones; the first plausible number is used only when
// primary is set. A false result means the value cannot be determined.
func Extract(p Parameter, text string, primary bool) (string, bool) {
	ex, ok := extractors[p]
	if !ok {
		return "", false
	}
	norm := normalize.Normalize(text)
	if v, ok := firstMatch(ex.keyword, norm); ok {
		return v, true
	}
	if v, ok := firstMatch(ex.contextual, norm); ok {
		return v, true
	}
	if primary {
		return firstMatch(ex.positional, norm)
	}
	return "", false
}

func firstMatch(patterns []valuePattern, text string) (string, bool) {
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if v, ok := p.format(m); ok {
				return v, true
			}
		}
	}
	return "", false
}

var runwayToken = regexp.MustCompile(`^(\d{1,2})([lrc])?$`)

var directionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bturn (left|right)\b`),
	regexp.MustCompile(`\b(left|right)(?: turn)?(?: to)?(?: heading)? \d{1,3}\b`),
	regexp.MustCompile(`\b(left|right)(?: turn)?(?: to)? heading\b`),
}

// ExtractDirection returns "left" or "right" when text commands or reads
// back a turn direction. Runway designators are not directions.
func ExtractDirection(text string) (string, bool) {
	norm := normalize.Normalize(text)
	for _, re := range directionPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(norm, -1) {
			// "runway 24 left ..." is a designator
			prefix := strings.Fields(norm[:m[0]])
			if n := len(prefix); n >= 2 && prefix[n-2] == "runway" {
				continue
			}
			return norm[m[2]:m[3]], true
		}
	}
	return "", false
}

// Keywords returns the vocabulary that marks a readback as talking about p
func Keywords(p Parameter) []string {
	switch p {
	case ParamAltitude:
		return []string{"flight level", "feet", "altitude", "climb", "descend", "climbing", "descending"}
	case ParamHeading:
		return []string{"heading", "turn left", "turn right", "degrees"}
	case ParamSpeed:
		return []string{"speed", "knots", "mach"}
	case ParamSquawk:
		return []string{"squawk", "transponder"}
	case ParamFrequency:
		return []string{"contact", "monitor", "frequency"}
	case ParamAltimeter:
		return []string{"altimeter", "qnh", "qfe"}
	case ParamRunway:
		return []string{"runway"}
	case ParamApproach:
		return []string{"approach", "ils", "rnav", "rnp", "vor", "ndb", "visual", "localizer"}
	case ParamWaypoint:
		return []string{"direct", "cross", "proceed"}
	case ParamDirection:
		return []string{"left", "right"}
	}
	return nil
}

// Mentions reports whether text uses any keyword of p as whole words
func Mentions(p Parameter, text string) bool {
	padded := " " + strings.Join(normalize.Tokens(text), " ") + " "
	for _, kw := range Keywords(p) {
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

// MatchKind is the outcome of comparing a read-back value with the cleared one
type MatchKind int

const (
	MatchEqual MatchKind = iota
	MatchTransposition
	MatchMagnitude
	MatchDesignatorMissing
	MatchDifferent
)

// Comparison describes how an actual value relates to the expected one
type Comparison struct {
	Kind      MatchKind
	Positions []int
	// Factor is 10 or 100 for a magnitude error, negative when the
	// read-back value is smaller than the cleared one.
	Factor     int
	Similarity float64
}

// Compare classifies actual against expected for parameter p. Both must be
// canonical values as returned by Extract.
func Compare(p Parameter, expected, actual string) Comparison {
	switch p {
	case ParamAltitude:
		expected, actual = alignAltitudes(expected, actual)
		ef, af := altitudeFeet(expected), altitudeFeet(actual)
		if ef == af && ef > 0 {
			return Comparison{Kind: MatchEqual}
		}
		ed, ad := strings.TrimPrefix(expected, "FL"), strings.TrimPrefix(actual, "FL")
		if normalize.IsTransposition(ed, ad) {
			return Comparison{Kind: MatchTransposition, Positions: normalize.DiffPositions(ed, ad)}
		}
		if f := magnitude(ef, af); f != 0 {
			return Comparison{Kind: MatchMagnitude, Factor: f}
		}
	case ParamSpeed:
		if expected == actual {
			return Comparison{Kind: MatchEqual}
		}
		if normalize.IsTransposition(expected, actual) {
			return Comparison{Kind: MatchTransposition, Positions: normalize.DiffPositions(expected, actual)}
		}
		e, _ := strconv.Atoi(expected)
		a, _ := strconv.Atoi(actual)
		if f := magnitude(e, a); f != 0 {
			return Comparison{Kind: MatchMagnitude, Factor: f}
		}
	case ParamFrequency:
		ek, ak := FrequencyKey(expected), FrequencyKey(actual)
		if ek == ak {
			return Comparison{Kind: MatchEqual}
		}
		if normalize.IsTransposition(ek, ak) {
			return Comparison{Kind: MatchTransposition, Positions: normalize.DiffPositions(ek, ak)}
		}
	case ParamRunway:
		en, ed := splitRunway(expected)
		an, ad := splitRunway(actual)
		switch {
		case en == an && ed == ad:
			return Comparison{Kind: MatchEqual}
		case en == an && ad == "":
			return Comparison{Kind: MatchDesignatorMissing}
		case en != an && normalize.IsTransposition(en, an):
			return Comparison{Kind: MatchTransposition, Positions: normalize.DiffPositions(en, an)}
		}
	case ParamWaypoint:
		score := normalize.PhoneticSimilarity(expected, actual)
		if score >= WaypointThreshold {
			return Comparison{Kind: MatchEqual, Similarity: score}
		}
		return Comparison{Kind: MatchDifferent, Similarity: score}
	case ParamApproach:
		if expected == actual {
			return Comparison{Kind: MatchEqual}
		}
	default:
		if expected == actual {
			return Comparison{Kind: MatchEqual}
		}
		if normalize.IsTransposition(expected, actual) {
			return Comparison{Kind: MatchTransposition, Positions: normalize.DiffPositions(expected, actual)}
		}
	}
	return Comparison{Kind: MatchDifferent}
}

func magnitude(expected, actual int) int {
	if expected <= 0 || actual <= 0 {
		return 0
	}
	switch {
	case actual == expected*10:
		return 10
	case actual == expected*100:
		return 100
	case expected == actual*10:
		return -10
	case expected == actual*100:
		return -100
	}
	return 0
}

// alignAltitudes reads a bare number below 1000 as a flight level when the
// other side is one, so "FL350" and "350" compare equal
func alignAltitudes(a, b string) (string, string) {
	aFL, bFL := strings.HasPrefix(a, "FL"), strings.HasPrefix(b, "FL")
	if aFL && !bFL {
		if n, err := strconv.Atoi(b); err == nil && n < 1000 {
			b = "FL" + pad(n, 3)
		}
	}
	if bFL && !aFL {
		if n, err := strconv.Atoi(a); err == nil && n < 1000 {
			a = "FL" + pad(n, 3)
		}
	}
	return a, b
}

// altitudeFeet converts a canonical altitude to feet, or 0 when unparseable
func altitudeFeet(v string) int {
	if fl, ok := strings.CutPrefix(v, "FL"); ok {
		n, err := strconv.Atoi(fl)
		if err != nil {
			return 0
		}
		return n * 100
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func splitRunway(v string) (string, string) {
	i := strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' })
	if i < 0 {
		return v, ""
	}
	return v[:i], v[i:]
}

// FrequencyKey reduces a frequency to its significant digits so 124.7,
// 124.70 and "1247" compare equal
func FrequencyKey(v string) string {
	return strings.TrimRight(normalize.DigitsOnly(v), "0")
}

// Present reports whether the value of p appears anywhere in the readback.
// Numeric parameters use containment over the readback's numbers; approach
// types and waypoints use normalized textual and phonetic matching.
func Present(p Parameter, value, readback string) bool {
	if value == "" {
		return false
	}
	if actual, ok := Extract(p, readback, false); ok && Compare(p, value, actual).Kind == MatchEqual {
		return true
	}
	numbers := normalize.Numbers(readback)
	switch p {
	case ParamAltitude:
		want := altitudeFeet(value)
		for _, n := range numbers {
			if altitudeFeet(n) == want || altitudeFeet("FL"+n) == want {
				return true
			}
		}
	case ParamHeading:
		for _, n := range numbers {
			if h, ok := heading([]string{"", n}); ok && h == value {
				return true
			}
		}
	case ParamFrequency:
		key := FrequencyKey(value)
		for _, n := range numbers {
			if FrequencyKey(n) == key {
				return true
			}
		}
	case ParamAltimeter, ParamSquawk, ParamSpeed:
		for _, n := range numbers {
			if normalize.DigitsOnly(n) == normalize.DigitsOnly(value) {
				return true
			}
		}
	case ParamRunway:
		num, _ := splitRunway(value)
		for _, t := range normalize.Tokens(readback) {
			m := runwayToken.FindStringSubmatch(t)
			if m == nil {
				continue
			}
			if r, ok := runway([]string{"", m[1], m[2]}); ok && strings.HasPrefix(r, num) {
				return true
			}
		}
	case ParamApproach:
		want := strings.ToLower(value)
		if want == "loc" {
			want = "localizer"
		}
		for _, t := range normalize.Tokens(readback) {
			if t == want || strings.EqualFold(t, value) {
				return true
			}
		}
	case ParamWaypoint:
		_, _, ok := normalize.BestMatch(value, normalize.Tokens(readback), WaypointThreshold)
		return ok
	}
	return false
}

// Unit names the unit a canonical value of p is expressed in
func Unit(p Parameter, value string) string {
	switch p {
	case ParamAltitude:
		if strings.HasPrefix(value, "FL") {
			return "flight level"
		}
		return "feet"
	case ParamHeading:
		return "degrees"
	case ParamSpeed:
		if strings.HasPrefix(value, "M") {
			return "mach"
		}
		return "knots"
	case ParamFrequency:
		return "MHz"
	case ParamAltimeter:
		if n, err := strconv.Atoi(value); err == nil && n >= 900 && n <= 1100 {
			return "hPa"
		}
		return "inHg"
	}
	return ""
}

// Display renders a canonical value the way a readback would say it in writing
func Display(p Parameter, value string) string {
	switch p {
	case ParamAltitude:
		if fl, ok := strings.CutPrefix(value, "FL"); ok {
			return "flight level " + strings.TrimLeft(fl, "0")
		}
		return value + " feet"
	case ParamRunway:
		num, d := splitRunway(value)
		switch d {
		case "L":
			return "runway " + num + " left"
		case "R":
			return "runway " + num + " right"
		case "C":
			return "runway " + num + " center"
		}
		return "runway " + num
	case ParamHeading:
		return "heading " + value
	case ParamSquawk:
		return "squawk " + value
	case ParamAltimeter:
		return "altimeter " + value
	}
	return value
}

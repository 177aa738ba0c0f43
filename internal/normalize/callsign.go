package normalize

import (
	"regexp"
	"strings"
)

var (
	// Two or three letter airline designator followed by 1-4 digits and an
	// optional suffix letter, written without spaces (PAL123, CEB789A).
	flightNumberPattern = regexp.MustCompile(`^[a-z]{2,3}[0-9]{1,4}[a-z]?$`)

	// Registration marks: N-numbers and the dashed national formats.
	tailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^n[0-9]{1,5}$`),
		regexp.MustCompile(`^n[0-9]{1,4}[a-z]{1,2}$`),
		regexp.MustCompile(`^[a-z]{1,2}[a-z0-9]{3,4}$`),
	}

	// Tokens that look like flight numbers but are phraseology
	notCallsigns = map[string]bool{"rwy": true, "fl": true, "ils": true, "qnh": true}
)

// IsFlightNumber reports whether token looks like a written flight number
func IsFlightNumber(token string) bool {
	token = strings.ToLower(token)
	if !flightNumberPattern.MatchString(token) {
		return false
	}
	return !notCallsigns[leadingLetters(token)]
}

// IsTailNumber reports whether token looks like an aircraft registration.
// The dashed forms (C-FKWZ) are accepted with or without the dash.
func IsTailNumber(token string) bool {
	dashed := strings.Contains(token, "-")
	token = strings.ToLower(strings.ReplaceAll(token, "-", ""))
	if notCallsigns[leadingLetters(token)] {
		return false
	}
	hasDigit := strings.ContainsAny(token, "0123456789")
	for i, p := range tailPatterns {
		if !p.MatchString(token) {
			continue
		}
		// The generic pattern needs a digit or a dash so plain words are not taken as registrations
		if i == len(tailPatterns)-1 && !hasDigit && !dashed {
			continue
		}
		return true
	}
	return false
}

func leadingLetters(s string) string {
	for i, r := range s {
		if r < 'a' || r > 'z' {
			return s[:i]
		}
	}
	return s
}

// StripCallsign normalizes text and removes the callsign from it: the
// supplied callsign in written or spoken form, plus any token that looks like a
// flight number. It must run before numbers are extracted from a readback so
// flight-number digits are never mistaken for instruction values.
func StripCallsign(text, callsign string) string {
	tokens := strings.Fields(Normalize(text))
	target := strings.Join(Tokens(callsign), "")

	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if n := callsignSpan(tokens[i:], target); n > 0 {
			i += n - 1
			continue
		}
		if IsFlightNumber(strings.TrimRight(tokens[i], trailingPunctuation)) {
			continue
		}
		out = append(out, tokens[i])
	}
	return strings.TrimRight(strings.Join(out, " "), trailingPunctuation+" ")
}

// callsignSpan returns how many leading tokens spell target when joined, so
// "pal123" and "pal 123" both match the callsign PAL123
func callsignSpan(tokens []string, target string) int {
	if target == "" {
		return 0
	}
	joined := ""
	for k, t := range tokens {
		joined += strings.TrimRight(t, trailingPunctuation)
		if joined == target {
			return k + 1
		}
		if len(joined) >= len(target) || !strings.HasPrefix(target, joined) {
			return 0
		}
	}
	return 0
}

// ContainsCallsign reports whether callsign appears in text, either exactly
// after normalization or as a close phonetic match of the same length class.
func ContainsCallsign(text, callsign string) bool {
	target := strings.Join(Tokens(callsign), "")
	if target == "" {
		return false
	}
	tokens := Tokens(text)
	if strings.Contains(strings.Join(tokens, ""), target) {
		return true
	}
	for _, t := range tokens {
		if IsFlightNumber(t) && PhoneticSimilarity(t, target) >= 0.9 {
			return true
		}
	}
	return false
}

// ExtractCallsign returns the first flight-number or registration token in
// text in upper case, or "" when none is found.
func ExtractCallsign(text string) string {
	for _, f := range strings.Fields(text) {
		f = strings.Trim(f, trailingPunctuation+leadingPunctuation)
		if IsFlightNumber(f) || IsTailNumber(f) {
			return strings.ToUpper(f)
		}
	}
	return ""
}

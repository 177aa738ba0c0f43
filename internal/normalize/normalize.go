// Package normalize converts spoken ATC numbers into canonical digit strings
// and back, and provides the digit-level and phonetic comparisons used when
// checking a readback against an instruction.
//
// Every function here is pure and safe for concurrent use. The word tables are
// built once at package initialisation and never modified.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// digitWords maps spoken digits, including ICAO pronunciations, to digits.
// "to" and "for" are deliberately absent: they are ordinary words far more
// often than they are misheard digits.
var digitWords = map[string]string{
	"zero": "0", "oh": "0",
	"one": "1", "wun": "1",
	"two": "2",
	"three": "3", "tree": "3",
	"four": "4", "fower": "4",
	"five": "5", "fife": "5",
	"six": "6",
	"seven": "7",
	"eight": "8", "ait": "8",
	"nine": "9", "niner": "9",
}

var teenWords = map[string]int{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fourty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// spokenDigits renders digits the way ICAO phraseology pronounces them
var spokenDigits = map[rune]string{
	'0': "zero", '1': "one", '2': "two", '3': "tree", '4': "four",
	'5': "fife", '6': "six", '7': "seven", '8': "eight", '9': "niner",
	'.': "decimal",
}

var (
	numericPattern       = regexp.MustCompile(`^\d+(\.\d+)?$`)
	groupedNumberPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	compactFlightLevel   = regexp.MustCompile(`^fl(\d{2,3})$`)
	trailingPunctuation  = ",.;:!?)\"'"
	leadingPunctuation   = "(\"'"
	decimalWords         = map[string]bool{"decimal": true, "point": true, "dayseemal": true}
	hundredWords         = map[string]bool{"hundred": true}
	thousandWords        = map[string]bool{"thousand": true, "tousand": true}
)

type tokenKind int

const (
	kindWord tokenKind = iota
	kindDigits
	kindHundred
	kindThousand
	kindDecimal
)

type token struct {
	text  string
	punct string
	kind  tokenKind
}

// Normalize lower-cases s, converts spoken numbers to digits and joins
// adjacent digit groups, so "one two zero" becomes "120", "one thousand five
// hundred" becomes "1500" and "one two one decimal five" becomes "121.5".
// Punctuation after a token is kept and stops digit joining.
//
// Matching is on whole tokens, so "niner" can never be partially rewritten by
// a shorter entry. Normalize is idempotent.
func Normalize(s string) string {
	tokens := mapWords(splitTokens(s))
	return joinTokens(assembleNumbers(tokens))
}

// Tokens returns the normalized tokens of s with punctuation removed
func Tokens(s string) []string {
	fields := strings.Fields(Normalize(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, trailingPunctuation)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// splitTokens lower-cases and splits s, separating trailing punctuation
func splitTokens(s string) []token {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	fields := strings.Fields(s)

	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimLeft(f, leadingPunctuation)
		core := strings.TrimRight(f, trailingPunctuation)
		punct := ""
		if len(core) < len(f) {
			// Keep a single boundary marker; a comma wins over a full stop.
			tail := f[len(core):]
			if strings.Contains(tail, ",") {
				punct = ","
			} else {
				punct = tail[:1]
			}
		}
		if groupedNumberPattern.MatchString(core) {
			core = strings.ReplaceAll(core, ",", "")
		}
		if core == "" {
			if punct != "" && len(tokens) > 0 && tokens[len(tokens)-1].punct == "" {
				tokens[len(tokens)-1].punct = punct
			}
			continue
		}
		if m := compactFlightLevel.FindStringSubmatch(core); m != nil {
			tokens = append(tokens,
				token{text: "flight"},
				token{text: "level"},
				token{text: m[1], punct: punct})
			continue
		}
		if core == "fl" {
			tokens = append(tokens, token{text: "flight"}, token{text: "level", punct: punct})
			continue
		}
		tokens = append(tokens, token{text: core, punct: punct})
	}
	return tokens
}

// mapWords classifies tokens and replaces number words with digits.
// A tens word directly followed by a single spoken digit collapses into one
// number ("twenty five" -> "25").
func mapWords(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case numericPattern.MatchString(t.text):
			t.kind = kindDigits
		case digitWords[t.text] != "":
			t.text = digitWords[t.text]
			t.kind = kindDigits
		case teenWords[t.text] != 0:
			t.text = strconv.Itoa(teenWords[t.text])
			t.kind = kindDigits
		case tensWords[t.text] != 0:
			value := tensWords[t.text]
			if t.punct == "" && i+1 < len(tokens) {
				if d, ok := singleDigit(tokens[i+1].text); ok && d > 0 {
					value += d
					t.punct = tokens[i+1].punct
					i++
				}
			}
			t.text = strconv.Itoa(value)
			t.kind = kindDigits
		case hundredWords[t.text]:
			t.kind = kindHundred
		case thousandWords[t.text]:
			t.text = "thousand"
			t.kind = kindThousand
		case decimalWords[t.text]:
			t.kind = kindDecimal
		default:
			t.kind = kindWord
		}
		out = append(out, t)
	}
	return out
}

func singleDigit(word string) (int, bool) {
	if d, ok := digitWords[word]; ok {
		return int(d[0] - '0'), true
	}
	if len(word) == 1 && word[0] >= '0' && word[0] <= '9' {
		return int(word[0] - '0'), true
	}
	return 0, false
}

// assembleNumbers folds runs of digit tokens and multipliers into single
// numeric tokens. A multiplier or decimal point may follow a number that was
// itself built from a multiplier, so the output never holds two tokens a
// second pass would join.
func assembleNumbers(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if tokens[i].kind != kindDigits {
			t := tokens[i]
			t.kind = kindWord
			out = append(out, t)
			i++
			continue
		}

		var (
			total    int // whole thousands
			group    int // below a thousand, from "hundred"
			current  string
			punct    string
			hasMult  bool
			consumed int
		)
		j := i
		for j < len(tokens) {
			t := tokens[j]
			accepted := false
			switch t.kind {
			case kindDigits:
				current += t.text
				accepted = true
			case kindHundred:
				if j > i && numeric(tokens[j-1].kind) && !strings.Contains(current, ".") {
					switch {
					case current != "":
						group += atoiOr(current, 1) * 100
					case group > 0:
						group *= 100
					default:
						total *= 100
					}
					current = ""
					hasMult = true
					accepted = true
				}
			case kindThousand:
				if j > i && numeric(tokens[j-1].kind) && !strings.Contains(current, ".") {
					if g := group + atoiOr(current, 0); g > 0 {
						total += g * 1000
					} else {
						total *= 1000
					}
					group = 0
					current = ""
					hasMult = true
					accepted = true
				}
			case kindDecimal:
				if j > i && numeric(tokens[j-1].kind) && tokens[j-1].punct == "" &&
					j+1 < len(tokens) && tokens[j+1].kind == kindDigits && !strings.Contains(current, ".") {
					current += "."
					accepted = true
				}
			}
			if !accepted {
				break
			}
			consumed++
			j++
			if t.punct != "" {
				punct = t.punct
				break
			}
		}

		text := current
		if hasMult {
			whole, frac, hasFrac := strings.Cut(current, ".")
			text = strconv.Itoa(total + group + atoiOr(whole, 0))
			if hasFrac {
				text += "." + frac
			}
		}
		out = append(out, token{text: text, punct: punct, kind: kindDigits})
		i += consumed
	}
	return out
}

func numeric(k tokenKind) bool {
	return k == kindDigits || k == kindHundred || k == kindThousand
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func joinTokens(tokens []token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.text+t.punct)
	}
	return strings.Join(parts, " ")
}

// Spoken renders a digit string using ICAO number words, so "270" becomes
// "two seven zero" and "121.5" becomes "one two one decimal fife". Characters
// that are not digits or a decimal point are passed through unchanged.
func Spoken(digits string) string {
	words := make([]string, 0, len(digits))
	for _, r := range digits {
		if w, ok := spokenDigits[r]; ok {
			words = append(words, w)
			continue
		}
		words = append(words, string(r))
	}
	return strings.Join(words, " ")
}

// IsNumeric reports whether s is a digit string with an optional decimal part
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// Numbers returns every numeric token of s after normalization, in order
func Numbers(s string) []string {
	var out []string
	for _, t := range Tokens(s) {
		if IsNumeric(t) {
			out = append(out, t)
		}
	}
	return out
}

// DigitsOnly strips everything but digits, so "121.50" becomes "12150"
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

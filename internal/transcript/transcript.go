// Package transcript turns speaker-labelled transcript text into
// instruction/readback exchanges.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/normalize"
)

// Line is one transmission of a transcript
type Line struct {
	Number  int            `json:"line"`
	Speaker models.Speaker `json:"speaker"`
	Text    string         `json:"text"`
}

// Exchange is an ATC line paired with the reply that followed it
type Exchange struct {
	Instruction Line   `json:"instruction"`
	Readback    Line   `json:"readback"`
	Callsign    string `json:"callsign,omitempty"`
}

// speakerLabels maps accepted line prefixes to speakers
var speakerLabels = map[string]models.Speaker{
	"atc":        models.SpeakerATC,
	"controller": models.SpeakerATC,
	"pilot":      models.SpeakerPilot,
}

// ParseLine splits "ATC: text" into speaker and text. Lines without a known
// label keep their full text and are UNKNOWN.
func ParseLine(s string) (models.Speaker, string) {
	s = strings.TrimSpace(s)
	label, rest, ok := strings.Cut(s, ":")
	if ok {
		key := strings.ToLower(strings.Trim(strings.TrimSpace(label), "[]"))
		if speaker, known := speakerLabels[key]; known {
			return speaker, strings.TrimSpace(rest)
		}
	}
	return models.SpeakerUnknown, s
}

// MaxLineBytes bounds a single transcript line, matching the API body limit
const MaxLineBytes = 1 << 20

// Parse reads a transcript, skipping blank lines. A line longer than
// MaxLineBytes is an error.
func Parse(r io.Reader) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	n := 0
	for scanner.Scan() {
		n++
		speaker, text := ParseLine(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, Line{Number: n, Speaker: speaker, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return lines, nil
}

// Pair matches each ATC line with the next line that is not ATC. When ATC
// speaks twice in a row only the later instruction is paired.
func Pair(lines []Line) []Exchange {
	var (
		out     []Exchange
		pending *Line
	)
	for i := range lines {
		l := lines[i]
		if l.Speaker == models.SpeakerATC {
			pending = &lines[i]
			continue
		}
		if pending == nil {
			continue
		}
		out = append(out, Exchange{
			Instruction: *pending,
			Readback:    l,
			Callsign:    inferCallsign(pending.Text, l.Text),
		})
		pending = nil
	}
	return out
}

func inferCallsign(instruction, readback string) string {
	if cs := normalize.ExtractCallsign(instruction); cs != "" {
		return strings.ToUpper(cs)
	}
	return strings.ToUpper(normalize.ExtractCallsign(readback))
}

package readback

import (
	"strings"

	"github.com/yegors/readback-check/internal/normalize"
)

var courtesyWords = map[string]bool{
	"please": true, "hello": true, "thanks": true, "thank": true, "you": true,
	"good": true, "day": true, "morning": true, "afternoon": true, "evening": true,
	"goodbye": true, "bye": true, "cheers": true,
}

// ExpectedReadback builds the standard readback of instruction: numbers in
// digits, courtesy words dropped and the callsign moved to the end. When
// callsign is empty the first flight number in the instruction is used.
func ExpectedReadback(instruction, callsign string) string {
	fields := strings.Fields(normalize.StripCallsign(instruction, callsign))

	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		word := strings.TrimRight(f, ",.;:!?")
		if !courtesyWords[word] {
			kept = append(kept, f)
			continue
		}
		// keep the clause boundary the dropped word carried
		if punct := f[len(word):]; punct != "" && len(kept) > 0 {
			last := kept[len(kept)-1]
			if strings.TrimRight(last, ",.;:!?") == last {
				kept[len(kept)-1] = last + punct
			}
		}
	}
	out := strings.TrimRight(strings.Join(kept, " "), ",.;:!? ")

	cs := strings.TrimSpace(callsign)
	if cs == "" {
		cs = normalize.ExtractCallsign(instruction)
	}
	if cs == "" {
		return out
	}
	if out == "" {
		return strings.ToUpper(cs)
	}
	return out + ", " + strings.ToUpper(cs)
}

// Package phase infers the flight phase of an exchange by scoring its text
// against weighted phase signatures.
package phase

import (
	"math"
	"regexp"
	"strings"

	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/normalize"
)

// ClueBonus is added for every context clue found in the exchange
const ClueBonus = 2

// strongMatch is the score treated as an unambiguous signature hit
const strongMatch = 20.0

type weighted struct {
	re     *regexp.Regexp
	weight int
}

// Signature is the evidence for one flight phase
type Signature struct {
	Phase    models.FlightPhase
	patterns []weighted
	clues    []string
}

func w(expr string, weight int) weighted {
	return weighted{re: regexp.MustCompile(expr), weight: weight}
}

// signatures are checked in order; on equal scores the earlier one wins
var signatures = []Signature{
	{
		Phase: models.PhaseGoAround,
		patterns: []weighted{
			w(`\bgo around\b`, 20),
			w(`\bmissed approach\b`, 12),
		},
		clues: []string{"climb", "runway heading", "heading"},
	},
	{
		Phase: models.PhaseTakeoff,
		patterns: []weighted{
			w(`\bcleared (for )?take ?off\b`, 15),
			w(`\btake ?off\b`, 6),
		},
		clues: []string{"wind", "runway"},
	},
	{
		Phase: models.PhaseLanding,
		patterns: []weighted{
			w(`\bcleared (to|for) land\b`, 15),
			w(`\btouch and go\b`, 10),
			w(`\blanding\b`, 4),
		},
		clues: []string{"wind", "runway"},
	},
	{
		Phase: models.PhaseLineUp,
		patterns: []weighted{
			w(`\bline up( and wait)?\b`, 12),
			w(`\bposition and hold\b`, 12),
		},
		clues: []string{"runway", "behind"},
	},
	{
		Phase: models.PhaseApproach,
		patterns: []weighted{
			w(`\bcleared (for )?(the )?(ils|rnav|rnp|vor|ndb|gps|localizer|visual)\b`, 15),
			w(`\bapproach\b`, 5),
			w(`\bestablished\b`, 6),
			w(`\blocali[sz]er\b`, 5),
			w(`\bglide ?slope\b`, 6),
		},
		clues: []string{"qnh", "altimeter", "intercept"},
	},
	{
		Phase: models.PhaseFinalApproach,
		patterns: []weighted{
			w(`\bfinal\b`, 6),
			w(`\bcontact tower\b`, 6),
			w(`\b\d{1,2} miles? final\b`, 8),
			w(`\bcontinue approach\b`, 8),
		},
		clues: []string{"short final", "outer marker"},
	},
	{
		Phase: models.PhaseRollout,
		patterns: []weighted{
			w(`\bvacate\b`, 10),
			w(`\bexit (left|right|via)\b`, 8),
			w(`\bbacktrack\b`, 6),
			w(`\bwhen vacated\b`, 8),
		},
		clues: []string{"contact ground", "taxiway"},
	},
	{
		Phase: models.PhaseTaxi,
		patterns: []weighted{
			w(`\btaxi\b`, 10),
			w(`\bhold(ing)? point\b`, 6),
			w(`\bvia (taxiway )?[a-z]\d?\b`, 4),
		},
		clues: []string{"taxiway", "ground", "apron"},
	},
	{
		Phase: models.PhaseGround,
		patterns: []weighted{
			w(`\b(push ?back|start ?up)\b`, 10),
			w(`\bclearance delivery\b`, 6),
			w(`\bready to copy\b`, 4),
		},
		clues: []string{"gate", "stand", "apron", "ramp"},
	},
	{
		Phase: models.PhaseInitialClimb,
		patterns: []weighted{
			w(`\bafter departure\b`, 8),
			w(`\bclimb (via sid|initially)\b`, 8),
			w(`\bclimb (and maintain )?\d{3,4} feet\b`, 5),
			w(`\bairborne\b`, 6),
		},
		clues: []string{"runway heading", "initially"},
	},
	{
		Phase: models.PhaseDeparture,
		patterns: []weighted{
			w(`\bcontact departure\b`, 10),
			w(`\bdeparture\b`, 4),
			w(`\b[a-z]+ \d[a-z]? departure\b`, 8),
			w(`\bsid\b`, 6),
		},
		clues: []string{"radar contact", "noise abatement", "runway heading"},
	},
	{
		Phase: models.PhaseClimb,
		patterns: []weighted{
			w(`\bclimb(ing)?( and maintain)? flight level\b`, 8),
			w(`\bclimb(ing)?\b`, 6),
		},
		clues: []string{"expedite", "rate"},
	},
	{
		Phase: models.PhaseDescent,
		patterns: []weighted{
			w(`\bdescend(ing)?\b`, 8),
			w(`\bwhen ready descend\b`, 4),
		},
		clues: []string{"discretion", "descent"},
	},
	{
		Phase: models.PhaseArrival,
		patterns: []weighted{
			w(`\bstar\b`, 6),
			w(`\barrival\b`, 6),
			w(`\bexpect (ils|rnav|vectors|visual)\b`, 8),
			w(`\bcontact approach\b`, 8),
			w(`\bvectors\b`, 4),
		},
		clues: []string{"information", "transition level"},
	},
	{
		Phase: models.PhaseCruise,
		patterns: []weighted{
			w(`\bmaintain flight level \d{3}\b`, 5),
			w(`\bcontact (center|control)\b`, 8),
			w(`\bdirect\b`, 4),
			w(`\bmach\b`, 6),
		},
		clues: []string{"center", "control", "level"},
	},
}

// Result is the detected phase with its confidence in [0,1]
type Result struct {
	Phase      models.FlightPhase `json:"phase"`
	Confidence float64            `json:"confidence"`
	Score      int                `json:"score"`
}

// Score returns the signature score of s against normalized text
func (s Signature) Score(text string) int {
	score := 0
	for _, p := range s.patterns {
		if p.re.MatchString(text) {
			score += p.weight
		}
	}
	padded := " " + text + " "
	for _, c := range s.clues {
		if strings.Contains(padded, " "+c+" ") {
			score += ClueBonus
		}
	}
	return score
}

// Detect scores the instruction and readback together and returns the best
// phase. An exchange matching no signature is cruise with zero confidence.
func Detect(instruction, readback string) Result {
	text := strings.Join(normalize.Tokens(instruction+" "+readback), " ")

	best := Result{Phase: models.PhaseCruise}
	for _, s := range signatures {
		score := s.Score(text)
		if score > best.Score {
			best = Result{Phase: s.Phase, Score: score}
		}
	}
	if best.Score > 0 {
		best.Confidence = math.Round(math.Min(float64(best.Score)/strongMatch, 1)*100) / 100
	}
	return best
}

// Scores returns every phase's score for the exchange, for diagnostics
func Scores(instruction, readback string) map[models.FlightPhase]int {
	text := strings.Join(normalize.Tokens(instruction+" "+readback), " ")
	out := make(map[models.FlightPhase]int, len(signatures))
	for _, s := range signatures {
		out[s.Phase] = s.Score(text)
	}
	return out
}

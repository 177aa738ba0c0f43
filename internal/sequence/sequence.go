// Package sequence tracks how a session's readback errors develop over time.
// The caller supplies the history oldest first; nothing here sorts it.
package sequence

import "github.com/yegors/readback-check/internal/models"

const (
	// trendDeadBand is the mean-weight difference below which a trend is stable
	trendDeadBand = 0.5
	// escalationRun is how many consecutive errors count as escalation
	escalationRun = 3
)

// Track derives the sequence state from history
func Track(history []models.HistoryEntry) models.SequenceState {
	return models.SequenceState{
		ErrorTrend:        Trend(history),
		ConsecutiveErrors: ConsecutiveErrors(history),
		Escalating:        Escalating(history),
		DominantErrorType: DominantErrorType(history),
		WindowSize:        len(history),
	}
}

// ConsecutiveErrors counts back from the newest entry while severity is not low
func ConsecutiveErrors(history []models.HistoryEntry) int {
	n := 0
	for i := len(history) - 1; i >= 0; i-- {
		if !isError(history[i]) {
			break
		}
		n++
	}
	return n
}

func isError(e models.HistoryEntry) bool {
	return e.Severity.Valid() && e.Severity != models.SeverityLow
}

// Trend compares the mean severity weight of the newer half of history with
// the older half. With an odd length the middle entry belongs to the newer half.
func Trend(history []models.HistoryEntry) models.Trend {
	if len(history) < 2 {
		return models.TrendStable
	}
	mid := len(history) / 2
	older, newer := meanWeight(history[:mid]), meanWeight(history[mid:])
	switch diff := newer - older; {
	case diff > trendDeadBand:
		return models.TrendDeclining
	case diff < -trendDeadBand:
		return models.TrendImproving
	default:
		return models.TrendStable
	}
}

func meanWeight(entries []models.HistoryEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := 0
	for _, e := range entries {
		total += e.Severity.Weight()
	}
	return float64(total) / float64(len(entries))
}

// Escalating is true when the last three severities strictly rise or the
// consecutive error run has reached three
func Escalating(history []models.HistoryEntry) bool {
	if ConsecutiveErrors(history) >= escalationRun {
		return true
	}
	n := len(history)
	if n < escalationRun {
		return false
	}
	a, b, c := history[n-3].Severity.Weight(), history[n-2].Severity.Weight(), history[n-1].Severity.Weight()
	return a < b && b < c
}

// DominantErrorType is the most frequent non-empty error type. Ties go to
// the type seen most recently.
func DominantErrorType(history []models.HistoryEntry) models.ErrorType {
	counts := make(map[models.ErrorType]int)
	var (
		best      models.ErrorType
		bestCount int
	)
	for _, e := range history {
		if e.Type == "" {
			continue
		}
		counts[e.Type]++
		if c := counts[e.Type]; c >= bestCount {
			best, bestCount = e.Type, c
		}
	}
	return best
}

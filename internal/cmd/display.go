package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/evaluation"
	"github.com/yegors/readback-check/internal/models"
)

var (
	headerColor   = color.New(color.FgCyan, color.Bold)
	correctColor  = color.New(color.FgGreen, color.Bold)
	criticalColor = color.New(color.FgRed, color.Bold)
	highColor     = color.New(color.FgRed)
	mediumColor   = color.New(color.FgYellow)
	lowColor      = color.New(color.FgCyan)
)

func severityColor(s models.Severity) *color.Color {
	switch s {
	case models.SeverityCritical:
		return criticalColor
	case models.SeverityHigh:
		return highColor
	case models.SeverityMedium:
		return mediumColor
	default:
		return lowColor
	}
}

// printAnalysis writes a human readable report of one analysis
func printAnalysis(w io.Writer, res analyzer.ExtendedResult) {
	if res.Correct() {
		correctColor.Fprintf(w, "CORRECT")
	} else {
		severityColor(res.MostSevere()).Fprintf(w, "INCORRECT (%s)", res.MostSevere())
	}
	fmt.Fprintf(w, "  %s, quality %s, confidence %.2f\n", res.InstructionType, res.OverallQuality, res.Confidence)
	fmt.Fprintf(w, "  Expected: %s\n", res.ExpectedResponse)

	if res.Phase != "" {
		fmt.Fprintf(w, "  Phase: %s (%.2f)\n", res.Phase, res.PhaseConfidence)
	}

	for _, e := range res.AllErrors() {
		printError(w, e)
	}
	for _, c := range res.Corrections {
		fmt.Fprintf(w, "  -> %s\n", c)
	}

	if res.Multipart != nil && len(res.Multipart.Components) > 1 {
		fmt.Fprintf(w, "  Multi-part: %d components, %d%% read back\n",
			len(res.Multipart.Components), res.Multipart.ReadbackCompleteness)
	}
	if res.Safety != nil {
		fmt.Fprintf(w, "  Safety score: %.1f, contextual severity %s\n",
			res.Safety.Score, res.Safety.ContextualSeverity)
		for _, v := range res.Safety.Vectors {
			if v.MitigationRequired {
				mediumColor.Fprintf(w, "    mitigation: %s (%.0f)\n", v.Factor, v.Score)
			}
		}
	}
	if res.Sequence != nil {
		fmt.Fprintf(w, "  Session: trend %s, %d consecutive errors", res.Sequence.ErrorTrend, res.Sequence.ConsecutiveErrors)
		if res.Sequence.Escalating {
			criticalColor.Fprintf(w, ", escalating")
		}
		fmt.Fprintln(w)
	}
}

func printError(w io.Writer, e models.ReadbackError) {
	severityColor(e.Severity).Fprintf(w, "  [%-8s]", e.Severity)
	fmt.Fprintf(w, " %s %s", e.Type, e.Parameter)
	if e.ExpectedValue != "" || e.ActualValue != "" {
		fmt.Fprintf(w, ": expected %q, got %q", e.ExpectedValue, e.ActualValue)
	}
	fmt.Fprintln(w)
	if e.Explanation != "" {
		fmt.Fprintf(w, "             %s\n", e.Explanation)
	}
}

// printReport writes an evaluation summary
func printReport(w io.Writer, name string, r *evaluation.Report) {
	headerColor.Fprintf(w, "\n=== Evaluation: %s ===\n\n", name)
	fmt.Fprintf(w, "  Exchanges:            %d\n", r.TotalExchanges)
	fmt.Fprintf(w, "  Correct readbacks:    %d\n", r.CorrectReadbacks)
	fmt.Fprintf(w, "  Phase accuracy:       %s\n", percent(r.PhaseAccuracy))
	fmt.Fprintf(w, "  Departure error rate: %s\n", percent(r.DepartureErrorRate))
	fmt.Fprintf(w, "  Approach error rate:  %s\n", percent(r.ApproachErrorRate))
	fmt.Fprintf(w, "  Avg completeness:     %.1f%%\n", r.AverageCompleteness)
	fmt.Fprintf(w, "  Critical errors:      ")
	if r.CriticalErrorCount > 0 {
		criticalColor.Fprintf(w, "%d\n", r.CriticalErrorCount)
	} else {
		correctColor.Fprintf(w, "0\n")
	}

	for _, res := range r.Results {
		if res.Analysis.Correct() {
			continue
		}
		fmt.Fprintf(w, "\n  ATC:   %s\n  Pilot: %s\n", res.Exchange.ATC, res.Exchange.Pilot)
		for _, e := range res.Analysis.AllErrors() {
			printError(w, e)
		}
	}
}

func percent(f float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", f*100), ".0") + "%"
}

// Package evaluation runs the analyzer over a reference corpus and reports
// aggregate accuracy, and exports analysed exchanges as training records.
package evaluation

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/pkg/logger"
)

// Result is one analysed corpus exchange
type Result struct {
	Exchange Exchange                `json:"exchange"`
	Analysis analyzer.ExtendedResult `json:"analysis"`
}

// Phase is the expected phase when the corpus names one, else the detected phase
func (r Result) Phase() models.FlightPhase {
	if r.Exchange.ExpectedPhase != "" {
		return r.Exchange.ExpectedPhase
	}
	return r.Analysis.Phase
}

// Report aggregates a corpus run. Rates and accuracy are fractions in [0,1].
type Report struct {
	TotalExchanges      int      `json:"total_exchanges"`
	CorrectReadbacks    int      `json:"correct_readbacks"`
	PhaseAccuracy       float64  `json:"phase_accuracy"`
	DepartureErrorRate  float64  `json:"departure_error_rate"`
	ApproachErrorRate   float64  `json:"approach_error_rate"`
	AverageCompleteness float64  `json:"average_completeness"`
	CriticalErrorCount  int      `json:"critical_error_count"`
	Results             []Result `json:"results,omitempty"`
}

// Evaluator analyses corpora in parallel
type Evaluator struct {
	analyzer *analyzer.Analyzer
	workers  int
	logger   *logger.Logger
}

// NewEvaluator creates an evaluator. workers <= 0 means one per CPU.
func NewEvaluator(a *analyzer.Analyzer, workers int, logger *logger.Logger) *Evaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Evaluator{
		analyzer: a,
		workers:  workers,
		logger:   logger.Named("evaluation"),
	}
}

// Evaluate analyses every exchange in auto mode and aggregates the outcome.
// Exchanges are independent, so they run concurrently; results keep corpus order.
func (e *Evaluator) Evaluate(ctx context.Context, exchanges []Exchange) (*Report, error) {
	if len(exchanges) == 0 {
		return nil, ErrEmptyCorpus
	}
	start := time.Now()

	results := make([]Result, len(exchanges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, x := range exchanges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{
				Exchange: x,
				Analysis: e.analyzer.Analyze(analyzer.Request{
					Instruction: x.ATC,
					Readback:    x.Pilot,
					Callsign:    x.Callsign,
					Mode:        analyzer.ModeAuto,
				}),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to evaluate corpus: %w", err)
	}

	report := Summarize(results)
	e.logger.Info("Evaluated corpus",
		logger.Int("exchanges", report.TotalExchanges),
		logger.Int("correct", report.CorrectReadbacks),
		logger.Int("critical_errors", report.CriticalErrorCount),
		logger.Float64("phase_accuracy", report.PhaseAccuracy),
		logger.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// Summarize aggregates analysed exchanges into a report
func Summarize(results []Result) *Report {
	r := &Report{TotalExchanges: len(results), Results: results}

	var (
		phaseLabelled, phaseHits int
		depTotal, depErrors      int
		appTotal, appErrors      int
		completeness             float64
	)
	for _, res := range results {
		a := res.Analysis
		if a.Correct() {
			r.CorrectReadbacks++
		}
		for _, err := range a.AllErrors() {
			if err.Severity == models.SeverityCritical {
				r.CriticalErrorCount++
			}
		}
		if a.Multipart != nil {
			completeness += float64(a.Multipart.ReadbackCompleteness)
		} else {
			completeness += 100
		}
		if res.Exchange.ExpectedPhase != "" {
			phaseLabelled++
			if res.Exchange.ExpectedPhase == a.Phase {
				phaseHits++
			}
		}

		switch p := res.Phase(); {
		case p.IsDeparture():
			depTotal++
			if !a.Correct() {
				depErrors++
			}
		case p.IsApproach():
			appTotal++
			if !a.Correct() {
				appErrors++
			}
		}
	}

	r.PhaseAccuracy = ratio(phaseHits, phaseLabelled)
	r.DepartureErrorRate = ratio(depErrors, depTotal)
	r.ApproachErrorRate = ratio(appErrors, appTotal)
	if len(results) > 0 {
		r.AverageCompleteness = math.Round(completeness/float64(len(results))*10) / 10
	}
	return r
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*1000) / 1000
}

package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/storage/sqlite"
	"github.com/yegors/readback-check/pkg/logger"
)

// HistoryStore keeps analysed exchanges per session
type HistoryStore interface {
	StoreExchange(record *sqlite.ExchangeRecord) (int64, error)
	GetHistory(sessionID string, window int) ([]models.HistoryEntry, error)
}

// Result is one analysed exchange of a transcript
type Result struct {
	Exchange Exchange                `json:"exchange"`
	Analysis analyzer.ExtendedResult `json:"analysis"`
}

// Processor analyses exchanges in session order. With a store and a session
// ID every exchange is analysed against the session's recent history and
// then recorded.
type Processor struct {
	analyzer *analyzer.Analyzer
	store    HistoryStore
	window   int
	now      func() time.Time
	logger   *logger.Logger
}

// NewProcessor creates a processor. store may be nil to analyse without history.
func NewProcessor(a *analyzer.Analyzer, store HistoryStore, window int, logger *logger.Logger) *Processor {
	return &Processor{
		analyzer: a,
		store:    store,
		window:   window,
		now:      time.Now,
		logger:   logger.Named("transcript"),
	}
}

// Analyze analyses one request within a session
func (p *Processor) Analyze(ctx context.Context, sessionID string, req analyzer.Request) (analyzer.ExtendedResult, error) {
	if err := ctx.Err(); err != nil {
		return analyzer.ExtendedResult{}, err
	}
	tracked := p.store != nil && sessionID != "" && p.window > 0

	if tracked && len(req.History) == 0 {
		history, err := p.store.GetHistory(sessionID, p.window)
		if err != nil {
			return analyzer.ExtendedResult{}, fmt.Errorf("failed to load session history: %w", err)
		}
		req.History = history
	}

	res := p.analyzer.Analyze(req)

	if tracked {
		rec := sqlite.NewExchangeRecord(sessionID, req, res, p.now())
		if _, err := p.store.StoreExchange(rec); err != nil {
			return res, fmt.Errorf("failed to store exchange: %w", err)
		}
	}
	return res, nil
}

// Process pairs the lines and analyses every exchange in order
func (p *Processor) Process(ctx context.Context, sessionID string, lines []Line, mode analyzer.Mode) ([]Result, error) {
	exchanges := Pair(lines)
	results := make([]Result, 0, len(exchanges))
	for _, x := range exchanges {
		res, err := p.Analyze(ctx, sessionID, analyzer.Request{
			Instruction: x.Instruction.Text,
			Readback:    x.Readback.Text,
			Callsign:    x.Callsign,
			Mode:        mode,
		})
		if err != nil {
			return results, err
		}
		results = append(results, Result{Exchange: x, Analysis: res})
	}

	p.logger.WithSession(sessionID).Info("Processed transcript",
		logger.Int("lines", len(lines)),
		logger.Int("exchanges", len(exchanges)),
	)
	return results, nil
}

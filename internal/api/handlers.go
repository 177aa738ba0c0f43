// Package api exposes readback analysis over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/evaluation"
	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/internal/sequence"
	"github.com/yegors/readback-check/internal/storage/sqlite"
	"github.com/yegors/readback-check/internal/transcript"
	"github.com/yegors/readback-check/pkg/logger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// SessionStore is the session history the handlers read and write
type SessionStore interface {
	transcript.HistoryStore
	GetSessionExchanges(sessionID string, limit int) ([]*sqlite.ExchangeRecord, error)
	GetExchangesByCallsign(callsign string, limit int) ([]*sqlite.ExchangeRecord, error)
	DeleteSession(sessionID string) (int64, error)
}

// HandlerConfig holds the handler options taken from the service config
type HandlerConfig struct {
	HistoryWindow   int
	RequireCallsign bool
}

// Handler serves the API endpoints
type Handler struct {
	analyzer  *analyzer.Analyzer
	processor *transcript.Processor
	evaluator *evaluation.Evaluator
	store     SessionStore
	config    HandlerConfig
	startTime time.Time
	logger    *logger.Logger
}

// NewHandler creates the API handler. store may be nil to run without
// session history.
func NewHandler(a *analyzer.Analyzer, evaluator *evaluation.Evaluator, store SessionStore, cfg HandlerConfig, logger *logger.Logger) *Handler {
	var history transcript.HistoryStore
	if store != nil {
		history = store
	}
	return &Handler{
		analyzer:  a,
		processor: transcript.NewProcessor(a, history, cfg.HistoryWindow, logger),
		evaluator: evaluator,
		store:     store,
		config:    cfg,
		startTime: time.Now(),
		logger:    logger.Named("api-handler"),
	}
}

// AnalyzeRequest is the body of POST /analyze
type AnalyzeRequest struct {
	Instruction string                `json:"instruction"`
	Readback    string                `json:"readback"`
	Callsign    string                `json:"callsign,omitempty"`
	Mode        string                `json:"mode,omitempty"`
	SessionID   string                `json:"session_id,omitempty"`
	History     []models.HistoryEntry `json:"history,omitempty"`
}

// AnalyzeResponse is the body returned by POST /analyze
type AnalyzeResponse struct {
	SessionID       string                  `json:"session_id,omitempty"`
	ExpectedOutcome string                  `json:"expected_outcome"`
	Analysis        analyzer.ExtendedResult `json:"analysis"`
}

// TranscriptRequest is the body of POST /transcripts/analyze
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
	Mode       string `json:"mode,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
}

// TranscriptResponse is the body returned by POST /transcripts/analyze
type TranscriptResponse struct {
	SessionID string              `json:"session_id,omitempty"`
	Lines     int                 `json:"lines"`
	Results   []transcript.Result `json:"results"`
}

// EvaluateRequest is the body of POST /evaluate. Without exchanges the
// built-in reference corpus is evaluated.
type EvaluateRequest struct {
	Exchanges      []evaluation.Exchange `json:"exchanges,omitempty"`
	IncludeResults bool                  `json:"include_results,omitempty"`
}

// HistoryResponse is the body returned by GET /sessions/{id}/history
type HistoryResponse struct {
	SessionID string                   `json:"session_id"`
	Exchanges []*sqlite.ExchangeRecord `json:"exchanges"`
	Sequence  *models.SequenceState    `json:"sequence_state,omitempty"`
}

// AircraftHistoryResponse is the body returned by GET /aircraft/{callsign}/history
type AircraftHistoryResponse struct {
	Callsign  string                   `json:"callsign"`
	Exchanges []*sqlite.ExchangeRecord `json:"exchanges"`
}

// Analyze handles POST /api/v1/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := analyzer.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.config.RequireCallsign && strings.TrimSpace(req.Callsign) == "" {
		writeError(w, http.StatusBadRequest, "callsign is required")
		return
	}

	sessionID := h.sessionID(req.SessionID)
	res, err := h.processor.Analyze(r.Context(), sessionID, analyzer.Request{
		Instruction: req.Instruction,
		Readback:    req.Readback,
		Callsign:    req.Callsign,
		Mode:        mode,
		History:     req.History,
	})
	if err != nil {
		h.logger.WithSession(sessionID).Error("Failed to analyze exchange", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to analyze exchange")
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		SessionID:       sessionID,
		ExpectedOutcome: outcome(res),
		Analysis:        res,
	})
}

// AnalyzeTranscript handles POST /api/v1/transcripts/analyze
func (h *Handler) AnalyzeTranscript(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := analyzer.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	lines, err := transcript.Parse(strings.NewReader(req.Transcript))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := h.sessionID(req.SessionID)
	results, err := h.processor.Process(r.Context(), sessionID, lines, mode)
	if err != nil {
		h.logger.WithSession(sessionID).Error("Failed to process transcript", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process transcript")
		return
	}

	writeJSON(w, http.StatusOK, TranscriptResponse{
		SessionID: sessionID,
		Lines:     len(lines),
		Results:   results,
	})
}

// Evaluate handles POST /api/v1/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exchanges := req.Exchanges
	if len(exchanges) == 0 {
		corpus, err := evaluation.DefaultCorpus()
		if err != nil {
			h.logger.Error("Failed to load reference corpus", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load reference corpus")
			return
		}
		exchanges = corpus.Exchanges
	}
	for i, x := range exchanges {
		if strings.TrimSpace(x.ATC) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("exchanges[%d].atc is required", i))
			return
		}
	}

	report, err := h.evaluator.Evaluate(r.Context(), exchanges)
	if err != nil {
		h.logger.Error("Failed to evaluate exchanges", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to evaluate exchanges")
		return
	}
	if !req.IncludeResults {
		report.Results = nil
	}
	writeJSON(w, http.StatusOK, report)
}

// GetSessionHistory handles GET /api/v1/sessions/{id}/history
func (h *Handler) GetSessionHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "session history is disabled")
		return
	}
	sessionID := chi.URLParam(r, "id")

	limit, ok := historyLimit(w, r)
	if !ok {
		return
	}

	records, err := h.store.GetSessionExchanges(sessionID, limit)
	if err != nil {
		h.logger.WithSession(sessionID).Error("Failed to load session history", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load session history")
		return
	}

	resp := HistoryResponse{SessionID: sessionID, Exchanges: records}
	if resp.Exchanges == nil {
		resp.Exchanges = []*sqlite.ExchangeRecord{}
	}
	if len(records) > 0 {
		history := make([]models.HistoryEntry, len(records))
		for i, rec := range records {
			history[i] = rec.HistoryEntry()
		}
		state := sequence.Track(history)
		resp.Sequence = &state
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAircraftHistory handles GET /api/v1/aircraft/{callsign}/history.
// Exchanges come newest first across every session.
func (h *Handler) GetAircraftHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "session history is disabled")
		return
	}
	callsign := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "callsign")))

	limit, ok := historyLimit(w, r)
	if !ok {
		return
	}

	records, err := h.store.GetExchangesByCallsign(callsign, limit)
	if err != nil {
		h.logger.Error("Failed to load aircraft history", logger.String("callsign", callsign), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load aircraft history")
		return
	}
	if records == nil {
		records = []*sqlite.ExchangeRecord{}
	}
	writeJSON(w, http.StatusOK, AircraftHistoryResponse{Callsign: callsign, Exchanges: records})
}

// historyLimit reads the limit query parameter, writing a 400 when it is bad
func historyLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return defaultHistoryLimit, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return min(n, maxHistoryLimit), true
}

// DeleteSession handles DELETE /api/v1/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "session history is disabled")
		return
	}
	sessionID := chi.URLParam(r, "id")
	n, err := h.store.DeleteSession(sessionID)
	if err != nil {
		h.logger.WithSession(sessionID).Error("Failed to delete session", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "deleted": n})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"uptime_seconds":  int64(time.Since(h.startTime).Seconds()),
		"session_history": h.store != nil,
		"analysis_modes":  analyzer.Modes,
	})
}

// sessionID keeps a caller-supplied ID and issues a new one when history is kept
func (h *Handler) sessionID(requested string) string {
	if requested != "" || h.store == nil {
		return requested
	}
	return uuid.New().String()
}

func outcome(res analyzer.ExtendedResult) string {
	if res.Correct() {
		return "correct"
	}
	return "incorrect"
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeJSON encodes v as JSON and writes it with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

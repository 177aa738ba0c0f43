package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/config"
	"github.com/yegors/readback-check/internal/evaluation"
	"github.com/yegors/readback-check/internal/storage/sqlite"
	"github.com/yegors/readback-check/pkg/logger"
)

type server struct {
	handler http.Handler
	store   *sqlite.ExchangeStorage
}

func newServer(t *testing.T, withStore bool, cfg HandlerConfig) *server {
	t.Helper()
	log := logger.NewNop()
	a, err := analyzer.New(analyzer.DefaultConfig(), log)
	require.NoError(t, err)

	s := &server{}
	var store SessionStore
	if withStore {
		db, err := sqlite.Open(sqlite.MemoryPath)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		s.store, err = sqlite.NewExchangeStorage(db, log)
		require.NoError(t, err)
		store = s.store
	}

	h := NewHandler(a, evaluation.NewEvaluator(a, 2, log), store, cfg, log)
	s.handler = NewRouter(h, config.ServerConfig{CORSAllowedOrigins: []string{"http://localhost:3000"}}, log).Routes()
	return s
}

func (s *server) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestAnalyzeCorrectReadback(t *testing.T) {
	s := newServer(t, false, HandlerConfig{})
	rec, body := s.do(t, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Instruction: "PAL123 climb and maintain flight level three five zero",
		Readback:    "climb and maintain flight level three five zero, PAL123",
		Callsign:    "PAL123",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "correct", body["expected_outcome"])
	assert.Nil(t, body["session_id"], "no session without storage")

	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, true, analysis["is_correct"])
	assert.Equal(t, "auto", analysis["mode"])
}

func TestAnalyzeTransposition(t *testing.T) {
	s := newServer(t, false, HandlerConfig{})
	rec, body := s.do(t, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Instruction: "squawk four five two one",
		Readback:    "squawk four five one two",
		Mode:        "basic",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "incorrect", body["expected_outcome"])
	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, "basic", analysis["mode"])
	errs := analysis["errors"].([]any)
	require.NotEmpty(t, errs)
	assert.Equal(t, "transposition", errs[0].(map[string]any)["type"])
}

func TestAnalyzeBadRequests(t *testing.T) {
	s := newServer(t, false, HandlerConfig{RequireCallsign: true})

	tests := []struct {
		name string
		body any
		want string
	}{
		{"malformed", `{"instruction":`, "invalid request body"},
		{"unknown field", `{"instruction":"climb","extra":1}`, "invalid request body"},
		{"mode", AnalyzeRequest{Instruction: "climb", Callsign: "PAL1", Mode: "cruise"}, "unknown analysis mode"},
		{"callsign", AnalyzeRequest{Instruction: "climb", Readback: "climbing"}, "callsign is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodPost, "/api/v1/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, body["error"], tt.want)
		})
	}
}

func TestAnalyzeTracksSession(t *testing.T) {
	s := newServer(t, true, HandlerConfig{HistoryWindow: 5})

	rec, body := s.do(t, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Instruction: "PAL123 descend and maintain four thousand",
		Readback:    "roger",
		Callsign:    "PAL123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID, _ := body["session_id"].(string)
	require.NotEmpty(t, sessionID, "a session is issued when storage is enabled")

	rec, body = s.do(t, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Instruction: "PAL123 turn left heading one eight zero",
		Readback:    "left heading one eight zero, PAL123",
		Callsign:    "PAL123",
		SessionID:   sessionID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sessionID, body["session_id"])
	analysis := body["analysis"].(map[string]any)
	require.Contains(t, analysis, "sequence_state")
	assert.EqualValues(t, 1, analysis["sequence_state"].(map[string]any)["window_size"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exchanges := body["exchanges"].([]any)
	require.Len(t, exchanges, 2)
	assert.Equal(t, false, exchanges[0].(map[string]any)["is_correct"])
	assert.Equal(t, true, exchanges[1].(map[string]any)["is_correct"])
	assert.Contains(t, body, "sequence_state")

	rec, _ = s.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID+"/history?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodDelete, "/api/v1/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["deleted"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["exchanges"])
	assert.NotContains(t, body, "sequence_state")
}

func TestHistoryDisabled(t *testing.T) {
	s := newServer(t, false, HandlerConfig{})
	rec, body := s.do(t, http.MethodGet, "/api/v1/sessions/abc/history", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "session history is disabled", body["error"])
}

func TestAnalyzeTranscript(t *testing.T) {
	s := newServer(t, true, HandlerConfig{HistoryWindow: 5})
	transcriptText := strings.Join([]string{
		"ATC: PAL123 climb and maintain flight level three five zero",
		"PILOT: climb and maintain flight level three five zero, PAL123",
		"ATC: PAL123 contact departure one two four decimal seven",
		"PILOT: one two four decimal five, PAL123",
	}, "\n")

	rec, body := s.do(t, http.MethodPost, "/api/v1/transcripts/analyze", TranscriptRequest{
		Transcript: transcriptText,
		SessionID:  "tower-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tower-1", body["session_id"])
	assert.EqualValues(t, 4, body["lines"])
	results := body["results"].([]any)
	require.Len(t, results, 2)

	second := results[1].(map[string]any)["analysis"].(map[string]any)
	assert.Equal(t, false, second["is_correct"])

	records, err := s.store.GetSessionExchanges("tower-1", 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	rec, body = s.do(t, http.MethodPost, "/api/v1/transcripts/analyze", TranscriptRequest{Transcript: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "transcript is required", body["error"])
}

func TestEvaluate(t *testing.T) {
	s := newServer(t, false, HandlerConfig{})

	rec, body := s.do(t, http.MethodPost, "/api/v1/evaluate", EvaluateRequest{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Positive(t, body["total_exchanges"])
	assert.NotContains(t, body, "results")

	rec, body = s.do(t, http.MethodPost, "/api/v1/evaluate", EvaluateRequest{
		Exchanges: []evaluation.Exchange{
			{ATC: "squawk seven seven zero zero", Pilot: "squawk seven seven zero zero"},
			{ATC: "runway two seven cleared to land", Pilot: "cleared to land runway two five"},
		},
		IncludeResults: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total_exchanges"])
	assert.EqualValues(t, 1, body["correct_readbacks"])
	assert.Len(t, body["results"], 2)

	rec, body = s.do(t, http.MethodPost, "/api/v1/evaluate", EvaluateRequest{
		Exchanges: []evaluation.Exchange{{Pilot: "wilco"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "exchanges[0].atc is required", body["error"])
}

func TestHealthAndRouting(t *testing.T) {
	s := newServer(t, true, HandlerConfig{})

	rec, body := s.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["session_history"])
	assert.Len(t, body["analysis_modes"], 4)

	rec, body = s.do(t, http.MethodGet, "/api/v1/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", body["error"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/analyze", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newServer(t, false, HandlerConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAircraftHistory(t *testing.T) {
	s := newServer(t, true, HandlerConfig{HistoryWindow: 5})

	for i, req := range []AnalyzeRequest{
		{Instruction: "PAL123 descend and maintain four thousand", Readback: "roger", Callsign: "PAL123", SessionID: "s1"},
		{Instruction: "CEB789 squawk seven seven zero zero", Readback: "squawk seven seven zero zero, CEB789", Callsign: "CEB789", SessionID: "s1"},
		{Instruction: "PAL123 turn left heading one eight zero", Readback: "left heading one eight zero, PAL123", Callsign: "PAL123", SessionID: "s2"},
	} {
		rec, _ := s.do(t, http.MethodPost, "/api/v1/analyze", req)
		require.Equal(t, http.StatusOK, rec.Code, "exchange %d", i)
	}

	rec, body := s.do(t, http.MethodGet, "/api/v1/aircraft/pal123/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PAL123", body["callsign"])
	exchanges := body["exchanges"].([]any)
	require.Len(t, exchanges, 2)
	newest := exchanges[0].(map[string]any)
	assert.Equal(t, "s2", newest["session_id"])
	assert.Equal(t, true, newest["is_correct"])
	assert.Equal(t, "s1", exchanges[1].(map[string]any)["session_id"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/aircraft/PAL123/history?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["exchanges"], 1)

	rec, body = s.do(t, http.MethodGet, "/api/v1/aircraft/XYZ999/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["exchanges"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/aircraft/PAL123/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = newServer(t, false, HandlerConfig{}).do(t, http.MethodGet, "/api/v1/aircraft/PAL123/history", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

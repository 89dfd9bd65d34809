// Package server exposes the interview engine over HTTP plus a websocket
// endpoint for streaming spoken answers.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/interview"
	"github.com/mockview/mockview/internal/voice"
)

// TranscriberFactory opens a new transcriber for one voice stream.
type TranscriberFactory func() (voice.Transcriber, error)

// Server routes API requests to the engine.
type Server struct {
	engine       *interview.Engine
	transcribers TranscriberFactory
	logger       *zap.Logger
	mux          *http.ServeMux
}

// New builds the server. transcribers may be nil, which disables the voice
// endpoint.
func New(engine *interview.Engine, transcribers TranscriberFactory, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		engine:       engine,
		transcribers: transcribers,
		logger:       log,
		mux:          http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/presets", s.handlePresets)
	s.mux.HandleFunc("POST /api/interview/start", s.handleStart)
	s.mux.HandleFunc("GET /api/interview/{id}/plan", s.handlePlan)
	s.mux.HandleFunc("GET /api/interview/{id}/next", s.handleNext)
	s.mux.HandleFunc("POST /api/interview/{id}/answer", s.handleAnswer)
	s.mux.HandleFunc("POST /api/interview/{id}/reveal", s.handleReveal)
	s.mux.HandleFunc("POST /api/interview/{id}/evaluate", s.handleEvaluate)
	s.mux.HandleFunc("GET /api/interview/{id}/state", s.handleState)
	s.mux.HandleFunc("DELETE /api/interview/{id}", s.handleAbandon)
	s.mux.HandleFunc("GET /ws/voice", s.handleVoice)

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type presetEntry struct {
	Company string `json:"company"`
	Role    string `json:"role"`
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	pairs := s.engine.Presets()
	entries := make([]presetEntry, 0, len(pairs))
	for _, pair := range pairs {
		entries = append(entries, presetEntry{Company: pair[0], Role: pair[1]})
	}
	s.writeJSON(w, http.StatusOK, entries)
}

type startPayload struct {
	Company       string `json:"company"`
	Role          string `json:"role"`
	Mode          string `json:"mode"`
	ResumeText    string `json:"resume_text"`
	JDText        string `json:"jd_text"`
	QuestionCount int    `json:"question_count"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload startPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Company) == "" || strings.TrimSpace(payload.Role) == "" {
		s.writeJSONError(w, http.StatusBadRequest, "company and role are required")
		return
	}

	result, err := s.engine.StartSession(r.Context(), interview.StartRequest{
		Company:       payload.Company,
		Role:          payload.Role,
		Mode:          payload.Mode,
		ResumeText:    payload.ResumeText,
		JDText:        payload.JDText,
		QuestionCount: payload.QuestionCount,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.engine.Plan(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	question, err := s.engine.NextQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, question)
}

type answerPayload struct {
	Answer       string         `json:"answer"`
	VoiceMetrics *voice.Metrics `json:"voice_metrics,omitempty"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var payload answerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Answer) == "" {
		s.writeJSONError(w, http.StatusBadRequest, "answer is required")
		return
	}

	outcome, err := s.engine.SubmitAnswer(r.Context(), r.PathValue("id"), interview.SubmitRequest{
		Answer:       payload.Answer,
		VoiceMetrics: payload.VoiceMetrics,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	example, err := s.engine.RevealExampleAnswer(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"example_answer": example})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	data, err := s.engine.ReportJSON(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.State(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Abandon(r.PathValue("id")); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeEngineError maps engine sentinels to HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		s.writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, interview.ErrInvalidSessionState), errors.Is(err, interview.ErrEmptySession):
		s.writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, interview.ErrResearchUnavailable):
		s.writeJSONError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("response encoding failed", zap.Error(err))
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

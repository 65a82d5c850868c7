// Package webui exposes the session registry over a JSON HTTP API and
// optionally serves a static browser front end.
package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tinybf/pkg/session"
)

// Server holds the shared registry and request-independent settings.
type Server struct {
	store     *session.Store
	log       *slog.Logger
	staticDir string

	// Applied when a create request leaves the field unset.
	defaultMaxSteps     int
	defaultHistoryLimit int
}

// Option adjusts server construction.
type Option func(*Server)

// WithStaticDir serves the given directory at / for the browser UI.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// WithLogger replaces the default (discarding) logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithDefaultMaxSteps sets the step ceiling for sessions whose create
// request does not name one.
func WithDefaultMaxSteps(n int) Option {
	return func(s *Server) { s.defaultMaxSteps = n }
}

// WithDefaultHistoryLimit sets the history capacity for sessions whose
// create request does not name one.
func WithDefaultHistoryLimit(n int) Option {
	return func(s *Server) { s.defaultHistoryLimit = n }
}

// NewServer wires a server over the given registry.
func NewServer(store *session.Store, opts ...Option) *Server {
	s := &Server{
		store: store,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/session", s.handleCreate)
	mux.HandleFunc("GET /api/session/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/session/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/session/{id}/step", s.handleStep)
	mux.HandleFunc("POST /api/session/{id}/run", s.handleRun)
	mux.HandleFunc("POST /api/session/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /api/session/{id}/breakpoints", s.handleAddBreakpoint)
	mux.HandleFunc("DELETE /api/session/{id}/breakpoints/{pc}", s.handleRemoveBreakpoint)
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return mux
}

type createRequest struct {
	Code         string `json:"code"`
	Input        string `json:"input"`
	TapeWindow   int    `json:"tape_window"`
	MaxSteps     int    `json:"max_steps"`
	HistoryLimit int    `json:"history_limit"`
	Source       string `json:"source"`
	Language     string `json:"language"`
}

type stepRequest struct {
	Count int `json:"count"`
}

type runRequest struct {
	Limit             int  `json:"limit"`
	IgnoreBreakpoints bool `json:"ignore_breakpoints"`
}

type breakpointRequest struct {
	PC int `json:"pc"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !s.decode(w, r, &req) {
		return
	}
	language := strings.ToLower(req.Language)
	if language == "" {
		language = session.LanguageMachine
	}

	cfg := session.Config{
		TapeWindow:   req.TapeWindow,
		MaxSteps:     req.MaxSteps,
		HistoryLimit: req.HistoryLimit,
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = s.defaultMaxSteps
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = s.defaultHistoryLimit
	}
	sess, err := s.store.Create(req.Code, []byte(req.Input), language, req.Source, cfg)
	if err != nil {
		// Everything that can fail here is a problem with the
		// submitted program or parameters.
		s.log.Warn("session create rejected", "error", err)
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.log.Info("session created",
		"id", sess.ID,
		"language", sess.Language(),
		"code_length", len(sess.Code()),
		"total_steps", sess.TotalSteps())
	s.writeJSON(w, http.StatusCreated, buildSessionPayload(sess))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, buildSessionPayload(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.Remove(id) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session id: %s", id))
		return
	}
	s.log.Info("session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	req := stepRequest{Count: 1}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Count < 1 {
		s.writeError(w, http.StatusUnprocessableEntity, "count must be at least 1")
		return
	}
	states, err := sess.Step(req.Count)
	if err != nil {
		s.stepError(w, sess.ID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, buildStepResponse(sess, states))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req runRequest
	if !s.decode(w, r, &req) {
		return
	}
	states, err := sess.Run(req.Limit, req.IgnoreBreakpoints)
	if err != nil {
		s.stepError(w, sess.ID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, buildStepResponse(sess, states))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.Reset()
	s.log.Info("session reset", "id", sess.ID)
	s.writeJSON(w, http.StatusOK, buildSessionPayload(sess))
}

func (s *Server) handleAddBreakpoint(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req breakpointRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := sess.AddBreakpoint(req.PC); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, buildSessionPayload(sess))
}

func (s *Server) handleRemoveBreakpoint(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	pc, err := strconv.Atoi(r.PathValue("pc"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "breakpoint index must be an integer")
		return
	}
	if !sess.RemoveBreakpoint(pc) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("breakpoint not found at pc=%d", pc))
		return
	}
	s.writeJSON(w, http.StatusOK, buildSessionPayload(sess))
}

// lookup resolves the {id} path value, answering 404 itself on a miss.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("id")
	sess, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session id: %s", id))
		return nil, false
	}
	return sess, true
}

// stepError maps execution failures: the step ceiling is a 409 the
// client can recover from with a reset, anything else is a runtime
// fault in the program itself.
func (s *Server) stepError(w http.ResponseWriter, id string, err error) {
	var limitErr *session.StepLimitError
	if errors.As(err, &limitErr) {
		s.log.Warn("session step ceiling reached", "id", id, "limit", limitErr.Limit)
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.log.Warn("session execution failed", "id", id, "error", err)
	s.writeError(w, http.StatusUnprocessableEntity, err.Error())
}

// decode parses a JSON body into dst. An empty body leaves dst's
// defaults in place; malformed JSON is a 400.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

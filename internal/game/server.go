package game

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tungcyang/bullscows/internal/bnc"
	"github.com/tungcyang/bullscows/internal/httpapi"
)

// Tokens issues and checks per-session tokens.
type Tokens interface {
	Sign(sessionID string) (string, error)
	httpapi.TokenVerifier
}

type Server struct {
	sessions *SessionService
	tokens   Tokens
	log      *slog.Logger
}

func NewServer(sessions *SessionService, tokens Tokens, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		sessions: sessions,
		tokens:   tokens,
		log:      log,
	}
}

// RegisterAPI mounts the REST session routes. They are plain request/response
// handlers and may run under a request timeout.
func (s *Server) RegisterAPI(r chi.Router) {
	r.Post("/api/sessions", s.handleCreate)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Use(s.sessionGuard)
		r.Get("/", s.handleGet)
		r.Delete("/", s.handleEnd)
		r.Post("/guess", s.handleGuess)
		r.Post("/reply", s.handleReply)
	})
}

// RegisterWS mounts the long-lived WebSocket route.
func (s *Server) RegisterWS(r chi.Router) {
	r.With(s.sessionGuard).Get("/ws/{id}", s.handleWS)
}

func sessionParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// sessionGuard rejects malformed ids before checking the session token.
func (s *Server) sessionGuard(next http.Handler) http.Handler {
	authed := httpapi.SessionAuth(s.tokens, sessionParam)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := uuid.Parse(sessionParam(r)); err != nil {
			httpapi.WriteError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		authed.ServeHTTP(w, r)
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, _ := httpapi.SessionIDFromContext(r.Context())
	sess, ok := s.sessions.Get(id)
	if !ok {
		httpapi.WriteError(w, http.StatusNotFound, "not_found", "session not found")
		return nil, false
	}
	return sess, true
}

type createRequest struct {
	RandomOpening *bool `json:"randomOpening,omitempty"`
	TurnBased     bool  `json:"turnBased,omitempty"`
}

type CreateResponse struct {
	SessionID string       `json:"sessionId"`
	Token     string       `json:"token"`
	State     StatePayload `json:"state"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json")
			return
		}
	}

	opts := Options{RandomOpening: s.sessions.cfg.RandomOpening, TurnBased: req.TurnBased}
	if req.RandomOpening != nil {
		opts.RandomOpening = *req.RandomOpening
	}

	sess, err := s.sessions.CreateWith(r.Context(), opts)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}
	token, err := s.tokens.Sign(sess.ID())
	if err != nil {
		s.log.ErrorContext(r.Context(), "sign session token", "session", sess.ID(), "err", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "internal", "failed to issue token")
		return
	}

	httpapi.WriteJSON(w, http.StatusCreated, CreateResponse{
		SessionID: sess.ID(),
		Token:     token,
		State:     sess.State(),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	id, _ := httpapi.SessionIDFromContext(r.Context())
	if !s.sessions.End(r.Context(), id) {
		httpapi.WriteError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type GuessResponse struct {
	Result GuessResultPayload `json:"result"`
	State  StatePayload       `json:"state"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var p SubmitGuessPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	res, err := sess.SubmitGuess(p.Guess)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, GuessResponse{
		Result: GuessResultPayload{
			Guess:  strings.TrimSpace(p.Guess),
			Result: res.String(),
			Bulls:  res.Bulls,
			Cows:   res.Cows,
		},
		State: sess.State(),
	})
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var p SubmitReplyPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	if err := sess.SubmitReply(p.Response); err != nil {
		s.log.InfoContext(r.Context(), "reply rejected", "session", sess.ID(), "err", err)
		writeSessionError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, sess.State())
}

// sessionErrorCode classifies errors returned by Session methods.
func sessionErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrGameOver), errors.Is(err, ErrGuessSubmitted), errors.Is(err, ErrReplySubmitted):
		return "bad_state"
	case errors.Is(err, bnc.ErrContradiction):
		return "contradiction"
	default:
		return "bad_input"
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	if sessionErrorCode(err) == "bad_state" {
		httpapi.WriteError(w, http.StatusConflict, "bad_state", err.Error())
		return
	}
	httpapi.WriteEngineError(w, err)
}

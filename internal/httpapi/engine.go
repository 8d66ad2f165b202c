package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tungcyang/bullscows/internal/bnc"
)

const (
	// maxSolveSteps bounds /api/solve input; the guesser never needs more than 9.
	maxSolveSteps = 20
	// maxListed is the candidate count at or below which /api/solve lists them.
	maxListed = 10
)

// EngineHandler exposes the guessing engine statelessly.
type EngineHandler struct {
	Initial bnc.Pool
	Rand    *bnc.Source
}

func (h *EngineHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/score", h.Score)
	r.Post("/api/solve", h.Solve)
	r.Get("/api/random", h.Random)
}

type ScoreRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type ScoreResponse struct {
	Bulls int    `json:"bulls"`
	Cows  int    `json:"cows"`
	Text  string `json:"text"`
}

func (h *EngineHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	a, err := bnc.ParseCode(req.A)
	if err != nil {
		WriteEngineError(w, err)
		return
	}
	b, err := bnc.ParseCode(req.B)
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	res := bnc.Score(a, b)
	WriteJSON(w, http.StatusOK, ScoreResponse{Bulls: res.Bulls, Cows: res.Cows, Text: res.String()})
}

type SolveStep struct {
	Guess    string `json:"guess"`
	Response string `json:"response"`
}

type SolveRequest struct {
	History []SolveStep `json:"history"`
	// From restricts the starting candidates; empty means all of them.
	From []string `json:"from,omitempty"`
	// Check, if set, asks whether this code is still consistent with History.
	Check string `json:"check,omitempty"`
}

type SolveResponse struct {
	Candidates int      `json:"candidates"`
	NextGuess  string   `json:"nextGuess"`
	Certain    bool     `json:"certain"`
	Remaining  []string `json:"remaining,omitempty"`
	Consistent *bool    `json:"consistent,omitempty"`
}

// Solve replays a history of (guess, response) pairs from the full pool and
// proposes the next guess. Small candidate sets are listed in full.
func (h *EngineHandler) Solve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	if len(req.History) > maxSolveSteps || len(req.From) > bnc.PoolSize {
		WriteError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("at most %d steps and %d codes", maxSolveSteps, bnc.PoolSize))
		return
	}

	var check bnc.Code
	if req.Check != "" {
		c, err := bnc.ParseCode(req.Check)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		check = c
	}

	pool := h.Initial
	if len(req.From) > 0 {
		codes := make([]bnc.Code, 0, len(req.From))
		for _, s := range req.From {
			c, err := bnc.ParseCode(s)
			if err != nil {
				WriteEngineError(w, err)
				return
			}
			codes = append(codes, c)
		}
		p, err := bnc.NewPool(codes...)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		pool = p
	}
	for _, st := range req.History {
		g, err := bnc.ParseCode(st.Guess)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		resp, err := bnc.ParseResponse(st.Response)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		pool, err = bnc.Filter(pool, g, resp)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
	}

	next, certain := bnc.NextGuess(pool)
	resp := SolveResponse{
		Candidates: pool.Len(),
		NextGuess:  next.String(),
		Certain:    certain,
	}
	if pool.Len() <= maxListed {
		resp.Remaining = make([]string, 0, pool.Len())
		pool.Each(func(c bnc.Code) bool {
			resp.Remaining = append(resp.Remaining, c.String())
			return true
		})
	}
	if req.Check != "" {
		ok := pool.Contains(check)
		resp.Consistent = &ok
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *EngineHandler) Random(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"code": h.Rand.Code().String()})
}

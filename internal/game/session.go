package game

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/tungcyang/bullscows/internal/bnc"
)

const (
	PhasePlaying  = "playing"
	PhaseFinished = "finished"
	PhaseAborted  = "aborted"

	WinnerHuman    = "human"
	WinnerComputer = "computer"
	WinnerDraw     = "draw"
)

var (
	ErrGameOver       = errors.New("game is over")
	ErrGuessSubmitted = errors.New("guess already submitted this round")
	ErrReplySubmitted = errors.New("reply already submitted this round")
)

type Options struct {
	// RandomOpening makes the computer open with a random code rather than
	// the heuristic pick over the full pool.
	RandomOpening bool

	// TurnBased ends the game on the first 4A, even with the other half of
	// the round still pending, so there are no draws. This is the console
	// dialogue: the computer wins as soon as its guess is confirmed.
	TurnBased bool

	// Secret and Opening pin the computer's secret and first guess. Zero
	// values mean "choose".
	Secret  bnc.Code
	Opening bnc.Code
}

// Session is one game of a human against the computer. Every round the human
// guesses the computer's secret and answers the computer's guess at theirs;
// the two may arrive in either order and the round closes once both are in.
type Session struct {
	id string
	mu sync.Mutex

	phase     string // playing|finished|aborted
	round     int
	turnBased bool
	winner    string // human|computer|draw|""
	reason    string

	secret  bnc.Code
	solver  *bnc.Solver
	certain bool

	guess    bnc.Code
	guessSet bool
	result   bnc.Response
	reply    bnc.Response
	replySet bool

	history    []RoundHistoryItem
	conn       *ClientConn
	lastActive time.Time
}

func NewSession(id string, initial bnc.Pool, rnd *bnc.Source, opts Options) *Session {
	secret := opts.Secret
	if !secret.Valid() {
		secret = rnd.Code()
	}

	opening, certain := opts.Opening, false
	switch {
	case opening.Valid():
	case opts.RandomOpening:
		opening = rnd.Code()
	default:
		opening, certain = bnc.NextGuess(initial)
	}

	return &Session{
		id:         id,
		turnBased:  opts.TurnBased,
		phase:      PhasePlaying,
		round:      1,
		secret:     secret,
		solver:     bnc.NewSolver(initial, opening),
		certain:    certain,
		lastActive: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

// ComputerGuess is the computer's guess for the current round. certain means
// it is the only candidate left.
func (s *Session) ComputerGuess() (guess bnc.Code, certain bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.solver.Guess(), s.certain
}

func (s *Session) State() StatePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SubmitGuess scores the human's guess against the computer's secret.
func (s *Session) SubmitGuess(text string) (bnc.Response, error) {
	g, err := bnc.ParseCode(text)
	if err != nil {
		return bnc.Response{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		return bnc.Response{}, ErrGameOver
	}
	if s.guessSet {
		return bnc.Response{}, ErrGuessSubmitted
	}

	res := bnc.Score(s.secret, g)
	s.guess = g
	s.result = res
	s.guessSet = true
	s.lastActive = time.Now()

	s.broadcastLocked(Envelope{Type: "guess_result", Payload: mustJSON(GuessResultPayload{
		Guess:  g.String(),
		Result: res.String(),
		Bulls:  res.Bulls,
		Cows:   res.Cows,
	})})

	if s.replySet || (s.turnBased && res.Solved()) {
		s.finalizeRoundLocked()
	}
	s.broadcastStateLocked()
	return res, nil
}

// SubmitReply records the human's response to the computer's current guess
// and narrows the computer's candidates right away. A reply that leaves no
// candidate aborts the game with a *bnc.ContradictionError.
func (s *Session) SubmitReply(text string) error {
	r, err := bnc.ParseResponse(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		return ErrGameOver
	}
	if s.replySet {
		return ErrReplySubmitted
	}
	s.lastActive = time.Now()

	if !r.Solved() {
		if err := s.solver.Observe(r); err != nil {
			s.phase = PhaseAborted
			s.reason = err.Error()
			s.broadcastLocked(Envelope{Type: "game_finished", Payload: mustJSON(map[string]string{
				"winner": "",
				"reason": s.reason,
				"secret": s.secret.String(),
			})})
			s.broadcastStateLocked()
			return err
		}
	}

	s.reply = r
	s.replySet = true

	if s.guessSet || (s.turnBased && r.Solved()) {
		s.finalizeRoundLocked()
	}
	s.broadcastStateLocked()
	return nil
}

// finalizeRoundLocked closes the round. Both halves are in, unless a turn-based
// game just saw a 4A.
func (s *Session) finalizeRoundLocked() {
	item := RoundHistoryItem{
		Round:         s.round,
		ComputerGuess: s.solver.Guess().String(),
		Candidates:    s.solver.Candidates(),
	}
	if s.replySet {
		item.Reply = s.reply.String()
	}
	if s.guessSet {
		item.HumanGuess = s.guess.String()
		item.HumanResult = s.result.String()
	}
	s.history = append(s.history, item)

	humanWin := s.guessSet && s.result.Solved()
	computerWin := s.replySet && s.reply.Solved()
	switch {
	case humanWin && computerWin:
		s.winner = WinnerDraw
	case humanWin:
		s.winner = WinnerHuman
	case computerWin:
		s.winner = WinnerComputer
	}

	s.broadcastLocked(Envelope{Type: "round_result", Payload: mustJSON(item)})

	if s.winner != "" {
		s.phase = PhaseFinished
		s.broadcastLocked(Envelope{Type: "game_finished", Payload: mustJSON(map[string]string{
			"winner": s.winner,
			"secret": s.secret.String(),
		})})
		return
	}

	// Next only fails if the pool and its membership set disagree.
	_, certain, err := s.solver.Next()
	if err != nil {
		s.phase = PhaseAborted
		s.reason = err.Error()
		return
	}
	s.certain = certain

	s.round++
	s.guessSet, s.replySet = false, false
	s.guess, s.result, s.reply = 0, bnc.Response{}, bnc.Response{}
}

// Attach makes cc the session's connection. A previous connection is closed.
func (s *Session) Attach(cc *ClientConn) {
	s.mu.Lock()
	old := s.conn
	s.conn = cc
	s.lastActive = time.Now()
	s.mu.Unlock()

	if old != nil && old != cc {
		old.Close()
	}
}

// Detach forgets cc if it is still the session's connection.
func (s *Session) Detach(cc *ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == cc {
		s.conn = nil
	}
}

// Disconnect closes the session's connection, if any. The game itself is left
// as it is.
func (s *Session) Disconnect() {
	s.mu.Lock()
	cc := s.conn
	s.conn = nil
	s.mu.Unlock()

	if cc != nil {
		cc.Close()
	}
}

func (s *Session) SendState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastStateLocked()
}

func (s *Session) SendError(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(Envelope{
		Type:    "error",
		Payload: mustJSON(ErrorPayload{Code: code, Message: message}),
	})
}

func (s *Session) broadcastStateLocked() {
	s.broadcastLocked(Envelope{Type: "state", Payload: mustJSON(s.snapshotLocked())})
}

func (s *Session) broadcastLocked(env Envelope) {
	if s.conn == nil {
		return
	}
	b, _ := json.Marshal(env)
	select {
	case s.conn.send <- b:
	default:
		// slow reader: drop, the next state message supersedes it
	}
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

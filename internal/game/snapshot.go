package game

// snapshotLocked is the client-facing view of the session. The computer's
// secret is only included once the game is over.
func (s *Session) snapshotLocked() StatePayload {
	st := StatePayload{
		SessionID: s.id,
		Phase:     s.phase,
		Round:     s.round,

		ComputerGuess: s.solver.Guess().String(),
		Certain:       s.certain,
		Candidates:    s.solver.Candidates(),

		GuessSubmitted: s.guessSet,
		ReplySubmitted: s.replySet,

		History: append([]RoundHistoryItem{}, s.history...),
		Winner:  s.winner,
		Reason:  s.reason,
	}
	if s.phase != PhasePlaying {
		st.Secret = s.secret.String()
	}
	return st
}

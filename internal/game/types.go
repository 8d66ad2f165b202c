package game

import "encoding/json"

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// incoming

type SubmitGuessPayload struct {
	Guess string `json:"guess"`
}

type SubmitReplyPayload struct {
	Response string `json:"response"`
}

// outgoing

// RoundHistoryItem is one finished round. Text fields use the "0123" and
// "1A2B" forms. A turn-based game can end on a 4A before the other half of the
// round arrives; that half is then empty.
type RoundHistoryItem struct {
	Round         int    `json:"round"`
	ComputerGuess string `json:"computerGuess"`
	Reply         string `json:"reply,omitempty"`       // human's answer to ComputerGuess
	HumanGuess    string `json:"humanGuess,omitempty"`  // human's guess at the computer's secret
	HumanResult   string `json:"humanResult,omitempty"` // score of HumanGuess
	Candidates    int    `json:"candidates"`            // computer's candidates left after Reply
}

type StatePayload struct {
	SessionID string `json:"sessionId"`
	Phase     string `json:"phase"` // playing|finished|aborted
	Round     int    `json:"round"`

	ComputerGuess string `json:"computerGuess"`
	Certain       bool   `json:"certain"` // computer has a single candidate left
	Candidates    int    `json:"candidates"`

	GuessSubmitted bool `json:"guessSubmitted"`
	ReplySubmitted bool `json:"replySubmitted"`

	History []RoundHistoryItem `json:"history"`
	Winner  string             `json:"winner"`           // human|computer|draw|"" (if not finished)
	Secret  string             `json:"secret,omitempty"` // computer's secret, only once the game is over
	Reason  string             `json:"reason,omitempty"` // why an aborted game stopped
}

type GuessResultPayload struct {
	Guess  string `json:"guess"`
	Result string `json:"result"`
	Bulls  int    `json:"bulls"`
	Cows   int    `json:"cows"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

package ws

import (
	"encoding/json"

	"cabot-server/game"
)

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// StartMsg is sent by the client to open a new match against the AI.
type StartMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// SlotMsg carries a board slot for select_own, select_opponent, replace and toggle_slot.
type SlotMsg struct {
	Type string `json:"type"`
	Slot *int   `json:"slot"`
}

// DeclareCabotMsg is sent by the client to call Cabot. Timing is "start_of_turn" or "end_of_turn".
type DeclareCabotMsg struct {
	Type   string `json:"type"`
	Timing string `json:"timing"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// MatchStartedMsg is sent once a match has been created for the client.
type MatchStartedMsg struct {
	Type             string `json:"type"`
	MatchID          string `json:"matchId"`
	OpponentName     string `json:"opponentName"`
	YourTurn         bool   `json:"yourTurn"`
	ScoreToWin       int    `json:"scoreToWin"`
	RevealDurationMS int    `json:"revealDurationMs"`
}

// RoundOverMsg is sent when a round has been scored.
type RoundOverMsg struct {
	Type    string           `json:"type"`
	Result  game.ResultView  `json:"result"`
	Session game.SessionView `json:"session"`
	// Score is the session score as [you, opponent].
	Score [2]int `json:"score"`
}

// SessionOverMsg is sent when one side reaches the winning score.
type SessionOverMsg struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
	Score  [2]int `json:"score"`
}

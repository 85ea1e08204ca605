package game

// CabotTiming is when in a turn Cabot was declared.
type CabotTiming int

const (
	// StartOfTurn cancels the declarer's turn; the other side gets one extra turn.
	StartOfTurn CabotTiming = iota
	// EndOfTurn comes after the declarer acted; the other side gets two extra turns.
	EndOfTurn
)

// String returns the protocol string for a CabotTiming.
func (t CabotTiming) String() string {
	switch t {
	case StartOfTurn:
		return "start_of_turn"
	case EndOfTurn:
		return "end_of_turn"
	default:
		return "unknown"
	}
}

// ParseCabotTiming converts a protocol string back into a CabotTiming.
func ParseCabotTiming(s string) (CabotTiming, bool) {
	switch s {
	case "start_of_turn":
		return StartOfTurn, true
	case "end_of_turn":
		return EndOfTurn, true
	default:
		return 0, false
	}
}

// ExtraTurns returns how many turns the non-declaring side gets before scoring.
func (t CabotTiming) ExtraTurns() int {
	if t == StartOfTurn {
		return 1
	}
	return 2
}

// CabotState tracks a declaration within a round. At most one declaration per round.
type CabotState struct {
	Declared  bool        `json:"declared"`
	By        PlayerID    `json:"by"`
	Timing    CabotTiming `json:"timing"`
	TurnsLeft int         `json:"turnsLeft"` // extra turns the other side still has to play
}

func (c *CabotState) declare(by PlayerID, timing CabotTiming) {
	c.Declared = true
	c.By = by
	c.Timing = timing
	c.TurnsLeft = timing.ExtraTurns()
}

// Responder returns the side playing the extra turns.
func (c CabotState) Responder() PlayerID {
	return c.By.Other()
}

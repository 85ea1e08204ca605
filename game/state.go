package game

import "time"

// CardFace is the client-facing representation of a face-up card.
type CardFace struct {
	ID     int    `json:"id"`
	Rank   string `json:"rank"`
	Suit   string `json:"suit"`
	Label  string `json:"label"`
	Points int    `json:"points"`
	Power  string `json:"power,omitempty"`
}

// NewCardFace renders c for the client.
func NewCardFace(c Card) *CardFace {
	f := &CardFace{
		ID:     c.ID,
		Rank:   c.Rank.String(),
		Suit:   c.Suit.String(),
		Label:  c.String(),
		Points: c.Points(),
	}
	if p := c.Power(); p != PowerNone {
		f.Power = p.String()
	}
	return f
}

// SlotView is one board slot as sent to the client.
// Card is only included when the slot is face-up for the viewer.
type SlotView struct {
	Slot               int       `json:"slot"`
	Empty              bool      `json:"empty"`
	FaceUp             bool      `json:"faceUp"`
	Card               *CardFace `json:"card,omitempty"`
	RevealEndsAtUnixMs int64     `json:"revealEndsAtUnixMs,omitempty"`
	Selected           bool      `json:"selected,omitempty"`
}

// PlayerView is the client-facing representation of one side.
type PlayerView struct {
	Board []SlotView `json:"board"`
	// Points is omitted for the opponent in the human view.
	Points *int `json:"points,omitempty"`
	Score  int  `json:"score"`
}

// CabotView is the client-facing Cabot status.
type CabotView struct {
	Declared  bool   `json:"declared"`
	By        string `json:"by,omitempty"`
	Timing    string `json:"timing,omitempty"`
	TurnsLeft int    `json:"turnsLeft,omitempty"`
}

// ResultView is the client-facing result of the last scored round.
type ResultView struct {
	Declarer       string `json:"declarer"`
	Winner         string `json:"winner"`
	YourPoints     int    `json:"yourPoints"`
	OpponentPoints int    `json:"opponentPoints"`
}

// SessionView is the client-facing session score.
type SessionView struct {
	Rounds     int    `json:"rounds"`
	ScoreToWin int    `json:"scoreToWin"`
	Over       bool   `json:"over"`
	Winner     string `json:"winner,omitempty"`
}

// GameStateMsg is the full match state sent to the front end.
type GameStateMsg struct {
	Type        string      `json:"type"`
	MatchID     string      `json:"matchId"`
	You         PlayerView  `json:"you"`
	Opponent    PlayerView  `json:"opponent"`
	YourTurn    bool        `json:"yourTurn"`
	Phase       string      `json:"phase"`
	Pending     string      `json:"pending"`
	Held        *CardFace   `json:"held,omitempty"`
	HeldFrom    string      `json:"heldFrom,omitempty"`
	DeckSize    int         `json:"deckSize"`
	DiscardSize int         `json:"discardSize"`
	DiscardTop  *CardFace   `json:"discardTop,omitempty"`
	MultiMode   bool        `json:"multiMode"`
	Cabot       CabotView   `json:"cabot"`
	Session     SessionView `json:"session"`
	RoundOver   bool        `json:"roundOver"`
	LastResult  *ResultView `json:"lastResult,omitempty"`
	// OpponentLog describes what the opponent did on its most recent turn, in order.
	OpponentLog []string `json:"opponentLog,omitempty"`
}

// Snapshot returns the complete match state with every card face-up and both point totals.
func (m *Match) Snapshot() GameStateMsg {
	return m.buildState(m.now(), true)
}

// ViewForHuman returns what the human may see at now: cards are face-down except inside their reveal
// windows or once the round is over, and the opponent's total is hidden until scoring.
func (m *Match) ViewForHuman(now time.Time) GameStateMsg {
	return m.buildState(now, false)
}

func (m *Match) buildState(now time.Time, full bool) GameStateMsg {
	r := m.round
	showAll := full || r.Over()

	msg := GameStateMsg{
		Type:        "game_state",
		MatchID:     m.ID,
		You:         m.buildPlayerView(Human, now, showAll),
		Opponent:    m.buildPlayerView(AI, now, showAll),
		YourTurn:    !r.Over() && r.Current() == Human,
		Phase:       m.phase.String(),
		Pending:     m.pending.String(),
		DeckSize:    r.DeckSize(),
		DiscardSize: r.DiscardSize(),
		MultiMode:   m.multi,
		Cabot:       buildCabotView(m.cabot),
		Session:     buildSessionView(m.session),
		RoundOver:   r.Over(),
		OpponentLog: m.opponentLog,
	}
	if m.held != nil {
		msg.Held = NewCardFace(*m.held)
		msg.HeldFrom = m.heldFrom.String()
	}
	if top, ok := r.DiscardTop(); ok {
		msg.DiscardTop = NewCardFace(top)
	}
	if m.lastResult != nil {
		msg.LastResult = &ResultView{
			Declarer:       m.lastResult.Declarer.String(),
			Winner:         m.lastResult.Winner.String(),
			YourPoints:     m.lastResult.Points[Human],
			OpponentPoints: m.lastResult.Points[AI],
		}
	}
	return msg
}

func (m *Match) buildPlayerView(p PlayerID, now time.Time, showAll bool) PlayerView {
	board := m.round.Board(p)
	views := make([]SlotView, BoardSize)
	for i := 0; i < BoardSize; i++ {
		sv := SlotView{Slot: i}
		if p == Human && m.multi {
			sv.Selected = m.selected[i]
		}
		c, ok := board.Slot(i)
		if !ok {
			sv.Empty = true
			views[i] = sv
			continue
		}
		if showAll || m.reveals.Visible(p, i, now) {
			sv.FaceUp = true
			sv.Card = NewCardFace(c)
			if !showAll {
				sv.RevealEndsAtUnixMs = m.reveals.Until(p, i).UnixMilli()
			}
		}
		views[i] = sv
	}

	pv := PlayerView{Board: views, Score: m.session.Score[p]}
	if showAll || p == Human {
		pts := board.TotalPoints()
		pv.Points = &pts
	}
	return pv
}

func buildCabotView(c CabotState) CabotView {
	if !c.Declared {
		return CabotView{}
	}
	return CabotView{
		Declared:  true,
		By:        c.By.String(),
		Timing:    c.Timing.String(),
		TurnsLeft: c.TurnsLeft,
	}
}

func buildSessionView(s Session) SessionView {
	v := SessionView{Rounds: s.Rounds, ScoreToWin: ScoreToWin, Over: s.Over}
	if s.Over {
		v.Winner = s.Winner.String()
	}
	return v
}

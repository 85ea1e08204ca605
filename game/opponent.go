package game

import "log/slog"

// SlotWrite is a reveal event about one of the opponent's own slots. The engine emits one whenever
// the opponent's board changes: with the new card when the opponent caused the write itself, or
// Hidden when the change happened out of its sight (a swap by the other side, a penalty reshuffle).
type SlotWrite struct {
	Slot   int  `json:"slot"`
	Card   Card `json:"card"`
	Empty  bool `json:"empty,omitempty"`
	Hidden bool `json:"hidden,omitempty"`
}

// Opponent is the scripted player. The game package only talks to it through this interface so that
// the policy never holds a reference to the true board.
type Opponent interface {
	// BeginRound is called with the cards the opponent is shown when the round is dealt.
	BeginRound(reveals []SlotWrite)
	// TakeTurn plays one full turn through t and returns a descriptive log for the human.
	TakeTurn(t OpponentTurn) []string
	// Observe reports a change to one of the opponent's slots that it did not cause.
	Observe(w SlotWrite)
}

// OpponentTurn is the opponent's handle on the round for the duration of one turn. It exposes only
// public information plus the opponent's own point total.
type OpponentTurn interface {
	CabotDeclared() bool
	Points() int
	DeckSize() int
	DiscardTop() (Card, bool)
	Occupied() []int

	DrawFromDeck() (Card, bool)
	DrawFromDiscard() (Card, bool)
	// Discard throws away the drawn card without placing it.
	Discard() bool
	// Replace puts the drawn card in slot; the previous card goes to the discard pile.
	Replace(slot int) (SlotWrite, bool)
	// DiscardMatching discards the selected same-rank cards and places the drawn card in the lowest
	// selected slot. An invalid selection triggers the misplay penalty and ends the turn.
	DiscardMatching(slots []int) ([]SlotWrite, bool)
	DeclareCabot(timing CabotTiming) bool
}

// opponentControl implements OpponentTurn on top of a Match. It owns the opponent's held card.
type opponentControl struct {
	m     *Match
	held  *Card
	drawn bool
	done  bool
}

func (c *opponentControl) CabotDeclared() bool { return c.m.cabot.Declared }
func (c *opponentControl) Points() int         { return c.m.round.PointsOf(AI) }
func (c *opponentControl) DeckSize() int       { return c.m.round.DeckSize() }

func (c *opponentControl) DiscardTop() (Card, bool) {
	return c.m.round.DiscardTop()
}

func (c *opponentControl) Occupied() []int {
	return c.m.round.Board(AI).Occupied()
}

func (c *opponentControl) canDraw() bool {
	return !c.done && !c.drawn
}

func (c *opponentControl) DrawFromDeck() (Card, bool) {
	if !c.canDraw() {
		return Card{}, false
	}
	card, ok := c.m.round.DrawFromDeck()
	if !ok {
		return Card{}, false
	}
	c.hold(card)
	return card, true
}

func (c *opponentControl) DrawFromDiscard() (Card, bool) {
	if !c.canDraw() {
		return Card{}, false
	}
	card, ok := c.m.round.DrawFromDiscard()
	if !ok {
		return Card{}, false
	}
	c.hold(card)
	return card, true
}

func (c *opponentControl) hold(card Card) {
	c.held = &card
	c.drawn = true
}

func (c *opponentControl) Discard() bool {
	if c.done || c.held == nil {
		return false
	}
	c.m.round.Discard(*c.held)
	c.held = nil
	return true
}

func (c *opponentControl) Replace(slot int) (SlotWrite, bool) {
	if c.done || c.held == nil {
		return SlotWrite{}, false
	}
	card := *c.held
	if !c.m.round.ReplaceCardOnBoard(AI, slot, card) {
		return SlotWrite{}, false
	}
	c.held = nil
	return SlotWrite{Slot: slot, Card: card}, true
}

func (c *opponentControl) DiscardMatching(slots []int) ([]SlotWrite, bool) {
	if c.done || c.held == nil || len(slots) == 0 {
		return nil, false
	}
	card := *c.held
	c.held = nil
	if c.m.round.DiscardMatching(AI, slots, card) {
		sorted := sortedCopy(slots)
		writes := []SlotWrite{{Slot: sorted[0], Card: card}}
		for _, s := range sorted[1:] {
			writes = append(writes, SlotWrite{Slot: s, Empty: true})
		}
		return writes, true
	}
	punished := c.m.round.ApplyPenalty(AI, card, c.m.rng)
	slog.Debug("opponent misplayed multi-discard", "tag", "game", "match", c.m.ID, "punished", punished.String())
	c.done = true
	board := c.m.round.Board(AI)
	writes := make([]SlotWrite, 0, BoardSize)
	for i := 0; i < BoardSize; i++ {
		_, occupied := board.Slot(i)
		writes = append(writes, SlotWrite{Slot: i, Empty: !occupied, Hidden: occupied})
	}
	return writes, false
}

func (c *opponentControl) DeclareCabot(timing CabotTiming) bool {
	if c.m.cabot.Declared || c.held != nil || c.done {
		return false
	}
	switch timing {
	case StartOfTurn:
		if c.drawn {
			return false
		}
	case EndOfTurn:
		if !c.drawn {
			return false
		}
	default:
		return false
	}
	c.m.cabot.declare(AI, timing)
	c.done = true
	return true
}

// close discards anything the opponent drew but left unresolved.
func (c *opponentControl) close() {
	if c.held != nil {
		c.m.round.Discard(*c.held)
		c.held = nil
	}
	c.done = true
}

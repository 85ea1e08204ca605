package ai

import (
	"fmt"
	"log/slog"
	"strings"

	"cabot-server/game"
)

const (
	// CabotThreshold: the opponent calls Cabot once its true total drops below this.
	CabotThreshold = 6
	// CheapCardPoints: a card worth this much or less is always worth taking.
	CheapCardPoints = 4
	// UnknownWorst is the value an unknown slot is given when choosing which slot to replace.
	UnknownWorst = 99
	// UnknownCompare is the value an unknown slot is given when deciding whether to replace it.
	UnknownCompare = 11
)

// Profile is the public identity of an AI opponent.
type Profile struct {
	Name string `json:"name"`
}

// Policy is the scripted opponent. It plays from its belief board, which only ever holds cards it was
// shown at deal time or placed itself; it never reads the true board.
type Policy struct {
	Profile Profile

	belief [game.BoardSize]*game.Card
}

// NewPolicy returns a policy with an empty belief board.
func NewPolicy(profile Profile) *Policy {
	return &Policy{Profile: profile}
}

// BeginRound forgets everything and records the cards shown at deal time.
func (p *Policy) BeginRound(reveals []game.SlotWrite) {
	p.belief = [game.BoardSize]*game.Card{}
	for _, w := range reveals {
		p.apply(w)
	}
	slog.Debug("belief seeded", "tag", "ai", "name", p.Profile.Name, "belief", p.describeBelief())
}

// Observe applies a slot change caused by someone else.
func (p *Policy) Observe(w game.SlotWrite) {
	p.apply(w)
}

// Belief returns the believed card in slot, if any.
func (p *Policy) Belief(slot int) (game.Card, bool) {
	if !game.ValidSlot(slot) || p.belief[slot] == nil {
		return game.Card{}, false
	}
	return *p.belief[slot], true
}

func (p *Policy) apply(w game.SlotWrite) {
	if !game.ValidSlot(w.Slot) {
		return
	}
	if w.Empty || w.Hidden {
		p.belief[w.Slot] = nil
		return
	}
	c := w.Card
	p.belief[w.Slot] = &c
}

// TakeTurn plays one turn and returns what a spectator would have seen, one line per action.
func (p *Policy) TakeTurn(t game.OpponentTurn) []string {
	var lines []string
	say := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if !t.CabotDeclared() && t.Points() < CabotThreshold && t.DeclareCabot(game.StartOfTurn) {
		say("%s calls Cabot at the start of its turn.", p.Profile.Name)
		slog.Debug("cabot", "tag", "ai", "name", p.Profile.Name, "timing", game.StartOfTurn.String())
		return lines
	}

	drawn, source, ok := p.draw(t)
	if !ok {
		say("%s cannot draw: deck and discard pile are empty.", p.Profile.Name)
		return lines
	}
	say("%s draws from the %s.", p.Profile.Name, source)

	occupied := t.Occupied()
	group := p.bestGroup(occupied)
	switch {
	case len(occupied) == 0:
		t.Discard()
		say("It discards the card (nothing to replace).")

	case len(group) >= 2:
		writes, ok := t.DiscardMatching(group)
		for _, w := range writes {
			p.apply(w)
		}
		if !ok {
			say("It tries to discard several cards and misplays.")
			slog.Warn("multi-discard rejected", "tag", "ai", "name", p.Profile.Name, "slots", group)
			return lines
		}
		say("It discards matching cards (slots %s), then places the card in slot %d.", slotNames(group), group[0]+1)

	default:
		worst := p.worstSlot(occupied)
		if drawn.Points() <= CheapCardPoints || drawn.Points() < p.comparePoints(worst) {
			if w, ok := t.Replace(worst); ok {
				p.apply(w)
				say("It replaces slot %d.", worst+1)
				break
			}
		}
		t.Discard()
		say("It discards the card.")
	}

	if !t.CabotDeclared() && t.Points() < CabotThreshold && t.DeclareCabot(game.EndOfTurn) {
		say("%s calls Cabot at the end of its turn.", p.Profile.Name)
		slog.Debug("cabot", "tag", "ai", "name", p.Profile.Name, "timing", game.EndOfTurn.String())
	}
	slog.Debug("turn played", "tag", "ai", "name", p.Profile.Name, "belief", p.describeBelief())
	return lines
}

// draw takes the discard top when it is cheap, otherwise the deck, falling back to the discard pile.
func (p *Policy) draw(t game.OpponentTurn) (game.Card, string, bool) {
	if top, ok := t.DiscardTop(); ok && top.Points() <= CheapCardPoints {
		if c, ok := t.DrawFromDiscard(); ok {
			return c, "discard pile", true
		}
	}
	if c, ok := t.DrawFromDeck(); ok {
		return c, "deck", true
	}
	if c, ok := t.DrawFromDiscard(); ok {
		return c, "discard pile", true
	}
	return game.Card{}, "", false
}

// bestGroup returns the known same-rank group of two or more slots with the highest believed total,
// in ascending slot order. Ties go to the group whose first slot comes first.
func (p *Policy) bestGroup(occupied []int) []int {
	var ranks []game.Rank
	groups := make(map[game.Rank][]int)
	for _, i := range occupied {
		c, ok := p.Belief(i)
		if !ok {
			continue
		}
		if _, seen := groups[c.Rank]; !seen {
			ranks = append(ranks, c.Rank)
		}
		groups[c.Rank] = append(groups[c.Rank], i)
	}

	var best []int
	bestPoints := -1
	for _, r := range ranks {
		g := groups[r]
		if len(g) < 2 {
			continue
		}
		if pts := len(g) * r.Points(); pts > bestPoints {
			best, bestPoints = g, pts
		}
	}
	return best
}

// worstSlot returns the occupied slot with the highest believed value, unknown slots counting as
// UnknownWorst. Ties go to the lowest index.
func (p *Policy) worstSlot(occupied []int) int {
	worst, worstPoints := -1, -1
	for _, i := range occupied {
		pts := UnknownWorst
		if c, ok := p.Belief(i); ok {
			pts = c.Points()
		}
		if pts > worstPoints {
			worst, worstPoints = i, pts
		}
	}
	return worst
}

func (p *Policy) comparePoints(slot int) int {
	if c, ok := p.Belief(slot); ok {
		return c.Points()
	}
	return UnknownCompare
}

func (p *Policy) describeBelief() string {
	parts := make([]string, game.BoardSize)
	for i := range parts {
		if c, ok := p.Belief(i); ok {
			parts[i] = c.String()
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, " ")
}

func slotNames(slots []int) string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = fmt.Sprint(s + 1)
	}
	return strings.Join(names, ", ")
}

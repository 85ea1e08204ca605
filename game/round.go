package game

import (
	"math/rand"
	"sort"
)

// Round is the authoritative state of one round: deck, discard pile, both boards and the turn holder.
// All mutation goes through its methods; each method is atomic and leaves the state untouched on failure.
type Round struct {
	deck    []Card // top of the deck is the last element
	discard []Card // top of the pile is the last element
	boards  [2]Board
	current PlayerID
	over    bool
}

// NewRound shuffles a fresh deck with rng and deals four cards to each board, alternating
// human then AI from the top of the deck.
func NewRound(starter PlayerID, rng *rand.Rand) *Round {
	r := &Round{
		deck:    BuildShuffledDeck(rng),
		discard: make([]Card, 0, DeckSize),
		current: starter,
	}
	for i := 0; i < BoardSize; i++ {
		c, _ := r.DrawFromDeck()
		r.boards[Human].set(i, c)
		c, _ = r.DrawFromDeck()
		r.boards[AI].set(i, c)
	}
	return r
}

// newRoundFromCards builds a round with explicit contents. Used by tests to set up exact positions.
func newRoundFromCards(deck, discard []Card, human, ai [BoardSize]*Card, current PlayerID) *Round {
	r := &Round{
		deck:    append([]Card(nil), deck...),
		discard: append([]Card(nil), discard...),
		current: current,
	}
	for i := 0; i < BoardSize; i++ {
		if human[i] != nil {
			r.boards[Human].set(i, *human[i])
		}
		if ai[i] != nil {
			r.boards[AI].set(i, *ai[i])
		}
	}
	return r
}

// DrawFromDeck removes and returns the top deck card. ok is false when the deck is empty.
func (r *Round) DrawFromDeck() (Card, bool) {
	if len(r.deck) == 0 {
		return Card{}, false
	}
	c := r.deck[len(r.deck)-1]
	r.deck = r.deck[:len(r.deck)-1]
	return c, true
}

// DrawFromDiscard removes and returns the top discard card. ok is false when the pile is empty.
func (r *Round) DrawFromDiscard() (Card, bool) {
	if len(r.discard) == 0 {
		return Card{}, false
	}
	c := r.discard[len(r.discard)-1]
	r.discard = r.discard[:len(r.discard)-1]
	return c, true
}

// Discard puts c on top of the discard pile. The caller must legitimately possess c.
func (r *Round) Discard(c Card) {
	r.discard = append(r.discard, c)
}

// ReplaceCardOnBoard installs c in an occupied slot of p's board and moves the evicted card to the
// discard pile. Returns false, with no change, if slot is out of range or empty.
func (r *Round) ReplaceCardOnBoard(p PlayerID, slot int, c Card) bool {
	old, ok := r.boards[p].Slot(slot)
	if !ok {
		return false
	}
	r.boards[p].set(slot, c)
	r.discard = append(r.discard, old)
	return true
}

// SwapSlots exchanges the cards at (a, ia) and (b, ib). Both slots must be occupied.
func (r *Round) SwapSlots(a PlayerID, ia int, b PlayerID, ib int) bool {
	ca, okA := r.boards[a].Slot(ia)
	cb, okB := r.boards[b].Slot(ib)
	if !okA || !okB {
		return false
	}
	if a == b && ia == ib {
		return true
	}
	r.boards[a].set(ia, cb)
	r.boards[b].set(ib, ca)
	return true
}

// ValidMatchingSelection reports whether slots is a non-empty set of distinct, occupied slots on p's
// board whose cards all share one rank.
func (r *Round) ValidMatchingSelection(p PlayerID, slots []int) bool {
	if len(slots) == 0 {
		return false
	}
	seen := make(map[int]bool, len(slots))
	var rank Rank
	for i, s := range slots {
		if seen[s] {
			return false
		}
		seen[s] = true
		c, ok := r.boards[p].Slot(s)
		if !ok {
			return false
		}
		if i == 0 {
			rank = c.Rank
		} else if c.Rank != rank {
			return false
		}
	}
	return true
}

// DiscardMatching performs a successful multi-discard: every selected card goes to the discard pile
// in ascending slot order, held lands in the lowest selected slot and the other selected slots are
// emptied. Returns false, with no change, if the selection is not valid.
func (r *Round) DiscardMatching(p PlayerID, slots []int, held Card) bool {
	if !r.ValidMatchingSelection(p, slots) {
		return false
	}
	sorted := sortedCopy(slots)
	for _, s := range sorted {
		c, _ := r.boards[p].Slot(s)
		r.discard = append(r.discard, c)
		r.boards[p].clear(s)
	}
	r.boards[p].set(sorted[0], held)
	return true
}

// ApplyPenalty is the misplay penalty: the occupied cards of p plus held form a pool, one card chosen
// uniformly at random is discarded face-up, and the rest are shuffled back into the slots left to right.
// Slots beyond the remaining count end up empty. The discarded card is returned.
func (r *Round) ApplyPenalty(p PlayerID, held Card, rng *rand.Rand) Card {
	pool := append(r.boards[p].Cards(), held)
	pick := rng.Intn(len(pool))
	punished := pool[pick]
	pool = append(pool[:pick], pool[pick+1:]...)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	for i := 0; i < BoardSize; i++ {
		if i < len(pool) {
			r.boards[p].set(i, pool[i])
		} else {
			r.boards[p].clear(i)
		}
	}
	r.discard = append(r.discard, punished)
	return punished
}

// PointsOf returns p's current board total.
func (r *Round) PointsOf(p PlayerID) int {
	return r.boards[p].TotalPoints()
}

// SwitchTurn hands the turn to the other side.
func (r *Round) SwitchTurn() {
	r.current = r.current.Other()
}

// Current returns the side whose turn it is.
func (r *Round) Current() PlayerID {
	return r.current
}

func (r *Round) setCurrent(p PlayerID) {
	r.current = p
}

// Board returns a read-only copy of p's board.
func (r *Round) Board(p PlayerID) Board {
	return r.boards[p]
}

// DeckSize returns the number of cards left to draw.
func (r *Round) DeckSize() int {
	return len(r.deck)
}

// DiscardSize returns the number of cards on the discard pile.
func (r *Round) DiscardSize() int {
	return len(r.discard)
}

// DiscardTop returns the visible discard card, if any.
func (r *Round) DiscardTop() (Card, bool) {
	if len(r.discard) == 0 {
		return Card{}, false
	}
	return r.discard[len(r.discard)-1], true
}

// Over reports whether the round has been scored.
func (r *Round) Over() bool {
	return r.over
}

func (r *Round) finish() {
	r.over = true
}

// cardIDs returns every card id currently held by the round (deck, discard and both boards).
func (r *Round) cardIDs() []int {
	ids := make([]int, 0, DeckSize)
	for _, c := range r.deck {
		ids = append(ids, c.ID)
	}
	for _, c := range r.discard {
		ids = append(ids, c.ID)
	}
	for _, b := range r.boards {
		for _, c := range b.Cards() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func sortedCopy(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}

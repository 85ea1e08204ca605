package game

// BoardSize is the number of slots on each player's board.
const BoardSize = 4

// BottomRow are the slots a player is shown at the start of a round.
var BottomRow = []int{2, 3}

// PlayerID identifies a side of the table.
type PlayerID int

const (
	Human PlayerID = iota
	AI
)

// String returns the protocol string for a PlayerID.
func (p PlayerID) String() string {
	switch p {
	case Human:
		return "human"
	case AI:
		return "ai"
	default:
		return "unknown"
	}
}

// Other returns the opposite side.
func (p PlayerID) Other() PlayerID {
	if p == Human {
		return AI
	}
	return Human
}

// Board is a player's 4-slot card holder. A nil slot is empty; slots only empty through a multi-discard
// or a misplay penalty.
type Board struct {
	slots [BoardSize]*Card
}

// ValidSlot reports whether i addresses a board slot.
func ValidSlot(i int) bool {
	return i >= 0 && i < BoardSize
}

// Slot returns the card in slot i and whether the slot is occupied. Out-of-range indices report empty.
func (b Board) Slot(i int) (Card, bool) {
	if !ValidSlot(i) || b.slots[i] == nil {
		return Card{}, false
	}
	return *b.slots[i], true
}

// Occupied returns the indices of occupied slots in ascending order.
func (b Board) Occupied() []int {
	var out []int
	for i, c := range b.slots {
		if c != nil {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the number of occupied slots.
func (b Board) Count() int {
	n := 0
	for _, c := range b.slots {
		if c != nil {
			n++
		}
	}
	return n
}

// TotalPoints sums the point values of occupied slots; empty slots count 0.
func (b Board) TotalPoints() int {
	total := 0
	for _, c := range b.slots {
		if c != nil {
			total += c.Points()
		}
	}
	return total
}

// Cards returns the occupied cards in slot order.
func (b Board) Cards() []Card {
	out := make([]Card, 0, BoardSize)
	for _, c := range b.slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

func (b *Board) set(i int, c Card) {
	b.slots[i] = &c
}

func (b *Board) clear(i int) {
	b.slots[i] = nil
}

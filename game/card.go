package game

import (
	"math/rand"
	"strconv"
)

// Suit is the suit of a card. Jokers carry their own suit.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
	JokerSuit
)

// String returns the protocol string for a Suit.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	case JokerSuit:
		return "joker"
	default:
		return "unknown"
	}
}

func (s Suit) symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return ""
	}
}

// Rank is the rank of a card.
type Rank int

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	Joker
)

// standardRanks are the thirteen ranks dealt in every suit.
var standardRanks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var standardSuits = []Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the short label for a Rank ("2".."10", "J", "Q", "K", "A", "Joker").
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return strconv.Itoa(int(r) + 2)
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	case r == Joker:
		return "Joker"
	default:
		return "?"
	}
}

// Points returns the point value of the rank: Ace=1, Two..Ten face value, Jack/Queen/King=10, Joker=0.
func (r Rank) Points() int {
	switch {
	case r == Joker:
		return 0
	case r == Ace:
		return 1
	case r >= Two && r <= Ten:
		return int(r) + 2
	case r == Jack, r == Queen, r == King:
		return 10
	default:
		return 0
	}
}

// DeckSize is the number of cards in a full Cabot deck (52 + 2 jokers).
const DeckSize = 54

// Card is a single card. ID is unique within a deck; cards are never mutated once built.
type Card struct {
	ID   int  `json:"id"`
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Points returns the card's point value.
func (c Card) Points() int {
	return c.Rank.Points()
}

// Power returns the special power granted when the card is drawn from the deck.
func (c Card) Power() Power {
	return PowerForRank(c.Rank)
}

// String renders the card for status lines, e.g. "7♥", "10♠" or "Joker".
func (c Card) String() string {
	if c.Rank == Joker {
		return "Joker"
	}
	return c.Rank.String() + c.Suit.symbol()
}

// NewDeck returns the 54 cards in a fixed order: each suit Two..Ace, then two jokers.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	nextID := 0
	for _, suit := range standardSuits {
		for _, rank := range standardRanks {
			deck = append(deck, Card{ID: nextID, Suit: suit, Rank: rank})
			nextID++
		}
	}
	for i := 0; i < 2; i++ {
		deck = append(deck, Card{ID: nextID, Suit: JokerSuit, Rank: Joker})
		nextID++
	}
	return deck
}

// BuildShuffledDeck returns a new deck in a fresh uniform permutation drawn from rng.
func BuildShuffledDeck(rng *rand.Rand) []Card {
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

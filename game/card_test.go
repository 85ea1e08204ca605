package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck_HasUniqueIDs(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[int]bool)
	jokers := 0
	for i, c := range deck {
		assert.Equal(t, i, c.ID)
		assert.False(t, seen[c.ID], "duplicate id %d", c.ID)
		seen[c.ID] = true
		if c.Rank == Joker {
			jokers++
			assert.Equal(t, JokerSuit, c.Suit)
		}
	}
	assert.Equal(t, 2, jokers)
}

func TestNewDeck_TotalPoints(t *testing.T) {
	// per suit: 1 + (2..10) + 3*10 = 85
	total := 0
	for _, c := range NewDeck() {
		total += c.Points()
	}
	assert.Equal(t, 4*85, total)
}

func TestBuildShuffledDeck_IsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		deck := BuildShuffledDeck(rng)
		require.Len(t, deck, DeckSize)
		seen := make(map[int]bool)
		for _, c := range deck {
			seen[c.ID] = true
		}
		assert.Len(t, seen, DeckSize)
	}
}

func TestBuildShuffledDeck_Reproducible(t *testing.T) {
	a := BuildShuffledDeck(rand.New(rand.NewSource(7)))
	b := BuildShuffledDeck(rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, NewDeck(), a)
}

func TestRankPoints(t *testing.T) {
	tests := []struct {
		rank Rank
		want int
	}{
		{Ace, 1},
		{Two, 2},
		{Five, 5},
		{Ten, 10},
		{Jack, 10},
		{Queen, 10},
		{King, 10},
		{Joker, 0},
	}
	for _, tt := range tests {
		t.Run(tt.rank.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rank.Points())
		})
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "7♥", Card{Suit: Hearts, Rank: Seven}.String())
	assert.Equal(t, "10♠", Card{Suit: Spades, Rank: Ten}.String())
	assert.Equal(t, "K♣", Card{Suit: Clubs, Rank: King}.String())
	assert.Equal(t, "A♦", Card{Suit: Diamonds, Rank: Ace}.String())
	assert.Equal(t, "Joker", Card{Suit: JokerSuit, Rank: Joker}.String())
}

func TestCardPower(t *testing.T) {
	tests := []struct {
		rank Rank
		want Power
	}{
		{Six, PowerNone},
		{Seven, PowerPeekSelf},
		{Eight, PowerPeekSelf},
		{Nine, PowerPeekOpponent},
		{Ten, PowerPeekOpponent},
		{Jack, PowerSwap},
		{Queen, PowerSwap},
		{King, PowerNone},
		{Ace, PowerNone},
		{Joker, PowerNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Card{Rank: tt.rank}.Power(), tt.rank.String())
	}
}

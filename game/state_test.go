package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewForHuman_HidesCardsOutsideRevealWindows(t *testing.T) {
	m, clock := newTestMatch(&scriptedOpponent{}, newRoundFromCards(plainDeck(2), nil, multiBoard(), aiBoard(), Human))

	v := m.ViewForHuman(clock.Now())
	assert.Equal(t, "game_state", v.Type)
	assert.True(t, v.YourTurn)
	assert.Equal(t, "choose_draw", v.Phase)

	for _, sv := range v.You.Board {
		bottom := sv.Slot == 2 || sv.Slot == 3
		assert.Equal(t, bottom, sv.FaceUp, "human slot %d", sv.Slot)
		assert.Equal(t, bottom, sv.Card != nil)
	}
	for _, sv := range v.Opponent.Board {
		assert.False(t, sv.FaceUp)
		assert.Nil(t, sv.Card)
	}
	require.NotNil(t, v.You.Points)
	assert.Equal(t, 17, *v.You.Points)
	assert.Nil(t, v.Opponent.Points)

	clock.Advance(time.Second)
	v = m.ViewForHuman(clock.Now())
	for _, sv := range v.You.Board {
		assert.False(t, sv.FaceUp, "window expired for slot %d", sv.Slot)
	}
}

func TestViewForHuman_ShowsPeekedOpponentCard(t *testing.T) {
	deck := []Card{*cardOf(60, Nine)}
	m, clock := newTestMatch(&scriptedOpponent{}, newRoundFromCards(deck, nil, multiBoard(), aiBoard(), Human))

	_, _, _ = m.DrawFromDeck()
	v := m.ViewForHuman(clock.Now())
	require.NotNil(t, v.Held)
	assert.Equal(t, "peek_opponent", v.Held.Power)
	assert.Equal(t, "deck", v.HeldFrom)

	_, _ = m.UsePower()
	require.NoError(t, m.SelectOpponentSlot(2))
	v = m.ViewForHuman(clock.Now())
	require.NotNil(t, v.Opponent.Board[2].Card)
	assert.Equal(t, 22, v.Opponent.Board[2].Card.ID)
	assert.Equal(t, clock.Now().Add(time.Second).UnixMilli(), v.Opponent.Board[2].RevealEndsAtUnixMs)
	require.NotNil(t, v.DiscardTop)
	assert.Equal(t, "9♥", v.DiscardTop.Label)
}

func TestSnapshot_ShowsEverything(t *testing.T) {
	m, _ := newTestMatch(&scriptedOpponent{}, newRoundFromCards(plainDeck(2), nil, multiBoard(), aiBoard(), Human))

	s := m.Snapshot()
	for _, sv := range append(s.You.Board, s.Opponent.Board...) {
		assert.True(t, sv.FaceUp)
		assert.NotNil(t, sv.Card)
	}
	require.NotNil(t, s.Opponent.Points)
	assert.Equal(t, 40, *s.Opponent.Points)
	assert.Equal(t, 2, s.DeckSize)
}

func TestViewForHuman_RoundOverRevealsAll(t *testing.T) {
	m, clock := newTestMatch(&scriptedOpponent{}, newRoundFromCards(plainDeck(2), nil, lowBoard(), highBoard(), Human))

	_, err := m.DeclareCabot(StartOfTurn)
	require.NoError(t, err)

	v := m.ViewForHuman(clock.Now().Add(time.Hour))
	assert.True(t, v.RoundOver)
	assert.False(t, v.YourTurn)
	require.NotNil(t, v.Opponent.Points)
	assert.Equal(t, 9, *v.Opponent.Points)
	for _, sv := range v.Opponent.Board {
		assert.True(t, sv.FaceUp)
	}
	require.NotNil(t, v.LastResult)
	assert.Equal(t, "human", v.LastResult.Winner)
	assert.Equal(t, 1, v.You.Score)
	assert.Equal(t, CabotView{Declared: true, By: "human", Timing: "start_of_turn"}, v.Cabot)
}

func TestGameStateMsgJSON_HiddenSlotOmitsCard(t *testing.T) {
	m, clock := newTestMatch(&scriptedOpponent{}, newRoundFromCards(plainDeck(2), nil, multiBoard(), aiBoard(), Human))

	data, err := json.Marshal(m.ViewForHuman(clock.Now()))
	require.NoError(t, err)

	var raw struct {
		Opponent struct {
			Board  []map[string]any `json:"board"`
			Points *int             `json:"points"`
		} `json:"opponent"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Nil(t, raw.Opponent.Points)
	for _, slot := range raw.Opponent.Board {
		_, has := slot["card"]
		assert.False(t, has, "hidden slot must not carry a card")
	}
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRound(t *testing.T) {
	tests := []struct {
		name     string
		declarer PlayerID
		points   [2]int
		want     PlayerID
	}{
		{"declarer lower", Human, [2]int{5, 9}, Human},
		{"declarer higher", Human, [2]int{9, 5}, AI},
		{"tie goes to responder", Human, [2]int{5, 5}, AI},
		{"ai declarer lower", AI, [2]int{9, 5}, AI},
		{"ai tie", AI, [2]int{3, 3}, Human},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveRound(tt.declarer, tt.points)
			assert.Equal(t, tt.want, res.Winner)
			assert.Equal(t, tt.want.Other(), res.Loser())
			assert.Equal(t, tt.points, res.Points)
		})
	}
}

func TestSession_Record(t *testing.T) {
	s := NewSession(Human)
	s = s.Record(RoundResult{Declarer: Human, Winner: AI})

	assert.Equal(t, [2]int{0, 1}, s.Score)
	assert.Equal(t, 1, s.Rounds)
	assert.Equal(t, Human, s.NextStarter, "loser starts the next round")
	assert.False(t, s.Over)
}

func TestSession_EndsAtSeven(t *testing.T) {
	s := NewSession(Human)
	for i := 0; i < ScoreToWin-1; i++ {
		s = s.Record(RoundResult{Winner: Human})
		s = s.Record(RoundResult{Winner: AI})
	}
	require.False(t, s.Over)
	assert.Equal(t, [2]int{6, 6}, s.Score)

	s = s.Record(RoundResult{Winner: AI})
	assert.True(t, s.Over)
	assert.Equal(t, AI, s.Winner)
	assert.Equal(t, 13, s.Rounds)
}

func TestSession_RecordDoesNotMutate(t *testing.T) {
	s := NewSession(AI)
	_ = s.Record(RoundResult{Winner: Human})
	assert.Equal(t, [2]int{0, 0}, s.Score)
}

func TestCabotTiming(t *testing.T) {
	assert.Equal(t, 1, StartOfTurn.ExtraTurns())
	assert.Equal(t, 2, EndOfTurn.ExtraTurns())

	got, ok := ParseCabotTiming("end_of_turn")
	require.True(t, ok)
	assert.Equal(t, EndOfTurn, got)
	_, ok = ParseCabotTiming("now")
	assert.False(t, ok)

	var c CabotState
	c.declare(AI, StartOfTurn)
	assert.True(t, c.Declared)
	assert.Equal(t, 1, c.TurnsLeft)
	assert.Equal(t, Human, c.Responder())
}

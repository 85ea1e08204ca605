package game

// ScoreToWin is the number of rounds a side must win to take the session.
const ScoreToWin = 7

// Session is the state that outlives a round: rounds won per side and who starts the next round.
// It is a value; Record returns the next session instead of mutating.
type Session struct {
	Score       [2]int   `json:"score"`
	Rounds      int      `json:"rounds"`
	NextStarter PlayerID `json:"nextStarter"`
	Over        bool     `json:"over"`
	Winner      PlayerID `json:"winner"`
}

// NewSession returns an empty session where starter plays first.
func NewSession(starter PlayerID) Session {
	return Session{NextStarter: starter}
}

// RoundResult is the outcome of a scored round.
type RoundResult struct {
	Declarer PlayerID `json:"declarer"`
	Points   [2]int   `json:"points"`
	Winner   PlayerID `json:"winner"`
}

// Loser returns the side that lost the round.
func (r RoundResult) Loser() PlayerID {
	return r.Winner.Other()
}

// ResolveRound scores a round that ended after declarer called Cabot. The declarer wins only with a
// strictly lower total; a tie or a higher total gives the round to the other side.
func ResolveRound(declarer PlayerID, points [2]int) RoundResult {
	winner := declarer.Other()
	if points[declarer] < points[declarer.Other()] {
		winner = declarer
	}
	return RoundResult{Declarer: declarer, Points: points, Winner: winner}
}

// Record applies a round result: the winner gains a point, the first side to ScoreToWin takes the
// session, otherwise the round loser starts the next round.
func (s Session) Record(res RoundResult) Session {
	next := s
	next.Score[res.Winner]++
	next.Rounds++
	next.NextStarter = res.Loser()
	if next.Score[res.Winner] >= ScoreToWin {
		next.Over = true
		next.Winner = res.Winner
	}
	return next
}

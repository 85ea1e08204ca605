package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// TurnPhase represents the current phase within a human turn.
type TurnPhase int

const (
	ChooseDraw TurnPhase = iota
	PowerDecision
	Playing
	PowerInteraction
)

// String returns the protocol string for a TurnPhase.
func (tp TurnPhase) String() string {
	switch tp {
	case ChooseDraw:
		return "choose_draw"
	case PowerDecision:
		return "power_decision"
	case Playing:
		return "playing"
	case PowerInteraction:
		return "power_interaction"
	default:
		return "unknown"
	}
}

// DrawSource records where the held card came from.
type DrawSource int

const (
	FromNowhere DrawSource = iota
	FromDeck
	FromDiscard
)

// String returns the protocol string for a DrawSource.
func (d DrawSource) String() string {
	switch d {
	case FromDeck:
		return "deck"
	case FromDiscard:
		return "discard"
	default:
		return "none"
	}
}

// MultiOutcome is the result of confirming a multi-discard selection.
type MultiOutcome struct {
	Success  bool  `json:"success"`
	Slots    []int `json:"slots"`
	Penalty  bool  `json:"penalty"`
	Punished *Card `json:"punished,omitempty"`
}

// MatchOptions configures a new Match. Zero values get sensible defaults.
type MatchOptions struct {
	ID             string
	Opponent       Opponent
	Session        Session
	Rand           *rand.Rand
	Now            func() time.Time
	RevealDuration time.Duration
}

// Match drives a session of Cabot between the human and an Opponent. It owns the current Round, the
// human's turn machine and the Cabot protocol. It is not safe for concurrent use; callers serialize.
type Match struct {
	ID string

	session  Session
	round    *Round
	opponent Opponent
	rng      *rand.Rand
	now      func() time.Time
	reveal   time.Duration
	reveals  RevealWindows

	// human turn machine
	phase    TurnPhase
	held     *Card
	heldFrom DrawSource
	pending  PendingPower
	swapSelf int
	multi    bool
	selected [BoardSize]bool

	cabot       CabotState
	lastResult  *RoundResult
	opponentLog []string
}

// NewMatch creates a match and deals its first round.
func NewMatch(opts MatchOptions) *Match {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RevealDuration <= 0 {
		opts.RevealDuration = DefaultRevealDuration
	}
	m := &Match{
		ID:       opts.ID,
		session:  opts.Session,
		opponent: opts.Opponent,
		rng:      opts.Rand,
		now:      opts.Now,
		reveal:   opts.RevealDuration,
	}
	m.startRound(NewRound(m.session.NextStarter, m.rng))
	return m
}

// startRound installs r as the current round and resets every per-round field.
func (m *Match) startRound(r *Round) {
	m.round = r
	m.resetTurn()
	m.cabot = CabotState{}
	m.lastResult = nil
	m.opponentLog = nil
	m.reveals.Reset()

	now := m.now()
	for _, slot := range BottomRow {
		m.reveals.Reveal(Human, slot, now, m.reveal)
	}
	if m.opponent != nil {
		board := r.Board(AI)
		reveals := make([]SlotWrite, 0, len(BottomRow))
		for _, slot := range BottomRow {
			if c, ok := board.Slot(slot); ok {
				reveals = append(reveals, SlotWrite{Slot: slot, Card: c})
			}
		}
		m.opponent.BeginRound(reveals)
	}
	slog.Info("round started", "tag", "game", "match", m.ID, "round", m.session.Rounds+1, "starter", r.Current().String())
}

func (m *Match) resetTurn() {
	m.phase = ChooseDraw
	m.held = nil
	m.heldFrom = FromNowhere
	m.pending = PendingNone
	m.swapSelf = -1
	m.multi = false
	m.selected = [BoardSize]bool{}
}

// Round returns the current round for read-only inspection.
func (m *Match) Round() *Round { return m.round }

// Session returns the session state as of the last scored round.
func (m *Match) Session() Session { return m.session }

// Phase returns the human turn phase.
func (m *Match) Phase() TurnPhase { return m.phase }

// Pending returns the power interaction the human still has to complete.
func (m *Match) Pending() PendingPower { return m.pending }

// Held returns the card in the human's hand, if any.
func (m *Match) Held() (Card, bool) {
	if m.held == nil {
		return Card{}, false
	}
	return *m.held, true
}

// Cabot returns the Cabot declaration state of the current round.
func (m *Match) Cabot() CabotState { return m.cabot }

// LastResult returns the result of the round that just ended, or nil while a round is in progress.
func (m *Match) LastResult() *RoundResult { return m.lastResult }

// OpponentLog returns the description of the opponent's most recent turn.
func (m *Match) OpponentLog() []string { return m.opponentLog }

// Reveals returns the cosmetic reveal windows.
func (m *Match) Reveals() *RevealWindows { return &m.reveals }

func (m *Match) humanTurn() error {
	if m.round.Over() {
		return ErrRoundOver
	}
	if m.round.Current() != Human {
		return ErrNotYourTurn
	}
	return nil
}

func (m *Match) requirePhase(p TurnPhase) error {
	if err := m.humanTurn(); err != nil {
		return err
	}
	if m.phase != p {
		if m.phase == PowerInteraction {
			return ErrPowerPending
		}
		return fmt.Errorf("%w: %s", ErrWrongPhase, m.phase)
	}
	return nil
}

// DrawFromDeck draws the top deck card into the human's hand. ok is false when the deck is empty;
// that is not an error and the phase does not change.
func (m *Match) DrawFromDeck() (Card, bool, error) {
	if err := m.requirePhase(ChooseDraw); err != nil {
		return Card{}, false, err
	}
	c, ok := m.round.DrawFromDeck()
	if !ok {
		return Card{}, false, nil
	}
	m.held = &c
	m.heldFrom = FromDeck
	if c.Power() != PowerNone {
		m.phase = PowerDecision
	} else {
		m.phase = Playing
	}
	return c, true, nil
}

// DrawFromDiscard takes the top discard card into the human's hand. Cards taken from the discard pile
// never trigger a power.
func (m *Match) DrawFromDiscard() (Card, bool, error) {
	if err := m.requirePhase(ChooseDraw); err != nil {
		return Card{}, false, err
	}
	c, ok := m.round.DrawFromDiscard()
	if !ok {
		return Card{}, false, nil
	}
	m.held = &c
	m.heldFrom = FromDiscard
	m.phase = Playing
	return c, true, nil
}

// UsePower discards the held power card and starts its target selection.
func (m *Match) UsePower() (Power, error) {
	if err := m.requirePhase(PowerDecision); err != nil {
		return PowerNone, err
	}
	if m.held == nil {
		return PowerNone, ErrNoHeldCard
	}
	card := *m.held
	m.round.Discard(card)
	m.held = nil
	m.heldFrom = FromNowhere
	m.pending = pendingFor(card.Power())
	m.phase = PowerInteraction
	return card.Power(), nil
}

// SkipPower keeps the held card and moves on to playing it.
func (m *Match) SkipPower() error {
	if err := m.requirePhase(PowerDecision); err != nil {
		return err
	}
	m.phase = Playing
	return nil
}

// SelectOwnSlot answers a power prompt that targets the human's board: a self peek or the first half
// of a swap.
func (m *Match) SelectOwnSlot(slot int) error {
	if err := m.requirePhase(PowerInteraction); err != nil {
		return err
	}
	if !ValidSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if _, ok := m.round.Board(Human).Slot(slot); !ok {
		return fmt.Errorf("%w: %d", ErrSlotEmpty, slot)
	}
	switch m.pending {
	case PendingPeekSelf:
		m.reveals.Reveal(Human, slot, m.now(), m.reveal)
		m.endInteraction()
	case PendingSwapSelf:
		m.swapSelf = slot
		m.pending = PendingSwapOpponent
	default:
		return fmt.Errorf("%w: waiting for %s", ErrWrongPhase, m.pending)
	}
	return nil
}

// SelectOpponentSlot answers a power prompt that targets the opponent's board: an opponent peek or
// the second half of a swap.
func (m *Match) SelectOpponentSlot(slot int) error {
	if err := m.requirePhase(PowerInteraction); err != nil {
		return err
	}
	if !ValidSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	switch m.pending {
	case PendingPeekOpponent:
		if _, ok := m.round.Board(AI).Slot(slot); !ok {
			return fmt.Errorf("%w: %d", ErrSlotEmpty, slot)
		}
		m.reveals.Reveal(AI, slot, m.now(), m.reveal)
		m.endInteraction()
	case PendingSwapOpponent:
		if !m.round.SwapSlots(Human, m.swapSelf, AI, slot) {
			return ErrInvalidSwap
		}
		if m.opponent != nil {
			m.opponent.Observe(SlotWrite{Slot: slot, Hidden: true})
		}
		slog.Debug("swap resolved", "tag", "game", "match", m.ID, "own", m.swapSelf, "opponent", slot)
		m.endInteraction()
	default:
		return fmt.Errorf("%w: waiting for %s", ErrWrongPhase, m.pending)
	}
	return nil
}

func (m *Match) endInteraction() {
	m.pending = PendingNone
	m.swapSelf = -1
	m.phase = Playing
}

func (m *Match) requireHeldInPlay() error {
	if err := m.requirePhase(Playing); err != nil {
		return err
	}
	if m.held == nil {
		return ErrNoHeldCard
	}
	return nil
}

// Replace places the held card into an occupied slot; the slot's card goes to the discard pile.
// The human may then end the turn.
func (m *Match) Replace(slot int) error {
	if err := m.requireHeldInPlay(); err != nil {
		return err
	}
	if m.multi {
		return fmt.Errorf("%w: multi-discard mode is on", ErrWrongPhase)
	}
	if !ValidSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if !m.round.ReplaceCardOnBoard(Human, slot, *m.held) {
		return fmt.Errorf("%w: slot %d is empty", ErrInvalidPlacement, slot)
	}
	m.held = nil
	m.heldFrom = FromNowhere
	return nil
}

// ToggleMultiMode switches multi-discard selection on or off. The selection is cleared either way.
func (m *Match) ToggleMultiMode() (bool, error) {
	if err := m.requireHeldInPlay(); err != nil {
		return false, err
	}
	m.multi = !m.multi
	m.selected = [BoardSize]bool{}
	return m.multi, nil
}

// ToggleMultiSlot adds or removes slot from the multi-discard selection. Empty slots may be selected;
// confirming such a selection is a misplay.
func (m *Match) ToggleMultiSlot(slot int) error {
	if err := m.requireHeldInPlay(); err != nil {
		return err
	}
	if !m.multi {
		return ErrNotMultiMode
	}
	if !ValidSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	m.selected[slot] = !m.selected[slot]
	return nil
}

// SelectedSlots returns the multi-discard selection in ascending order.
func (m *Match) SelectedSlots() []int {
	var out []int
	for i, s := range m.selected {
		if s {
			out = append(out, i)
		}
	}
	return out
}

// ConfirmMultiDiscard resolves the multi-discard selection. If every selected slot holds a card of the
// same rank they are all discarded and the held card takes the lowest selected slot. Otherwise the
// misplay penalty applies and the turn ends at once.
func (m *Match) ConfirmMultiDiscard() (MultiOutcome, error) {
	if err := m.requireHeldInPlay(); err != nil {
		return MultiOutcome{}, err
	}
	if !m.multi {
		return MultiOutcome{}, ErrNotMultiMode
	}
	slots := m.SelectedSlots()
	if len(slots) == 0 {
		return MultiOutcome{}, ErrEmptySelection
	}
	if m.round.DiscardMatching(Human, slots, *m.held) {
		m.held = nil
		m.heldFrom = FromNowhere
		m.multi = false
		m.selected = [BoardSize]bool{}
		return MultiOutcome{Success: true, Slots: slots}, nil
	}
	punished := m.applyPenalty()
	return MultiOutcome{Slots: slots, Penalty: true, Punished: &punished}, nil
}

// RequestPenalty applies the misplay penalty directly and ends the turn.
func (m *Match) RequestPenalty() (Card, error) {
	if err := m.requireHeldInPlay(); err != nil {
		return Card{}, err
	}
	return m.applyPenalty(), nil
}

func (m *Match) applyPenalty() Card {
	punished := m.round.ApplyPenalty(Human, *m.held, m.rng)
	m.held = nil
	m.heldFrom = FromNowhere
	slog.Info("misplay penalty", "tag", "game", "match", m.ID, "punished", punished.String())
	m.finishHumanTurn()
	return punished
}

// EndTurn finishes the human turn. A card still in hand is discarded. Control passes to the opponent,
// which plays its turn before EndTurn returns, unless a Cabot sequence says otherwise.
func (m *Match) EndTurn() error {
	if err := m.requirePhase(Playing); err != nil {
		return err
	}
	m.finishHumanTurn()
	return nil
}

func (m *Match) finishHumanTurn() {
	if m.held != nil {
		m.round.Discard(*m.held)
	}
	m.resetTurn()

	if m.cabot.Declared && m.cabot.By == AI {
		m.cabot.TurnsLeft--
		if m.cabot.TurnsLeft <= 0 {
			m.endRound()
		}
		return
	}

	m.round.SwitchTurn()
	if m.round.Current() == AI {
		m.opponentTurn()
	}
}

// RunOpponentTurn plays the opponent's turn when it holds the turn, e.g. when it starts a round.
func (m *Match) RunOpponentTurn() error {
	if m.round.Over() {
		return ErrRoundOver
	}
	if m.round.Current() != AI {
		return ErrNotYourTurn
	}
	m.opponentTurn()
	return nil
}

// opponentTurn plays one regular opponent turn and hands the turn back to the human.
func (m *Match) opponentTurn() {
	m.playOpponent()
	m.round.SwitchTurn()
	if m.cabot.Declared && m.cabot.By == AI {
		slog.Info("cabot declared", "tag", "game", "match", m.ID, "by", AI.String(), "timing", m.cabot.Timing.String())
	}
}

func (m *Match) playOpponent() {
	if m.opponent == nil {
		return
	}
	ctl := &opponentControl{m: m}
	m.opponentLog = m.opponent.TakeTurn(ctl)
	ctl.close()
}

// DeclareCabot declares Cabot for the human. StartOfTurn is only valid before drawing and gives up
// the turn; EndOfTurn is valid once the human has drawn. A card still in hand is discarded. The
// opponent then plays its extra turns and the round is scored before DeclareCabot returns.
func (m *Match) DeclareCabot(timing CabotTiming) (RoundResult, error) {
	if err := m.humanTurn(); err != nil {
		return RoundResult{}, err
	}
	if m.cabot.Declared {
		return RoundResult{}, ErrCabotDeclared
	}
	if m.phase == PowerInteraction {
		return RoundResult{}, ErrPowerPending
	}
	switch timing {
	case StartOfTurn:
		if m.phase != ChooseDraw {
			return RoundResult{}, fmt.Errorf("%w: already drew this turn", ErrCabotTiming)
		}
	case EndOfTurn:
		if m.phase == ChooseDraw {
			return RoundResult{}, fmt.Errorf("%w: draw first", ErrCabotTiming)
		}
	default:
		return RoundResult{}, ErrCabotTiming
	}

	if m.held != nil {
		m.round.Discard(*m.held)
	}
	m.resetTurn()
	m.cabot.declare(Human, timing)
	slog.Info("cabot declared", "tag", "game", "match", m.ID, "by", Human.String(), "timing", timing.String())

	for m.cabot.TurnsLeft > 0 {
		m.round.setCurrent(AI)
		m.playOpponent()
		m.cabot.TurnsLeft--
	}
	return m.endRound(), nil
}

func (m *Match) endRound() RoundResult {
	res := ResolveRound(m.cabot.By, [2]int{m.round.PointsOf(Human), m.round.PointsOf(AI)})
	m.round.finish()
	m.session = m.session.Record(res)
	m.lastResult = &res
	slog.Info("round over", "tag", "game", "match", m.ID,
		"winner", res.Winner.String(), "human_points", res.Points[Human], "ai_points", res.Points[AI],
		"score_human", m.session.Score[Human], "score_ai", m.session.Score[AI])
	if m.session.Over {
		slog.Info("session over", "tag", "game", "match", m.ID, "winner", m.session.Winner.String())
	}
	return res
}

// NextRound deals the next round once the current one is scored. The loser of the last round starts.
func (m *Match) NextRound() error {
	if !m.round.Over() {
		return ErrRoundInProgress
	}
	if m.session.Over {
		return ErrSessionOver
	}
	m.startRound(NewRound(m.session.NextStarter, m.rng))
	return nil
}

// NewSession resets the score and deals a fresh round with the human starting.
func (m *Match) NewSession() {
	m.session = NewSession(Human)
	m.startRound(NewRound(Human, m.rng))
}

// cardIDs lists every card id in the match: round contents plus the human's held card.
func (m *Match) cardIDs() []int {
	ids := m.round.cardIDs()
	if m.held != nil {
		ids = append(ids, m.held.ID)
	}
	return ids
}

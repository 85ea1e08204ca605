package game

import "errors"

// Command errors returned by Match. A command that returns an error leaves the match unchanged.
var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrWrongPhase       = errors.New("action not allowed in this phase")
	ErrNoHeldCard       = errors.New("no card in hand")
	ErrInvalidSlot      = errors.New("slot out of range")
	ErrSlotEmpty        = errors.New("slot is empty")
	ErrInvalidPlacement = errors.New("cannot place card there")
	ErrInvalidSwap      = errors.New("swap needs two occupied slots")
	ErrNotMultiMode     = errors.New("multi-discard mode is off")
	ErrEmptySelection   = errors.New("select at least one card")
	ErrPowerPending     = errors.New("finish the current power first")
	ErrCabotDeclared    = errors.New("cabot already declared this round")
	ErrCabotTiming      = errors.New("cabot timing does not match the turn")
	ErrRoundOver        = errors.New("round is over")
	ErrRoundInProgress  = errors.New("round still in progress")
	ErrSessionOver      = errors.New("session is over")
)

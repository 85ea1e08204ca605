package game

// Power is the one-time ability a card grants when drawn from the deck and not placed.
type Power int

const (
	PowerNone Power = iota
	PowerPeekSelf
	PowerPeekOpponent
	PowerSwap
)

// String returns the protocol string for a Power.
func (p Power) String() string {
	switch p {
	case PowerNone:
		return "none"
	case PowerPeekSelf:
		return "peek_self"
	case PowerPeekOpponent:
		return "peek_opponent"
	case PowerSwap:
		return "swap"
	default:
		return "unknown"
	}
}

// PowerForRank maps Seven/Eight to a self peek, Nine/Ten to an opponent peek and Jack/Queen to a swap.
func PowerForRank(r Rank) Power {
	switch r {
	case Seven, Eight:
		return PowerPeekSelf
	case Nine, Ten:
		return PowerPeekOpponent
	case Jack, Queen:
		return PowerSwap
	default:
		return PowerNone
	}
}

// PendingPower is the target selection a used power is still waiting for.
type PendingPower int

const (
	PendingNone PendingPower = iota
	PendingPeekSelf
	PendingPeekOpponent
	PendingSwapSelf     // swap: pick one of your own cards first
	PendingSwapOpponent // swap: then one of the opponent's cards
)

// String returns the protocol string for a PendingPower.
func (p PendingPower) String() string {
	switch p {
	case PendingNone:
		return "none"
	case PendingPeekSelf:
		return "peek_self"
	case PendingPeekOpponent:
		return "peek_opponent"
	case PendingSwapSelf:
		return "swap_select_self"
	case PendingSwapOpponent:
		return "swap_select_opponent"
	default:
		return "unknown"
	}
}

// pendingFor returns the first interaction step for a power.
func pendingFor(p Power) PendingPower {
	switch p {
	case PowerPeekSelf:
		return PendingPeekSelf
	case PowerPeekOpponent:
		return PendingPeekOpponent
	case PowerSwap:
		return PendingSwapSelf
	default:
		return PendingNone
	}
}

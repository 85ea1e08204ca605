package matcherrors

import "errors"

// Match lookup sentinel errors. Used by the matchmaking, ws and api packages
// to avoid circular imports.
var (
	ErrMatchNotFound = errors.New("match not found")
	ErrNoActiveMatch = errors.New("no active match for this connection")
	ErrInvalidName   = errors.New("invalid player name")
)

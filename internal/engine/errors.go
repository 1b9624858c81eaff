package engine

import "errors"

// Request-level errors reject the whole call before any mutation.
var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameInactive    = errors.New("game is not active")
	ErrNotYourTurn     = errors.New("not this bot's turn")
	ErrBotNotFound     = errors.New("bot not found")
	ErrAlreadyFinished = errors.New("game already finished")
)

// Per-action errors are recovered locally: they end up in the turn log and
// processing continues with the next action.
var (
	ErrInvalidTarget    = errors.New("invalid target index")
	ErrDistanceExceeded = errors.New("move distance exceeds maximum")
	ErrInsufficientFuel = errors.New("not enough fuel")
	ErrRotationExceeded = errors.New("rotation exceeds 60 degrees")
	ErrOutOfRange       = errors.New("target out of range")
	ErrUnknownAction    = errors.New("unknown action type")
)

// ErrSettlement wraps failures reported by the settlement gateway. The engine
// never silently proceeds past one on the create or finish paths.
var ErrSettlement = errors.New("settlement failure")

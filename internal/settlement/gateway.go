// Package settlement abstracts the wagering backend that records games, bets
// and winners. The engine only talks to the Gateway interface; the concrete
// backend (in-memory mock or Postgres ledger) is injected at construction.
package settlement

import "context"

// BotRegistration is the initial on-ledger record of a bot.
type BotRegistration struct {
	X            float64
	Y            float64
	Orientation  float64
	HP           int
	Attack       int
	Defense      int
	Speed        int
	Fuel         float64
	WeaponChoice int
}

// BotUpdate is a mid-game checkpoint of a bot. Coordinates and orientation
// arrive already floored by the caller.
type BotUpdate struct {
	X           int
	Y           int
	Orientation int
	HP          int
	Fuel        float64
	DamageDealt int
}

// Gateway is the narrow settlement interface the engine depends on. Calls may
// block; implementations own their retry and timeout policies.
type Gateway interface {
	CreateGame(ctx context.Context, betAmount float64) (string, error)
	RegisterBot(ctx context.Context, gameID string, bot BotRegistration) error
	UpdateBotState(ctx context.Context, gameID string, botIndex int, update BotUpdate) error
	FinishGame(ctx context.Context, gameID string, winningBotIndex int) error
}

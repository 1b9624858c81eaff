package engine

import "sync"

// BotState is the mutable per-bot record. A bot's index within its game is
// its identity and is never reassigned.
type BotState struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Orientation  float64 `json:"orientation"` // degrees, normalized to [0,360)
	HP           int     `json:"HP"`
	Attack       int     `json:"Attack"`
	Defense      int     `json:"Defense"`
	Speed        int     `json:"Speed"`
	Fuel         float64 `json:"Fuel"`
	DamageDealt  int     `json:"damageDealt"`
	WeaponChoice int     `json:"weaponChoice"`
	APConsumed   int     `json:"apConsumed"`

	// Off-chain extras carried through registration. Prompt verification is
	// handled elsewhere; the engine only stores these.
	Prompt   string `json:"prompt,omitempty"`
	Verified bool   `json:"verified"`
}

// Alive reports whether the bot can still act.
func (b *BotState) Alive() bool {
	return b.HP > 0
}

// BotSpec is the registration payload for a new bot.
type BotSpec struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Orientation  float64 `json:"orientation"`
	HP           int     `json:"HP"`
	Attack       int     `json:"Attack"`
	Defense      int     `json:"Defense"`
	Speed        int     `json:"Speed"`
	Fuel         float64 `json:"Fuel"`
	WeaponChoice int     `json:"weaponChoice"`
	Prompt       string  `json:"prompt,omitempty"`
}

// Game owns one battle's mutable state. All turn and finish processing for a
// game happens under its mutex, including any settlement call made on the way
// out of a turn, so a second request can never observe a finish in progress.
type Game struct {
	mu sync.Mutex

	ID              string
	IsActive        bool
	TurnCount       int
	CurrentBotIndex int
	BetAmount       float64
	Bots            []*BotState
}

// aliveCount returns how many bots still have HP, and the index of the last
// one seen (the winner when the count is exactly 1).
func (g *Game) aliveCount() (count, lastIndex int) {
	for i, b := range g.Bots {
		if b.Alive() {
			count++
			lastIndex = i
		}
	}
	return count, lastIndex
}

// advanceTurn moves the pointer to the next alive bot, wrapping past the end
// and bumping TurnCount on every wrap. With no alive bots the pointer stays
// put; the auto-finish check owns that case.
func (g *Game) advanceTurn() {
	alive, _ := g.aliveCount()
	if alive == 0 {
		return
	}
	for {
		g.CurrentBotIndex++
		if g.CurrentBotIndex >= len(g.Bots) {
			g.CurrentBotIndex = 0
			g.TurnCount++
		}
		if g.Bots[g.CurrentBotIndex].Alive() {
			return
		}
	}
}

// BotSnapshot is a read-only copy of a bot, tagged with its index.
type BotSnapshot struct {
	BotIndex int `json:"botIndex"`
	BotState
}

// Snapshot is a read-only copy of a game's state.
type Snapshot struct {
	GameID          string        `json:"gameId"`
	IsActive        bool          `json:"isActive"`
	TurnCount       int           `json:"turnCount"`
	CurrentBotIndex int           `json:"currentBotIndex"`
	BetAmount       float64       `json:"betAmount"`
	Bots            []BotSnapshot `json:"bots"`
}

// snapshotLocked copies the game state; callers hold g.mu.
func (g *Game) snapshotLocked() Snapshot {
	s := Snapshot{
		GameID:          g.ID,
		IsActive:        g.IsActive,
		TurnCount:       g.TurnCount,
		CurrentBotIndex: g.CurrentBotIndex,
		BetAmount:       g.BetAmount,
		Bots:            make([]BotSnapshot, len(g.Bots)),
	}
	for i, b := range g.Bots {
		s.Bots[i] = BotSnapshot{BotIndex: i, BotState: *b}
	}
	return s
}

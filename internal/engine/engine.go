// Package engine implements the authoritative battle state machine: game and
// bot state, the combat resolver, and the turn scheduler. Settlement is
// delegated to an injected gateway; the engine holds no transport concerns.
package engine

import (
	"context"
	"fmt"
	"math"

	"agentbattle/internal/settlement"
	"agentbattle/internal/weapons"
)

// maxAP is the per-turn action point budget.
const maxAP = 2

// Engine coordinates all games. One instance serves the whole process.
type Engine struct {
	store   *Store
	gateway settlement.Gateway

	// OnUpdate, when set, receives a snapshot after every state-changing
	// operation on a game. Used by the spectator feed; must not block.
	OnUpdate func(Snapshot)
}

func New(gateway settlement.Gateway) *Engine {
	return &Engine{
		store:   NewStore(),
		gateway: gateway,
	}
}

func (e *Engine) notify(s Snapshot) {
	if e.OnUpdate != nil {
		e.OnUpdate(s)
	}
}

// CreateGame registers the game with the settlement gateway first; only a
// recorded bet gets an in-memory game.
func (e *Engine) CreateGame(ctx context.Context, betAmount float64) (string, error) {
	gameID, err := e.gateway.CreateGame(ctx, betAmount)
	if err != nil {
		return "", fmt.Errorf("%w: create game: %v", ErrSettlement, err)
	}

	g := &Game{
		ID:        gameID,
		IsActive:  true,
		BetAmount: betAmount,
	}
	e.store.add(g)
	return gameID, nil
}

// RegisterBot appends a bot to an active game and mirrors the registration to
// the settlement gateway. The returned index is the bot's permanent identity.
func (e *Engine) RegisterBot(ctx context.Context, gameID string, spec BotSpec) (int, error) {
	g, ok := e.store.get(gameID)
	if !ok {
		return 0, ErrGameNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.IsActive {
		return 0, ErrGameInactive
	}
	if !weapons.IsValid(spec.WeaponChoice) {
		return 0, fmt.Errorf("invalid weapon choice %d", spec.WeaponChoice)
	}

	err := e.gateway.RegisterBot(ctx, gameID, settlement.BotRegistration{
		X:            spec.X,
		Y:            spec.Y,
		Orientation:  spec.Orientation,
		HP:           spec.HP,
		Attack:       spec.Attack,
		Defense:      spec.Defense,
		Speed:        spec.Speed,
		Fuel:         spec.Fuel,
		WeaponChoice: spec.WeaponChoice,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: register bot: %v", ErrSettlement, err)
	}

	bot := &BotState{
		X:            spec.X,
		Y:            spec.Y,
		Orientation:  normalizeAngle(spec.Orientation),
		HP:           spec.HP,
		Attack:       spec.Attack,
		Defense:      spec.Defense,
		Speed:        spec.Speed,
		Fuel:         spec.Fuel,
		WeaponChoice: spec.WeaponChoice,
		Prompt:       spec.Prompt,
		Verified:     false,
	}
	g.Bots = append(g.Bots, bot)
	index := len(g.Bots) - 1

	e.notify(g.snapshotLocked())
	return index, nil
}

// GameState returns a read-only snapshot of one game.
func (e *Engine) GameState(gameID string) (Snapshot, error) {
	g, ok := e.store.get(gameID)
	if !ok {
		return Snapshot{}, ErrGameNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(), nil
}

// SyncOnChain checkpoints every bot's rounded state through the gateway.
// Best effort: a gateway failure is reported but in-memory state is never
// touched by this call.
func (e *Engine) SyncOnChain(ctx context.Context, gameID string) error {
	g, ok := e.store.get(gameID)
	if !ok {
		return ErrGameNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for i, b := range g.Bots {
		err := e.gateway.UpdateBotState(ctx, gameID, i, settlement.BotUpdate{
			X:           int(math.Floor(b.X)),
			Y:           int(math.Floor(b.Y)),
			Orientation: int(math.Floor(b.Orientation)),
			HP:          b.HP,
			Fuel:        b.Fuel,
			DamageDealt: b.DamageDealt,
		})
		if err != nil {
			return fmt.Errorf("%w: sync bot %d: %v", ErrSettlement, i, err)
		}
	}
	return nil
}

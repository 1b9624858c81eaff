package settlement

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
)

type mockGame struct {
	active bool
	bots   []BotRegistration
}

// Mock is an in-memory Gateway for local play and tests. Game IDs are an
// incrementing counter, matching what the real ledger would hand out as the
// first few IDs on a fresh database.
type Mock struct {
	mu      sync.Mutex
	games   map[string]*mockGame
	counter int
}

func NewMock() *Mock {
	log.Println("[settlement-mock] running with in-memory settlement")
	return &Mock{games: make(map[string]*mockGame)}
}

func (m *Mock) CreateGame(ctx context.Context, betAmount float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	id := strconv.Itoa(m.counter)
	m.games[id] = &mockGame{active: true}
	log.Printf("[settlement-mock] created game %s (bet %.2f)", id, betAmount)
	return id, nil
}

func (m *Mock) RegisterBot(ctx context.Context, gameID string, bot BotRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("mock settlement: game %s does not exist", gameID)
	}
	g.bots = append(g.bots, bot)
	log.Printf("[settlement-mock] registered bot %d in game %s", len(g.bots)-1, gameID)
	return nil
}

func (m *Mock) UpdateBotState(ctx context.Context, gameID string, botIndex int, update BotUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("mock settlement: game %s does not exist", gameID)
	}
	if botIndex < 0 || botIndex >= len(g.bots) {
		return fmt.Errorf("mock settlement: bot %d does not exist in game %s", botIndex, gameID)
	}
	b := &g.bots[botIndex]
	b.X = float64(update.X)
	b.Y = float64(update.Y)
	b.Orientation = float64(update.Orientation)
	b.HP = update.HP
	b.Fuel = update.Fuel
	log.Printf("[settlement-mock] updated bot %d in game %s", botIndex, gameID)
	return nil
}

func (m *Mock) FinishGame(ctx context.Context, gameID string, winningBotIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("mock settlement: game %s does not exist", gameID)
	}
	g.active = false
	log.Printf("[settlement-mock] finished game %s, winner: bot %d", gameID, winningBotIndex)
	return nil
}

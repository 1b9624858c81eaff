package engine

import "sync"

// Store owns every live game, keyed by the settlement-assigned game ID.
// The store lock only guards the map; each game carries its own mutex so
// turns on different games never serialize against each other.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Game
}

func NewStore() *Store {
	return &Store{games: make(map[string]*Game)}
}

func (s *Store) add(g *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

func (s *Store) get(id string) (*Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok
}

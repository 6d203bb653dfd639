package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*Game
	turns []TurnRecord
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]*Game),
	}
}

func (s *MemoryStore) CreateGame(_ context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[g.ID]; ok {
		return fmt.Errorf("%w: game %s", ErrExists, g.ID)
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	// Store a copy to avoid external mutation.
	cp := *g
	cp.State = g.State.Clone()
	s.games[g.ID] = &cp
	return nil
}

func (s *MemoryStore) GetGame(_ context.Context, id string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	cp := *g
	cp.State = g.State.Clone()
	return &cp, nil
}

func (s *MemoryStore) SaveGame(_ context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.games[g.ID]
	if !ok {
		return fmt.Errorf("%w: game %s", ErrNotFound, g.ID)
	}
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now().UTC()
	cp := *g
	cp.State = g.State.Clone()
	s.games[g.ID] = &cp
	return nil
}

func (s *MemoryStore) ListGames(_ context.Context) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]Game, 0, len(s.games))
	for _, g := range s.games {
		cp := *g
		cp.State = g.State.Clone()
		games = append(games, cp)
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	return games, nil
}

func (s *MemoryStore) InsertTurn(_ context.Context, t *TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[t.GameID]; !ok {
		return fmt.Errorf("%w: game %s", ErrNotFound, t.GameID)
	}
	s.turns = append(s.turns, *t)
	return nil
}

func (s *MemoryStore) ListTurns(_ context.Context, gameID string) ([]TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []TurnRecord{}
	for _, t := range s.turns {
		if t.GameID == gameID {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Turn < result[j].Turn })
	return result, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore wraps a primary Store with a Redis read-through cache.
// Writes go to the primary store and then refresh or invalidate the cache;
// reads check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through ---

func (s *CachedStore) CreateGame(ctx context.Context, g *Game) error {
	if err := s.primary.CreateGame(ctx, g); err != nil {
		return err
	}
	s.cacheGame(ctx, g)
	return nil
}

func (s *CachedStore) SaveGame(ctx context.Context, g *Game) error {
	if err := s.primary.SaveGame(ctx, g); err != nil {
		// The primary may hold a different version now.
		s.rdb.Del(ctx, gameKey(g.ID))
		return err
	}
	s.cacheGame(ctx, g)
	return nil
}

func (s *CachedStore) InsertTurn(ctx context.Context, t *TurnRecord) error {
	if err := s.primary.InsertTurn(ctx, t); err != nil {
		return err
	}
	// Invalidate the ledger cache; next read will re-populate.
	s.rdb.Del(ctx, turnsKey(t.GameID))
	return nil
}

// --- Read-through ---

func (s *CachedStore) GetGame(ctx context.Context, id string) (*Game, error) {
	data, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == nil {
		var g Game
		if json.Unmarshal(data, &g) == nil {
			return &g, nil
		}
	}

	g, err := s.primary.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheGame(ctx, g)
	return g, nil
}

func (s *CachedStore) ListTurns(ctx context.Context, gameID string) ([]TurnRecord, error) {
	data, err := s.rdb.Get(ctx, turnsKey(gameID)).Bytes()
	if err == nil {
		var turns []TurnRecord
		if json.Unmarshal(data, &turns) == nil {
			return turns, nil
		}
	}

	turns, err := s.primary.ListTurns(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(turns); err == nil {
		s.rdb.Set(ctx, turnsKey(gameID), data, s.ttl)
	}
	return turns, nil
}

// --- Passthrough ---

func (s *CachedStore) ListGames(ctx context.Context) ([]Game, error) {
	return s.primary.ListGames(ctx)
}

func (s *CachedStore) cacheGame(ctx context.Context, g *Game) {
	if data, err := json.Marshal(g); err == nil {
		s.rdb.Set(ctx, gameKey(g.ID), data, s.ttl)
	}
}

func gameKey(id string) string  { return fmt.Sprintf("ceosim:game:%s", id) }
func turnsKey(id string) string { return fmt.Sprintf("ceosim:turns:%s", id) }

// Package store defines the persistence interface for game sessions.
// Implementations include PostgreSQL, SQLite (local file), Redis
// (read-through cache in front of either) and in-memory (for testing).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrExists   = errors.New("store: already exists")
)

// Game is one persisted session: the full engine state plus bookkeeping.
type Game struct {
	ID        string          `json:"id"`
	State     model.GameState `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TurnRecord is an immutable entry of the per-game turn ledger.
type TurnRecord struct {
	ID                string             `json:"id"`
	GameID            string             `json:"game_id"`
	Turn              int                `json:"turn"`
	DecisionID        string             `json:"decision_id"`
	DecisionType      model.DecisionType `json:"decision_type"`
	Success           bool               `json:"success"`
	MarketCapChange   decimal.Decimal    `json:"market_cap_change"`
	CashChange        decimal.Decimal    `json:"cash_change"`
	HappyPeopleChange int64              `json:"happy_people_change"`
	ReputationChange  int                `json:"reputation_change"`
	EmployeesChange   int                `json:"employees_change"`
	MarketCap         decimal.Decimal    `json:"market_cap"`
	Cash              decimal.Decimal    `json:"cash"`
	CreatedAt         time.Time          `json:"created_at"`
}

// NewTurnRecord builds the ledger entry for a resolved decision. The
// metrics snapshot is taken from the state after the turn was applied.
func NewTurnRecord(gameID string, after model.GameState, res model.DecisionResult) TurnRecord {
	return TurnRecord{
		ID:                uuid.NewString(),
		GameID:            gameID,
		Turn:              after.TurnCount,
		DecisionID:        res.DecisionID,
		DecisionType:      res.Type,
		Success:           res.Success,
		MarketCapChange:   res.Effects.MarketCapChange,
		CashChange:        res.Effects.CashChange,
		HappyPeopleChange: res.Effects.HappyPeopleChange,
		ReputationChange:  res.Effects.ReputationChange,
		EmployeesChange:   res.Effects.EmployeesChange,
		MarketCap:         after.Company.MarketCap,
		Cash:              after.Company.Cash,
		CreatedAt:         time.Now().UTC(),
	}
}

// Store is the persistence interface.
type Store interface {
	// --- Game sessions ---

	// CreateGame persists a new game. It fails with ErrExists on an id clash.
	CreateGame(ctx context.Context, g *Game) error

	// GetGame retrieves a game by id.
	GetGame(ctx context.Context, id string) (*Game, error)

	// SaveGame replaces the state of an existing game.
	SaveGame(ctx context.Context, g *Game) error

	// ListGames returns all games, most recently created first.
	ListGames(ctx context.Context) ([]Game, error)

	// --- Turn ledger ---

	// InsertTurn appends an immutable turn record.
	InsertTurn(ctx context.Context, t *TurnRecord) error

	// ListTurns returns the turns of a game in play order.
	ListTurns(ctx context.Context, gameID string) ([]TurnRecord, error)
}

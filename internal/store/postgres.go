package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore implements Store using PostgreSQL. Game state is kept as
// JSONB; ledger money columns are NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the embedded schema files that have not run yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createSchemaMigrations); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	files, err := migrations("postgres")
	if err != nil {
		return err
	}
	for _, m := range files {
		var applied bool
		err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.version, err)
		}
		if applied {
			continue
		}
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`,
			m.version, time.Now().UTC()); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.version, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateGame(ctx context.Context, g *Game) error {
	state, err := json.Marshal(g.State)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	_, err = s.pool.Exec(ctx,
		`INSERT INTO games (id, company_name, mode, game_phase, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::JSONB, $6, $7)`,
		g.ID, g.State.Company.Name, g.State.Mode, g.State.GamePhase,
		string(state), g.CreatedAt, g.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: game %s", ErrExists, g.ID)
	}
	return err
}

func (s *PostgresStore) GetGame(ctx context.Context, id string) (*Game, error) {
	var g Game
	var state []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, state, created_at, updated_at FROM games WHERE id = $1`, id).
		Scan(&g.ID, &state, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	if err := json.Unmarshal(state, &g.State); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

func (s *PostgresStore) SaveGame(ctx context.Context, g *Game) error {
	state, err := json.Marshal(g.State)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	g.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`UPDATE games
		 SET game_phase = $2, state = $3::JSONB, updated_at = $4
		 WHERE id = $1`,
		g.ID, g.State.GamePhase, string(state), g.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: game %s", ErrNotFound, g.ID)
	}
	return nil
}

func (s *PostgresStore) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, state, created_at, updated_at FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		var g Game
		var state []byte
		if err := rows.Scan(&g.ID, &state, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(state, &g.State); err != nil {
			return nil, fmt.Errorf("decode game %s: %w", g.ID, err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *PostgresStore) InsertTurn(ctx context.Context, t *TurnRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO turns (id, game_id, turn, decision_id, decision_type, success,
		                    market_cap_change, cash_change, happy_people_change,
		                    reputation_change, employees_change, market_cap, cash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::NUMERIC, $8::NUMERIC, $9, $10, $11,
		         $12::NUMERIC, $13::NUMERIC, $14)`,
		t.ID, t.GameID, t.Turn, t.DecisionID, t.DecisionType, t.Success,
		t.MarketCapChange.String(), t.CashChange.String(), t.HappyPeopleChange,
		t.ReputationChange, t.EmployeesChange,
		t.MarketCap.String(), t.Cash.String(), t.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("%w: game %s", ErrNotFound, t.GameID)
	}
	return err
}

func (s *PostgresStore) ListTurns(ctx context.Context, gameID string) ([]TurnRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, game_id, turn, decision_id, decision_type, success,
		        market_cap_change::TEXT, cash_change::TEXT, happy_people_change,
		        reputation_change, employees_change, market_cap::TEXT, cash::TEXT, created_at
		 FROM turns WHERE game_id = $1 ORDER BY turn`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTurns(rows)
}

// rowScanner is satisfied by both pgx.Rows and *sql.Rows.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTurns(rows rowScanner) ([]TurnRecord, error) {
	turns := []TurnRecord{}
	for rows.Next() {
		var t TurnRecord
		var mcChange, cashChange, mc, cash string

		if err := rows.Scan(&t.ID, &t.GameID, &t.Turn, &t.DecisionID, &t.DecisionType, &t.Success,
			&mcChange, &cashChange, &t.HappyPeopleChange,
			&t.ReputationChange, &t.EmployeesChange, &mc, &cash, &t.CreatedAt); err != nil {
			return nil, err
		}

		t.MarketCapChange, _ = decimal.NewFromString(mcChange)
		t.CashChange, _ = decimal.NewFromString(cashChange)
		t.MarketCap, _ = decimal.NewFromString(mc)
		t.Cash, _ = decimal.NewFromString(cash)

		turns = append(turns, t)
	}
	return turns, rows.Err()
}

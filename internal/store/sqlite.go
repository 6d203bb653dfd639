package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/ceosim/game-engine/internal/model"
)

// SQLiteStore implements Store on a local SQLite file. It backs single-node
// deployments and the CLI when no PostgreSQL DSN is configured.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the embedded migrations. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps :memory: databases and pragmas consistent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSchemaMigrations); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	files, err := migrations("sqlite")
	if err != nil {
		return err
	}
	for _, m := range files {
		var n int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.version).Scan(&n); err != nil {
			return fmt.Errorf("check migration %s: %w", m.version, err)
		}
		if n > 0 {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			m.version, formatTime(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateGame(ctx context.Context, g *Game) error {
	state, err := json.Marshal(g.State)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, company_name, mode, game_phase, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		g.ID, g.State.Company.Name, string(g.State.Mode), string(g.State.GamePhase),
		string(state), formatTime(g.CreatedAt), formatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: game %s", ErrExists, g.ID)
	}
	return nil
}

func (s *SQLiteStore) GetGame(ctx context.Context, id string) (*Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, state, created_at, updated_at FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	return g, nil
}

func (s *SQLiteStore) SaveGame(ctx context.Context, g *Game) error {
	state, err := json.Marshal(g.State)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	g.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET game_phase = ?, state = ?, updated_at = ? WHERE id = ?`,
		string(g.State.GamePhase), string(state), formatTime(g.UpdatedAt), g.ID,
	)
	if err != nil {
		return fmt.Errorf("update game %s: %w", g.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: game %s", ErrNotFound, g.ID)
	}
	return nil
}

func (s *SQLiteStore) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, state, created_at, updated_at FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) InsertTurn(ctx context.Context, t *TurnRecord) error {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM games WHERE id = ?`, t.GameID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: game %s", ErrNotFound, t.GameID)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (id, game_id, turn, decision_id, decision_type, success,
		                    market_cap_change, cash_change, happy_people_change,
		                    reputation_change, employees_change, market_cap, cash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.GameID, t.Turn, t.DecisionID, string(t.DecisionType), t.Success,
		t.MarketCapChange.String(), t.CashChange.String(), t.HappyPeopleChange,
		t.ReputationChange, t.EmployeesChange,
		t.MarketCap.String(), t.Cash.String(), formatTime(t.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) ListTurns(ctx context.Context, gameID string) ([]TurnRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, turn, decision_id, decision_type, success,
		        market_cap_change, cash_change, happy_people_change,
		        reputation_change, employees_change, market_cap, cash, created_at
		 FROM turns WHERE game_id = ? ORDER BY turn`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []TurnRecord{}
	for rows.Next() {
		var t TurnRecord
		var typ, mcChange, cashChange, mc, cash, created string
		if err := rows.Scan(&t.ID, &t.GameID, &t.Turn, &t.DecisionID, &typ, &t.Success,
			&mcChange, &cashChange, &t.HappyPeopleChange,
			&t.ReputationChange, &t.EmployeesChange, &mc, &cash, &created); err != nil {
			return nil, err
		}
		t.DecisionType = model.DecisionType(typ)
		t.MarketCapChange, _ = decimal.NewFromString(mcChange)
		t.CashChange, _ = decimal.NewFromString(cashChange)
		t.MarketCap, _ = decimal.NewFromString(mc)
		t.Cash, _ = decimal.NewFromString(cash)
		t.CreatedAt = parseTime(created)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*Game, error) {
	var g Game
	var state, created, updated string
	if err := row.Scan(&g.ID, &state, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &g.State); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", g.ID, err)
	}
	g.CreatedAt = parseTime(created)
	g.UpdatedAt = parseTime(updated)
	return &g, nil
}

// Fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

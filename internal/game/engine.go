// Package game implements the turn state machine as a pure reducer over
// model.GameState.
package game

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/catalog"
	"github.com/ceosim/game-engine/internal/finance"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/narrative"
	"github.com/ceosim/game-engine/internal/phase"
	"github.com/ceosim/game-engine/internal/resolver"
	"github.com/ceosim/game-engine/internal/rng"
	"github.com/ceosim/game-engine/internal/scoring"
)

const (
	DefaultMaxTurns = 20
	HistoryLimit    = 12
)

var ErrUnknownAction = errors.New("game: unknown action")

// Config holds the engine tunables.
type Config struct {
	MaxTurns int
	Rates    finance.Rates
}

// DefaultConfig returns a 20-turn game with the default rates.
func DefaultConfig() Config {
	return Config{MaxTurns: DefaultMaxTurns, Rates: finance.DefaultRates()}
}

// Engine is stateless apart from its random source; every call takes the
// current state and returns the next one.
type Engine struct {
	cat      *catalog.Catalog
	rng      rng.Source
	resolver *resolver.Resolver
	cfg      Config
}

// New creates an Engine. A zero MaxTurns falls back to the default.
func New(cat *catalog.Catalog, src rng.Source, cfg Config) *Engine {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	return &Engine{
		cat:      cat,
		rng:      src,
		resolver: resolver.New(cat, src),
		cfg:      cfg,
	}
}

// Catalog returns the content catalog the engine draws from.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Config returns the engine tunables.
func (e *Engine) Config() Config { return e.cfg }

// Outcome is the result of one reducer call. When Accepted is false the
// State is the input state, unchanged.
type Outcome struct {
	State    model.GameState        `json:"state"`
	Accepted bool                   `json:"accepted"`
	Message  string                 `json:"message"`
	Result   *model.DecisionResult  `json:"result,omitempty"`
	Quarter  *finance.QuarterReport `json:"quarter,omitempty"`
}

func reject(s model.GameState, format string, args ...any) Outcome {
	return Outcome{State: s, Message: fmt.Sprintf(format, args...)}
}

// Reduce applies an action to a state. Player mistakes are reported as a
// rejected Outcome; errors are reserved for content and programming bugs.
func (e *Engine) Reduce(s model.GameState, a Action) (Outcome, error) {
	switch a := a.(type) {
	case Start:
		return e.start(s, a)
	case Begin:
		return e.begin(s, a.DecisionID)
	case Resolve:
		return e.resolve(s, a.DecisionID)
	case Cancel:
		return cancel(s), nil
	case Reset:
		return Outcome{State: NewState(), Accepted: true, Message: "Game reset."}, nil
	case DevelopProduct:
		return e.developProduct(s, a)
	case EnterMarket:
		return e.enterMarket(s, a)
	}
	return Outcome{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

// NewState returns the empty pre-game state.
func NewState() model.GameState {
	return model.GameState{
		GamePhase:     model.GameSetup,
		Mode:          model.ModeSimple,
		History:       []model.HistoryPoint{},
		PastDecisions: []string{},
		UsedEvents:    []string{},
	}
}

// Start begins a new game.
func (e *Engine) Start(name string, mode model.Mode) (Outcome, error) {
	return e.Reduce(NewState(), Start{CompanyName: name, Mode: mode})
}

// Submit begins and immediately resolves a decision, skipping the
// presentation delay.
func (e *Engine) Submit(s model.GameState, decisionID string) (Outcome, error) {
	out, err := e.Reduce(s, Begin{DecisionID: decisionID})
	if err != nil || !out.Accepted {
		return out, err
	}
	return e.Reduce(out.State, Resolve{DecisionID: decisionID})
}

// IsGameComplete reports whether s is terminal.
func IsGameComplete(s model.GameState) bool {
	return s.GamePhase == model.GameCompleted
}

// CurrentPhase classifies the company in s.
func CurrentPhase(s model.GameState) model.Phase {
	return phase.Classify(s.Company)
}

func seedCompany(name string, mode model.Mode) model.CompanyMetrics {
	m := model.CompanyMetrics{
		Name:          name,
		MarketCap:     decimal.NewFromInt(1_000_000),
		Cash:          decimal.NewFromInt(1_000_000),
		Reputation:    50,
		Employees:     1,
		Month:         1,
		Year:          2024,
		Revenue:       decimal.Zero,
		MonthlyProfit: decimal.Zero,
	}
	if mode == model.ModeStory {
		m.Year = 2025
	}
	return m
}

func (e *Engine) start(s model.GameState, a Start) (Outcome, error) {
	if s.GamePhase != model.GameSetup && s.GamePhase != "" {
		return reject(s, "The game has already started."), nil
	}
	if a.CompanyName == "" {
		return reject(s, "A company name is required."), nil
	}
	mode := a.Mode
	if mode == "" {
		mode = model.ModeSimple
	}
	if mode != model.ModeSimple && mode != model.ModeStory {
		return reject(s, "Unknown game mode %q.", mode), nil
	}

	next := NewState()
	next.Mode = mode
	next.Company = seedCompany(a.CompanyName, mode)
	next.GamePhase = model.GamePlaying
	if mode == model.ModeStory {
		next.Regions = DefaultRegions()
		next.Products = []model.Product{}
		next.ResearchPoints = 10
	}
	next.History = []model.HistoryPoint{historyPoint(next)}
	next.Situation = narrative.Opening(a.CompanyName)

	ev := e.cat.SelectEvent(model.PhaseStartup, nil, e.rng)
	if ev == nil {
		next = e.complete(next, model.ReasonEventsExhausted)
		return Outcome{State: next, Accepted: true, Message: "The catalog has no startup events."}, nil
	}
	if !e.playable(next, ev.ID) {
		next = e.complete(next, model.ReasonInsolvent)
		return Outcome{State: next, Accepted: true, Message: "None of the opening decisions can be funded."}, nil
	}
	e.present(&next, ev)
	return Outcome{State: next, Accepted: true, Message: next.Situation}, nil
}

func (e *Engine) present(s *model.GameState, ev *model.GameEvent) {
	s.CurrentEvent = ev
	s.UsedEvents = append(s.UsedEvents, ev.ID)
	s.AvailableDecisions = e.cat.Decisions(ev.ID)
}

func (e *Engine) complete(s model.GameState, reason model.CompletionReason) model.GameState {
	s.GamePhase = model.GameCompleted
	s.CompletionReason = reason
	s.CurrentEvent = nil
	s.AvailableDecisions = nil
	s.IsProcessing = false
	s.PendingDecision = ""
	res := scoring.Score(s)
	s.FinalResults = &res
	return s
}

func historyPoint(s model.GameState) model.HistoryPoint {
	return model.HistoryPoint{
		Label:       fmt.Sprintf("%d-%02d", s.Company.Year, s.Company.Month),
		MarketCap:   s.Company.MarketCap,
		HappyPeople: s.TotalHappyPeople(),
	}
}

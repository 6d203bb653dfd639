// Package model defines the core domain types shared across the game engine.
// All monetary values use shopspring/decimal; never float64 for money.
package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Phase is the coarse progress tier derived from market capitalization.
type Phase string

const (
	PhaseStartup Phase = "startup"
	PhaseGrowth  Phase = "growth"
	PhaseScale   Phase = "scale"
)

// Phases lists every phase in progression order.
var Phases = []Phase{PhaseStartup, PhaseGrowth, PhaseScale}

// GamePhase is the state of the turn state machine.
type GamePhase string

const (
	GameSetup     GamePhase = "setup"
	GamePlaying   GamePhase = "playing"
	GameCompleted GamePhase = "completed"
)

// Mode selects the seed values and optional region/product extensions.
type Mode string

const (
	ModeSimple Mode = "simple"
	ModeStory  Mode = "story"
)

// CompletionReason records which condition ended the game.
type CompletionReason string

const (
	ReasonTurnLimit       CompletionReason = "turn_limit"
	ReasonBankrupt        CompletionReason = "bankrupt"
	ReasonInsolvent       CompletionReason = "insolvent" // no presented decision is affordable
	ReasonEventsExhausted CompletionReason = "events_exhausted"
)

// CompanyMetrics is the per-turn snapshot of the company. It is replaced
// wholesale by the financial update step, never mutated in place.
type CompanyMetrics struct {
	Name          string          `json:"name"`
	MarketCap     decimal.Decimal `json:"market_cap"`
	Cash          decimal.Decimal `json:"cash"`
	HappyPeople   int64           `json:"happy_people"`
	Reputation    int             `json:"reputation"` // 0..100
	Employees     int             `json:"employees"`  // >= 1
	Month         int             `json:"month"`      // 1..12
	Year          int             `json:"year"`
	Revenue       decimal.Decimal `json:"revenue"`
	MonthlyProfit decimal.Decimal `json:"monthly_profit"`
}

// Quarter returns the calendar quarter (1..4) of the current month.
func (c CompanyMetrics) Quarter() int {
	return (c.Month-1)/3 + 1
}

// Normalize enforces the metric invariants: non-negative money and happy
// people, reputation within [0,100], at least one employee.
func (c CompanyMetrics) Normalize() CompanyMetrics {
	if c.MarketCap.IsNegative() {
		c.MarketCap = decimal.Zero
	}
	if c.Cash.IsNegative() {
		c.Cash = decimal.Zero
	}
	if c.HappyPeople < 0 {
		c.HappyPeople = 0
	}
	c.Reputation = min(max(c.Reputation, 0), 100)
	c.Employees = max(c.Employees, 1)
	return c
}

// HistoryPoint is one entry of the bounded market-cap history.
type HistoryPoint struct {
	Label       string          `json:"label"` // e.g. "2024-03"
	MarketCap   decimal.Decimal `json:"market_cap"`
	HappyPeople int64           `json:"happy_people"`
}

// GameState is the root state owned by the turn state machine. Transitions
// always produce a new value; use Clone before modifying a copy.
type GameState struct {
	Mode               Mode             `json:"mode"`
	Company            CompanyMetrics   `json:"company"`
	CurrentEvent       *GameEvent       `json:"current_event"`
	AvailableDecisions []DecisionOption `json:"available_decisions"`
	History            []HistoryPoint   `json:"history"`
	GamePhase          GamePhase        `json:"game_phase"`
	IsProcessing       bool             `json:"is_processing"`
	PendingDecision    string           `json:"pending_decision,omitempty"` // set while IsProcessing
	PastDecisions      []string         `json:"past_decisions"`
	UsedEvents         []string         `json:"used_events"`
	TurnCount          int              `json:"turn_count"`
	Situation          string           `json:"situation"`
	LastResult         *DecisionResult  `json:"last_result,omitempty"`
	FinalResults       *FinalResults    `json:"final_results,omitempty"`
	CompletionReason   CompletionReason `json:"completion_reason,omitempty"`

	// Story-mode extension. Empty in simple mode.
	Regions        []Region  `json:"regions,omitempty"`
	Products       []Product `json:"products,omitempty"`
	ResearchPoints int       `json:"research_points"`
}

// Clone returns a deep copy so that the caller can build the next state
// without aliasing slices of the previous one.
func (s GameState) Clone() GameState {
	c := s
	if s.CurrentEvent != nil {
		ev := *s.CurrentEvent
		c.CurrentEvent = &ev
	}
	c.AvailableDecisions = slices.Clone(s.AvailableDecisions)
	c.History = slices.Clone(s.History)
	c.PastDecisions = slices.Clone(s.PastDecisions)
	c.UsedEvents = slices.Clone(s.UsedEvents)
	c.Regions = slices.Clone(s.Regions)
	c.Products = slices.Clone(s.Products)
	if s.LastResult != nil {
		r := *s.LastResult
		c.LastResult = &r
	}
	if s.FinalResults != nil {
		f := *s.FinalResults
		f.Achievements = slices.Clone(s.FinalResults.Achievements)
		c.FinalResults = &f
	}
	return c
}

// FindDecision returns the available decision with the given id.
func (s GameState) FindDecision(id string) (DecisionOption, bool) {
	for _, d := range s.AvailableDecisions {
		if d.ID == id {
			return d, true
		}
	}
	return DecisionOption{}, false
}

// TotalHappyPeople is the happy-people figure used for scoring. In story
// mode the people reached through regional market penetration are added
// to the company's own count.
func (s GameState) TotalHappyPeople() int64 {
	total := s.Company.HappyPeople
	for _, r := range s.Regions {
		total += r.HappyPeopleReached()
	}
	return total
}

// ActiveRegions counts regions with any market penetration.
func (s GameState) ActiveRegions() int {
	n := 0
	for _, r := range s.Regions {
		if r.MarketPenetration > 0 {
			n++
		}
	}
	return n
}

package game

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/catalog"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/rng"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func event(id string) model.GameEvent {
	return model.GameEvent{
		ID:       id,
		Title:    id,
		Impact:   model.ImpactNeutral,
		Urgency:  model.UrgencyLow,
		Category: model.CategoryProduct,
	}
}

// option builds a decision whose only effect is its fixed cost.
func option(id string, typ model.DecisionType, risk model.Risk, cost float64) model.DecisionOption {
	return model.DecisionOption{
		ID:    id,
		Type:  typ,
		Title: id,
		Risk:  risk,
		Cost:  d(cost),
		Effects: model.EffectRanges{
			Cash: model.Range{Min: d(-cost), Max: d(-cost)},
		},
	}
}

// filler returns n events of a phase, each with a single free decision.
func filler(p model.Phase, n int) []catalog.Entry {
	var out []catalog.Entry
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", p, i)
		out = append(out, catalog.Entry{
			Phase:     p,
			Event:     event(id),
			Decisions: []model.DecisionOption{option(id+"-safe-hold", model.TypeSafe, model.RiskLow, 0)},
		})
	}
	return out
}

func buildCatalog(t *testing.T, entries ...catalog.Entry) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(entries...)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func defaultEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	return New(c, rng.New(seed), DefaultConfig())
}

func mustStart(t *testing.T, e *Engine, name string, mode model.Mode) model.GameState {
	t.Helper()
	out, err := e.Start(name, mode)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !out.Accepted {
		t.Fatalf("Start rejected: %s", out.Message)
	}
	return out.State
}

func mustSubmit(t *testing.T, e *Engine, s model.GameState, id string) Outcome {
	t.Helper()
	out, err := e.Submit(s, id)
	if err != nil {
		t.Fatalf("Submit(%s): %v", id, err)
	}
	if !out.Accepted {
		t.Fatalf("Submit(%s) rejected: %s", id, out.Message)
	}
	return out
}

// playAny submits the first decision of the current event that is accepted.
func playAny(t *testing.T, e *Engine, s model.GameState) Outcome {
	t.Helper()
	for _, opt := range s.AvailableDecisions {
		out, err := e.Submit(s, opt.ID)
		if err != nil {
			t.Fatalf("Submit(%s): %v", opt.ID, err)
		}
		if out.Accepted {
			return out
		}
	}
	t.Fatalf("no playable decision for event %v", s.CurrentEvent)
	return Outcome{}
}

func checkInvariants(t *testing.T, s model.GameState) {
	t.Helper()
	c := s.Company
	if c.Cash.IsNegative() || c.MarketCap.IsNegative() || c.HappyPeople < 0 {
		t.Errorf("negative metric: cash=%s mc=%s happy=%d", c.Cash, c.MarketCap, c.HappyPeople)
	}
	if c.Reputation < 0 || c.Reputation > 100 {
		t.Errorf("reputation out of range: %d", c.Reputation)
	}
	if c.Employees < 1 {
		t.Errorf("employees below one: %d", c.Employees)
	}
	if c.Month < 1 || c.Month > 12 {
		t.Errorf("month out of range: %d", c.Month)
	}
	if len(s.History) > HistoryLimit {
		t.Errorf("history length %d > %d", len(s.History), HistoryLimit)
	}
	if len(s.PastDecisions) != s.TurnCount {
		t.Errorf("pastDecisions %d != turnCount %d", len(s.PastDecisions), s.TurnCount)
	}
	seen := map[string]bool{}
	for _, id := range s.UsedEvents {
		if seen[id] {
			t.Errorf("event %s repeated", id)
		}
		seen[id] = true
	}
}

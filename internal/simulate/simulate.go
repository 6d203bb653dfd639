// Package simulate auto-plays games with fixed strategies. It is the
// balance tool behind `ceosim simulate`: run many seeded games and compare
// ranking distributions as the rates change.
package simulate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/game"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/resolver"
	"github.com/ceosim/game-engine/internal/rng"
)

// Strategy names.
const (
	StrategySafe       = "safe"
	StrategyAggressive = "aggressive"
	StrategyInnovative = "innovative"
	StrategyRandom     = "random"
	StrategyGreedy     = "greedy"
)

// Strategies lists every strategy name.
var Strategies = []string{StrategySafe, StrategyAggressive, StrategyInnovative, StrategyRandom, StrategyGreedy}

var (
	ErrUnknownStrategy = errors.New("simulate: unknown strategy")
	ErrStuck           = errors.New("simulate: no decision accepted")
)

// Strategy orders the offered decisions by preference. The player submits
// them in that order until the engine accepts one.
type Strategy func(offered []model.DecisionOption, r rng.Source) []model.DecisionOption

// ByName returns the named strategy.
func ByName(name string) (Strategy, error) {
	switch name {
	case StrategySafe:
		return prefer(model.TypeSafe), nil
	case StrategyAggressive:
		return prefer(model.TypeAggressive), nil
	case StrategyInnovative:
		return prefer(model.TypeInnovative), nil
	case StrategyRandom:
		return random, nil
	case StrategyGreedy:
		return greedy, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// prefer puts decisions of type t first, keeping catalog order otherwise.
func prefer(t model.DecisionType) Strategy {
	return func(offered []model.DecisionOption, _ rng.Source) []model.DecisionOption {
		out := make([]model.DecisionOption, 0, len(offered))
		for _, d := range offered {
			if d.Type == t {
				out = append(out, d)
			}
		}
		for _, d := range offered {
			if d.Type != t {
				out = append(out, d)
			}
		}
		return out
	}
}

func random(offered []model.DecisionOption, r rng.Source) []model.DecisionOption {
	out := append([]model.DecisionOption(nil), offered...)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// greedy ranks by expected market cap gain: range midpoint weighted by
// the base success probability, net of cost.
func greedy(offered []model.DecisionOption, _ rng.Source) []model.DecisionOption {
	out := append([]model.DecisionOption(nil), offered...)
	sort.SliceStable(out, func(i, j int) bool {
		return expectedGain(out[i]).GreaterThan(expectedGain(out[j]))
	})
	return out
}

func expectedGain(d model.DecisionOption) decimal.Decimal {
	p, err := resolver.SuccessProbability(d.Risk, 0)
	if err != nil {
		return decimal.Zero
	}
	mid := d.Effects.MarketCap.Min.Add(d.Effects.MarketCap.Max).Div(decimal.NewFromInt(2))
	return mid.Mul(decimal.NewFromFloat(p)).Sub(d.Cost)
}

// Play runs one game to completion.
func Play(e *game.Engine, name string, mode model.Mode, strat Strategy, r rng.Source) (model.GameState, error) {
	out, err := e.Start(name, mode)
	if err != nil {
		return model.GameState{}, err
	}
	if !out.Accepted {
		return model.GameState{}, fmt.Errorf("start: %s", out.Message)
	}
	s := out.State

	for !game.IsGameComplete(s) {
		accepted := false
		for _, d := range strat(s.AvailableDecisions, r) {
			out, err := e.Submit(s, d.ID)
			if err != nil {
				return s, err
			}
			if out.Accepted {
				s = out.State
				accepted = true
				break
			}
		}
		if !accepted {
			return s, fmt.Errorf("%w: turn %d", ErrStuck, s.TurnCount+1)
		}
	}
	return s, nil
}

// Report aggregates a batch of simulated games.
type Report struct {
	Games         int                            `json:"games"`
	Rankings      map[model.Ranking]int          `json:"rankings"`
	Reasons       map[model.CompletionReason]int `json:"reasons"`
	MeanScore     float64                        `json:"mean_score"`
	MeanTurns     float64                        `json:"mean_turns"`
	MeanMarketCap decimal.Decimal                `json:"mean_market_cap"`
	MeanCash      decimal.Decimal                `json:"mean_cash"`
	MeanHappy     int64                          `json:"mean_happy_people"`
	BestScore     int                            `json:"best_score"`
}

// Run plays n games with one strategy and aggregates the results.
func Run(e *game.Engine, n int, mode model.Mode, strat Strategy, r rng.Source) (Report, error) {
	rep := Report{
		Rankings: make(map[model.Ranking]int),
		Reasons:  make(map[model.CompletionReason]int),
	}
	if n <= 0 {
		return rep, nil
	}

	var score, turns float64
	var happy int64
	mc, cash := decimal.Zero, decimal.Zero
	for i := 0; i < n; i++ {
		s, err := Play(e, fmt.Sprintf("Sim %d", i+1), mode, strat, r)
		if err != nil {
			return rep, fmt.Errorf("game %d: %w", i+1, err)
		}
		rep.Games++
		rep.Reasons[s.CompletionReason]++
		if s.FinalResults != nil {
			rep.Rankings[s.FinalResults.Ranking]++
			score += float64(s.FinalResults.FinalScore)
			rep.BestScore = max(rep.BestScore, s.FinalResults.FinalScore)
		}
		turns += float64(s.TurnCount)
		mc = mc.Add(s.Company.MarketCap)
		cash = cash.Add(s.Company.Cash)
		happy += s.TotalHappyPeople()
	}

	count := decimal.NewFromInt(int64(rep.Games))
	rep.MeanScore = score / float64(rep.Games)
	rep.MeanTurns = turns / float64(rep.Games)
	rep.MeanMarketCap = mc.Div(count).Round(2)
	rep.MeanCash = cash.Div(count).Round(2)
	rep.MeanHappy = happy / int64(rep.Games)
	return rep, nil
}

// Package scoring computes the final score, ranking and achievements of a
// completed game.
package scoring

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/narrative"
)

// Weights of the five sub-scores.
const (
	WeightMarketCap  = 0.3
	WeightHappiness  = 0.3
	WeightReputation = 0.2
	WeightProduct    = 0.1
	WeightRegion     = 0.1
)

// Score evaluates a game state. It is pure and may be called on any state,
// not only completed ones.
func Score(s model.GameState) model.FinalResults {
	b := Breakdown(s)
	total := b.MarketCap*WeightMarketCap + b.Happiness*WeightHappiness +
		b.Reputation*WeightReputation + b.Product*WeightProduct + b.Region*WeightRegion
	final := int(math.Round(total))
	rank := Rank(final)
	return model.FinalResults{
		FinalScore:   final,
		Ranking:      rank,
		Achievements: Achievements(s),
		Summary:      summary(s, final, rank),
		Breakdown:    b,
	}
}

// Breakdown returns the normalized sub-scores.
func Breakdown(s model.GameState) model.ScoreBreakdown {
	mc, _ := s.Company.MarketCap.Float64()
	return model.ScoreBreakdown{
		MarketCap:  math.Min(100, mc/1e9*10),
		Happiness:  math.Min(100, float64(s.TotalHappyPeople())/1e10*100),
		Reputation: float64(s.Company.Reputation),
		Product:    math.Min(100, float64(len(s.Products))*10),
		Region:     math.Min(100, float64(s.ActiveRegions())*16.67),
	}
}

// Rank maps a final score to its letter grade.
func Rank(score int) model.Ranking {
	switch {
	case score >= 90:
		return model.RankS
	case score >= 80:
		return model.RankA
	case score >= 70:
		return model.RankB
	case score >= 60:
		return model.RankC
	default:
		return model.RankD
	}
}

type achievement struct {
	name string
	ok   func(model.GameState) bool
}

func marketCapAtLeast(v int64) func(model.GameState) bool {
	th := decimal.NewFromInt(v)
	return func(s model.GameState) bool { return s.Company.MarketCap.GreaterThanOrEqual(th) }
}

func happyAtLeast(v int64) func(model.GameState) bool {
	return func(s model.GameState) bool { return s.TotalHappyPeople() >= v }
}

var achievements = []achievement{
	{"Unicorn: market cap reached $1B", marketCapAtLeast(1e9)},
	{"Decacorn: market cap reached $10B", marketCapAtLeast(1e10)},
	{"Trillion-dollar company", marketCapAtLeast(1e12)},
	{"Made one billion people happy", happyAtLeast(1e9)},
	{"Made ten billion people happy", happyAtLeast(1e10)},
	{"Trusted brand: reputation 80 or higher", func(s model.GameState) bool { return s.Company.Reputation >= 80 }},
	{"Product portfolio: five products", func(s model.GameState) bool { return len(s.Products) >= 5 }},
	{"Global presence: active in every region", func(s model.GameState) bool {
		return len(s.Regions) > 0 && s.ActiveRegions() == len(s.Regions)
	}},
	{"Market leader: 50% penetration in a region", func(s model.GameState) bool {
		for _, r := range s.Regions {
			if r.MarketPenetration >= 50 {
				return true
			}
		}
		return false
	}},
	{"Large employer: 1,000 employees", func(s model.GameState) bool { return s.Company.Employees >= 1000 }},
	{"Research powerhouse: 100 research points", func(s model.GameState) bool { return s.ResearchPoints >= 100 }},
	{"Survivor: reached the final turn with cash to spare", func(s model.GameState) bool {
		return s.CompletionReason == model.ReasonTurnLimit && s.Company.Cash.IsPositive()
	}},
}

// Achievements lists every achievement whose threshold the state meets, in
// a fixed order.
func Achievements(s model.GameState) []string {
	out := []string{}
	for _, a := range achievements {
		if a.ok(s) {
			out = append(out, a.name)
		}
	}
	return out
}

func summary(s model.GameState, score int, rank model.Ranking) string {
	return fmt.Sprintf("%s finished with rank %s (%d points): market cap %s, %s happy people, reputation %d, %d employees.",
		s.Company.Name, rank, score, narrative.Money(s.Company.MarketCap),
		narrative.Count(s.TotalHappyPeople()), s.Company.Reputation, s.Company.Employees)
}

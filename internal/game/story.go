package game

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/narrative"
)

// DefaultRegions returns the six story-mode regions with no penetration.
func DefaultRegions() []model.Region {
	return []model.Region{
		{ID: "north-america", Name: "North America", Population: 579_000_000, HappinessLevel: 65, GDPPerCapita: decimal.NewFromInt(65000)},
		{ID: "europe", Name: "Europe", Population: 748_000_000, HappinessLevel: 70, GDPPerCapita: decimal.NewFromInt(45000)},
		{ID: "asia", Name: "Asia", Population: 4_641_000_000, HappinessLevel: 55, GDPPerCapita: decimal.NewFromInt(15000)},
		{ID: "africa", Name: "Africa", Population: 1_340_000_000, HappinessLevel: 45, GDPPerCapita: decimal.NewFromInt(4000)},
		{ID: "south-america", Name: "South America", Population: 434_000_000, HappinessLevel: 50, GDPPerCapita: decimal.NewFromInt(8000)},
		{ID: "oceania", Name: "Oceania", Population: 46_000_000, HappinessLevel: 75, GDPPerCapita: decimal.NewFromInt(55000)},
	}
}

type productTier struct {
	cost         int64
	quality      int
	socialImpact int
}

var productTiers = map[Investment]productTier{
	InvestLow:    {50_000, 60, 50},
	InvestMedium: {200_000, 75, 70},
	InvestHigh:   {500_000, 90, 85},
}

// ProductDevelopmentQuarters is how long a new product takes to release.
const ProductDevelopmentQuarters = 2

type marketTier struct {
	cost        int64
	penetration float64
}

var marketTiers = map[Strategy]marketTier{
	StrategyAggressive:   {1_000_000, 15},
	StrategyModerate:     {500_000, 8},
	StrategyConservative: {200_000, 3},
}

var pricePerCost = decimal.RequireFromString("0.01")

func storyGate(s model.GameState) string {
	if s.GamePhase != model.GamePlaying {
		return "The game is not in progress."
	}
	if s.Mode != model.ModeStory {
		return "Products and markets are only available in story mode."
	}
	if s.IsProcessing {
		return "A decision is already being processed."
	}
	return ""
}

// keepsTurnPlayable rejects spending that would leave no fundable response
// to the current event.
func keepsTurnPlayable(e *Engine, next model.GameState) string {
	if next.CurrentEvent == nil || e.playable(next, next.CurrentEvent.ID) {
		return ""
	}
	return "That spending would leave no affordable response to the current event."
}

func (e *Engine) developProduct(s model.GameState, a DevelopProduct) (Outcome, error) {
	if msg := storyGate(s); msg != "" {
		return reject(s, "%s", msg), nil
	}
	if a.Name == "" {
		return reject(s, "A product name is required."), nil
	}
	if !a.Category.Valid() {
		return reject(s, "Unknown product category %q.", a.Category), nil
	}
	tier, ok := productTiers[a.Investment]
	if !ok {
		return reject(s, "Unknown investment level %q.", a.Investment), nil
	}
	cost := decimal.NewFromInt(tier.cost)
	if s.Company.Cash.LessThan(cost) {
		return reject(s, "Insufficient funds for product development: %s required.", narrative.Money(cost)), nil
	}

	next := s.Clone()
	next.Company.Cash = next.Company.Cash.Sub(cost)
	next.Products = append(next.Products, model.Product{
		ID:                  fmt.Sprintf("p%d", len(s.Products)+1),
		Name:                a.Name,
		Category:            a.Category,
		DevelopmentCost:     cost,
		DevelopmentQuarters: ProductDevelopmentQuarters,
		QualityScore:        tier.quality,
		SocialImpactScore:   tier.socialImpact,
		Price:               cost.Mul(pricePerCost),
		StartedTurn:         s.TurnCount,
	})
	if msg := keepsTurnPlayable(e, next); msg != "" {
		return reject(s, "%s", msg), nil
	}
	return Outcome{
		State:    next,
		Accepted: true,
		Message:  fmt.Sprintf("Started development of %s. It will be ready in %d quarters.", a.Name, ProductDevelopmentQuarters),
	}, nil
}

func (e *Engine) enterMarket(s model.GameState, a EnterMarket) (Outcome, error) {
	if msg := storyGate(s); msg != "" {
		return reject(s, "%s", msg), nil
	}
	tier, ok := marketTiers[a.Strategy]
	if !ok {
		return reject(s, "Unknown market strategy %q.", a.Strategy), nil
	}
	cost := decimal.NewFromInt(tier.cost)
	if s.Company.Cash.LessThan(cost) {
		return reject(s, "Insufficient funds for market entry: %s required.", narrative.Money(cost)), nil
	}
	idx := -1
	for i, r := range s.Regions {
		if r.ID == a.RegionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return reject(s, "Region %q not found.", a.RegionID), nil
	}

	next := s.Clone()
	next.Company.Cash = next.Company.Cash.Sub(cost)
	r := next.Regions[idx]
	r.MarketPenetration = min(100, r.MarketPenetration+tier.penetration)
	next.Regions[idx] = r
	if msg := keepsTurnPlayable(e, next); msg != "" {
		return reject(s, "%s", msg), nil
	}
	return Outcome{
		State:    next,
		Accepted: true,
		Message:  fmt.Sprintf("Entered the %s market with a %s strategy.", r.Name, a.Strategy),
	}, nil
}

package model

import "github.com/shopspring/decimal"

// Region is a story-mode market the company can enter.
type Region struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Population        int64           `json:"population"`
	HappinessLevel    float64         `json:"happiness_level"`    // 0..100
	MarketPenetration float64         `json:"market_penetration"` // 0..100
	GDPPerCapita      decimal.Decimal `json:"gdp_per_capita"`
}

// HappyPeopleReached is the number of happy people among the customers
// the company reaches in this region.
func (r Region) HappyPeopleReached() int64 {
	return int64(float64(r.Population) * r.MarketPenetration / 100 * r.HappinessLevel / 100)
}

// ProductCategory is the market segment of a story-mode product.
type ProductCategory string

const (
	ProductEducation      ProductCategory = "education"
	ProductHealthcare     ProductCategory = "healthcare"
	ProductEntertainment  ProductCategory = "entertainment"
	ProductCommunication  ProductCategory = "communication"
	ProductTransportation ProductCategory = "transportation"
	ProductEnvironment    ProductCategory = "environment"
)

// Valid reports whether c is a known product category.
func (c ProductCategory) Valid() bool {
	switch c {
	case ProductEducation, ProductHealthcare, ProductEntertainment,
		ProductCommunication, ProductTransportation, ProductEnvironment:
		return true
	}
	return false
}

// Product is a story-mode product under development or on the market.
type Product struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Category            ProductCategory `json:"category"`
	DevelopmentCost     decimal.Decimal `json:"development_cost"`
	DevelopmentQuarters int             `json:"development_quarters"`
	QuartersInDev       int             `json:"quarters_in_development"`
	QualityScore        int             `json:"quality_score"`
	SocialImpactScore   int             `json:"social_impact_score"`
	Price               decimal.Decimal `json:"price"`
	Released            bool            `json:"released"`
	StartedTurn         int             `json:"started_turn"`
}

// GlobalHappiness is the population-weighted mean regional happiness,
// rounded to the nearest integer. Zero when there are no regions.
func GlobalHappiness(regions []Region) int {
	var pop, weighted float64
	for _, r := range regions {
		pop += float64(r.Population)
		weighted += r.HappinessLevel * float64(r.Population)
	}
	if pop == 0 {
		return 0
	}
	return int(weighted/pop + 0.5)
}

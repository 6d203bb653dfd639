package finance

import (
	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
)

// Story-mode quarterly constants.
var (
	PriceShare       = decimal.RequireFromString("0.01") // of product price, per reached customer
	PriceEarnings    = decimal.NewFromInt(20)
	HappinessGain    = 0.1
	ResearchPerStaff = 0.1
	ResearchPerCash  = 0.00001
)

// QuarterReport summarizes one quarterly pass.
type QuarterReport struct {
	Released       []string        `json:"released"`
	Revenue        decimal.Decimal `json:"revenue"`
	ResearchGained int             `json:"research_gained"`
}

// QuarterlyPass releases finished products, books product revenue across
// regions, raises regional happiness and accrues research points. It
// returns the updated state and a report. Employee costs are left to the
// monthly pass.
func QuarterlyPass(s model.GameState) (model.GameState, QuarterReport) {
	next := s.Clone()
	var report QuarterReport

	for i, p := range next.Products {
		if p.Released {
			continue
		}
		p.QuartersInDev++
		if p.QuartersInDev >= p.DevelopmentQuarters {
			p.Released = true
			report.Released = append(report.Released, p.ID)
		}
		next.Products[i] = p
	}

	revenue := decimal.Zero
	for _, p := range next.Products {
		if !p.Released {
			continue
		}
		for _, r := range next.Regions {
			reached := decimal.NewFromFloat(float64(r.Population) * r.MarketPenetration / 100)
			quality := decimal.NewFromInt(int64(p.QualityScore)).Div(hundred)
			revenue = revenue.Add(reached.Mul(p.Price).Mul(PriceShare).Mul(quality))
		}
	}
	revenue = revenue.Round(2)
	report.Revenue = revenue

	c := next.Company
	c.Cash = c.Cash.Add(revenue)
	c.Revenue = c.Revenue.Add(revenue)
	c.MarketCap = c.MarketCap.Add(revenue.Mul(PriceEarnings))
	next.Company = c.Normalize()

	for i, r := range next.Regions {
		gain := 0.0
		for _, p := range next.Products {
			if p.Released {
				gain += float64(p.SocialImpactScore) / 100 * r.MarketPenetration / 100 * HappinessGain
			}
		}
		r.HappinessLevel = min(100, r.HappinessLevel+gain)
		next.Regions[i] = r
	}

	rev, _ := revenue.Float64()
	report.ResearchGained = int(float64(next.Company.Employees)*ResearchPerStaff) + int(rev*ResearchPerCash)
	next.ResearchPoints += report.ResearchGained
	return next, report
}

package finance

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func seed() model.CompanyMetrics {
	return model.CompanyMetrics{
		Name:       "Acme",
		MarketCap:  d(1000000),
		Cash:       d(1000000),
		Reputation: 50,
		Employees:  1,
		Month:      1,
		Year:       2024,
	}
}

func TestApplyEffectsClamps(t *testing.T) {
	tests := []struct {
		name  string
		eff   model.Effects
		check func(t *testing.T, m model.CompanyMetrics)
	}{
		{"cash floored", model.Effects{CashChange: d(-5000000)}, func(t *testing.T, m model.CompanyMetrics) {
			if !m.Cash.IsZero() {
				t.Errorf("cash = %s, want 0", m.Cash)
			}
		}},
		{"market cap floored", model.Effects{MarketCapChange: d(-2000000)}, func(t *testing.T, m model.CompanyMetrics) {
			if !m.MarketCap.IsZero() {
				t.Errorf("marketCap = %s, want 0", m.MarketCap)
			}
		}},
		{"reputation capped", model.Effects{ReputationChange: 80}, func(t *testing.T, m model.CompanyMetrics) {
			if m.Reputation != 100 {
				t.Errorf("reputation = %d, want 100", m.Reputation)
			}
		}},
		{"reputation floored", model.Effects{ReputationChange: -80}, func(t *testing.T, m model.CompanyMetrics) {
			if m.Reputation != 0 {
				t.Errorf("reputation = %d, want 0", m.Reputation)
			}
		}},
		{"employees floor one", model.Effects{EmployeesChange: -10}, func(t *testing.T, m model.CompanyMetrics) {
			if m.Employees != 1 {
				t.Errorf("employees = %d, want 1", m.Employees)
			}
		}},
		{"happy people floored", model.Effects{HappyPeopleChange: -10}, func(t *testing.T, m model.CompanyMetrics) {
			if m.HappyPeople != 0 {
				t.Errorf("happyPeople = %d, want 0", m.HappyPeople)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ApplyEffects(seed(), tt.eff))
		})
	}
}

func TestMonthlyPass(t *testing.T) {
	m := MonthlyPass(seed(), DefaultRates())

	// revenue 1M*0.01*0.5 = 5,000; cost 8,000 + 1M*0.005 = 13,000
	if !m.Revenue.Equal(d(5000)) {
		t.Errorf("revenue = %s, want 5000", m.Revenue)
	}
	if !m.MonthlyProfit.Equal(d(-8000)) {
		t.Errorf("profit = %s, want -8000", m.MonthlyProfit)
	}
	if !m.Cash.Equal(d(992000)) {
		t.Errorf("cash = %s, want 992000", m.Cash)
	}
	if m.Month != 2 || m.Year != 2024 {
		t.Errorf("calendar = %d/%d, want 2/2024", m.Month, m.Year)
	}
}

func TestMonthlyPassWrapsYearAndFloorsCash(t *testing.T) {
	m := seed()
	m.Month = 12
	m.Cash = d(100)
	m = MonthlyPass(m, DefaultRates())
	if m.Month != 1 || m.Year != 2025 {
		t.Errorf("calendar = %d/%d, want 1/2025", m.Month, m.Year)
	}
	if !m.Cash.IsZero() {
		t.Errorf("cash = %s, want 0", m.Cash)
	}
}

func TestApplyPaysFixedCost(t *testing.T) {
	res := model.DecisionResult{Effects: model.Effects{CashChange: d(-300000), MarketCapChange: d(1000000)}}
	m := Apply(seed(), res, DefaultRates())
	// mc 2M: revenue 10,000; cost 8,000 + 10,000; profit -8,000
	if !m.Cash.Equal(d(692000)) {
		t.Errorf("cash = %s, want 692000", m.Cash)
	}
}

func TestStartsQuarter(t *testing.T) {
	for month := 1; month <= 12; month++ {
		want := month == 1 || month == 4 || month == 7 || month == 10
		if got := StartsQuarter(month); got != want {
			t.Errorf("StartsQuarter(%d) = %v, want %v", month, got, want)
		}
	}
}

func storyState() model.GameState {
	return model.GameState{
		Mode:    model.ModeStory,
		Company: model.CompanyMetrics{MarketCap: d(1000000), Cash: d(100000), Reputation: 50, Employees: 10, Month: 4, Year: 2025},
		Regions: []model.Region{
			{ID: "r1", Population: 1000000, HappinessLevel: 50, MarketPenetration: 10},
			{ID: "r2", Population: 5000000, HappinessLevel: 40},
		},
		Products: []model.Product{
			{ID: "p1", DevelopmentQuarters: 2, QualityScore: 60, SocialImpactScore: 50, Price: d(500)},
		},
		ResearchPoints: 10,
	}
}

func TestQuarterlyPassReleasesAfterDevelopment(t *testing.T) {
	s := storyState()

	s1, rep := QuarterlyPass(s)
	if s1.Products[0].Released || len(rep.Released) != 0 {
		t.Fatal("released after one quarter")
	}
	if !rep.Revenue.IsZero() {
		t.Errorf("revenue before release = %s", rep.Revenue)
	}
	if s.Products[0].QuartersInDev != 0 {
		t.Error("input state was mutated")
	}

	s2, rep := QuarterlyPass(s1)
	if !s2.Products[0].Released || len(rep.Released) != 1 {
		t.Fatal("not released after two quarters")
	}
	// 1M * 10% reached * 500 * 0.01 * 0.6 = 300,000
	if !rep.Revenue.Equal(d(300000)) {
		t.Errorf("revenue = %s, want 300000", rep.Revenue)
	}
	if !s2.Company.Cash.Equal(d(400000)) {
		t.Errorf("cash = %s, want 400000", s2.Company.Cash)
	}
	if !s2.Company.MarketCap.Equal(d(7000000)) {
		t.Errorf("marketCap = %s, want 7000000", s2.Company.MarketCap)
	}
	if got := s2.Regions[0].HappinessLevel; math.Abs(got-50.005) > 1e-9 {
		t.Errorf("r1 happiness = %v, want 50.005", got)
	}
	if s2.Regions[1].HappinessLevel != 40 {
		t.Errorf("r2 happiness changed without penetration: %v", s2.Regions[1].HappinessLevel)
	}
	// floor(10*0.1) + floor(300000*0.00001) = 1 + 3
	if rep.ResearchGained != 4 {
		t.Errorf("research gained = %d, want 4", rep.ResearchGained)
	}
}

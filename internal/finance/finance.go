// Package finance applies resolved decisions to company metrics and runs
// the automatic monthly and quarterly accounting passes.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
)

// Rates are the tunables of the monthly pass.
type Rates struct {
	RevenueRate     decimal.Decimal // share of market cap earned per month at reputation 100
	InfraRate       decimal.Decimal // share of market cap spent on infrastructure per month
	PerEmployeeCost decimal.Decimal // monthly cost per employee
}

// DefaultRates returns the tuned defaults: 1% revenue, 0.5% infrastructure,
// $8,000 per employee.
func DefaultRates() Rates {
	return Rates{
		RevenueRate:     decimal.RequireFromString("0.01"),
		InfraRate:       decimal.RequireFromString("0.005"),
		PerEmployeeCost: decimal.NewFromInt(8000),
	}
}

var hundred = decimal.NewFromInt(100)

// ApplyEffects adds the decision deltas to m and enforces the metric
// invariants.
func ApplyEffects(m model.CompanyMetrics, e model.Effects) model.CompanyMetrics {
	m.MarketCap = m.MarketCap.Add(e.MarketCapChange)
	m.Cash = m.Cash.Add(e.CashChange)
	m.HappyPeople += e.HappyPeopleChange
	m.Reputation += e.ReputationChange
	m.Employees += e.EmployeesChange
	return m.Normalize()
}

// MonthlyPass books one month of revenue and operating cost and advances
// the calendar. It runs after every decision regardless of the outcome.
func MonthlyPass(m model.CompanyMetrics, r Rates) model.CompanyMetrics {
	revenue := m.MarketCap.Mul(r.RevenueRate).Mul(decimal.NewFromInt(int64(m.Reputation))).Div(hundred).Round(2)
	cost := r.PerEmployeeCost.Mul(decimal.NewFromInt(int64(m.Employees))).
		Add(m.MarketCap.Mul(r.InfraRate)).Round(2)
	profit := revenue.Sub(cost)

	m.Revenue = revenue
	m.MonthlyProfit = profit
	m.Cash = decimal.Max(decimal.Zero, m.Cash.Add(profit))
	m.Month++
	if m.Month > 12 {
		m.Month = 1
		m.Year++
	}
	return m.Normalize()
}

// Apply is the financial update step: decision effects followed by the
// monthly pass.
func Apply(m model.CompanyMetrics, res model.DecisionResult, r Rates) model.CompanyMetrics {
	return MonthlyPass(ApplyEffects(m, res.Effects), r)
}

// StartsQuarter reports whether month is the first month of a quarter.
func StartsQuarter(month int) bool {
	return month%3 == 1
}

// Package narrative renders the situation text shown each turn. It reads a
// snapshot of the numbers and never changes them.
package narrative

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
)

// Context is the read-only input to Situation.
type Context struct {
	CompanyName     string
	Turn            int
	Year            int
	Quarter         int
	MarketCap       decimal.Decimal
	Cash            decimal.Decimal
	Reputation      int
	HappyPeople     int64
	GlobalHappiness int // story mode only, 0..100
}

// FromState builds a Context from a game state.
func FromState(s model.GameState) Context {
	return Context{
		CompanyName:     s.Company.Name,
		Turn:            s.TurnCount,
		Year:            s.Company.Year,
		Quarter:         s.Company.Quarter(),
		MarketCap:       s.Company.MarketCap,
		Cash:            s.Company.Cash,
		Reputation:      s.Company.Reputation,
		HappyPeople:     s.TotalHappyPeople(),
		GlobalHappiness: model.GlobalHappiness(s.Regions),
	}
}

var (
	crisisCash = decimal.NewFromInt(100_000)
	highGrowth = decimal.NewFromInt(10_000_000)
)

// Opening is the text shown when a game starts.
func Opening(name string) string {
	return fmt.Sprintf("As the founder of %s, your journey begins. Aim to make ten billion people happy and build the most valuable company in the world.", name)
}

// Situation picks one of four templates by turn number and appends a
// suffix for crisis, high growth or the early game.
func Situation(c Context) string {
	var text string
	switch c.Turn % 4 {
	case 0:
		text = fmt.Sprintf("%s enters Q%d %d with a market cap of %s", c.CompanyName, c.Quarter, c.Year, Money(c.MarketCap))
		if c.GlobalHappiness > 0 {
			text += fmt.Sprintf(" and global happiness at %d%%", c.GlobalHappiness)
		}
		text += "."
	case 1:
		text = fmt.Sprintf("Turn %d: the market is shifting fast and %s faces a pivotal moment.", c.Turn, c.CompanyName)
	case 2:
		text = fmt.Sprintf("Time for a new challenge. The company is worth %s and makes %s people happy.",
			Money(c.MarketCap), Count(c.HappyPeople))
	default:
		text = fmt.Sprintf("The %s growth story continues. The next move could shape the company's future.", c.CompanyName)
	}

	switch {
	case c.Reputation < 30 || c.Cash.LessThan(crisisCash):
		text += " The company is in crisis and needs a quick response."
	case c.MarketCap.GreaterThan(highGrowth):
		text += " Growth is strong; now is the time to reach for the next leap."
	case c.Turn <= 4:
		text += " It is still the founding stage, so building a foundation matters most."
	}
	return text
}

// Money formats an amount compactly, e.g. $1.5M.
func Money(v decimal.Decimal) string {
	f, _ := v.Float64()
	switch {
	case f >= 1e12:
		return fmt.Sprintf("$%.1fT", f/1e12)
	case f >= 1e9:
		return fmt.Sprintf("$%.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("$%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("$%.1fK", f/1e3)
	}
	return "$" + v.StringFixed(0)
}

// Count formats a head count compactly, e.g. 2.5B.
func Count(n int64) string {
	f := float64(n)
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.1fK", f/1e3)
	}
	return fmt.Sprintf("%d", n)
}

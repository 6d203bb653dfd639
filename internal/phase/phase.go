// Package phase maps company metrics to the progress tier that selects the
// event bucket.
package phase

import (
	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
)

var (
	// GrowthThreshold is the market cap at which the growth phase starts.
	GrowthThreshold = decimal.NewFromInt(1_000_000_000)
	// ScaleThreshold is the market cap at which the scale phase starts.
	ScaleThreshold = decimal.NewFromInt(50_000_000_000)
)

// Classify returns the phase for the given metrics.
func Classify(m model.CompanyMetrics) model.Phase {
	switch {
	case m.MarketCap.GreaterThanOrEqual(ScaleThreshold):
		return model.PhaseScale
	case m.MarketCap.GreaterThanOrEqual(GrowthThreshold):
		return model.PhaseGrowth
	default:
		return model.PhaseStartup
	}
}

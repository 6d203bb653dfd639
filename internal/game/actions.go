package game

import "github.com/ceosim/game-engine/internal/model"

// Action is an input to Reduce.
type Action interface {
	action()
}

// Start moves a game from setup to playing.
type Start struct {
	CompanyName string     `json:"company_name"`
	Mode        model.Mode `json:"mode"`
}

// Begin accepts a decision and opens the processing window. The matching
// Resolve completes the turn.
type Begin struct {
	DecisionID string `json:"decision_id"`
}

// Resolve runs the turn step for a decision accepted by Begin.
type Resolve struct {
	DecisionID string `json:"decision_id"`
}

// Cancel withdraws the decision accepted by Begin. The turn is not played.
type Cancel struct{}

// Reset discards the game and returns to setup.
type Reset struct{}

// Investment is the product development budget tier.
type Investment string

const (
	InvestLow    Investment = "low"
	InvestMedium Investment = "medium"
	InvestHigh   Investment = "high"
)

// DevelopProduct starts a story-mode product. It does not consume a turn.
type DevelopProduct struct {
	Name       string                `json:"name"`
	Category   model.ProductCategory `json:"category"`
	Investment Investment            `json:"investment"`
}

// Strategy is the market entry intensity.
type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyModerate     Strategy = "moderate"
	StrategyConservative Strategy = "conservative"
)

// EnterMarket raises penetration in a story-mode region. It does not
// consume a turn.
type EnterMarket struct {
	RegionID string   `json:"region_id"`
	Strategy Strategy `json:"strategy"`
}

func (Start) action()          {}
func (Begin) action()          {}
func (Resolve) action()        {}
func (Cancel) action()         {}
func (Reset) action()          {}
func (DevelopProduct) action() {}
func (EnterMarket) action()    {}

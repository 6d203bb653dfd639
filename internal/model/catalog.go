package model

import "github.com/shopspring/decimal"

// DecisionType classifies a decision's strategy.
type DecisionType string

const (
	TypeAggressive DecisionType = "aggressive"
	TypeSafe       DecisionType = "safe"
	TypeInnovative DecisionType = "innovative"
)

// Valid reports whether t is one of the known decision types.
func (t DecisionType) Valid() bool {
	switch t {
	case TypeAggressive, TypeSafe, TypeInnovative:
		return true
	}
	return false
}

// Risk is a decision's risk tier; it sets the base success rate.
type Risk string

const (
	RiskHigh   Risk = "high"
	RiskMedium Risk = "medium"
	RiskLow    Risk = "low"
)

// Impact, Urgency and Category describe a catalog event.
type (
	Impact   string
	Urgency  string
	Category string
)

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"

	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"

	CategoryProduct    Category = "product"
	CategoryMarket     Category = "market"
	CategoryFinance    Category = "finance"
	CategoryOperations Category = "operations"
	CategoryExternal   Category = "external"
)

// GameEvent is a static catalog entry presented to the player each turn.
type GameEvent struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      Impact   `json:"impact"`
	Urgency     Urgency  `json:"urgency"`
	Category    Category `json:"category"`
}

// Range is an inclusive [Min, Max] interval for one effect.
type Range struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Lerp linearly interpolates within the range: Min + (Max-Min)*u.
func (r Range) Lerp(u float64) decimal.Decimal {
	return r.Min.Add(r.Max.Sub(r.Min).Mul(decimal.NewFromFloat(u)))
}

// EffectRanges holds the five declared effect ranges of a decision.
type EffectRanges struct {
	MarketCap   Range `json:"market_cap_change"`
	Cash        Range `json:"cash_change"`
	HappyPeople Range `json:"happy_people_change"`
	Reputation  Range `json:"reputation_change"`
	Employees   Range `json:"employees_change"`
}

// Requirements are the resource minimums needed to submit a decision.
// Zero values mean "no requirement".
type Requirements struct {
	Cash           decimal.Decimal `json:"cash"`
	Employees      int             `json:"employees,omitempty"`
	ResearchPoints int             `json:"research_points,omitempty"`
	Reputation     int             `json:"reputation,omitempty"`
}

// DecisionOption is a static catalog entry; read-only at runtime.
type DecisionOption struct {
	ID           string          `json:"id"`
	Type         DecisionType    `json:"type"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Cost         decimal.Decimal `json:"cost"`
	Risk         Risk            `json:"risk"`
	Effects      EffectRanges    `json:"potential_effects"`
	Requirements Requirements    `json:"requirements"`
}

// Effects are the concrete deltas drawn for one resolved decision.
type Effects struct {
	MarketCapChange   decimal.Decimal `json:"market_cap_change"`
	CashChange        decimal.Decimal `json:"cash_change"`
	HappyPeopleChange int64           `json:"happy_people_change"`
	ReputationChange  int             `json:"reputation_change"`
	EmployeesChange   int             `json:"employees_change"`
}

// Feedback is the educational triple shown after a decision.
type Feedback struct {
	Why    string `json:"why"`
	Lesson string `json:"lesson"`
	Tip    string `json:"tip"`
}

// DecisionResult is produced once per decision and consumed by the
// financial update step.
type DecisionResult struct {
	DecisionID         string       `json:"decision_id"`
	Success            bool         `json:"success"`
	Message            string       `json:"message"`
	Effects            Effects      `json:"effects"`
	Feedback           *Feedback    `json:"educational_feedback,omitempty"`
	SuccessProbability float64      `json:"success_probability"`
	SynergyMultiplier  float64      `json:"synergy_multiplier"`
	SynergyCount       int          `json:"synergy_count"`
	Type               DecisionType `json:"type"`
}

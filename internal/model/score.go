package model

import "errors"

var (
	// ErrInvalidDecisionType is returned when a decision carries a type
	// outside {aggressive, safe, innovative}. It indicates a content bug.
	ErrInvalidDecisionType = errors.New("model: invalid decision type")

	// ErrMalformedCatalogEntry is returned for catalog entries that are
	// missing an effect range or carry out-of-domain values.
	ErrMalformedCatalogEntry = errors.New("model: malformed catalog entry")
)

// Ranking is the end-of-game letter grade.
type Ranking string

const (
	RankS Ranking = "S"
	RankA Ranking = "A"
	RankB Ranking = "B"
	RankC Ranking = "C"
	RankD Ranking = "D"
)

// ScoreBreakdown holds the five normalized sub-scores, each in [0,100].
type ScoreBreakdown struct {
	MarketCap  float64 `json:"market_cap"`
	Happiness  float64 `json:"happiness"`
	Reputation float64 `json:"reputation"`
	Product    float64 `json:"product"`
	Region     float64 `json:"region"`
}

// FinalResults is attached to the state when the game completes.
type FinalResults struct {
	FinalScore   int            `json:"final_score"`
	Ranking      Ranking        `json:"ranking"`
	Achievements []string       `json:"achievements"`
	Summary      string         `json:"summary"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
}

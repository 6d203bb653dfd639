// Package resolver computes the outcome of a single decision: the
// success draw, magnitudes within the declared ranges, and the synergy and
// experience bonuses derived from decision history.
package resolver

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/rng"
)

// Tunables.
const (
	MaxSynergy        = 2.0
	MaxProbability    = 0.95
	ExperiencePerTurn = 0.02
	MaxExperience     = 0.20

	SuccessLow, SuccessSpan = 0.75, 0.5 // outcome multiplier in [0.75, 1.25]
	FailureLow, FailureSpan = 0.30, 0.4 // outcome multiplier in [0.30, 0.70]
)

var baseRate = map[model.Risk]float64{
	model.RiskHigh:   0.60,
	model.RiskMedium: 0.75,
	model.RiskLow:    0.90,
}

var synergyStep = map[model.DecisionType]float64{
	model.TypeInnovative: 0.15,
	model.TypeSafe:       0.10,
	model.TypeAggressive: 0.12,
}

// Keywords that place a decision id into a synergy category when its type
// is not known from the catalog.
var keywords = map[model.DecisionType][]string{
	model.TypeInnovative: {"ai", "smart", "innovative"},
	model.TypeSafe:       {"safe", "gradual"},
	model.TypeAggressive: {"aggressive", "full"},
}

// TypeLookup reports the declared type of a decision id. *catalog.Catalog
// satisfies it.
type TypeLookup interface {
	TypeOf(id string) (model.DecisionType, bool)
}

// Resolver is a pure function of its inputs and the random source.
type Resolver struct {
	types TypeLookup
	rng   rng.Source
}

// New creates a Resolver. types may be nil, in which case history is
// matched by id keywords only.
func New(types TypeLookup, r rng.Source) *Resolver {
	return &Resolver{types: types, rng: r}
}

// Category returns the synergy category of a decision id.
func (r *Resolver) Category(id string) (model.DecisionType, bool) {
	if r.types != nil {
		if t, ok := r.types.TypeOf(id); ok {
			return t, true
		}
	}
	return categoryFromID(id)
}

func categoryFromID(id string) (model.DecisionType, bool) {
	tokens := strings.FieldsFunc(strings.ToLower(id), func(c rune) bool {
		return c == '-' || c == '_' || c == ' '
	})
	// Innovative first: "ai-safe-rollout" is an AI decision.
	for _, t := range []model.DecisionType{model.TypeInnovative, model.TypeSafe, model.TypeAggressive} {
		for _, tok := range tokens {
			for _, kw := range keywords[t] {
				if tok == kw {
					return t, true
				}
			}
		}
	}
	return "", false
}

// Synergy returns the multiplier and the number of matching past decisions
// for d given the history. A decision earns the bonus of its own type and,
// when its id marks it as AI, the innovative bonus as well.
func (r *Resolver) Synergy(d model.DecisionOption, past []string) (float64, int) {
	cats := []model.DecisionType{d.Type}
	if c, ok := categoryFromID(d.ID); ok && c == model.TypeInnovative && d.Type != model.TypeInnovative {
		cats = append(cats, model.TypeInnovative)
	}
	mult, count := 1.0, 0
	for _, cat := range cats {
		n := 0
		for _, id := range past {
			if c, ok := r.Category(id); ok && c == cat {
				n++
			}
		}
		mult += synergyStep[cat] * float64(n)
		count += n
	}
	return math.Min(math.Max(mult, 1.0), MaxSynergy), count
}

// SuccessProbability returns the chance of success for risk after n prior
// decisions.
func SuccessProbability(risk model.Risk, n int) (float64, error) {
	base, ok := baseRate[risk]
	if !ok {
		return 0, fmt.Errorf("%w: risk %q", model.ErrMalformedCatalogEntry, risk)
	}
	bonus := math.Min(ExperiencePerTurn*float64(n), MaxExperience)
	return math.Min(base+bonus, MaxProbability), nil
}

// Resolve draws the outcome of d. Random draws are consumed in a fixed
// order: success, outcome multiplier, then one value per stochastic range
// (market cap, happy people, reputation, employees).
func (r *Resolver) Resolve(d model.DecisionOption, past []string) (model.DecisionResult, error) {
	if !d.Type.Valid() {
		return model.DecisionResult{}, fmt.Errorf("%w: %q (decision %s)", model.ErrInvalidDecisionType, d.Type, d.ID)
	}
	p, err := SuccessProbability(d.Risk, len(past))
	if err != nil {
		return model.DecisionResult{}, fmt.Errorf("resolve %s: %w", d.ID, err)
	}
	synergy, count := r.Synergy(d, past)

	success := r.rng.Float64() < p
	v := r.rng.Float64()
	outcome := FailureLow + v*FailureSpan
	if success {
		outcome = SuccessLow + v*SuccessSpan
	}
	scale := decimal.NewFromFloat(outcome * synergy)

	draw := func(rg model.Range) decimal.Decimal {
		return rg.Lerp(r.rng.Float64()).Mul(scale)
	}
	mc := draw(d.Effects.MarketCap).Round(2)
	happy := draw(d.Effects.HappyPeople).Round(0).IntPart()
	rep := int(draw(d.Effects.Reputation).Round(0).IntPart())
	emp := int(draw(d.Effects.Employees).Round(0).IntPart())

	res := model.DecisionResult{
		DecisionID: d.ID,
		Success:    success,
		Message:    messages[d.Type][success],
		Effects: model.Effects{
			MarketCapChange:   mc,
			CashChange:        d.Effects.Cash.Min,
			HappyPeopleChange: happy,
			ReputationChange:  rep,
			EmployeesChange:   emp,
		},
		SuccessProbability: p,
		SynergyMultiplier:  synergy,
		SynergyCount:       count,
		Type:               d.Type,
	}
	fb := feedback[d.Type][success]
	if count >= 2 {
		fb.Tip = fmt.Sprintf("%s (synergy bonus +%d%%)", fb.Tip, int(math.Round((synergy-1)*100)))
	}
	res.Feedback = &fb
	return res, nil
}

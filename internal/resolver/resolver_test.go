package resolver

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/catalog"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/rng"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func rangeOf(min, max float64) model.Range { return model.Range{Min: d(min), Max: d(max)} }

func option(id string, typ model.DecisionType, risk model.Risk) model.DecisionOption {
	return model.DecisionOption{
		ID:   id,
		Type: typ,
		Risk: risk,
		Cost: d(300000),
		Effects: model.EffectRanges{
			MarketCap:   rangeOf(500000, 2000000),
			Cash:        rangeOf(-300000, -300000),
			HappyPeople: rangeOf(50000, 200000),
			Reputation:  rangeOf(5, 15),
			Employees:   rangeOf(2, 8),
		},
	}
}

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func approx(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(d(0.01))
}

// Forced success with every interpolation value at 1.0.
func TestResolveForcedSuccessUsesMaxTimesOutcome(t *testing.T) {
	r := New(nil, rng.Sequence(0, 1, 1, 1, 1, 1))
	res, err := r.Resolve(option("safe-dev", model.TypeSafe, model.RiskLow), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Success {
		t.Fatal("expected success")
	}
	want := d(2000000).Mul(d(1.25)).Mul(d(res.SynergyMultiplier))
	if !approx(res.Effects.MarketCapChange, want) {
		t.Errorf("marketCapChange = %s, want %s", res.Effects.MarketCapChange, want)
	}
	if res.Effects.HappyPeopleChange != 250000 {
		t.Errorf("happyPeopleChange = %d, want 250000", res.Effects.HappyPeopleChange)
	}
	if res.Effects.ReputationChange != 19 { // 15 * 1.25 = 18.75
		t.Errorf("reputationChange = %d, want 19", res.Effects.ReputationChange)
	}
	if res.Effects.EmployeesChange != 10 {
		t.Errorf("employeesChange = %d, want 10", res.Effects.EmployeesChange)
	}
}

func TestResolveForcedSuccessWithSynergy(t *testing.T) {
	r := New(nil, rng.Sequence(0, 1, 1, 1, 1, 1))
	past := []string{"safe-a", "gradual-b"}
	res, err := r.Resolve(option("safe-dev", model.TypeSafe, model.RiskLow), past)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.SynergyCount != 2 || math.Abs(res.SynergyMultiplier-1.2) > 1e-9 {
		t.Fatalf("synergy = %v x%d, want 1.2 x2", res.SynergyMultiplier, res.SynergyCount)
	}
	if !approx(res.Effects.MarketCapChange, d(3000000)) {
		t.Errorf("marketCapChange = %s, want 3000000", res.Effects.MarketCapChange)
	}
	if !strings.Contains(res.Feedback.Tip, "+20%") {
		t.Errorf("tip %q should mention the synergy bonus", res.Feedback.Tip)
	}
}

func TestCashChangeIsAlwaysDeclaredMinimum(t *testing.T) {
	opt := option("cost", model.TypeAggressive, model.RiskHigh)
	opt.Effects.Cash = rangeOf(-800000, -100000)
	for _, seq := range [][]float64{{0, 0, 0}, {0.99, 0.5, 1}, {0.3, 0.7, 0.2}} {
		res, err := New(nil, rng.Sequence(seq...)).Resolve(opt, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Effects.CashChange.Equal(d(-800000)) {
			t.Errorf("seq %v: cashChange = %s, want -800000", seq, res.Effects.CashChange)
		}
	}
}

func TestResolveFailureBranch(t *testing.T) {
	// 0.95 >= 0.9 fails a low-risk draw; outcome draw 0 gives 0.30.
	r := New(nil, rng.Sequence(0.95, 0, 1, 1, 1, 1))
	res, err := r.Resolve(option("safe-dev", model.TypeSafe, model.RiskLow), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success {
		t.Fatal("expected failure")
	}
	if !approx(res.Effects.MarketCapChange, d(600000)) {
		t.Errorf("marketCapChange = %s, want 600000", res.Effects.MarketCapChange)
	}
	if res.Message != messages[model.TypeSafe][false] {
		t.Errorf("message = %q", res.Message)
	}
}

func TestSuccessProbability(t *testing.T) {
	tests := []struct {
		risk model.Risk
		past int
		want float64
	}{
		{model.RiskHigh, 0, 0.60},
		{model.RiskMedium, 0, 0.75},
		{model.RiskLow, 0, 0.90},
		{model.RiskHigh, 5, 0.70},
		{model.RiskHigh, 10, 0.80},
		{model.RiskHigh, 50, 0.80}, // experience capped at 0.20
		{model.RiskMedium, 30, 0.95},
		{model.RiskLow, 3, 0.95}, // clamped
	}
	for _, tt := range tests {
		got, err := SuccessProbability(tt.risk, tt.past)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SuccessProbability(%s, %d) = %v, want %v", tt.risk, tt.past, got, tt.want)
		}
	}
	if _, err := SuccessProbability("extreme", 0); !errors.Is(err, model.ErrMalformedCatalogEntry) {
		t.Errorf("unknown risk: got %v", err)
	}
}

func TestSynergyCountsByCategory(t *testing.T) {
	r := New(mustCatalog(t), rng.Sequence(0))
	tests := []struct {
		name      string
		opt       model.DecisionOption
		past      []string
		wantMult  float64
		wantCount int
	}{
		{"no history", option("safe-dev", model.TypeSafe, model.RiskLow), nil, 1.0, 0},
		{"safe via catalog type", option("safe-dev", model.TypeSafe, model.RiskLow),
			[]string{"negotiate-terms", "safe-niche-focus", "aggressive-dev"}, 1.2, 2},
		{"aggressive", option("aggressive-dev", model.TypeAggressive, model.RiskHigh),
			[]string{"hire-expert", "full-feature-race"}, 1.24, 2},
		{"innovative via id keyword", option("ai-pivot", model.TypeSafe, model.RiskLow),
			[]string{"innovative-dev", "smart-optimization", "unknown-ai-thing"}, 1.45, 3},
		{"ai id adds innovative to its own type", option("ai-blitz", model.TypeAggressive, model.RiskHigh),
			[]string{"aggressive-dev", "innovative-dev", "safe-dev"}, 1.27, 2},
		{"capped at two", option("innovative-dev", model.TypeInnovative, model.RiskMedium),
			[]string{"innovative-dev", "innovative-dev", "innovative-dev", "innovative-dev",
				"innovative-dev", "innovative-dev", "innovative-dev", "innovative-dev"}, 2.0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mult, count := r.Synergy(tt.opt, tt.past)
			if count != tt.wantCount || math.Abs(mult-tt.wantMult) > 1e-9 {
				t.Errorf("Synergy = %v x%d, want %v x%d", mult, count, tt.wantMult, tt.wantCount)
			}
		})
	}
}

func TestSynergyMonotonicity(t *testing.T) {
	opt := option("safe-dev", model.TypeSafe, model.RiskLow)
	seq := []float64{0.1, 0.6, 0.4, 0.5, 0.6, 0.7}

	base, err := New(nil, rng.Sequence(seq...)).Resolve(opt, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	boosted, err := New(nil, rng.Sequence(seq...)).Resolve(opt, []string{"safe-a", "safe-b"})
	if err != nil {
		t.Fatal(err)
	}
	if boosted.Effects.MarketCapChange.LessThan(base.Effects.MarketCapChange) {
		t.Errorf("synergy lowered market cap: %s < %s", boosted.Effects.MarketCapChange, base.Effects.MarketCapChange)
	}
	if boosted.Effects.HappyPeopleChange < base.Effects.HappyPeopleChange {
		t.Errorf("synergy lowered happy people: %d < %d", boosted.Effects.HappyPeopleChange, base.Effects.HappyPeopleChange)
	}
}

func TestResolveInvalidType(t *testing.T) {
	_, err := New(nil, rng.Sequence(0)).Resolve(option("x", "reckless", model.RiskLow), nil)
	if !errors.Is(err, model.ErrInvalidDecisionType) {
		t.Errorf("got %v, want ErrInvalidDecisionType", err)
	}
}

func TestResolveIsDeterministicForSeed(t *testing.T) {
	opt := option("innovative-dev", model.TypeInnovative, model.RiskMedium)
	a, _ := New(nil, rng.New(99)).Resolve(opt, []string{"safe-dev"})
	b, _ := New(nil, rng.New(99)).Resolve(opt, []string{"safe-dev"})
	if a.Success != b.Success || !a.Effects.MarketCapChange.Equal(b.Effects.MarketCapChange) {
		t.Error("same seed produced different outcomes")
	}
}

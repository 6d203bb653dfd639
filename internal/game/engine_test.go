package game

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/ceosim/game-engine/internal/catalog"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/rng"
)

func TestStartSeedsSimpleGame(t *testing.T) {
	e := defaultEngine(t, 1)
	s := mustStart(t, e, "Acme", model.ModeSimple)

	c := s.Company
	if !c.Cash.Equal(d(1000000)) || !c.MarketCap.Equal(c.Cash) {
		t.Errorf("cash=%s marketCap=%s, want both 1000000", c.Cash, c.MarketCap)
	}
	if c.Reputation != 50 || c.Employees != 1 || c.Month != 1 || c.Year != 2024 {
		t.Errorf("seed = %+v", c)
	}
	if s.TurnCount != 0 || s.GamePhase != model.GamePlaying {
		t.Errorf("turn=%d phase=%s", s.TurnCount, s.GamePhase)
	}
	if s.CurrentEvent == nil {
		t.Fatal("currentEvent is nil")
	}
	if !slices.Equal(s.UsedEvents, []string{s.CurrentEvent.ID}) {
		t.Errorf("usedEvents = %v", s.UsedEvents)
	}
	if len(s.AvailableDecisions) != 3 {
		t.Errorf("decisions = %d, want 3", len(s.AvailableDecisions))
	}
	if len(s.History) != 1 || s.History[0].Label != "2024-01" {
		t.Errorf("history = %+v", s.History)
	}
	if p, _ := e.Catalog().PhaseOf(s.CurrentEvent.ID); p != model.PhaseStartup {
		t.Errorf("first event phase = %s", p)
	}
	if len(s.Regions) != 0 {
		t.Error("simple mode should have no regions")
	}
}

func TestStartRejections(t *testing.T) {
	e := defaultEngine(t, 1)
	tests := []struct {
		name  string
		state model.GameState
		act   Start
	}{
		{"empty name", NewState(), Start{Mode: model.ModeSimple}},
		{"bad mode", NewState(), Start{CompanyName: "Acme", Mode: "arcade"}},
		{"already started", mustStart(t, e, "Acme", model.ModeSimple), Start{CompanyName: "Other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Reduce(tt.state, tt.act)
			if err != nil {
				t.Fatal(err)
			}
			if out.Accepted || out.Message == "" {
				t.Errorf("expected rejection with message, got %+v", out)
			}
			if !reflect.DeepEqual(out.State, tt.state) {
				t.Error("state changed on rejection")
			}
		})
	}
}

func TestDecisionCostAboveCashIsRejected(t *testing.T) {
	cat := buildCatalog(t, catalog.Entry{
		Phase: model.PhaseStartup,
		Event: event("big-bet"),
		Decisions: []model.DecisionOption{
			option("aggressive-moonshot", model.TypeAggressive, model.RiskHigh, 2_000_000),
			option("safe-wait", model.TypeSafe, model.RiskLow, 0),
		},
	})
	e := New(cat, rng.New(3), DefaultConfig())
	s := mustStart(t, e, "Acme", model.ModeSimple)
	before := s.Clone()

	out, err := e.Submit(s, "aggressive-moonshot")
	if err != nil {
		t.Fatal(err)
	}
	if out.Accepted {
		t.Fatal("expected rejection")
	}
	if out.Message == "" {
		t.Error("rejection should carry a message")
	}
	if !reflect.DeepEqual(out.State, before) {
		t.Error("state changed on rejection")
	}
	if out.State.TurnCount != 0 {
		t.Errorf("turnCount = %d, want 0", out.State.TurnCount)
	}
}

func TestRequirementsGateSubmission(t *testing.T) {
	gated := option("aggressive-expand", model.TypeAggressive, model.RiskHigh, 0)
	gated.Requirements = model.Requirements{Employees: 5}
	rep := option("safe-brand", model.TypeSafe, model.RiskLow, 0)
	rep.Requirements = model.Requirements{Reputation: 60}
	research := option("innovative-lab", model.TypeInnovative, model.RiskMedium, 0)
	research.Requirements = model.Requirements{ResearchPoints: 50}
	free := option("safe-hold", model.TypeSafe, model.RiskLow, 0)

	cat := buildCatalog(t, catalog.Entry{
		Phase:     model.PhaseStartup,
		Event:     event("gate"),
		Decisions: []model.DecisionOption{gated, rep, research, free},
	})
	e := New(cat, rng.New(1), DefaultConfig())
	s := mustStart(t, e, "Acme", model.ModeSimple)

	for _, id := range []string{"aggressive-expand", "safe-brand", "innovative-lab"} {
		out, err := e.Submit(s, id)
		if err != nil {
			t.Fatal(err)
		}
		if out.Accepted {
			t.Errorf("%s should be gated", id)
		}
	}
	mustSubmit(t, e, s, "safe-hold")
}

func TestBeginRejections(t *testing.T) {
	e := defaultEngine(t, 5)
	s := mustStart(t, e, "Acme", model.ModeSimple)
	id := s.AvailableDecisions[1].ID

	out, err := e.Reduce(s, Begin{DecisionID: "no-such-decision"})
	if err != nil || out.Accepted {
		t.Fatalf("unknown id: accepted=%v err=%v", out.Accepted, err)
	}

	out, err = e.Reduce(s, Resolve{DecisionID: id})
	if err != nil || out.Accepted {
		t.Fatalf("resolve without begin: accepted=%v err=%v", out.Accepted, err)
	}

	begun, err := e.Reduce(s, Begin{DecisionID: id})
	if err != nil || !begun.Accepted {
		t.Fatalf("begin: %v %s", err, begun.Message)
	}
	if !begun.State.IsProcessing {
		t.Fatal("begin should set isProcessing")
	}
	if s.IsProcessing {
		t.Fatal("begin mutated the input state")
	}
	again, err := e.Reduce(begun.State, Begin{DecisionID: id})
	if err != nil || again.Accepted {
		t.Fatalf("second begin: accepted=%v err=%v", again.Accepted, err)
	}
	if !reflect.DeepEqual(again.State, begun.State) {
		t.Error("state changed on rejection")
	}

	done, err := e.Reduce(begun.State, Resolve{DecisionID: id})
	if err != nil || !done.Accepted {
		t.Fatalf("resolve: %v %s", err, done.Message)
	}
	if done.State.IsProcessing || done.State.TurnCount != 1 {
		t.Errorf("processing=%v turn=%d", done.State.IsProcessing, done.State.TurnCount)
	}
	if done.Result == nil || done.State.LastResult == nil {
		t.Error("resolve should report the decision result")
	}
}

func TestResolvePlaysOnlyTheBegunDecision(t *testing.T) {
	cheap := option("safe-cheap", model.TypeSafe, model.RiskLow, 10000)
	pricey := option("aggressive-pricey", model.TypeAggressive, model.RiskHigh, 900000)
	cat := buildCatalog(t, catalog.Entry{
		Phase:     model.PhaseStartup,
		Event:     event("launch"),
		Decisions: []model.DecisionOption{cheap, pricey},
	})
	e := New(cat, rng.New(2), Config{MaxTurns: 1})
	s := mustStart(t, e, "Acme", model.ModeSimple)

	begun, err := e.Reduce(s, Begin{DecisionID: cheap.ID})
	if err != nil || !begun.Accepted {
		t.Fatalf("begin: %v %s", err, begun.Message)
	}
	if begun.State.PendingDecision != cheap.ID {
		t.Fatalf("pending = %q, want %q", begun.State.PendingDecision, cheap.ID)
	}

	swapped, err := e.Reduce(begun.State, Resolve{DecisionID: pricey.ID})
	if err != nil || swapped.Accepted {
		t.Fatalf("resolve of another decision: accepted=%v err=%v", swapped.Accepted, err)
	}
	if !reflect.DeepEqual(swapped.State, begun.State) {
		t.Error("state changed on rejection")
	}

	done, err := e.Reduce(begun.State, Resolve{DecisionID: cheap.ID})
	if err != nil || !done.Accepted {
		t.Fatalf("resolve: %v %s", err, done.Message)
	}
	if !slices.Equal(done.State.PastDecisions, []string{cheap.ID}) {
		t.Errorf("past decisions = %v", done.State.PastDecisions)
	}
	if !IsGameComplete(done.State) || done.State.PendingDecision != "" {
		t.Errorf("completed=%v pending=%q", IsGameComplete(done.State), done.State.PendingDecision)
	}
}

func TestCancelWithdrawsTheBegunDecision(t *testing.T) {
	e := defaultEngine(t, 3)
	s := mustStart(t, e, "Acme", model.ModeSimple)

	out, err := e.Reduce(s, Cancel{})
	if err != nil || out.Accepted {
		t.Fatalf("cancel while idle: accepted=%v err=%v", out.Accepted, err)
	}

	begun, err := e.Reduce(s, Begin{DecisionID: s.AvailableDecisions[0].ID})
	if err != nil || !begun.Accepted {
		t.Fatalf("begin: %v %s", err, begun.Message)
	}
	out, err = e.Reduce(begun.State, Cancel{})
	if err != nil || !out.Accepted {
		t.Fatalf("cancel: %v %s", err, out.Message)
	}
	if !reflect.DeepEqual(out.State, s) {
		t.Errorf("cancel did not restore the pre-begin state")
	}
}

func TestBankruptcyEndsGameEarly(t *testing.T) {
	cat := buildCatalog(t, append(filler(model.PhaseStartup, 4), catalog.Entry{
		Phase: model.PhaseStartup,
		Event: event("burn"),
		Decisions: []model.DecisionOption{
			option("aggressive-burn", model.TypeAggressive, model.RiskHigh, 1_000_000),
		},
	})...)
	// 0.99 picks the last unused event ("burn") and fails every success draw.
	e := New(cat, rng.Sequence(0.99), DefaultConfig())
	s := mustStart(t, e, "Acme", model.ModeSimple)
	if s.CurrentEvent.ID != "burn" {
		t.Fatalf("first event = %s, want burn", s.CurrentEvent.ID)
	}

	out := mustSubmit(t, e, s, "aggressive-burn")
	if out.Result.Success {
		t.Error("expected a failed decision")
	}
	got := out.State
	if got.GamePhase != model.GameCompleted || got.CompletionReason != model.ReasonBankrupt {
		t.Fatalf("phase=%s reason=%s, want completed/bankrupt", got.GamePhase, got.CompletionReason)
	}
	if got.TurnCount >= DefaultMaxTurns {
		t.Errorf("turnCount = %d", got.TurnCount)
	}
	if !got.Company.Cash.IsZero() {
		t.Errorf("cash = %s, want 0", got.Company.Cash)
	}
	if got.FinalResults == nil || got.CurrentEvent != nil {
		t.Error("completion should attach results and clear the event")
	}

	after, err := e.Submit(got, "aggressive-burn")
	if err != nil || after.Accepted {
		t.Errorf("completed game accepted a decision: %v", err)
	}
}

func TestTurnLimitCompletesWithRanking(t *testing.T) {
	e := New(buildCatalog(t, filler(model.PhaseStartup, 25)...), rng.New(11), DefaultConfig())
	s := mustStart(t, e, "Acme", model.ModeSimple)

	for !IsGameComplete(s) {
		if s.TurnCount > DefaultMaxTurns {
			t.Fatal("game did not stop at the turn limit")
		}
		s = playAny(t, e, s).State
		checkInvariants(t, s)
		if !s.Company.Cash.IsPositive() {
			t.Fatalf("cash ran out at turn %d", s.TurnCount)
		}
	}

	if s.TurnCount != 20 || s.CompletionReason != model.ReasonTurnLimit {
		t.Fatalf("turn=%d reason=%s", s.TurnCount, s.CompletionReason)
	}
	if s.FinalResults == nil {
		t.Fatal("no final results")
	}
	if !slices.Contains([]model.Ranking{model.RankS, model.RankA, model.RankB, model.RankC, model.RankD}, s.FinalResults.Ranking) {
		t.Errorf("ranking = %q", s.FinalResults.Ranking)
	}
	if !slices.Contains(s.FinalResults.Achievements, "Survivor: reached the final turn with cash to spare") {
		t.Errorf("achievements = %v", s.FinalResults.Achievements)
	}
	// The event drawn for the would-be 21st turn is not shown, so not used.
	if len(s.UsedEvents) != 20 {
		t.Errorf("usedEvents = %d, want 20", len(s.UsedEvents))
	}
	if len(s.History) != HistoryLimit {
		t.Errorf("history = %d, want %d", len(s.History), HistoryLimit)
	}
	// 20 months after January 2024.
	if last := s.History[len(s.History)-1].Label; last != "2025-09" {
		t.Errorf("last history label = %s, want 2025-09", last)
	}
}

func TestCatalogExhaustionCompletes(t *testing.T) {
	e := New(buildCatalog(t, filler(model.PhaseStartup, 2)...), rng.New(2), DefaultConfig())
	s := mustStart(t, e, "Acme", model.ModeSimple)
	s = playAny(t, e, s).State
	if IsGameComplete(s) {
		t.Fatal("completed too early")
	}
	s = playAny(t, e, s).State
	if s.CompletionReason != model.ReasonEventsExhausted || s.TurnCount != 2 {
		t.Errorf("reason=%s turn=%d", s.CompletionReason, s.TurnCount)
	}
}

func TestInsolventWhenNoDecisionAffordable(t *testing.T) {
	cat := buildCatalog(t,
		catalog.Entry{
			Phase:     model.PhaseStartup,
			Event:     event("cheap"),
			Decisions: []model.DecisionOption{option("safe-hold", model.TypeSafe, model.RiskLow, 0)},
		},
		catalog.Entry{
			Phase:     model.PhaseStartup,
			Event:     event("pricey"),
			Decisions: []model.DecisionOption{option("aggressive-buyout", model.TypeAggressive, model.RiskHigh, 5_000_000)},
		},
	)
	e := New(cat, rng.Sequence(0), DefaultConfig())
	s := mustStart(t, e, "Acme", model.ModeSimple)
	if s.CurrentEvent.ID != "cheap" {
		t.Fatalf("first event = %s", s.CurrentEvent.ID)
	}
	s = mustSubmit(t, e, s, "safe-hold").State
	if s.CompletionReason != model.ReasonInsolvent {
		t.Fatalf("reason = %s, want insolvent", s.CompletionReason)
	}
	if slices.Contains(s.UsedEvents, "pricey") {
		t.Error("unshown event marked used")
	}
}

func TestPhaseTransitionSelectsFromNextBucket(t *testing.T) {
	jump := option("aggressive-blitz", model.TypeAggressive, model.RiskHigh, 0)
	jump.Effects.MarketCap = model.Range{Min: d(2e9), Max: d(2e9)}
	entries := []catalog.Entry{{Phase: model.PhaseStartup, Event: event("launch"), Decisions: []model.DecisionOption{jump}}}
	entries = append(entries, filler(model.PhaseStartup, 2)...)
	entries = append(entries, filler(model.PhaseGrowth, 2)...)

	// All draws 0: first event, success, outcome 0.75.
	e := New(buildCatalog(t, entries...), rng.Sequence(0), DefaultConfig())
	s := mustStart(t, e, "Acme", model.ModeSimple)
	out := mustSubmit(t, e, s, "aggressive-blitz")

	if CurrentPhase(out.State) != model.PhaseGrowth {
		t.Fatalf("phase = %s, want growth (mc %s)", CurrentPhase(out.State), out.State.Company.MarketCap)
	}
	if p, _ := e.Catalog().PhaseOf(out.State.CurrentEvent.ID); p != model.PhaseGrowth {
		t.Errorf("next event %s from phase %s", out.State.CurrentEvent.ID, p)
	}
}

func TestRandomPlaythroughsHoldInvariants(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		e := defaultEngine(t, seed)
		for _, mode := range []model.Mode{model.ModeSimple, model.ModeStory} {
			s := mustStart(t, e, "Acme", mode)
			steps := 0
			for !IsGameComplete(s) {
				prev := s.TurnCount
				s = playAny(t, e, s).State
				checkInvariants(t, s)
				if s.TurnCount != prev+1 {
					t.Fatalf("seed %d: turn %d -> %d", seed, prev, s.TurnCount)
				}
				steps++
				if steps > DefaultMaxTurns {
					t.Fatalf("seed %d %s: no termination after %d steps", seed, mode, steps)
				}
			}
			if s.FinalResults == nil || s.CompletionReason == "" {
				t.Errorf("seed %d %s: completed without results", seed, mode)
			}
		}
	}
}

func TestNarrativeDoesNotAffectNumbers(t *testing.T) {
	a := defaultEngine(t, 77)
	b := defaultEngine(t, 77)
	sa := mustStart(t, a, "Acme", model.ModeSimple)
	sb := mustStart(t, b, "Acme", model.ModeSimple)
	sb.Situation = "completely different text"

	id := sa.AvailableDecisions[1].ID
	oa := mustSubmit(t, a, sa, id)
	ob := mustSubmit(t, b, sb, id)
	if !reflect.DeepEqual(oa.State.Company, ob.State.Company) {
		t.Errorf("company differs: %+v vs %+v", oa.State.Company, ob.State.Company)
	}
}

func TestResetReturnsSetup(t *testing.T) {
	e := defaultEngine(t, 1)
	s := mustStart(t, e, "Acme", model.ModeSimple)
	out, err := e.Reduce(s, Reset{})
	if err != nil || !out.Accepted {
		t.Fatal(err)
	}
	if out.State.GamePhase != model.GameSetup || out.State.CurrentEvent != nil || out.State.TurnCount != 0 {
		t.Errorf("reset state = %+v", out.State)
	}
}

func TestInvalidDecisionTypeSurfaces(t *testing.T) {
	e := defaultEngine(t, 1)
	s := mustStart(t, e, "Acme", model.ModeSimple)
	s.AvailableDecisions[0].Type = "reckless"
	s.AvailableDecisions[0].Cost = d(0)
	s.AvailableDecisions[0].Requirements = model.Requirements{}

	_, err := e.Submit(s, s.AvailableDecisions[0].ID)
	if !errors.Is(err, model.ErrInvalidDecisionType) {
		t.Errorf("got %v, want ErrInvalidDecisionType", err)
	}
}

type bogus struct{}

func (bogus) action() {}

func TestUnknownAction(t *testing.T) {
	_, err := defaultEngine(t, 1).Reduce(NewState(), bogus{})
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("got %v", err)
	}
}

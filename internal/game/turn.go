package game

import (
	"fmt"

	"github.com/ceosim/game-engine/internal/catalog"
	"github.com/ceosim/game-engine/internal/finance"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/narrative"
	"github.com/ceosim/game-engine/internal/phase"
)

// validate checks that decisionID may be played on s. It returns the
// decision or a rejection message.
func validate(s model.GameState, decisionID string) (model.DecisionOption, string) {
	switch s.GamePhase {
	case model.GameCompleted:
		return model.DecisionOption{}, "The game is over."
	case model.GamePlaying:
	default:
		return model.DecisionOption{}, "The game has not started."
	}
	if s.CurrentEvent == nil {
		return model.DecisionOption{}, "There is no event to respond to."
	}
	d, ok := s.FindDecision(decisionID)
	if !ok {
		return model.DecisionOption{}, fmt.Sprintf("Decision %q is not available this turn.", decisionID)
	}
	if msg := checkRequirements(s, d); msg != "" {
		return model.DecisionOption{}, msg
	}
	return d, ""
}

func checkRequirements(s model.GameState, d model.DecisionOption) string {
	req := d.Requirements
	if need := catalog.RequiredCash(d); s.Company.Cash.LessThan(need) {
		return fmt.Sprintf("Not enough cash: %s required, %s available.",
			narrative.Money(need), narrative.Money(s.Company.Cash))
	}
	if req.Employees > 0 && s.Company.Employees < req.Employees {
		return fmt.Sprintf("Not enough employees: %d required.", req.Employees)
	}
	if req.ResearchPoints > 0 && s.ResearchPoints < req.ResearchPoints {
		return fmt.Sprintf("Not enough research points: %d required.", req.ResearchPoints)
	}
	if req.Reputation > 0 && s.Company.Reputation < req.Reputation {
		return fmt.Sprintf("Reputation too low: %d or higher required.", req.Reputation)
	}
	return ""
}

// playable reports whether at least one decision of the event passes the
// requirement checks on s.
func (e *Engine) playable(s model.GameState, eventID string) bool {
	for _, d := range e.cat.Decisions(eventID) {
		if checkRequirements(s, d) == "" {
			return true
		}
	}
	return false
}

func (e *Engine) begin(s model.GameState, decisionID string) (Outcome, error) {
	if s.IsProcessing {
		return reject(s, "A decision is already being processed."), nil
	}
	d, msg := validate(s, decisionID)
	if msg != "" {
		return reject(s, "%s", msg), nil
	}
	next := s.Clone()
	next.IsProcessing = true
	next.PendingDecision = d.ID
	return Outcome{State: next, Accepted: true, Message: fmt.Sprintf("Executing %q...", d.Title)}, nil
}

// cancel closes the processing window without playing the decision.
func cancel(s model.GameState) Outcome {
	if !s.IsProcessing {
		return reject(s, "No decision is being processed.")
	}
	next := s.Clone()
	next.IsProcessing = false
	next.PendingDecision = ""
	return Outcome{State: next, Accepted: true, Message: "Decision withdrawn."}
}

func (e *Engine) resolve(s model.GameState, decisionID string) (Outcome, error) {
	if !s.IsProcessing {
		return reject(s, "No decision is being processed."), nil
	}
	if decisionID != s.PendingDecision {
		return reject(s, "Decision %q is not the one being processed.", decisionID), nil
	}
	d, msg := validate(s, decisionID)
	if msg != "" {
		return reject(s, "%s", msg), nil
	}

	res, err := e.resolver.Resolve(d, s.PastDecisions)
	if err != nil {
		return Outcome{}, err
	}

	next := s.Clone()
	next.Company = finance.Apply(s.Company, res, e.cfg.Rates)

	var quarter *finance.QuarterReport
	if next.Mode == model.ModeStory && finance.StartsQuarter(next.Company.Month) {
		var report finance.QuarterReport
		next, report = finance.QuarterlyPass(next)
		quarter = &report
	}

	ph := phase.Classify(next.Company)
	ev := e.cat.SelectEvent(ph, next.UsedEvents, e.rng)

	next.History = append(next.History, historyPoint(next))
	if over := len(next.History) - HistoryLimit; over > 0 {
		next.History = next.History[over:]
	}
	next.PastDecisions = append(next.PastDecisions, d.ID)
	next.TurnCount++
	next.IsProcessing = false
	next.PendingDecision = ""
	next.LastResult = &res

	out := Outcome{Accepted: true, Message: res.Message, Result: &res, Quarter: quarter}
	switch {
	case !next.Company.Cash.IsPositive():
		next = e.complete(next, model.ReasonBankrupt)
	case next.TurnCount >= e.cfg.MaxTurns:
		next = e.complete(next, model.ReasonTurnLimit)
	case ev == nil:
		next = e.complete(next, model.ReasonEventsExhausted)
	case !e.playable(next, ev.ID):
		next = e.complete(next, model.ReasonInsolvent)
	default:
		e.present(&next, ev)
	}
	next.Situation = narrative.Situation(narrative.FromState(next))
	out.State = next
	return out, nil
}

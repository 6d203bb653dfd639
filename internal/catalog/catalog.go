// Package catalog holds the static event and decision content and the
// event selector that draws from it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/rng"
)

//go:embed content.yaml
var defaultContent []byte

var (
	ErrDuplicateID   = errors.New("catalog: duplicate id")
	ErrUnknownPhase  = errors.New("catalog: unknown phase")
	ErrEmptyCatalog  = errors.New("catalog: no events")
	ErrEventNotFound = errors.New("catalog: event not found")
)

// Entry is one event together with the decisions offered for it.
type Entry struct {
	Phase     model.Phase
	Event     model.GameEvent
	Decisions []model.DecisionOption
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	events     map[model.Phase][]model.GameEvent
	decisions  map[string][]model.DecisionOption // keyed by event id
	byID       map[string]model.DecisionOption
	eventPhase map[string]model.Phase
}

// New validates the entries and builds a Catalog. Events keep their order
// within each phase.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{
		events:     make(map[model.Phase][]model.GameEvent),
		decisions:  make(map[string][]model.DecisionOption),
		byID:       make(map[string]model.DecisionOption),
		eventPhase: make(map[string]model.Phase),
	}
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	for _, e := range entries {
		if !slices.Contains(model.Phases, e.Phase) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, e.Phase)
		}
		if err := validateEvent(e.Event); err != nil {
			return nil, err
		}
		if _, ok := c.eventPhase[e.Event.ID]; ok {
			return nil, fmt.Errorf("%w: event %q", ErrDuplicateID, e.Event.ID)
		}
		if len(e.Decisions) == 0 {
			return nil, fmt.Errorf("%w: event %q has no decisions", model.ErrMalformedCatalogEntry, e.Event.ID)
		}
		for _, d := range e.Decisions {
			if err := ValidateDecision(d); err != nil {
				return nil, err
			}
			if _, ok := c.byID[d.ID]; ok {
				return nil, fmt.Errorf("%w: decision %q", ErrDuplicateID, d.ID)
			}
			c.byID[d.ID] = d
		}
		c.eventPhase[e.Event.ID] = e.Phase
		c.events[e.Phase] = append(c.events[e.Phase], e.Event)
		c.decisions[e.Event.ID] = slices.Clone(e.Decisions)
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultContent)
}

// Load reads a YAML catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Events returns the events of a phase in catalog order.
func (c *Catalog) Events(phase model.Phase) []model.GameEvent {
	return slices.Clone(c.events[phase])
}

// Decisions returns the options offered for an event.
func (c *Catalog) Decisions(eventID string) []model.DecisionOption {
	return slices.Clone(c.decisions[eventID])
}

// Decision looks up a decision by id across all events.
func (c *Catalog) Decision(id string) (model.DecisionOption, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// TypeOf reports the declared type of a decision id.
func (c *Catalog) TypeOf(id string) (model.DecisionType, bool) {
	d, ok := c.byID[id]
	return d.Type, ok
}

// PhaseOf reports the phase an event belongs to.
func (c *Catalog) PhaseOf(eventID string) (model.Phase, bool) {
	p, ok := c.eventPhase[eventID]
	return p, ok
}

// Event looks up an event by id.
func (c *Catalog) Event(id string) (model.GameEvent, error) {
	p, ok := c.eventPhase[id]
	if !ok {
		return model.GameEvent{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	for _, ev := range c.events[p] {
		if ev.ID == id {
			return ev, nil
		}
	}
	return model.GameEvent{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
}

// Size returns the number of events per phase.
func (c *Catalog) Size() map[model.Phase]int {
	out := make(map[model.Phase]int, len(c.events))
	for p, evs := range c.events {
		out[p] = len(evs)
	}
	return out
}

// SelectEvent picks uniformly among the phase's events whose ids are not in
// used. It returns nil when the phase bucket is exhausted.
func (c *Catalog) SelectEvent(phase model.Phase, used []string, r rng.Source) *model.GameEvent {
	var unused []model.GameEvent
	for _, ev := range c.events[phase] {
		if !slices.Contains(used, ev.ID) {
			unused = append(unused, ev)
		}
	}
	if len(unused) == 0 {
		return nil
	}
	ev := unused[r.Intn(len(unused))]
	return &ev
}

func validateEvent(ev model.GameEvent) error {
	if ev.ID == "" {
		return fmt.Errorf("%w: event without id", model.ErrMalformedCatalogEntry)
	}
	switch ev.Impact {
	case model.ImpactPositive, model.ImpactNegative, model.ImpactNeutral:
	default:
		return fmt.Errorf("%w: event %q impact %q", model.ErrMalformedCatalogEntry, ev.ID, ev.Impact)
	}
	switch ev.Urgency {
	case model.UrgencyHigh, model.UrgencyMedium, model.UrgencyLow:
	default:
		return fmt.Errorf("%w: event %q urgency %q", model.ErrMalformedCatalogEntry, ev.ID, ev.Urgency)
	}
	switch ev.Category {
	case model.CategoryProduct, model.CategoryMarket, model.CategoryFinance,
		model.CategoryOperations, model.CategoryExternal:
	default:
		return fmt.Errorf("%w: event %q category %q", model.ErrMalformedCatalogEntry, ev.ID, ev.Category)
	}
	return nil
}

// ValidateDecision checks a single decision option for a known type and
// risk, a non-negative cost and ordered effect ranges.
func ValidateDecision(d model.DecisionOption) error {
	if d.ID == "" {
		return fmt.Errorf("%w: decision without id", model.ErrMalformedCatalogEntry)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: decision %q type %q", model.ErrInvalidDecisionType, d.ID, d.Type)
	}
	switch d.Risk {
	case model.RiskHigh, model.RiskMedium, model.RiskLow:
	default:
		return fmt.Errorf("%w: decision %q risk %q", model.ErrMalformedCatalogEntry, d.ID, d.Risk)
	}
	if d.Cost.IsNegative() {
		return fmt.Errorf("%w: decision %q negative cost", model.ErrMalformedCatalogEntry, d.ID)
	}
	ranges := []struct {
		name string
		r    model.Range
	}{
		{"market_cap", d.Effects.MarketCap},
		{"cash", d.Effects.Cash},
		{"happy_people", d.Effects.HappyPeople},
		{"reputation", d.Effects.Reputation},
		{"employees", d.Effects.Employees},
	}
	for _, rr := range ranges {
		if rr.r.Min.GreaterThan(rr.r.Max) {
			return fmt.Errorf("%w: decision %q %s range min > max", model.ErrMalformedCatalogEntry, d.ID, rr.name)
		}
	}
	if d.Requirements.Cash.IsNegative() || d.Requirements.Employees < 0 ||
		d.Requirements.ResearchPoints < 0 || d.Requirements.Reputation < 0 {
		return fmt.Errorf("%w: decision %q negative requirement", model.ErrMalformedCatalogEntry, d.ID)
	}
	return nil
}

// RequiredCash is the cash a player must hold to submit d: the larger of
// its declared cash requirement and its cost.
func RequiredCash(d model.DecisionOption) decimal.Decimal {
	return decimal.Max(d.Requirements.Cash, d.Cost)
}

package catalog

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ceosim/game-engine/internal/model"
)

type fileDoc struct {
	Phases map[string][]eventDoc `yaml:"phases"`
}

type eventDoc struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Impact      string        `yaml:"impact"`
	Urgency     string        `yaml:"urgency"`
	Category    string        `yaml:"category"`
	Decisions   []decisionDoc `yaml:"decisions"`
}

type decisionDoc struct {
	ID           string          `yaml:"id"`
	Type         string          `yaml:"type"`
	Title        string          `yaml:"title"`
	Description  string          `yaml:"description"`
	Cost         float64         `yaml:"cost"`
	Risk         string          `yaml:"risk"`
	Effects      effectsDoc      `yaml:"effects"`
	Requirements requirementsDoc `yaml:"requirements"`
}

type effectsDoc struct {
	MarketCap   []float64 `yaml:"market_cap"`
	Cash        []float64 `yaml:"cash"`
	HappyPeople []float64 `yaml:"happy_people"`
	Reputation  []float64 `yaml:"reputation"`
	Employees   []float64 `yaml:"employees"`
}

type requirementsDoc struct {
	Cash           float64 `yaml:"cash"`
	Employees      int     `yaml:"employees"`
	ResearchPoints int     `yaml:"research_points"`
	Reputation     int     `yaml:"reputation"`
}

// Parse decodes a YAML catalog document. Unknown fields are rejected and
// every decision must declare all five effect ranges.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc fileDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedCatalogEntry, err)
	}

	var entries []Entry
	for _, p := range model.Phases {
		for _, ed := range doc.Phases[string(p)] {
			e, err := ed.entry(p)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	for name := range doc.Phases {
		if !isPhase(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, name)
		}
	}
	return New(entries...)
}

func isPhase(name string) bool {
	for _, p := range model.Phases {
		if string(p) == name {
			return true
		}
	}
	return false
}

func (ed eventDoc) entry(p model.Phase) (Entry, error) {
	e := Entry{
		Phase: p,
		Event: model.GameEvent{
			ID:          ed.ID,
			Title:       ed.Title,
			Description: ed.Description,
			Impact:      model.Impact(ed.Impact),
			Urgency:     model.Urgency(ed.Urgency),
			Category:    model.Category(ed.Category),
		},
	}
	for _, dd := range ed.Decisions {
		d, err := dd.option()
		if err != nil {
			return Entry{}, err
		}
		e.Decisions = append(e.Decisions, d)
	}
	return e, nil
}

func (dd decisionDoc) option() (model.DecisionOption, error) {
	var eff model.EffectRanges
	fields := []struct {
		name string
		src  []float64
		dst  *model.Range
	}{
		{"market_cap", dd.Effects.MarketCap, &eff.MarketCap},
		{"cash", dd.Effects.Cash, &eff.Cash},
		{"happy_people", dd.Effects.HappyPeople, &eff.HappyPeople},
		{"reputation", dd.Effects.Reputation, &eff.Reputation},
		{"employees", dd.Effects.Employees, &eff.Employees},
	}
	for _, f := range fields {
		if len(f.src) != 2 {
			return model.DecisionOption{}, fmt.Errorf("%w: decision %q %s range needs [min, max]",
				model.ErrMalformedCatalogEntry, dd.ID, f.name)
		}
		*f.dst = model.Range{Min: decimal.NewFromFloat(f.src[0]), Max: decimal.NewFromFloat(f.src[1])}
	}
	return model.DecisionOption{
		ID:          dd.ID,
		Type:        model.DecisionType(dd.Type),
		Title:       dd.Title,
		Description: dd.Description,
		Cost:        decimal.NewFromFloat(dd.Cost),
		Risk:        model.Risk(dd.Risk),
		Effects:     eff,
		Requirements: model.Requirements{
			Cash:           decimal.NewFromFloat(dd.Requirements.Cash),
			Employees:      dd.Requirements.Employees,
			ResearchPoints: dd.Requirements.ResearchPoints,
			Reputation:     dd.Requirements.Reputation,
		},
	}, nil
}

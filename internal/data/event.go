package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EventOutcome is one branch of a narrative choice.
type EventOutcome struct {
	Text            string             `yaml:"text"`
	Effects         map[string]float64 `yaml:"effects"` // resource -> delta
	FollowUpEventID string             `yaml:"follow_up_event_id"`
}

// EventChoice is one option the player can pick when an event fires.
type EventChoice struct {
	ChoiceID    string        `yaml:"choice_id"`
	Label       string        `yaml:"label"`
	SuccessRate float64       `yaml:"success_rate"`
	Success     EventOutcome  `yaml:"success"`
	Failure     *EventOutcome `yaml:"failure"` // nil = choice cannot fail
}

// EventDef is a narrative event template.
type EventDef struct {
	EventID      string             `yaml:"event_id"`
	Title        string             `yaml:"title"`
	Text         string             `yaml:"text"`
	Weight       float64            `yaml:"weight"`
	Requirements map[string]float64 `yaml:"requirements"` // resource -> minimum
	Choices      []EventChoice      `yaml:"choices"`
}

func (d *EventDef) validate() error {
	if d.EventID == "" {
		return fmt.Errorf("missing event_id")
	}
	if d.Title == "" {
		return fmt.Errorf("missing title")
	}
	// Zero weight is allowed: follow-up-only events are never drawn
	// from the weekly pool.
	if d.Weight < 0 {
		return fmt.Errorf("negative weight")
	}
	for k := range d.Requirements {
		if !IsResourceKey(k) {
			return fmt.Errorf("bad requirement key %q", k)
		}
	}
	if len(d.Choices) == 0 {
		return fmt.Errorf("no choices")
	}
	for _, c := range d.Choices {
		if c.ChoiceID == "" || c.Label == "" {
			return fmt.Errorf("bad choice entry")
		}
		if c.SuccessRate < 0 || c.SuccessRate > 1 {
			return fmt.Errorf("choice %q success_rate out of [0,1]", c.ChoiceID)
		}
		for k := range c.Success.Effects {
			if !IsResourceKey(k) {
				return fmt.Errorf("choice %q bad effect key %q", c.ChoiceID, k)
			}
		}
		if c.Failure != nil {
			for k := range c.Failure.Effects {
				if !IsResourceKey(k) {
					return fmt.Errorf("choice %q bad failure effect key %q", c.ChoiceID, k)
				}
			}
		}
	}
	return nil
}

type eventListFile struct {
	Events []EventDef `yaml:"events"`
}

// EventTable holds narrative event templates indexed by EventID.
type EventTable struct {
	events map[string]*EventDef
	order  []string // load order, for stable iteration
}

// NewEventTable builds a table from in-memory definitions.
func NewEventTable(defs ...EventDef) *EventTable {
	t := &EventTable{events: make(map[string]*EventDef, len(defs))}
	for i := range defs {
		t.events[defs[i].EventID] = &defs[i]
		t.order = append(t.order, defs[i].EventID)
	}
	return t
}

// Get returns a copy of the event, or nil if not found.
func (t *EventTable) Get(eventID string) *EventDef {
	d, ok := t.events[eventID]
	if !ok {
		return nil
	}
	return copyEventDef(d)
}

// All returns copies of every event definition in load order.
func (t *EventTable) All() []EventDef {
	out := make([]EventDef, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *copyEventDef(t.events[id]))
	}
	return out
}

// Count returns the number of loaded events.
func (t *EventTable) Count() int {
	return len(t.events)
}

func copyEventDef(d *EventDef) *EventDef {
	cp := *d
	cp.Requirements = copyFloatMap(d.Requirements)
	cp.Choices = make([]EventChoice, len(d.Choices))
	for i, c := range d.Choices {
		cc := c
		cc.Success.Effects = copyFloatMap(c.Success.Effects)
		if c.Failure != nil {
			f := *c.Failure
			f.Effects = copyFloatMap(c.Failure.Effects)
			cc.Failure = &f
		}
		cp.Choices[i] = cc
	}
	return &cp
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LoadEventTable loads narrative events from a YAML file.
func LoadEventTable(path string, log *zap.Logger) (*EventTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	var f eventListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse events: %w", err)
	}
	t := &EventTable{events: make(map[string]*EventDef, len(f.Events))}
	for i := range f.Events {
		d := &f.Events[i]
		if err := d.validate(); err != nil {
			log.Warn("dropped invalid event entry", zap.String("event_id", d.EventID), zap.Error(err))
			continue
		}
		t.events[d.EventID] = d
		t.order = append(t.order, d.EventID)
	}
	return t, nil
}

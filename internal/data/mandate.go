package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// MandateDef is a royal mandate template: a long-duration optional
// objective selected at the start of a run.
type MandateDef struct {
	MandateID      string             `yaml:"mandate_id"`
	Title          string             `yaml:"title"`
	Text           string             `yaml:"text"`
	DurationWeeks  int                `yaml:"duration_weeks"`
	Requirements   []string           `yaml:"requirements"` // human-readable conditions, first drives the milestone timeline
	Rewards        map[string]float64 `yaml:"rewards"`      // resource -> amount on fulfillment
	Penalties      map[string]float64 `yaml:"penalties"`    // resource -> amount on failure
	PrestigeReward float64            `yaml:"prestige_reward"`
}

func (d *MandateDef) validate() error {
	if d.MandateID == "" {
		return fmt.Errorf("missing mandate_id")
	}
	if d.Title == "" {
		return fmt.Errorf("missing title")
	}
	if d.DurationWeeks <= 0 {
		return fmt.Errorf("non-positive duration_weeks")
	}
	if len(d.Requirements) == 0 {
		return fmt.Errorf("no requirements")
	}
	for k := range d.Rewards {
		if !IsResourceKey(k) {
			return fmt.Errorf("bad reward key %q", k)
		}
	}
	for k := range d.Penalties {
		if !IsResourceKey(k) {
			return fmt.Errorf("bad penalty key %q", k)
		}
	}
	return nil
}

type mandateListFile struct {
	Mandates []MandateDef `yaml:"mandates"`
}

// MandateTable holds mandate templates indexed by MandateID.
type MandateTable struct {
	mandates map[string]*MandateDef
	order    []string
}

// NewMandateTable builds a table from in-memory definitions.
func NewMandateTable(defs ...MandateDef) *MandateTable {
	t := &MandateTable{mandates: make(map[string]*MandateDef, len(defs))}
	for i := range defs {
		t.mandates[defs[i].MandateID] = &defs[i]
		t.order = append(t.order, defs[i].MandateID)
	}
	return t
}

// Get returns a copy of the mandate, or nil if not found.
func (t *MandateTable) Get(mandateID string) *MandateDef {
	d, ok := t.mandates[mandateID]
	if !ok {
		return nil
	}
	return copyMandateDef(d)
}

// All returns copies of every mandate in load order.
func (t *MandateTable) All() []MandateDef {
	out := make([]MandateDef, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *copyMandateDef(t.mandates[id]))
	}
	return out
}

// Count returns the number of loaded mandates.
func (t *MandateTable) Count() int {
	return len(t.mandates)
}

func copyMandateDef(d *MandateDef) *MandateDef {
	cp := *d
	cp.Requirements = append([]string(nil), d.Requirements...)
	cp.Rewards = copyFloatMap(d.Rewards)
	cp.Penalties = copyFloatMap(d.Penalties)
	return &cp
}

// LoadMandateTable loads royal mandates from a YAML file.
func LoadMandateTable(path string, log *zap.Logger) (*MandateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mandates: %w", err)
	}
	var f mandateListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse mandates: %w", err)
	}
	t := &MandateTable{mandates: make(map[string]*MandateDef, len(f.Mandates))}
	for i := range f.Mandates {
		d := &f.Mandates[i]
		if err := d.validate(); err != nil {
			log.Warn("dropped invalid mandate entry", zap.String("mandate_id", d.MandateID), zap.Error(err))
			continue
		}
		t.mandates[d.MandateID] = d
		t.order = append(t.order, d.MandateID)
	}
	return t, nil
}

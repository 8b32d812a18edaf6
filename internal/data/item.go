package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ItemKind distinguishes equipment from stackable materials.
type ItemKind string

const (
	KindEquipment ItemKind = "equipment"
	KindMaterial  ItemKind = "material"
)

// EquipSlot identifies which slot a piece of equipment occupies.
type EquipSlot string

const (
	SlotWeapon  EquipSlot = "weapon"
	SlotArmor   EquipSlot = "armor"
	SlotTrinket EquipSlot = "trinket"
)

// ItemDef is a static item template. Flat struct; fields that don't
// apply to a kind are zero-valued.
type ItemDef struct {
	ItemID      string    `yaml:"item_id"`
	Name        string    `yaml:"name"`
	Kind        ItemKind  `yaml:"kind"`
	Slot        EquipSlot `yaml:"slot"` // equipment only
	Rarity      Rarity    `yaml:"rarity"`
	Value       float64   `yaml:"value"`
	Description string    `yaml:"description"`
}

func (d *ItemDef) validate() error {
	if d.ItemID == "" {
		return fmt.Errorf("missing item_id")
	}
	if d.Name == "" {
		return fmt.Errorf("missing name")
	}
	if d.Kind != KindEquipment && d.Kind != KindMaterial {
		return fmt.Errorf("bad kind %q", d.Kind)
	}
	if d.Kind == KindEquipment {
		switch d.Slot {
		case SlotWeapon, SlotArmor, SlotTrinket:
		default:
			return fmt.Errorf("bad slot %q", d.Slot)
		}
	}
	if RarityIndex(d.Rarity) < 0 {
		return fmt.Errorf("bad rarity %q", d.Rarity)
	}
	if d.Value < 0 {
		return fmt.Errorf("negative value")
	}
	return nil
}

type itemListFile struct {
	Items []ItemDef `yaml:"items"`
}

// ItemTable holds all item templates indexed by ItemID.
type ItemTable struct {
	items map[string]*ItemDef
}

// NewItemTable builds a table from in-memory definitions.
func NewItemTable(defs ...ItemDef) *ItemTable {
	t := &ItemTable{items: make(map[string]*ItemDef, len(defs))}
	for i := range defs {
		t.items[defs[i].ItemID] = &defs[i]
	}
	return t
}

// Get returns a copy of the item, or nil if not found.
func (t *ItemTable) Get(itemID string) *ItemDef {
	d, ok := t.items[itemID]
	if !ok {
		return nil
	}
	cp := *d
	return &cp
}

// Count returns total loaded items.
func (t *ItemTable) Count() int {
	return len(t.items)
}

// All returns copies of every item definition.
func (t *ItemTable) All() []ItemDef {
	out := make([]ItemDef, 0, len(t.items))
	for _, d := range t.items {
		out = append(out, *d)
	}
	return out
}

// LoadItemTable loads item templates from a YAML file. Entries that
// fail validation are dropped with a warning, never an error.
func LoadItemTable(path string, log *zap.Logger) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	t := &ItemTable{items: make(map[string]*ItemDef, len(f.Items))}
	for i := range f.Items {
		d := &f.Items[i]
		if err := d.validate(); err != nil {
			log.Warn("dropped invalid item entry", zap.String("item_id", d.ItemID), zap.Error(err))
			continue
		}
		t.items[d.ItemID] = d
	}
	return t, nil
}

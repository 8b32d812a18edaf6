package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LootEntry is one weighted possible drop from an encounter.
type LootEntry struct {
	ItemID string  `yaml:"item_id"`
	Weight float64 `yaml:"weight"`
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
}

// NodeDef is a map node template; expeditions derive their encounters
// from one of these plus a seed.
type NodeDef struct {
	NodeID      string      `yaml:"node_id"`
	Name        string      `yaml:"name"`
	Biome       string      `yaml:"biome"`
	Threat      string      `yaml:"threat"` // low / moderate / high / deadly
	PowerRating float64     `yaml:"power_rating"`
	EnemyMin    int         `yaml:"enemy_min"`
	EnemyMax    int         `yaml:"enemy_max"`
	IntelChance float64     `yaml:"intel_chance"`
	IntelMin    int         `yaml:"intel_min"` // 0/0 = node yields no dragon intel
	IntelMax    int         `yaml:"intel_max"`
	LootTable   []LootEntry `yaml:"loot_table"`
}

var threatLevels = map[string]bool{
	"low": true, "moderate": true, "high": true, "deadly": true,
}

func (d *NodeDef) validate() error {
	if d.NodeID == "" {
		return fmt.Errorf("missing node_id")
	}
	if d.Name == "" {
		return fmt.Errorf("missing name")
	}
	if !threatLevels[d.Threat] {
		return fmt.Errorf("bad threat %q", d.Threat)
	}
	if d.PowerRating <= 0 {
		return fmt.Errorf("non-positive power_rating")
	}
	if d.EnemyMin <= 0 || d.EnemyMax < d.EnemyMin {
		return fmt.Errorf("bad enemy count range %d..%d", d.EnemyMin, d.EnemyMax)
	}
	if d.IntelChance < 0 || d.IntelChance > 1 {
		return fmt.Errorf("intel_chance out of [0,1]")
	}
	if d.IntelMax < d.IntelMin || d.IntelMin < 0 {
		return fmt.Errorf("bad intel range %d..%d", d.IntelMin, d.IntelMax)
	}
	for _, l := range d.LootTable {
		if l.ItemID == "" || l.Weight <= 0 || l.Min <= 0 || l.Max < l.Min {
			return fmt.Errorf("bad loot entry %q", l.ItemID)
		}
	}
	return nil
}

type nodeListFile struct {
	Nodes []NodeDef `yaml:"nodes"`
}

// NodeTable holds map node templates indexed by NodeID.
type NodeTable struct {
	nodes map[string]*NodeDef
}

// NewNodeTable builds a table from in-memory definitions.
func NewNodeTable(defs ...NodeDef) *NodeTable {
	t := &NodeTable{nodes: make(map[string]*NodeDef, len(defs))}
	for i := range defs {
		t.nodes[defs[i].NodeID] = &defs[i]
	}
	return t
}

// Get returns a copy of the node, or nil if not found.
func (t *NodeTable) Get(nodeID string) *NodeDef {
	d, ok := t.nodes[nodeID]
	if !ok {
		return nil
	}
	cp := *d
	cp.LootTable = append([]LootEntry(nil), d.LootTable...)
	return &cp
}

// Count returns the number of loaded nodes.
func (t *NodeTable) Count() int {
	return len(t.nodes)
}

// LoadNodeTable loads map node templates from a YAML file.
func LoadNodeTable(path string, log *zap.Logger) (*NodeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map nodes: %w", err)
	}
	var f nodeListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse map nodes: %w", err)
	}
	t := &NodeTable{nodes: make(map[string]*NodeDef, len(f.Nodes))}
	for i := range f.Nodes {
		d := &f.Nodes[i]
		if err := d.validate(); err != nil {
			log.Warn("dropped invalid map node entry", zap.String("node_id", d.NodeID), zap.Error(err))
			continue
		}
		t.nodes[d.NodeID] = d
	}
	return t, nil
}

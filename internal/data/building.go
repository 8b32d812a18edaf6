package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// The four castle structures. Building ids in content must be one of
// these.
const (
	BuildingTrainingGround = "TrainingGround"
	BuildingForge          = "Forge"
	BuildingInfirmary      = "Infirmary"
	BuildingWatchtower     = "Watchtower"
)

// BuildingIDs lists the fixed building ids in canonical order.
var BuildingIDs = []string{
	BuildingTrainingGround,
	BuildingForge,
	BuildingInfirmary,
	BuildingWatchtower,
}

// IsBuildingID reports whether s names one of the four structures.
func IsBuildingID(s string) bool {
	for _, id := range BuildingIDs {
		if id == s {
			return true
		}
	}
	return false
}

// BuildingLevelDef describes one upgrade tier of a structure.
type BuildingLevelDef struct {
	Level       int                `yaml:"level"`
	Description string             `yaml:"description"`
	Cost        map[string]float64 `yaml:"cost"` // empty for level 1

	// Weekly passive effects while at this level.
	TrainingPointsPerWeek float64 `yaml:"training_points_per_week"`
	InjuryRecoveryPerWeek float64 `yaml:"injury_recovery_per_week"`
	IntelAccuracyBonus    float64 `yaml:"intel_accuracy_bonus"`
	SmithSkillBonus       int     `yaml:"smith_skill_bonus"`
}

// BuildingDef is a structure template with its ordered tier list.
type BuildingDef struct {
	BuildingID string             `yaml:"building_id"`
	Name       string             `yaml:"name"`
	Levels     []BuildingLevelDef `yaml:"levels"`
}

func (d *BuildingDef) validate() error {
	if !IsBuildingID(d.BuildingID) {
		return fmt.Errorf("unknown building_id %q", d.BuildingID)
	}
	if d.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(d.Levels) == 0 {
		return fmt.Errorf("no levels")
	}
	for i, lv := range d.Levels {
		if lv.Level != i+1 {
			return fmt.Errorf("level %d out of order at index %d", lv.Level, i)
		}
		for k, v := range lv.Cost {
			if !IsResourceKey(k) {
				return fmt.Errorf("level %d bad cost key %q", lv.Level, k)
			}
			if v < 0 {
				return fmt.Errorf("level %d negative cost %q", lv.Level, k)
			}
		}
	}
	return nil
}

type buildingListFile struct {
	Buildings []BuildingDef `yaml:"buildings"`
}

// BuildingTable holds structure templates indexed by BuildingID.
type BuildingTable struct {
	buildings map[string]*BuildingDef
}

// NewBuildingTable builds a table from in-memory definitions.
func NewBuildingTable(defs ...BuildingDef) *BuildingTable {
	t := &BuildingTable{buildings: make(map[string]*BuildingDef, len(defs))}
	for i := range defs {
		t.buildings[defs[i].BuildingID] = &defs[i]
	}
	return t
}

// Get returns a copy of the building definition, or nil if not found.
func (t *BuildingTable) Get(buildingID string) *BuildingDef {
	d, ok := t.buildings[buildingID]
	if !ok {
		return nil
	}
	cp := *d
	cp.Levels = make([]BuildingLevelDef, len(d.Levels))
	for i, lv := range d.Levels {
		lv.Cost = copyFloatMap(lv.Cost)
		cp.Levels[i] = lv
	}
	return &cp
}

// Count returns the number of loaded buildings.
func (t *BuildingTable) Count() int {
	return len(t.buildings)
}

// LoadBuildingTable loads structure tiers from a YAML file.
func LoadBuildingTable(path string, log *zap.Logger) (*BuildingTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read buildings: %w", err)
	}
	var f buildingListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse buildings: %w", err)
	}
	t := &BuildingTable{buildings: make(map[string]*BuildingDef, len(f.Buildings))}
	for i := range f.Buildings {
		d := &f.Buildings[i]
		if err := d.validate(); err != nil {
			log.Warn("dropped invalid building entry", zap.String("building_id", d.BuildingID), zap.Error(err))
			continue
		}
		t.buildings[d.BuildingID] = d
	}
	return t, nil
}

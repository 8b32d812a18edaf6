package save

import (
	"fmt"
	"math"
	"time"

	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/sim"
)

// CurrentVersion is the save schema version this build reads and writes.
const CurrentVersion = 1

// maxEventLog mirrors the simulation's event log cap.
const maxEventLog = 50

// GameState is the whole-state persistence aggregate. Everything the
// simulation needs to resume a reign round-trips through this one
// structure; sub-entities are deep-cloned on every boundary crossing so
// live managers never alias a serialized snapshot.
type GameState struct {
	Version        int                 `json:"version"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	TimeScale      float64             `json:"timeScale"`
	Week           int                 `json:"week"`
	Resources      map[string]float64  `json:"resources"`
	Queue          []sim.QueueEntry    `json:"queue"`
	Inventory      InventoryState      `json:"inventory"`
	Knights        KnightsState        `json:"knights"`
	Buildings      BuildingsState      `json:"buildings"`
	DragonIntel    DragonIntelState    `json:"dragonIntel"`
	EventSeed      int64               `json:"eventSeed"`
	PendingEventID string              `json:"pendingEventId,omitempty"`
	EventLog       []sim.EventLogEntry `json:"eventLog"`
}

type InventoryState struct {
	NextInstanceID int         `json:"nextInstanceId"`
	Items          []ItemState `json:"items"`
}

type ItemState struct {
	InstanceID int          `json:"instanceId"`
	BaseItemID string       `json:"baseItemId"`
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Slot       string       `json:"slot,omitempty"`
	Quantity   int          `json:"quantity"`
	Quality    string       `json:"quality,omitempty"`
	Rarity     string       `json:"rarity"`
	Affixes    []AffixState `json:"affixes,omitempty"`
	Value      float64      `json:"value"`
	EquippedBy int          `json:"equippedBy,omitempty"`
}

type AffixState struct {
	Stat      string  `json:"stat"`
	Prefix    string  `json:"prefix"`
	Magnitude float64 `json:"magnitude"`
}

type KnightsState struct {
	Roster        []KnightState `json:"roster"`
	Candidates    []KnightState `json:"candidates"`
	NextID        int           `json:"nextId"`
	CandidateSeed int64         `json:"candidateSeed"`
}

type KnightState struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Epithet    string  `json:"epithet"`
	Profession string  `json:"profession"`
	Trait      string  `json:"trait"`
	Might      int     `json:"might"`
	Agility    int     `json:"agility"`
	Willpower  int     `json:"willpower"`
	Fatigue    float64 `json:"fatigue"`
	Injury     float64 `json:"injury"`
	WeaponID   int     `json:"weaponId,omitempty"`
	ArmorID    int     `json:"armorId,omitempty"`
	TrinketIDs []int   `json:"trinketIds,omitempty"`
}

type BuildingsState struct {
	Levels               map[string]int `json:"levels"`
	StoredTrainingPoints float64        `json:"storedTrainingPoints"`
}

type DragonIntelState struct {
	Current      int  `json:"current"`
	Threshold    int  `json:"threshold"`
	LairUnlocked bool `json:"lairUnlocked"`
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	cp := *s
	cp.Resources = make(map[string]float64, len(s.Resources))
	for k, v := range s.Resources {
		cp.Resources[k] = v
	}
	cp.Queue = append([]sim.QueueEntry(nil), s.Queue...)
	cp.Inventory.Items = make([]ItemState, len(s.Inventory.Items))
	for i, it := range s.Inventory.Items {
		it.Affixes = append([]AffixState(nil), it.Affixes...)
		cp.Inventory.Items[i] = it
	}
	cp.Knights.Roster = cloneKnights(s.Knights.Roster)
	cp.Knights.Candidates = cloneKnights(s.Knights.Candidates)
	cp.Buildings.Levels = make(map[string]int, len(s.Buildings.Levels))
	for k, v := range s.Buildings.Levels {
		cp.Buildings.Levels[k] = v
	}
	cp.EventLog = append([]sim.EventLogEntry(nil), s.EventLog...)
	for i, e := range cp.EventLog {
		if e.Effects == nil {
			continue
		}
		effects := make(map[string]float64, len(e.Effects))
		for k, v := range e.Effects {
			effects[k] = v
		}
		cp.EventLog[i].Effects = effects
	}
	return &cp
}

func cloneKnights(in []KnightState) []KnightState {
	out := make([]KnightState, len(in))
	for i, k := range in {
		k.TrinketIDs = append([]int(nil), k.TrinketIDs...)
		out[i] = k
	}
	return out
}

// ==================== validation ====================

// Validate performs exhaustive structural checking of the whole graph.
// Any mismatch fails the entire state; there is no partial recovery.
func (s *GameState) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("save: unsupported version %d", s.Version)
	}
	if !validTimeScale(s.TimeScale) {
		return fmt.Errorf("save: invalid time scale %v", s.TimeScale)
	}
	if s.Week < 0 {
		return fmt.Errorf("save: negative week %d", s.Week)
	}
	if err := s.validateResources(); err != nil {
		return err
	}
	if err := s.validateQueue(); err != nil {
		return err
	}
	if err := s.Inventory.validate(); err != nil {
		return err
	}
	if err := s.Knights.validate(); err != nil {
		return err
	}
	if err := s.Buildings.validate(); err != nil {
		return err
	}
	if err := s.DragonIntel.validate(); err != nil {
		return err
	}
	if len(s.EventLog) > maxEventLog {
		return fmt.Errorf("save: event log exceeds cap: %d", len(s.EventLog))
	}
	for i, e := range s.EventLog {
		if e.EventID == "" || e.Week < 0 || e.ResolvedAt.IsZero() {
			return fmt.Errorf("save: malformed event log entry %d", i)
		}
		for key, v := range e.Effects {
			if !data.IsResourceKey(key) {
				return fmt.Errorf("save: event log entry %d has unknown resource %q", i, key)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("save: event log entry %d has non-finite effect %q", i, key)
			}
		}
	}
	return nil
}

func validTimeScale(v float64) bool {
	return v == 0 || v == 1 || v == 2 || v == 4
}

func (s *GameState) validateResources() error {
	if len(s.Resources) == 0 {
		return fmt.Errorf("save: resources missing")
	}
	for key, v := range s.Resources {
		if !data.IsResourceKey(key) {
			return fmt.Errorf("save: unknown resource %q", key)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("save: non-finite resource %q", key)
		}
	}
	return nil
}

func (s *GameState) validateQueue() error {
	for i, e := range s.Queue {
		if e.ID <= 0 || e.RemainingSeconds < 0 {
			return fmt.Errorf("save: malformed queue entry %d", i)
		}
	}
	return nil
}

func (st *InventoryState) validate() error {
	seen := make(map[int]bool, len(st.Items))
	for i, it := range st.Items {
		if it.InstanceID <= 0 || it.InstanceID >= st.NextInstanceID {
			return fmt.Errorf("save: item %d has out-of-range instance id %d", i, it.InstanceID)
		}
		if seen[it.InstanceID] {
			return fmt.Errorf("save: duplicate item instance id %d", it.InstanceID)
		}
		seen[it.InstanceID] = true
		if it.BaseItemID == "" || it.Quantity <= 0 {
			return fmt.Errorf("save: malformed item %d", it.InstanceID)
		}
		switch data.ItemKind(it.Kind) {
		case data.KindEquipment:
			if data.QualityIndex(data.Quality(it.Quality)) < 0 {
				return fmt.Errorf("save: item %d has invalid quality %q", it.InstanceID, it.Quality)
			}
		case data.KindMaterial:
			if it.Quality != "" || len(it.Affixes) > 0 {
				return fmt.Errorf("save: material %d carries equipment fields", it.InstanceID)
			}
		default:
			return fmt.Errorf("save: item %d has invalid kind %q", it.InstanceID, it.Kind)
		}
		if data.RarityIndex(data.Rarity(it.Rarity)) < 0 {
			return fmt.Errorf("save: item %d has invalid rarity %q", it.InstanceID, it.Rarity)
		}
		for _, a := range it.Affixes {
			if !data.IsAffixStat(data.AffixStat(a.Stat)) {
				return fmt.Errorf("save: item %d has invalid affix stat %q", it.InstanceID, a.Stat)
			}
		}
	}
	return nil
}

func (st *KnightsState) validate() error {
	seen := make(map[int]bool)
	for _, group := range [][]KnightState{st.Roster, st.Candidates} {
		for _, k := range group {
			if k.ID <= 0 || k.ID >= st.NextID {
				return fmt.Errorf("save: knight %q has out-of-range id %d", k.Name, k.ID)
			}
			if seen[k.ID] {
				return fmt.Errorf("save: duplicate knight id %d", k.ID)
			}
			seen[k.ID] = true
			if k.Name == "" {
				return fmt.Errorf("save: knight %d has empty name", k.ID)
			}
			if !validProfession(k.Profession) {
				return fmt.Errorf("save: knight %d has invalid profession %q", k.ID, k.Profession)
			}
			if !validTrait(k.Trait) {
				return fmt.Errorf("save: knight %d has invalid trait %q", k.ID, k.Trait)
			}
			for _, attr := range []int{k.Might, k.Agility, k.Willpower} {
				if attr < 1 || attr > 200 {
					return fmt.Errorf("save: knight %d has out-of-range attribute", k.ID)
				}
			}
			if k.Fatigue < 0 || k.Fatigue > 100 || k.Injury < 0 || k.Injury > 100 {
				return fmt.Errorf("save: knight %d has out-of-range condition", k.ID)
			}
			if len(k.TrinketIDs) > sim.MaxTrinkets {
				return fmt.Errorf("save: knight %d exceeds trinket slots", k.ID)
			}
		}
	}
	return nil
}

func validProfession(p string) bool {
	for _, known := range sim.Professions {
		if sim.Profession(p) == known {
			return true
		}
	}
	return false
}

func validTrait(t string) bool {
	for _, known := range sim.Traits {
		if sim.Trait(t) == known {
			return true
		}
	}
	return false
}

func (st *BuildingsState) validate() error {
	for id, level := range st.Levels {
		if !data.IsBuildingID(id) {
			return fmt.Errorf("save: unknown building %q", id)
		}
		if level < 1 {
			return fmt.Errorf("save: building %q has invalid level %d", id, level)
		}
	}
	if st.StoredTrainingPoints < 0 {
		return fmt.Errorf("save: negative stored training points")
	}
	return nil
}

func (st *DragonIntelState) validate() error {
	if st.Current < 0 || st.Current > sim.DragonIntelMax {
		return fmt.Errorf("save: dragon intel out of range: %d", st.Current)
	}
	if st.Threshold <= 0 {
		return fmt.Errorf("save: dragon intel threshold must be positive")
	}
	if st.LairUnlocked && st.Current < st.Threshold {
		return fmt.Errorf("save: lair unlocked below threshold")
	}
	return nil
}

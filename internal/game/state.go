package game

import (
	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
	"github.com/dragonfell/server/internal/save"
	"github.com/dragonfell/server/internal/sim"
)

// CaptureState snapshots every manager into one persistable aggregate.
// All slices and maps are fresh copies; the live state shares nothing
// with the result.
func (g *Game) CaptureState() *save.GameState {
	intel := g.Orchestrator.Intel()
	state := &save.GameState{
		Version:   save.CurrentVersion,
		TimeScale: g.Clock.TimeScale(),
		Week:      g.Clock.Week(),
		Resources: g.Ledger.Snapshot(),
		Queue:     g.Queue.Entries(),
		Inventory: save.InventoryState{
			NextInstanceID: g.Inventory.NextInstanceID(),
		},
		Knights: save.KnightsState{
			NextID:        g.Roster.NextID(),
			CandidateSeed: g.candidateRng.State(),
		},
		Buildings: save.BuildingsState{
			Levels:               g.Castle.Levels(),
			StoredTrainingPoints: g.Castle.StoredTrainingPoints(),
		},
		DragonIntel: save.DragonIntelState{
			Current:      intel.Current,
			Threshold:    intel.Threshold,
			LairUnlocked: intel.LairUnlocked,
		},
		EventSeed:      g.Events.Seed(),
		PendingEventID: g.Events.PendingEventID(),
		EventLog:       g.Events.Log(),
	}
	for _, it := range g.Inventory.Items() {
		state.Inventory.Items = append(state.Inventory.Items, itemToState(it))
	}
	for _, k := range g.Roster.RosterList() {
		state.Knights.Roster = append(state.Knights.Roster, knightToState(k))
	}
	for _, k := range g.Roster.Candidates() {
		state.Knights.Candidates = append(state.Knights.Candidates, knightToState(k))
	}
	return state
}

// RestoreState replaces the whole live state with a validated snapshot.
// The caller is expected to pass states straight out of save.Manager,
// which has already validated the graph.
func (g *Game) RestoreState(state *save.GameState) {
	g.Clock.Restore(state.TimeScale, state.Week)
	g.Ledger.Initialize(state.Resources, sim.DefaultRates())
	g.Queue.Restore(state.Queue)

	items := make([]*sim.InventoryItem, 0, len(state.Inventory.Items))
	for _, it := range state.Inventory.Items {
		items = append(items, stateToItem(it))
	}
	g.Inventory.Restore(items, state.Inventory.NextInstanceID)

	roster := make([]*sim.KnightRecord, 0, len(state.Knights.Roster))
	for _, k := range state.Knights.Roster {
		roster = append(roster, stateToKnight(k))
	}
	candidates := make([]*sim.KnightRecord, 0, len(state.Knights.Candidates))
	for _, k := range state.Knights.Candidates {
		candidates = append(candidates, stateToKnight(k))
	}
	g.Roster.Restore(roster, candidates, state.Knights.NextID)
	g.candidateRng = rng.New(state.Knights.CandidateSeed)

	g.Castle.Restore(state.Buildings.Levels, state.Buildings.StoredTrainingPoints)
	g.Orchestrator.RestoreIntel(sim.DragonIntel{
		Current:      state.DragonIntel.Current,
		Threshold:    state.DragonIntel.Threshold,
		LairUnlocked: state.DragonIntel.LairUnlocked,
	})
	g.Events.Restore(state.EventSeed, state.PendingEventID, state.EventLog)
	g.Forecaster.SetWeek(state.Week)
}

// ==================== conversions ====================

func itemToState(it *sim.InventoryItem) save.ItemState {
	st := save.ItemState{
		InstanceID: it.InstanceID,
		BaseItemID: it.BaseItemID,
		Name:       it.Name,
		Kind:       string(it.Kind),
		Slot:       string(it.Slot),
		Quantity:   it.Quantity,
		Quality:    string(it.Quality),
		Rarity:     string(it.Rarity),
		Value:      it.Value,
		EquippedBy: it.EquippedBy,
	}
	for _, a := range it.Affixes {
		st.Affixes = append(st.Affixes, save.AffixState{
			Stat:      string(a.Stat),
			Prefix:    a.Prefix,
			Magnitude: a.Magnitude,
		})
	}
	return st
}

func stateToItem(st save.ItemState) *sim.InventoryItem {
	it := &sim.InventoryItem{
		InstanceID: st.InstanceID,
		BaseItemID: st.BaseItemID,
		Name:       st.Name,
		Kind:       data.ItemKind(st.Kind),
		Slot:       data.EquipSlot(st.Slot),
		Quantity:   st.Quantity,
		Quality:    data.Quality(st.Quality),
		Rarity:     data.Rarity(st.Rarity),
		Value:      st.Value,
		EquippedBy: st.EquippedBy,
	}
	for _, a := range st.Affixes {
		it.Affixes = append(it.Affixes, sim.Affix{
			Stat:      data.AffixStat(a.Stat),
			Prefix:    a.Prefix,
			Magnitude: a.Magnitude,
		})
	}
	return it
}

func summaryToState(s *sim.RunSummary) *save.RunSummaryState {
	return &save.RunSummaryState{
		Outcome:      string(s.Outcome),
		LegacyPoints: s.LegacyPoints,
		Notes:        append([]string(nil), s.Notes...),
		EndedAt:      s.EndedAt,
		Stats: save.RunStatsState{
			Expeditions: s.Stats.Expeditions,
			Victories:   s.Stats.Victories,
			Defeats:     s.Stats.Defeats,
			Retreats:    s.Stats.Retreats,
			LootItems:   s.Stats.LootItems,
			IntelGained: s.Stats.IntelGained,
		},
	}
}

func stateToSummary(st *save.RunSummaryState) *sim.RunSummary {
	return &sim.RunSummary{
		Outcome:      sim.Outcome(st.Outcome),
		LegacyPoints: st.LegacyPoints,
		Notes:        append([]string(nil), st.Notes...),
		EndedAt:      st.EndedAt,
		Stats: sim.TelemetrySnapshot{
			Expeditions: st.Stats.Expeditions,
			Victories:   st.Stats.Victories,
			Defeats:     st.Stats.Defeats,
			Retreats:    st.Stats.Retreats,
			LootItems:   st.Stats.LootItems,
			IntelGained: st.Stats.IntelGained,
		},
	}
}

func knightToState(k *sim.KnightRecord) save.KnightState {
	return save.KnightState{
		ID:         k.ID,
		Name:       k.Name,
		Epithet:    k.Epithet,
		Profession: string(k.Profession),
		Trait:      string(k.Trait),
		Might:      k.Attributes.Might,
		Agility:    k.Attributes.Agility,
		Willpower:  k.Attributes.Willpower,
		Fatigue:    k.Fatigue,
		Injury:     k.Injury,
		WeaponID:   k.Equipment.WeaponID,
		ArmorID:    k.Equipment.ArmorID,
		TrinketIDs: append([]int(nil), k.Equipment.TrinketIDs...),
	}
}

func stateToKnight(st save.KnightState) *sim.KnightRecord {
	return &sim.KnightRecord{
		ID:         st.ID,
		Name:       st.Name,
		Epithet:    st.Epithet,
		Profession: sim.Profession(st.Profession),
		Trait:      sim.Trait(st.Trait),
		Attributes: sim.Attributes{
			Might:     st.Might,
			Agility:   st.Agility,
			Willpower: st.Willpower,
		},
		Fatigue:   st.Fatigue,
		Injury:    st.Injury,
		Equipment: sim.Equipment{
			WeaponID:   st.WeaponID,
			ArmorID:    st.ArmorID,
			TrinketIDs: append([]int(nil), st.TrinketIDs...),
		},
	}
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
	"github.com/dragonfell/server/internal/scripting"
)

func testOrchestrator(difficulty, lootRate float64, threshold int) (*Orchestrator, *Roster, *Inventory, *Telemetry) {
	nodes := data.NewNodeTable(
		data.NodeDef{
			NodeID: "briar_hollow", Name: "Briar Hollow", Biome: "forest", Threat: "low",
			PowerRating: 5, EnemyMin: 2, EnemyMax: 4,
			IntelChance: 0.9, IntelMin: 2, IntelMax: 5,
			LootTable: []data.LootEntry{
				{ItemID: "iron_ingot", Weight: 5, Min: 1, Max: 2},
				{ItemID: "arming_sword", Weight: 1, Min: 1, Max: 1},
			},
		},
		data.NodeDef{
			NodeID: "cinder_fells", Name: "Cinder Fells", Biome: "volcanic", Threat: "deadly",
			PowerRating: 4000, EnemyMin: 8, EnemyMax: 12,
		},
	)
	items := data.NewItemTable(
		data.ItemDef{ItemID: "iron_ingot", Name: "Iron Ingot", Kind: data.KindMaterial, Rarity: data.RarityCommon, Value: 4},
		data.ItemDef{ItemID: "arming_sword", Name: "Arming Sword", Kind: data.KindEquipment, Slot: data.SlotWeapon, Rarity: data.RarityCommon, Value: 30},
	)

	inv := NewInventory(nil)
	roster := NewRoster(nil, inv)
	roster.Restore(testParty(), nil, 10)
	telemetry := NewTelemetry(nil)
	sim := NewSimulator(scripting.DefaultTuning())

	o := NewOrchestrator(nil, zap.NewNop(), nodes, items, roster, inv, sim, telemetry,
		difficulty, lootRate, threshold)
	return o, roster, inv, telemetry
}

func TestRunUnknownNode(t *testing.T) {
	o, _, _, telemetry := testOrchestrator(1, 1, 100)
	require.Nil(t, o.Run("sunken_keep", []int{1, 2, 3}, rng.New(1)))
	require.Zero(t, telemetry.Snapshot().Expeditions)
}

func TestRunVictoryGrantsLootAndIntel(t *testing.T) {
	o, _, inv, telemetry := testOrchestrator(1, 1, 100)

	sawLoot, sawIntel := false, false
	runs := 0
	for seed := int64(1); seed <= 40; seed++ {
		res := o.Run("briar_hollow", []int{1, 2, 3}, rng.New(seed))
		require.NotNil(t, res)
		runs++
		// 低威脅節點對完整隊伍必勝。
		require.Equal(t, OutcomeVictory, res.Report.Outcome)
		if len(res.Loot) > 0 {
			sawLoot = true
		}
		if res.IntelGained > 0 {
			sawIntel = true
		}
	}
	require.True(t, sawLoot)
	require.True(t, sawIntel)
	require.NotEmpty(t, inv.Items())

	snap := telemetry.Snapshot()
	require.Equal(t, runs, snap.Expeditions)
	require.Equal(t, runs, snap.Victories)
	require.Positive(t, snap.IntelGained)
}

func TestRunDefeatWithholdsLootAndIntel(t *testing.T) {
	o, _, inv, _ := testOrchestrator(1, 1, 100)

	for seed := int64(1); seed <= 40; seed++ {
		res := o.Run("cinder_fells", []int{1, 2, 3}, rng.New(seed))
		require.NotNil(t, res)
		if res.Report.Outcome == OutcomeVictory {
			continue
		}
		require.Empty(t, res.Loot)
		require.Zero(t, res.IntelGained)
		require.False(t, res.LairUnlocked)
	}
	require.Empty(t, inv.Items())
	require.Zero(t, o.Intel().Current)
}

func TestRunAppliesConditionsOnce(t *testing.T) {
	o, roster, _, _ := testOrchestrator(1, 0, 100)

	res := o.Run("briar_hollow", []int{1, 2, 3}, rng.New(5))
	require.NotNil(t, res)

	for _, id := range []int{1, 2, 3} {
		k := roster.Get(id)
		var wantInjury, wantFatigue float64
		for _, inj := range res.Injuries {
			if inj.KnightID == id {
				wantInjury += inj.InjuryDelta
			}
		}
		for _, f := range res.Fatigue {
			if f.KnightID == id {
				wantFatigue += f.FatigueDelta
			}
		}
		require.Equal(t, clampFloat(wantInjury, 0, 100), k.Injury)
		require.Equal(t, clampFloat(wantFatigue, 0, 100), k.Fatigue)
	}
}

func TestGainIntelUnlocksLairOnce(t *testing.T) {
	o, _, _, _ := testOrchestrator(1, 1, 10)

	require.False(t, o.gainIntel(4))
	require.Equal(t, 4, o.Intel().Current)
	require.False(t, o.Intel().LairUnlocked)

	require.True(t, o.gainIntel(6))
	require.True(t, o.Intel().LairUnlocked)

	// 已解鎖後再達標不會重複回報解鎖。
	require.False(t, o.gainIntel(5))
	require.True(t, o.Intel().LairUnlocked)
}

func TestGainIntelClampedAtMax(t *testing.T) {
	o, _, _, _ := testOrchestrator(1, 1, 10)
	o.gainIntel(5000)
	require.Equal(t, DragonIntelMax, o.Intel().Current)
}

func TestRestoreIntel(t *testing.T) {
	o, _, _, _ := testOrchestrator(1, 1, 100)
	o.RestoreIntel(DragonIntel{Current: 120, Threshold: 100, LairUnlocked: true})
	require.Equal(t, 120, o.Intel().Current)
	require.True(t, o.Intel().LairUnlocked)
}

func TestBuildEncounterVolatility(t *testing.T) {
	o, _, _, _ := testOrchestrator(2, 1, 100)
	node := data.NodeDef{
		NodeID: "x", Name: "X", Threat: "low",
		PowerRating: 100, EnemyMin: 3, EnemyMax: 6,
	}
	for seed := int64(1); seed <= 50; seed++ {
		enc := o.BuildEncounter(&node, rng.New(seed))
		// 戰力 = 100 × [0.75,1.25) × 難度 2。
		require.GreaterOrEqual(t, enc.PowerRating, 150.0)
		require.Less(t, enc.PowerRating, 250.0)
		require.GreaterOrEqual(t, enc.EnemyCount, 3)
		require.LessOrEqual(t, enc.EnemyCount, 6)
	}
}

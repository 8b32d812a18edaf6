package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
)

func testBuildingTable() *data.BuildingTable {
	return data.NewBuildingTable(
		data.BuildingDef{
			BuildingID: data.BuildingTrainingGround, Name: "Training Ground",
			Levels: []data.BuildingLevelDef{
				{Level: 1, TrainingPointsPerWeek: 2},
				{Level: 2, Cost: map[string]float64{data.ResourceGold: 150}, TrainingPointsPerWeek: 4},
			},
		},
		data.BuildingDef{
			BuildingID: data.BuildingForge, Name: "Forge",
			Levels: []data.BuildingLevelDef{
				{Level: 1},
				{Level: 2, Cost: map[string]float64{data.ResourceGold: 180}, SmithSkillBonus: 2},
			},
		},
		data.BuildingDef{
			BuildingID: data.BuildingInfirmary, Name: "Infirmary",
			Levels: []data.BuildingLevelDef{
				{Level: 1, InjuryRecoveryPerWeek: 4},
			},
		},
		data.BuildingDef{
			BuildingID: data.BuildingWatchtower, Name: "Watchtower",
			Levels: []data.BuildingLevelDef{
				{Level: 1},
			},
		},
	)
}

func testCastle(gold float64) (*Castle, *Ledger, *Roster) {
	ledger := NewLedger(nil)
	ledger.Initialize(map[string]float64{data.ResourceGold: gold}, map[string]float64{})
	roster := NewRoster(nil, nil)
	return NewCastle(nil, testBuildingTable(), ledger, roster), ledger, roster
}

func TestUpgradeExactlyOneLevel(t *testing.T) {
	c, ledger, _ := testCastle(1000)

	require.True(t, c.Upgrade(data.BuildingTrainingGround))
	require.Equal(t, 2, c.Level(data.BuildingTrainingGround))
	require.Equal(t, 850.0, ledger.Get(data.ResourceGold))

	// 已達頂級：拒絕且不扣資源。
	require.False(t, c.Upgrade(data.BuildingTrainingGround))
	require.Equal(t, 2, c.Level(data.BuildingTrainingGround))
	require.Equal(t, 850.0, ledger.Get(data.ResourceGold))
}

func TestUpgradeUnaffordable(t *testing.T) {
	c, ledger, _ := testCastle(100)

	require.False(t, c.Upgrade(data.BuildingTrainingGround))
	require.Equal(t, 1, c.Level(data.BuildingTrainingGround))
	require.Equal(t, 100.0, ledger.Get(data.ResourceGold))
}

func TestUpgradeUnknownBuilding(t *testing.T) {
	c, _, _ := testCastle(1000)
	require.False(t, c.Upgrade("Barbican"))
}

func TestSmithLevel(t *testing.T) {
	c, _, _ := testCastle(1000)
	require.Equal(t, 1, c.SmithLevel())

	require.True(t, c.Upgrade(data.BuildingForge))
	// 鍛造坊 2 級 + 技術加成 2。
	require.Equal(t, 4, c.SmithLevel())
}

func TestWeeklyTickAccumulatesTrainingPoints(t *testing.T) {
	c, _, _ := testCastle(1000)
	c.WeeklyTick()
	c.WeeklyTick()
	require.Equal(t, 4.0, c.StoredTrainingPoints())

	require.True(t, c.SpendTrainingPoints(3))
	require.Equal(t, 1.0, c.StoredTrainingPoints())
	require.False(t, c.SpendTrainingPoints(2))
}

func TestWeeklyTickHealsInjured(t *testing.T) {
	c, _, roster := testCastle(1000)
	roster.RefillCandidates(rng.New(3))
	k := roster.Recruit(roster.Candidates()[0].ID)
	roster.ApplyConditionAdjustments([]ConditionDelta{{KnightID: k.ID, InjuryDelta: 10}})
	before := roster.Get(k.ID).Injury

	c.WeeklyTick()

	// 醫護所 1 級每週回復 4 點。
	require.Equal(t, clampFloat(before-4, 0, 100), roster.Get(k.ID).Injury)
}

func TestRestoreLevels(t *testing.T) {
	c, _, _ := testCastle(1000)
	c.Restore(map[string]int{data.BuildingForge: 2}, 7.5)
	require.Equal(t, 2, c.Level(data.BuildingForge))
	require.Equal(t, 1, c.Level(data.BuildingInfirmary))
	require.Equal(t, 7.5, c.StoredTrainingPoints())
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
)

func testForecaster(gold, food float64) (*Forecaster, *Ledger, *Roster) {
	ledger := NewLedger(nil)
	ledger.Initialize(map[string]float64{
		data.ResourceGold: gold,
		data.ResourceFood: food,
	}, map[string]float64{})
	roster := NewRoster(nil, nil)
	return NewForecaster(nil, ledger, roster), ledger, roster
}

func TestProjectionEmptyRoster(t *testing.T) {
	f, _, _ := testForecaster(500, 300)
	f.SetWeek(3)

	cur := f.Forecast().Current
	require.Equal(t, 3, cur.Week)
	// 無騎士時淨收支只有基礎項：金 60−20、糧 45−15。
	require.Equal(t, 40.0, cur.Net[data.ResourceGold])
	require.Equal(t, 30.0, cur.Net[data.ResourceFood])
	require.Equal(t, 540.0, cur.Resulting[data.ResourceGold])
	require.Empty(t, cur.Deficits)

	next := f.Forecast().Next
	require.Equal(t, 4, next.Week)
	require.Equal(t, 580.0, next.Resulting[data.ResourceGold])
}

func TestProjectionCountsKnightsAndInjury(t *testing.T) {
	f, _, roster := testForecaster(500, 300)
	roster.RefillCandidates(rng.New(11))
	k1 := roster.Recruit(roster.Candidates()[0].ID)
	k2 := roster.Recruit(roster.Candidates()[0].ID)
	roster.ApplyConditionAdjustments([]ConditionDelta{
		{KnightID: k1.ID, InjuryDelta: 30},
		{KnightID: k2.ID, InjuryDelta: 20},
	})
	f.Recompute()

	cur := f.Forecast().Current
	// 維護費：基礎 20 + 兩騎士各 6 + 治療 50×0.4。
	require.Equal(t, 52.0, cur.Upkeep[data.ResourceGold])
	require.Equal(t, 23.0, cur.Upkeep[data.ResourceFood])
	require.Equal(t, 8.0, cur.Net[data.ResourceGold])
	require.Equal(t, 22.0, cur.Net[data.ResourceFood])
}

func TestProjectionFlagsDeficits(t *testing.T) {
	f, _, roster := testForecaster(5, 300)
	roster.RefillCandidates(rng.New(11))
	for i := 0; i < 4; i++ {
		roster.Recruit(roster.Candidates()[0].ID)
	}
	f.Recompute()

	// 四騎士：金淨收支 60−(20+24) = 16 > 0，無赤字。
	// 再堆傷勢把治療費推過收入線。
	deltas := make([]ConditionDelta, 0, 4)
	for _, k := range roster.RosterList() {
		deltas = append(deltas, ConditionDelta{KnightID: k.ID, InjuryDelta: 100})
	}
	roster.ApplyConditionAdjustments(deltas)
	f.Recompute()

	cur := f.Forecast().Current
	require.Negative(t, cur.Net[data.ResourceGold])
	require.Contains(t, cur.Deficits, data.ResourceGold)
	require.NotContains(t, cur.Deficits, data.ResourceFood)
}

func TestApplyWeekly(t *testing.T) {
	f, ledger, _ := testForecaster(500, 300)
	f.ApplyWeekly()
	require.Equal(t, 540.0, ledger.Get(data.ResourceGold))
	require.Equal(t, 330.0, ledger.Get(data.ResourceFood))
}

func TestRecomputeOnBusEvents(t *testing.T) {
	bus := event.NewBus()
	ledger := NewLedger(bus)
	ledger.Initialize(map[string]float64{
		data.ResourceGold: 100,
		data.ResourceFood: 100,
	}, map[string]float64{})
	roster := NewRoster(bus, nil)
	f := NewForecaster(bus, ledger, roster)
	f.SetWeek(0)

	before := f.Forecast().Current.Resulting[data.ResourceGold]
	ledger.Adjust(data.ResourceGold, 200)
	require.Equal(t, before+200, f.Forecast().Current.Resulting[data.ResourceGold])
}

package sim

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dragonfell/server/internal/data"
)

func testEventTable() *data.EventTable {
	return data.NewEventTable(
		data.EventDef{
			EventID: "grain_blight", Title: "Grain Blight", Text: "Blight spreads.",
			Weight: 5,
			Choices: []data.EventChoice{
				{
					ChoiceID: "burn_fields", Label: "Burn the fields",
					Success: data.EventOutcome{Effects: map[string]float64{data.ResourceFood: -40}},
				},
				{
					ChoiceID: "hire_herbalist", Label: "Hire a herbalist",
					SuccessRate: 0.6,
					Success:     data.EventOutcome{Effects: map[string]float64{data.ResourceGold: -30}},
					Failure:     &data.EventOutcome{Effects: map[string]float64{data.ResourceGold: -30, data.ResourceFood: -60}},
				},
			},
		},
		data.EventDef{
			EventID: "royal_envoy", Title: "Royal Envoy", Text: "An envoy demands tribute.",
			Weight:       3,
			Requirements: map[string]float64{data.ResourceGold: 5000},
			Choices: []data.EventChoice{
				{ChoiceID: "pay", Label: "Pay", Success: data.EventOutcome{Effects: map[string]float64{data.ResourceGold: -500}}},
			},
		},
		data.EventDef{
			EventID: "old_beacon", Title: "The Old Beacon", Text: "A beacon flares.",
			Weight: 4,
			Choices: []data.EventChoice{
				{
					ChoiceID: "investigate", Label: "Investigate",
					Success: data.EventOutcome{FollowUpEventID: "beacon_aftermath"},
				},
			},
		},
		data.EventDef{
			EventID: "beacon_aftermath", Title: "Beacon Aftermath", Text: "Ashes remain.",
			Weight: 0,
			Choices: []data.EventChoice{
				{ChoiceID: "search", Label: "Search the ashes", Success: data.EventOutcome{Effects: map[string]float64{data.ResourceGold: 25}}},
			},
		},
	)
}

var eventNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEvents(gold float64, seed int64) (*Events, *Ledger) {
	ledger := NewLedger(nil)
	ledger.Initialize(map[string]float64{
		data.ResourceGold: gold,
		data.ResourceFood: 200,
	}, map[string]float64{})
	return NewEvents(nil, zap.NewNop(), testEventTable(), ledger, seed), ledger
}

func TestWeeklyTickDrawsEligibleOnly(t *testing.T) {
	// 金幣不足 royal_envoy 的需求；beacon_aftermath 權重為零。
	for seed := int64(1); seed <= 60; seed++ {
		e, _ := testEvents(100, seed)
		e.WeeklyTick(1)
		cur := e.Current()
		require.NotNil(t, cur, "seed %d", seed)
		require.Contains(t, []string{"grain_blight", "old_beacon"}, cur.EventID)
	}
}

func TestWeeklyTickKeepsPendingChoice(t *testing.T) {
	e, _ := testEvents(100, 1)
	e.WeeklyTick(1)
	first := e.Current().EventID
	e.WeeklyTick(2)
	require.Equal(t, first, e.Current().EventID)
}

func TestResolveChoiceNoFailureAlwaysSucceeds(t *testing.T) {
	e, ledger := testEvents(100, 1)
	for e.Current() == nil || e.Current().EventID != "grain_blight" {
		e.Restore(e.Seed()+1, "", nil)
		e.WeeklyTick(1)
	}

	before := ledger.Get(data.ResourceFood)
	require.True(t, e.ResolveChoice("burn_fields", 1, eventNow))
	require.Equal(t, before-40, ledger.Get(data.ResourceFood))
	require.Nil(t, e.Current())

	log := e.Log()
	require.Len(t, log, 1)
	require.Equal(t, EventLogEntry{
		Week:       1,
		EventID:    "grain_blight",
		ChoiceID:   "burn_fields",
		Success:    true,
		Effects:    map[string]float64{data.ResourceFood: -40},
		ResolvedAt: eventNow,
	}, log[0])
}

func TestLogRecordsAppliedEffectsPerBranch(t *testing.T) {
	sawBoth := map[bool]bool{}
	for seed := int64(1); seed <= 80; seed++ {
		e, _ := testEvents(100, seed)
		e.WeeklyTick(1)
		if e.Current() == nil || e.Current().EventID != "grain_blight" {
			continue
		}
		require.True(t, e.ResolveChoice("hire_herbalist", 1, eventNow))
		entry := e.Log()[0]
		require.Equal(t, eventNow, entry.ResolvedAt)
		if entry.Success {
			require.Equal(t, map[string]float64{data.ResourceGold: -30}, entry.Effects)
		} else {
			require.Equal(t, map[string]float64{data.ResourceGold: -30, data.ResourceFood: -60}, entry.Effects)
		}
		sawBoth[entry.Success] = true
	}
	require.True(t, sawBoth[true] && sawBoth[false], "both branches should appear across 80 seeds")
}

func TestLogCopiesDoNotAlias(t *testing.T) {
	e, _ := testEvents(100, 1)
	for e.Current() == nil || e.Current().EventID != "grain_blight" {
		e.Restore(e.Seed()+1, "", nil)
		e.WeeklyTick(1)
	}
	require.True(t, e.ResolveChoice("burn_fields", 1, eventNow))

	tampered := e.Log()
	tampered[0].Effects[data.ResourceFood] = 9999
	require.Equal(t, -40.0, e.Log()[0].Effects[data.ResourceFood])
}

func TestResolveChoiceRollsFailureBranch(t *testing.T) {
	sawFailure := false
	for seed := int64(1); seed <= 80 && !sawFailure; seed++ {
		e, ledger := testEvents(100, seed)
		e.WeeklyTick(1)
		if e.Current() == nil || e.Current().EventID != "grain_blight" {
			continue
		}
		before := ledger.Get(data.ResourceFood)
		require.True(t, e.ResolveChoice("hire_herbalist", 1, eventNow))
		entry := e.Log()[0]
		if entry.Success {
			require.Equal(t, before, ledger.Get(data.ResourceFood))
		} else {
			sawFailure = true
			require.Equal(t, before-60, ledger.Get(data.ResourceFood))
		}
	}
	require.True(t, sawFailure, "herbalist never failed across 80 seeds")
}

func TestResolveChoiceUnknown(t *testing.T) {
	e, _ := testEvents(100, 1)
	require.False(t, e.ResolveChoice("anything", 1, eventNow))

	e.WeeklyTick(1)
	require.False(t, e.ResolveChoice("no_such_choice", 1, eventNow))
	require.NotNil(t, e.Current())
}

func TestFollowUpForcedNextWeek(t *testing.T) {
	var e *Events
	for seed := int64(1); ; seed++ {
		require.Less(t, seed, int64(100))
		cand, _ := testEvents(100, seed)
		cand.WeeklyTick(1)
		if cur := cand.Current(); cur != nil && cur.EventID == "old_beacon" {
			e = cand
			break
		}
	}

	require.True(t, e.ResolveChoice("investigate", 1, eventNow))
	require.Equal(t, "beacon_aftermath", e.PendingEventID())

	e.WeeklyTick(2)
	require.Equal(t, "beacon_aftermath", e.Current().EventID)
	require.Empty(t, e.PendingEventID())
}

func TestLogCapped(t *testing.T) {
	e, _ := testEvents(100, 1)
	for week := 1; week <= eventLogCap+10; week++ {
		e.WeeklyTick(week)
		cur := e.Current()
		require.NotNil(t, cur)
		require.True(t, e.ResolveChoice(cur.Choices[0].ChoiceID, week, eventNow))
	}
	log := e.Log()
	require.Len(t, log, eventLogCap)
	require.Equal(t, 11, log[0].Week)
}

func TestRestoreRoundTrip(t *testing.T) {
	e, _ := testEvents(100, 7)
	e.WeeklyTick(1)
	cur := e.Current()
	require.NotNil(t, cur)
	require.True(t, e.ResolveChoice(cur.Choices[0].ChoiceID, 1, eventNow))

	seed := e.Seed()
	pending := e.PendingEventID()
	log := e.Log()

	fresh, _ := testEvents(100, 1)
	fresh.Restore(seed, pending, log)
	require.Equal(t, seed, fresh.Seed())
	require.Equal(t, pending, fresh.PendingEventID())
	require.Equal(t, log, fresh.Log())
	require.Nil(t, fresh.Current())
}

func TestRestoreTruncatesOversizedLog(t *testing.T) {
	long := make([]EventLogEntry, eventLogCap+20)
	for i := range long {
		long[i] = EventLogEntry{Week: i, EventID: fmt.Sprintf("e%d", i), ChoiceID: "c"}
	}
	e, _ := testEvents(100, 1)
	e.Restore(3, "", long)
	got := e.Log()
	require.Len(t, got, eventLogCap)
	require.Equal(t, 20, got[0].Week)
}

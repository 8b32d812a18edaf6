package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRunManager() (*RunManager, *Telemetry) {
	telemetry := NewTelemetry(nil)
	return NewRunManager(zap.NewNop(), NewMandates(testMandateTable()), telemetry), telemetry
}

func TestStartRunBuildsModifiers(t *testing.T) {
	rm, _ := testRunManager()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	run, err := rm.StartRun(42, []string{"tithe_of_steel", "silent_vigil"}, now)
	require.NoError(t, err)
	require.Equal(t, int64(42), run.Seed)
	require.Equal(t, now, run.StartedAt)
	require.Len(t, run.Modifiers, 2)
	require.Equal(t, "Tithe of Steel", run.Modifiers[0].Title)
	require.Equal(t, 2.0, run.Modifiers[0].PrestigeReward)
	require.Same(t, run, rm.Current())
}

func TestStartRunUnknownMandate(t *testing.T) {
	rm, _ := testRunManager()
	_, err := rm.StartRun(1, []string{"ghost_writ"}, time.Now())
	require.Error(t, err)
	require.Nil(t, rm.Current())
}

func TestStartRunResetsTelemetry(t *testing.T) {
	rm, telemetry := testRunManager()
	telemetry.RecordExpedition(OutcomeVictory, 3, 2)

	_, err := rm.StartRun(1, nil, time.Now())
	require.NoError(t, err)
	require.Zero(t, telemetry.Snapshot().Expeditions)
}

func TestEndRunLegacyPoints(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		mandates []string
		outcome  Outcome
		want     int
	}{
		// 勝利底分 120 + 威望 (2+1)×12 + 張數 2×8。
		{"victory with mandates", []string{"tithe_of_steel", "silent_vigil"}, OutcomeVictory, 172},
		{"defeat with mandates", []string{"tithe_of_steel", "silent_vigil"}, OutcomeDefeat, 97},
		{"bare victory", nil, OutcomeVictory, 120},
		{"bare defeat", nil, OutcomeDefeat, 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rm, _ := testRunManager()
			_, err := rm.StartRun(1, tc.mandates, now)
			require.NoError(t, err)

			summary := rm.EndRun(tc.outcome, now)
			require.NotNil(t, summary)
			require.Equal(t, tc.want, summary.LegacyPoints)
			require.Equal(t, tc.outcome, summary.Outcome)
			require.NotEmpty(t, summary.Notes)
			require.Nil(t, rm.Current())
		})
	}
}

func TestEndRunWithoutRun(t *testing.T) {
	rm, _ := testRunManager()
	require.Nil(t, rm.EndRun(OutcomeVictory, time.Now()))
}

func TestPendingSummaryOverwrittenAndConsumed(t *testing.T) {
	rm, _ := testRunManager()
	now := time.Now()

	_, err := rm.StartRun(1, nil, now)
	require.NoError(t, err)
	first := rm.EndRun(OutcomeDefeat, now)

	_, err = rm.StartRun(2, nil, now)
	require.NoError(t, err)
	second := rm.EndRun(OutcomeVictory, now)

	got := rm.ConsumePendingSummary()
	require.Same(t, second, got)
	require.NotSame(t, first, got)
	require.Nil(t, rm.ConsumePendingSummary())
}

func TestEndRunCapturesTelemetry(t *testing.T) {
	rm, telemetry := testRunManager()
	_, err := rm.StartRun(1, nil, time.Now())
	require.NoError(t, err)

	telemetry.RecordExpedition(OutcomeVictory, 2, 5)
	telemetry.RecordExpedition(OutcomeRetreat, 0, 0)

	summary := rm.EndRun(OutcomeVictory, time.Now())
	require.Equal(t, 2, summary.Stats.Expeditions)
	require.Equal(t, 1, summary.Stats.Victories)
	require.Equal(t, 1, summary.Stats.Retreats)
	require.Equal(t, 5, summary.Stats.IntelGained)
}

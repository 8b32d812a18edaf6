package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "balance")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tuning.lua"), []byte(content), 0o644))
	return root
}

func TestBalanceTuningOverridesDefaults(t *testing.T) {
	root := writeScript(t, `
function balance_tuning()
    return {
        win_ratio = 1.3,
        rout_flee_chance = 0.25,
        rarity_thresholds = {0.2, 0.5, 0.8},
        fatigue_outcome_scale = { defeat = 2.0 },
    }
end
`)
	e, err := NewEngine(root, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	got := e.BalanceTuning()
	require.Equal(t, 1.3, got.WinRatio)
	require.Equal(t, 0.25, got.RoutFleeChance)
	require.Equal(t, []float64{0.2, 0.5, 0.8}, got.RarityThresholds)
	require.Equal(t, 2.0, got.FatigueOutcomeScale["defeat"])

	// Fields the script leaves out keep their defaults.
	def := DefaultTuning()
	require.Equal(t, def.RoutRatio, got.RoutRatio)
	require.Equal(t, def.BaseDamageScale, got.BaseDamageScale)
	require.Equal(t, def.FatigueOutcomeScale["victory"], got.FatigueOutcomeScale["victory"])
}

func TestBalanceTuningMissingScriptDir(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	require.Equal(t, DefaultTuning(), e.BalanceTuning())
}

func TestBalanceTuningBrokenScript(t *testing.T) {
	root := writeScript(t, "this is not lua")
	_, err := NewEngine(root, zap.NewNop())
	require.Error(t, err)
}

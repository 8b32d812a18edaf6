package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
name = "Test Keep"

[sim]
tick_rate = "50ms"
week_seconds = 60.0

[balance]
difficulty_multiplier = 1.5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "Test Keep", cfg.Server.Name)
	require.Equal(t, 50*time.Millisecond, cfg.Sim.TickRate)
	require.Equal(t, 60.0, cfg.Sim.WeekSeconds)
	require.Equal(t, 1.5, cfg.Balance.DifficultyMultiplier)
	require.Positive(t, cfg.Server.StartTime)

	// Sections the file omits keep their defaults.
	require.Equal(t, Defaults().Balance.DragonIntelThreshold, cfg.Balance.DragonIntelThreshold)
	require.Equal(t, Defaults().Logging.Level, cfg.Logging.Level)
	require.False(t, cfg.Database.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nname"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cultivation.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.InDelta(t, 60.0, cfg.Sim.DayLength, 1e-9)
	assert.Equal(t, 10, cfg.Combat.MaxTurns)
	assert.Len(t, cfg.Encounter.Triggers, 4)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[sim]
day_length = 30
speed = 2.5
tick_rate = "100ms"

[combat]
strategy = "technical"
intervention = false

[[encounter.triggers]]
kind = "time"
period = 3

[database]
dsn = "postgres://x@localhost/cultivation"

[logging]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, cfg.Sim.DayLength, 1e-9)
	assert.InDelta(t, 2.5, cfg.Sim.Speed, 1e-9)
	assert.Equal(t, 100*time.Millisecond, cfg.Sim.TickRate)
	assert.Equal(t, "technical", cfg.Combat.Strategy)
	assert.False(t, cfg.Combat.Intervention)
	assert.True(t, cfg.Combat.Auto, "untouched keys keep their default")
	assert.Equal(t, []TriggerConfig{{Kind: "time", Period: 3}}, cfg.Encounter.Triggers)
	assert.Equal(t, "postgres://x@localhost/cultivation", cfg.Database.DSN)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
[sim]
speed = 20

[combat]
strategy = "reckless"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sim.speed")
	assert.Contains(t, err.Error(), "combat.strategy")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "[sim\nday_length = "))
	assert.ErrorContains(t, err, "parse config")
}

func TestPathHonoursEnv(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, "fallback.toml", Path("fallback.toml"))
	t.Setenv(EnvPath, "/etc/cultivation.toml")
	assert.Equal(t, "/etc/cultivation.toml", Path("fallback.toml"))
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := Load("../../config/cultivation.toml")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Encounter.Triggers, cfg.Encounter.Triggers)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Empty(t, cfg.Database.DSN)
}

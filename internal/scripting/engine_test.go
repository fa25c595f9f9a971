package scripting

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBareEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestFallbacksWithoutScripts(t *testing.T) {
	e := newBareEngine(t)

	assert.Equal(t, 100, e.ExpRequired(1))
	assert.Equal(t, 2000, e.ExpRequired(5))
	assert.Equal(t, 6000, e.ExpRequired(6))
	assert.Equal(t, DefaultLevelUpGains, e.LevelUpGains(3))
	assert.Equal(t, 1, e.DailyRecovery(1))
	assert.Equal(t, 4, e.DailyRecovery(9))
}

func TestLuaOverridesCurve(t *testing.T) {
	e := newBareEngine(t)
	require.NoError(t, e.LoadString(`
function exp_required(level) return level * 10 end
function level_up_gains(level) return { health = level, mana = 2 } end
function daily_recovery(con) return con end
`))

	assert.Equal(t, 30, e.ExpRequired(3))
	assert.Equal(t, LevelUpGains{Health: 4, Mana: 2}, e.LevelUpGains(4))
	assert.Equal(t, 7, e.DailyRecovery(7))
}

func TestBrokenScriptFallsBack(t *testing.T) {
	e := newBareEngine(t)
	require.NoError(t, e.LoadString(`
function exp_required(level) error("boom") end
function level_up_gains(level) return 5 end
function daily_recovery(con) return "lots" end
`))

	assert.Equal(t, 250, e.ExpRequired(2))
	assert.Equal(t, DefaultLevelUpGains, e.LevelUpGains(2))
	assert.Equal(t, 3, e.DailyRecovery(6))
}

func TestShippedScriptsMatchFallbacks(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	for level := 1; level <= 8; level++ {
		assert.Equal(t, DefaultExpRequired(level), e.ExpRequired(level), "level %d", level)
	}
	assert.Equal(t, DefaultLevelUpGains, e.LevelUpGains(2))
	for _, con := range []int{0, 1, 5, 12} {
		assert.Equal(t, DefaultDailyRecovery(con), e.DailyRecovery(con), "con %d", con)
	}
}

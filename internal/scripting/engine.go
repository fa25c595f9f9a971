package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for tunable game formulas.
// Single-goroutine access only (game loop). Every bridge has a Go fallback
// so a missing or broken script never stalls the simulation.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
// An empty dir yields an engine that only uses the Go fallbacks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir == "" {
		return e, nil
	}

	// Load core scripts first, then feature scripts
	for _, sub := range []string{"core", "character", "world"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// --- Leveling Bridge ---

// experienceTable holds the hand-tuned early thresholds; later levels need level*1000.
var experienceTable = map[int]int{1: 100, 2: 250, 3: 500, 4: 1000, 5: 2000}

// DefaultExpRequired is the Go leveling curve.
func DefaultExpRequired(level int) int {
	if req, ok := experienceTable[level]; ok {
		return req
	}
	return level * 1000
}

// ExpRequired calls Lua exp_required(level): experience needed to leave level.
func (e *Engine) ExpRequired(level int) int {
	if v, ok := e.callIntFunc("exp_required", level); ok && v > 0 {
		return v
	}
	return DefaultExpRequired(level)
}

// LevelUpGains are the max health/mana increases granted on reaching a level.
type LevelUpGains struct {
	Health int
	Mana   int
}

// DefaultLevelUpGains is +20 max health and +15 max mana per level.
var DefaultLevelUpGains = LevelUpGains{Health: 20, Mana: 15}

// LevelUpGains calls Lua level_up_gains(level), which returns {health=, mana=}.
func (e *Engine) LevelUpGains(level int) LevelUpGains {
	fn := e.vm.GetGlobal("level_up_gains")
	if fn == lua.LNil {
		return DefaultLevelUpGains
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(level)); err != nil {
		e.log.Error("lua call error", zap.String("func", "level_up_gains"), zap.Error(err))
		return DefaultLevelUpGains
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	rt, ok := ret.(*lua.LTable)
	if !ok {
		return DefaultLevelUpGains
	}
	return LevelUpGains{
		Health: lInt(rt, "health"),
		Mana:   lInt(rt, "mana"),
	}
}

// --- Recovery Bridge ---

// DefaultDailyRecovery heals max(1, constitution/2) health per day.
func DefaultDailyRecovery(constitution int) int {
	return max(1, constitution/2)
}

// DailyRecovery calls Lua daily_recovery(constitution).
func (e *Engine) DailyRecovery(constitution int) int {
	if v, ok := e.callIntFunc("daily_recovery", constitution); ok && v >= 0 {
		return v
	}
	return DefaultDailyRecovery(constitution)
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// callIntFunc calls a Lua function with int args and returns an int result.
// ok is false when the function is not defined or raised an error.
func (e *Engine) callIntFunc(name string, args ...int) (int, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Tuning holds the empirically-tuned balance constants the simulation
// treats as data rather than invariants. Loaded once at startup from
// Lua; never mutated afterwards, so battle resolution stays a pure
// function of its inputs.
type Tuning struct {
	// Battle outcome bands.
	WinRatio           float64 // ratio at or above which a fight is an outright win
	RoutRatio          float64 // ratio at or below which the party is overwhelmed
	RoutFleeChance     float64 // chance an overwhelmed party escapes instead of losing
	ContestedWinRoll   float64 // contested-band roll above which the party wins
	ContestedFleeRoll  float64 // contested-band roll below which the party flees
	BaseDamageScale    float64
	// Crafting rarity rolls.
	RarityThresholds []float64 // one upgrade roll per threshold
	RarityFloor      float64   // minimum upgrade chance per roll
	SmithRarityCap   float64   // cap on the smith-level rarity contribution
	// Expedition fatigue.
	FatigueOutcomeScale map[string]float64 // outcome -> fatigue multiplier
}

// DefaultTuning returns the compiled-in constants, used when no script
// overrides them.
func DefaultTuning() Tuning {
	return Tuning{
		WinRatio:          1.1,
		RoutRatio:         0.75,
		RoutFleeChance:    0.15,
		ContestedWinRoll:  0.45,
		ContestedFleeRoll: 0.2,
		BaseDamageScale:   0.8,
		RarityThresholds:  []float64{0.25, 0.60},
		RarityFloor:       0.05,
		SmithRarityCap:    0.35,
		FatigueOutcomeScale: map[string]float64{
			"victory": 1.0,
			"retreat": 1.1,
			"defeat":  1.35,
		},
	}
}

// Engine wraps a single gopher-lua VM for balance tuning scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory is not an error; tuning falls back to
// the compiled-in defaults.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(filepath.Join(scriptsDir, "balance")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load balance scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
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

// BalanceTuning calls the Lua balance_tuning() function and merges its
// table over the defaults. Any field the script omits keeps its default.
func (e *Engine) BalanceTuning() Tuning {
	t := DefaultTuning()

	fn := e.vm.GetGlobal("balance_tuning")
	if fn == lua.LNil {
		e.log.Warn("lua function balance_tuning not found, using defaults")
		return t
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		e.log.Error("lua balance_tuning error", zap.Error(err))
		return t
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua balance_tuning returned non-table")
		return t
	}

	num := func(key string, dst *float64) {
		if v := rt.RawGetString(key); v != lua.LNil {
			*dst = float64(lua.LVAsNumber(v))
		}
	}
	num("win_ratio", &t.WinRatio)
	num("rout_ratio", &t.RoutRatio)
	num("rout_flee_chance", &t.RoutFleeChance)
	num("contested_win_roll", &t.ContestedWinRoll)
	num("contested_flee_roll", &t.ContestedFleeRoll)
	num("base_damage_scale", &t.BaseDamageScale)
	num("rarity_floor", &t.RarityFloor)
	num("smith_rarity_cap", &t.SmithRarityCap)

	if v, ok := rt.RawGetString("rarity_thresholds").(*lua.LTable); ok {
		thresholds := make([]float64, 0, v.Len())
		v.ForEach(func(_, val lua.LValue) {
			thresholds = append(thresholds, float64(lua.LVAsNumber(val)))
		})
		if len(thresholds) > 0 {
			t.RarityThresholds = thresholds
		}
	}
	if v, ok := rt.RawGetString("fatigue_outcome_scale").(*lua.LTable); ok {
		v.ForEach(func(key, val lua.LValue) {
			t.FatigueOutcomeScale[lua.LVAsString(key)] = float64(lua.LVAsNumber(val))
		})
	}

	return t
}

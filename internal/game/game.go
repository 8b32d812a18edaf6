package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dragonfell/server/internal/config"
	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/core/system"
	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
	"github.com/dragonfell/server/internal/save"
	"github.com/dragonfell/server/internal/scripting"
	"github.com/dragonfell/server/internal/sim"
)

// Game wires every simulation manager together and drives them through
// the phased runner. One Game is one live reign; loading a slot replaces
// the whole mutable state in place.
type Game struct {
	Bus      *event.Bus
	Log      *zap.Logger
	Registry *data.Registry
	Tuning   scripting.Tuning

	Ledger       *sim.Ledger
	Inventory    *sim.Inventory
	Roster       *sim.Roster
	Castle       *sim.Castle
	Crafter      *sim.Crafter
	Simulator    *sim.Simulator
	Orchestrator *sim.Orchestrator
	Forecaster   *sim.Forecaster
	Events       *sim.Events
	Mandates     *sim.Mandates
	Runs         *sim.RunManager
	Telemetry    *sim.Telemetry
	Queue        *sim.WorkQueue
	Clock        *sim.Clock

	Saves  *save.Manager
	SlotID string

	runner       *system.Runner
	worldRng     *rng.Source
	candidateRng *rng.Source

	// scaledDt carries the clock's scaled delta from the time phase to
	// the gameplay phase within one tick.
	scaledDt float64

	autosaveEvery int
	tickCount     int
}

// New assembles a game from loaded content tables and tuning. The seed
// feeds the world RNG stream; events and candidate generation get
// derived streams so their draws stay stable regardless of battle count.
func New(cfg *config.Config, log *zap.Logger, registry *data.Registry, tuning scripting.Tuning, store save.Store, seed int64) (*Game, error) {
	items, err := registry.Items()
	if err != nil {
		return nil, err
	}
	recipes, err := registry.Recipes()
	if err != nil {
		return nil, err
	}
	nodes, err := registry.Nodes()
	if err != nil {
		return nil, err
	}
	events, err := registry.Events()
	if err != nil {
		return nil, err
	}
	mandates, err := registry.Mandates()
	if err != nil {
		return nil, err
	}
	buildings, err := registry.Buildings()
	if err != nil {
		return nil, err
	}

	bus := event.NewBus()
	g := &Game{
		Bus:           bus,
		Log:           log,
		Registry:      registry,
		Tuning:        tuning,
		runner:        system.NewRunner(),
		worldRng:      rng.New(seed),
		candidateRng:  rng.New(seed + 7919),
		autosaveEvery: cfg.Sim.AutosaveTicks,
	}

	g.Ledger = sim.NewLedger(bus)
	g.Ledger.Initialize(sim.DefaultResources(), sim.DefaultRates())
	g.Inventory = sim.NewInventory(bus)
	g.Roster = sim.NewRoster(bus, g.Inventory)
	g.Castle = sim.NewCastle(bus, buildings, g.Ledger, g.Roster)
	g.Crafter = sim.NewCrafter(items, recipes, tuning)
	g.Simulator = sim.NewSimulator(tuning)
	g.Telemetry = sim.NewTelemetry(bus)
	g.Orchestrator = sim.NewOrchestrator(bus, log, nodes, items,
		g.Roster, g.Inventory, g.Simulator, g.Telemetry,
		cfg.Balance.DifficultyMultiplier, cfg.Balance.LootRate,
		cfg.Balance.DragonIntelThreshold)
	g.Forecaster = sim.NewForecaster(bus, g.Ledger, g.Roster)
	g.Events = sim.NewEvents(bus, log, events, g.Ledger, seed+104729)
	g.Mandates = sim.NewMandates(mandates)
	g.Runs = sim.NewRunManager(log, g.Mandates, g.Telemetry)
	g.Queue = sim.NewWorkQueue()
	g.Clock = sim.NewClock(cfg.Sim.WeekSeconds, g.onWeek)
	g.Clock.SetTimeScale(cfg.Sim.DefaultTimeScale)
	g.Saves = save.NewManager(store, log)

	g.Roster.RefillCandidates(g.candidateRng)
	g.Forecaster.Recompute()

	g.runner.Register(&timeSystem{g: g})
	g.runner.Register(&gameplaySystem{g: g})
	g.runner.Register(&autosaveSystem{g: g})
	return g, nil
}

// WorldRng exposes the world RNG stream for battles and expeditions.
func (g *Game) WorldRng() *rng.Source { return g.worldRng }

// CandidateRng exposes the recruitment RNG stream.
func (g *Game) CandidateRng() *rng.Source { return g.candidateRng }

// Tick advances the whole simulation by one frame delta.
func (g *Game) Tick(dt time.Duration) {
	g.runner.Tick(dt)
	g.tickCount++
}

// onWeek runs the fixed weekly sequence after the clock crosses a week
// boundary: announce, resolve narrative events, announce economy, apply
// income and building upkeep, then recompute the forecast.
func (g *Game) onWeek(week int) {
	event.Emit(g.Bus, event.WeekAdvanced{Week: week})
	g.Events.WeeklyTick(week)
	event.Emit(g.Bus, event.EconomyReady{Week: week})
	g.Forecaster.ApplyWeekly()
	g.Castle.WeeklyTick()
	g.Roster.RefillCandidates(g.candidateRng)
	g.Forecaster.SetWeek(week)
	g.Log.Info("week advanced", zap.Int("week", week))
}

// ==================== phased systems ====================

type timeSystem struct {
	g *Game
}

func (s *timeSystem) Phase() system.Phase { return system.PhaseTime }

func (s *timeSystem) Update(dt time.Duration) {
	s.g.scaledDt = s.g.Clock.Update(dt)
}

type gameplaySystem struct {
	g *Game
}

func (s *gameplaySystem) Phase() system.Phase { return system.PhaseUpdate }

// Update consumes the scaled delta the time phase produced this tick,
// so both phases always agree on elapsed simulation seconds.
func (s *gameplaySystem) Update(time.Duration) {
	scaled := s.g.scaledDt
	if scaled <= 0 {
		return
	}
	s.g.Ledger.Update(scaled)
	for _, done := range s.g.Queue.Update(scaled) {
		s.g.Log.Info("work completed",
			zap.Int("queue_id", done.ID),
			zap.String("label", done.Label))
	}
}

type autosaveSystem struct {
	g     *Game
	ticks int
}

func (s *autosaveSystem) Phase() system.Phase { return system.PhasePersist }

func (s *autosaveSystem) Update(time.Duration) {
	if s.g.autosaveEvery <= 0 {
		return
	}
	s.ticks++
	if s.ticks < s.g.autosaveEvery {
		return
	}
	s.ticks = 0
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.g.SaveSlot(ctx); err != nil {
		s.g.Log.Error("autosave failed", zap.Error(err))
	}
}

// SaveSlot captures the current state into the game's slot, allocating
// one on first save.
func (g *Game) SaveSlot(ctx context.Context) error {
	id, err := g.Saves.Save(ctx, g.SlotID, g.CaptureState())
	if err != nil {
		return err
	}
	g.SlotID = id
	return nil
}

// EndRun finalizes the reign and writes the legacy record through the
// save manager, so it survives a restart before the menu consumes it.
// Returns nil when no reign is in progress.
func (g *Game) EndRun(ctx context.Context, outcome sim.Outcome, now time.Time) (*sim.RunSummary, error) {
	summary := g.Runs.EndRun(outcome, now)
	if summary == nil {
		return nil, nil
	}
	if err := g.Saves.SaveRunSummary(ctx, summaryToState(summary)); err != nil {
		return nil, err
	}
	return summary, nil
}

// ConsumeRunSummary hands the pending end-of-reign summary to the menu
// exactly once, falling back to the persisted record after a restart.
// Both copies are purged on consumption.
func (g *Game) ConsumeRunSummary(ctx context.Context) (*sim.RunSummary, error) {
	if s := g.Runs.ConsumePendingSummary(); s != nil {
		if err := g.Saves.ClearRunSummary(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	st, err := g.Saves.LoadRunSummary(ctx)
	if err != nil || st == nil {
		return nil, err
	}
	if err := g.Saves.ClearRunSummary(ctx); err != nil {
		return nil, err
	}
	return stateToSummary(st), nil
}

// LoadSlot replaces the live state with the slot's contents. Returns
// false when the slot is missing or was purged as corrupt.
func (g *Game) LoadSlot(ctx context.Context, id string) (bool, error) {
	state, err := g.Saves.Load(ctx, id)
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}
	g.RestoreState(state)
	g.SlotID = id
	return true, nil
}

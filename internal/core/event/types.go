package event

// Simulation event payloads. Each is a plain value type so handlers can
// hold on to them without aliasing live manager state.

// ResourcesChanged carries a full snapshot of the four castle resources.
type ResourcesChanged struct {
	Resources map[string]float64
}

// KnightRosterChanged fires after any roster or candidate pool mutation.
type KnightRosterChanged struct {
	RosterCount    int
	CandidateCount int
}

// InventoryChanged fires after any inventory mutation.
type InventoryChanged struct {
	StackCount int
}

// BuildingsUpdated carries per-building levels plus the shared training
// point store. Emitted after initialization and every mutation.
type BuildingsUpdated struct {
	Levels               map[string]int
	StoredTrainingPoints float64
}

// WeekAdvanced fires once per elapsed game week, before narrative event
// resolution.
type WeekAdvanced struct {
	Week int
}

// EconomyReady fires after narrative resolution each week, immediately
// before the weekly income/upkeep is applied to the ledger.
type EconomyReady struct {
	Week int
}

// EconomyForecastUpdated fires whenever the two-week projection is
// recomputed.
type EconomyForecastUpdated struct {
	DeficitResources []string
}

// NarrativeEventPresented fires when the weekly narrative event is drawn.
type NarrativeEventPresented struct {
	EventID string
	Week    int
}

// NarrativeEventResolved fires after the player's choice is resolved.
type NarrativeEventResolved struct {
	EventID  string
	ChoiceID string
	Success  bool
}

// DragonIntelChanged fires when expedition intel accumulates.
type DragonIntelChanged struct {
	Current      int
	Threshold    int
	LairUnlocked bool
}

// TelemetryUpdated carries lifetime expedition counters.
type TelemetryUpdated struct {
	Expeditions int
	Victories   int
	Defeats     int
	Retreats    int
	LootItems   int
	IntelGained int
}

// BalanceConfigUpdated fires when live balance tuning values change.
type BalanceConfigUpdated struct {
	DifficultyMultiplier float64
	LootRate             float64
}

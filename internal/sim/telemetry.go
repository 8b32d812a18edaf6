package sim

import "github.com/dragonfell/server/internal/core/event"

// Telemetry 累計本局遠征統計，僅供展示層與局末結算顯示，
// 不回饋任何模擬邏輯。
type Telemetry struct {
	bus *event.Bus

	expeditions int
	victories   int
	defeats     int
	retreats    int
	lootItems   int
	intelGained int
}

func NewTelemetry(bus *event.Bus) *Telemetry {
	return &Telemetry{bus: bus}
}

// RecordExpedition 記入一次遠征結果。
func (t *Telemetry) RecordExpedition(outcome Outcome, lootItems, intelGained int) {
	t.expeditions++
	switch outcome {
	case OutcomeVictory:
		t.victories++
	case OutcomeDefeat:
		t.defeats++
	case OutcomeRetreat:
		t.retreats++
	}
	t.lootItems += lootItems
	t.intelGained += intelGained
	t.emit()
}

// TelemetrySnapshot 是統計的唯讀快照。
type TelemetrySnapshot struct {
	Expeditions int
	Victories   int
	Defeats     int
	Retreats    int
	LootItems   int
	IntelGained int
}

func (t *Telemetry) Snapshot() TelemetrySnapshot {
	return TelemetrySnapshot{
		Expeditions: t.expeditions,
		Victories:   t.victories,
		Defeats:     t.defeats,
		Retreats:    t.retreats,
		LootItems:   t.lootItems,
		IntelGained: t.intelGained,
	}
}

// Reset 在新的一局開始時清零。
func (t *Telemetry) Reset() {
	*t = Telemetry{bus: t.bus}
	t.emit()
}

func (t *Telemetry) emit() {
	if t.bus != nil {
		event.Emit(t.bus, event.TelemetryUpdated{
			Expeditions: t.expeditions,
			Victories:   t.victories,
			Defeats:     t.defeats,
			Retreats:    t.retreats,
			LootItems:   t.lootItems,
			IntelGained: t.intelGained,
		})
	}
}

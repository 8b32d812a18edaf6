package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseTime    Phase = iota // 0: scaled delta accumulation, weekly edge detection
	PhaseUpdate               // 1: gameplay managers (resources, buildings, economy)
	PhasePost                 // 2: derived state (forecast recompute, telemetry)
	PhasePersist              // 3: periodic autosave
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

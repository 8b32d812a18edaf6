package save

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dragonfell/server/internal/sim"
)

// runSummarySlotID is a reserved store key for the end-of-reign summary.
// It never appears in the slot index.
const runSummarySlotID = "pending-run-summary"

// RunSummaryState is the persisted end-of-reign legacy record. Exactly
// one survives at a time; writing a new one overwrites any previous, and
// consuming it removes it from the store.
type RunSummaryState struct {
	Outcome      string        `json:"outcome"`
	LegacyPoints int           `json:"legacyPoints"`
	Notes        []string      `json:"notes"`
	EndedAt      time.Time     `json:"endedAt"`
	Stats        RunStatsState `json:"stats"`
}

type RunStatsState struct {
	Expeditions int `json:"expeditions"`
	Victories   int `json:"victories"`
	Defeats     int `json:"defeats"`
	Retreats    int `json:"retreats"`
	LootItems   int `json:"lootItems"`
	IntelGained int `json:"intelGained"`
}

func (s *RunSummaryState) Validate() error {
	switch sim.Outcome(s.Outcome) {
	case sim.OutcomeVictory, sim.OutcomeDefeat, sim.OutcomeRetreat:
	default:
		return fmt.Errorf("save: run summary has invalid outcome %q", s.Outcome)
	}
	if s.LegacyPoints < 0 {
		return fmt.Errorf("save: run summary has negative legacy points")
	}
	if s.EndedAt.IsZero() {
		return fmt.Errorf("save: run summary missing end time")
	}
	return nil
}

// SaveRunSummary persists the pending summary, overwriting any previous
// one.
func (m *Manager) SaveRunSummary(ctx context.Context, summary *RunSummaryState) error {
	if summary == nil {
		return fmt.Errorf("save: nil run summary")
	}
	if err := summary.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("save: marshal run summary: %w", err)
	}
	if err := m.store.Put(ctx, runSummarySlotID, payload, summary.EndedAt.UTC()); err != nil {
		return fmt.Errorf("save: store run summary: %w", err)
	}
	m.log.Info("run summary persisted",
		zap.String("outcome", summary.Outcome),
		zap.Int("legacy_points", summary.LegacyPoints))
	return nil
}

// LoadRunSummary reads the pending summary without consuming it. A
// missing record returns (nil, nil); a corrupt one is purged and also
// returns (nil, nil).
func (m *Manager) LoadRunSummary(ctx context.Context) (*RunSummaryState, error) {
	payload, err := m.store.Get(ctx, runSummarySlotID)
	if err != nil {
		return nil, fmt.Errorf("save: read run summary: %w", err)
	}
	if payload == nil {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var summary RunSummaryState
	decodeErr := dec.Decode(&summary)
	if decodeErr == nil {
		decodeErr = summary.Validate()
	}
	if decodeErr != nil {
		m.log.Warn("purging corrupt run summary", zap.Error(decodeErr))
		if delErr := m.store.Delete(ctx, runSummarySlotID); delErr != nil {
			m.log.Error("failed to purge run summary", zap.Error(delErr))
		}
		return nil, nil
	}
	return &summary, nil
}

// ClearRunSummary removes the pending summary after the menu consumed it.
func (m *Manager) ClearRunSummary(ctx context.Context) error {
	return m.store.Delete(ctx, runSummarySlotID)
}

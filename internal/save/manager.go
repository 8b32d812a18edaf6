package save

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the save-slot lifecycle on top of a Store. Corrupt slots
// are purged on sight: a payload that fails strict decoding or
// validation is deleted and reported as absent, never partially loaded.
type Manager struct {
	store Store
	log   *zap.Logger
}

func NewManager(store Store, log *zap.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// Save persists a snapshot into the slot. An empty id allocates a fresh
// uuid slot. The snapshot is validated and deep-cloned before it leaves
// the caller, so later mutations of the live state cannot leak in.
func (m *Manager) Save(ctx context.Context, id string, state *GameState) (string, error) {
	if state == nil {
		return "", fmt.Errorf("save: nil state")
	}
	cp := state.Clone()
	cp.Version = CurrentVersion
	cp.UpdatedAt = time.Now().UTC()
	if err := cp.Validate(); err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := json.Marshal(cp)
	if err != nil {
		return "", fmt.Errorf("save: marshal slot %s: %w", id, err)
	}
	if err := m.store.Put(ctx, id, payload, cp.UpdatedAt); err != nil {
		return "", fmt.Errorf("save: store slot %s: %w", id, err)
	}
	m.log.Info("slot saved", zap.String("slot_id", id))
	return id, nil
}

// Load reads a slot. A missing slot returns (nil, nil); a corrupt slot
// is purged from the store and also returns (nil, nil).
func (m *Manager) Load(ctx context.Context, id string) (*GameState, error) {
	payload, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("save: read slot %s: %w", id, err)
	}
	if payload == nil {
		return nil, nil
	}

	state, err := decodeStrict(payload)
	if err == nil {
		err = state.Validate()
	}
	if err != nil {
		m.log.Warn("purging corrupt save slot",
			zap.String("slot_id", id),
			zap.Error(err))
		if delErr := m.store.Delete(ctx, id); delErr != nil {
			m.log.Error("failed to purge corrupt slot",
				zap.String("slot_id", id),
				zap.Error(delErr))
		}
		return nil, nil
	}
	return state, nil
}

// Delete removes a slot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// ListSlots returns the slot index ordered by recency. The index is
// self-healing: entries whose payload has vanished or no longer decodes
// are pruned from the store during the listing.
func (m *Manager) ListSlots(ctx context.Context) ([]SlotMeta, error) {
	metas, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("save: list slots: %w", err)
	}
	healthy := metas[:0]
	for _, meta := range metas {
		// Reserved key for the end-of-reign summary, not a slot.
		if meta.ID == runSummarySlotID {
			continue
		}
		payload, err := m.store.Get(ctx, meta.ID)
		if err != nil {
			return nil, fmt.Errorf("save: read slot %s: %w", meta.ID, err)
		}
		if payload == nil {
			continue
		}
		state, err := decodeStrict(payload)
		if err == nil {
			err = state.Validate()
		}
		if err != nil {
			m.log.Warn("pruning invalid slot from index",
				zap.String("slot_id", meta.ID),
				zap.Error(err))
			if delErr := m.store.Delete(ctx, meta.ID); delErr != nil {
				m.log.Error("failed to prune slot",
					zap.String("slot_id", meta.ID),
					zap.Error(delErr))
			}
			continue
		}
		healthy = append(healthy, meta)
	}
	return healthy, nil
}

// decodeStrict rejects unknown fields so a schema drift fails loudly
// instead of importing half a save.
func decodeStrict(payload []byte) (*GameState, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var state GameState
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("save: decode: %w", err)
	}
	return &state, nil
}

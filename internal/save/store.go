package save

import (
	"context"
	"sort"
	"time"
)

// SlotMeta is one slot index entry.
type SlotMeta struct {
	ID        string
	UpdatedAt time.Time
}

// Store is the raw slot storage the save manager sits on. Implementations
// hold opaque payloads keyed by slot id; Get returns nil for a missing
// slot rather than an error.
type Store interface {
	Put(ctx context.Context, id string, payload []byte, updatedAt time.Time) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]SlotMeta, error)
}

// MemoryStore is an in-process Store used for tests and headless runs
// without a database.
type MemoryStore struct {
	slots map[string]memorySlot
}

type memorySlot struct {
	payload   []byte
	updatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]memorySlot)}
}

func (m *MemoryStore) Put(_ context.Context, id string, payload []byte, updatedAt time.Time) error {
	m.slots[id] = memorySlot{
		payload:   append([]byte(nil), payload...),
		updatedAt: updatedAt,
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	s, ok := m.slots[id]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), s.payload...), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]SlotMeta, error) {
	out := make([]SlotMeta, 0, len(m.slots))
	for id, s := range m.slots {
		out = append(out, SlotMeta{ID: id, UpdatedAt: s.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

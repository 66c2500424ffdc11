package confirmations

import (
	"context"
	"sort"
	"sync"
	"time"

	"deliveryboard/pkg/contracts/domain"
)

// MemoryStore is a process-local Store, used in tests and when no database
// path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.ConfirmationEntry
	closed  bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]domain.ConfirmationEntry)}
}

func (m *MemoryStore) LoadAll(_ context.Context) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	out := make(map[string]bool, len(m.entries))
	for id, e := range m.entries {
		out[id] = e.Arrived
	}
	return out, nil
}

func (m *MemoryStore) Upsert(_ context.Context, entry domain.ConfirmationEntry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries[entry.RecordID] = entry
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]domain.ConfirmationEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	out := make([]domain.ConfirmationEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].RecordID < out[j].RecordID
	})
	return out, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

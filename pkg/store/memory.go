package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps snapshots in a map.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]Snapshot)}
}

func (m *MemoryStore) Save(_ context.Context, s *Snapshot) error {
	if err := checkID(s.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[s.ID] = *s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	s, ok := m.snapshots[id]
	m.mu.RUnlock()
	if !ok || s.IsExpired() {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]*Snapshot, error) {
	m.mu.RLock()
	out := make([]*Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		if !s.IsExpired() {
			out = append(out, &s)
		}
	}
	m.mu.RUnlock()
	return newestFirst(out, limit), nil
}

func (m *MemoryStore) Cleanup(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.snapshots {
		if s.IsExpired() {
			delete(m.snapshots, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Close() error { return nil }

// newestFirst sorts by creation time, newest first with ids breaking ties,
// and truncates to limit.
func newestFirst(s []*Snapshot, limit int) []*Snapshot {
	slices.SortFunc(s, func(a, b *Snapshot) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(s) > limit {
		s = s[:limit]
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

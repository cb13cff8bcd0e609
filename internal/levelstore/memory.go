package levelstore

import (
	"sync"

	"sentinel/internal/grid"
)

// MemoryStore keeps snapshots in a map. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[Key]grid.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[Key]grid.Snapshot)}
}

func (m *MemoryStore) Load(key Key) (grid.Snapshot, bool, error) {
	m.mu.RLock()
	snap, ok := m.snapshots[key]
	m.mu.RUnlock()
	if !ok {
		return grid.Snapshot{}, false, nil
	}
	return cloneSnapshot(snap), true, nil
}

func (m *MemoryStore) Save(key Key, snap grid.Snapshot) error {
	m.mu.Lock()
	m.snapshots[key] = cloneSnapshot(snap)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key Key) error {
	m.mu.Lock()
	delete(m.snapshots, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ForEach(fn func(key Key, snap grid.Snapshot) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for key, snap := range m.snapshots {
		if !fn(key, cloneSnapshot(snap)) {
			break
		}
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

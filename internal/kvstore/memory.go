package kvstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultMaxKeys bounds the memory store to prevent unbounded growth
const DefaultMaxKeys = 1000

// memoryEntry holds a value with LRU tracking
type memoryEntry struct {
	value      []byte
	accessedAt time.Time
}

// MemoryStore is an in-process Store with least-recently-used eviction.
// Its contents do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	maxKeys int
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore holding at most maxKeys keys
func NewMemoryStore(maxKeys int) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		maxKeys: maxKeys,
		now:     time.Now,
	}
}

// Get returns a copy of the value stored under key
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	e.accessedAt = m.now()
	return append([]byte(nil), e.value...), true, nil
}

// Put stores a copy of value, evicting the least recently used keys when full
func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &memoryEntry{
		value:      append([]byte(nil), value...),
		accessedAt: m.now(),
	}
	if len(m.entries) > m.maxKeys {
		m.evictLRU(len(m.entries) - m.maxKeys)
	}
	return nil
}

// Delete removes key
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}

// evictLRU removes the count least recently used entries. Caller holds m.mu.
func (m *MemoryStore) evictLRU(count int) {
	type entryInfo struct {
		key        string
		accessedAt time.Time
	}
	infos := make([]entryInfo, 0, len(m.entries))
	for k, e := range m.entries {
		infos = append(infos, entryInfo{key: k, accessedAt: e.accessedAt})
	}

	// Oldest first
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].accessedAt.Before(infos[j].accessedAt)
	})

	for i := 0; i < count && i < len(infos); i++ {
		delete(m.entries, infos[i].key)
	}
}

package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryStore keeps entries in a map until they expire
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]*memoryEntry
	now  func() time.Time
}

// NewMemory creates an in-process cache
func NewMemory(ttl time.Duration) *Cache {
	return newCache("memory", newMemoryStore(), ttl)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data: make(map[string]*memoryEntry),
		now:  time.Now,
	}
}

func (m *memoryStore) put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = &memoryEntry{data: value, expiresAt: expiry(m.now(), ttl)}
	return nil
}

func (m *memoryStore) get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.data[key]
	if !exists || isExpired(entry.expiresAt, m.now()) {
		return nil, ErrNotFound
	}
	return entry.data, nil
}

func (m *memoryStore) deleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	now := m.now()
	for key, entry := range m.data {
		if isExpired(entry.expiresAt, now) {
			delete(m.data, key)
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) close() error {
	m.mu.Lock()
	m.data = make(map[string]*memoryEntry)
	m.mu.Unlock()
	return nil
}

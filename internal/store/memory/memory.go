// Package memory is an ephemeral store.Provider. Data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"docstore/internal/store"
)

// Store keeps encoded records per collection. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func New() *Store {
	return &Store{collections: make(map[string]map[string][]byte)}
}

func (m *Store) GetByKey(_ context.Context, key string) (store.Record, error) {
	collection, id, err := store.ParseKey(key)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	b, ok := m.collections[collection][id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrKeyNotFound, key)
	}
	return store.Decode(b)
}

func (m *Store) Exists(_ context.Context, collection, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[collection][id]
	return ok, nil
}

func (m *Store) Keys(_ context.Context, collection string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.collections[collection]))
	for id := range m.collections[collection] {
		keys = append(keys, store.ToKey(collection, id))
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Store) Upsert(_ context.Context, collection string, data store.Record) (store.Record, error) {
	b, err := store.Encode(data)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		m.collections[collection] = make(map[string][]byte)
	}
	m.collections[collection][data.ID()] = b
	return data, nil
}

func (m *Store) DeleteObject(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

package session

import (
	"context"
	"sync"
)

// DefaultMaxStores caps the per-device store map. Device IDs arrive in a
// client-supplied header, so the map must not grow without bound.
const DefaultMaxStores = 10000

// Factory builds a Store for one device namespace.
type Factory func(deviceID string) *Store

// Manager hands out one Store per device, restoring each store exactly once
// when it is first requested. It exists so the HTTP layer can serve many
// devices while each device keeps the single-store lifecycle.
//
// When the cap is reached an arbitrary store is evicted. That is safe: all
// durable session state lives in the storage backend, so an evicted device
// simply restores again on its next request.
type Manager struct {
	mu        sync.Mutex
	stores    map[string]*Store
	factory   Factory
	maxStores int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMaxStores overrides the store-map cap.
func WithMaxStores(n int) ManagerOption {
	return func(m *Manager) { m.maxStores = n }
}

// NewManager creates a manager around a store factory.
func NewManager(factory Factory, opts ...ManagerOption) *Manager {
	m := &Manager{
		stores:    make(map[string]*Store),
		factory:   factory,
		maxStores: DefaultMaxStores,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the store for deviceID, creating and restoring it on first
// use.
func (m *Manager) Get(ctx context.Context, deviceID string) *Store {
	m.mu.Lock()
	st, ok := m.stores[deviceID]
	if !ok {
		for id := range m.stores {
			if len(m.stores) < m.maxStores {
				break
			}
			delete(m.stores, id)
		}
		st = m.factory(deviceID)
		m.stores[deviceID] = st
	}
	m.mu.Unlock()

	st.Restore(ctx)
	return st
}

// Len reports the number of live stores.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

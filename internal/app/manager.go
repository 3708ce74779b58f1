package app

import (
	"context"
	"sync"

	"remy/internal/ai"
	"remy/internal/cache"
)

// Manager hands out one Store per profile, loading lazily on first touch.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	cache  cache.Cache
	client ai.Client
}

func NewManager(c cache.Cache, client ai.Client) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		cache:  c,
		client: client,
	}
}

func (m *Manager) For(ctx context.Context, profile string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[profile]; ok {
		return s
	}
	s := NewStore(ctx, m.cache, m.client, profile)
	m.stores[profile] = s
	return s
}

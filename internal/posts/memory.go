package posts

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is a simple in-memory repository used for unit tests and
// local development without MongoDB.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Post)}
}

func (m *MemoryRepository) Create(ctx context.Context, p *Post) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = "post_" + time.Now().Format("20060102T150405.000000000")
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.store[p.ID] = p
	return p.ID, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) List(ctx context.Context) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Post, 0, len(m.store))
	for _, p := range m.store {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

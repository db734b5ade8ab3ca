package twofactor

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository used for unit tests.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*Config
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*Config)}
}

// Seed inserts or replaces a user's config (test setup helper).
func (r *MemoryRepository) Seed(sub string, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cfg
	r.users[sub] = &c
}

func (r *MemoryRepository) Get(ctx context.Context, sub string) (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.users[sub]
	if !ok {
		return nil, ErrNotFound
	}
	out := Config{Enabled: c.Enabled, Methods: append([]string{}, c.Methods...)}
	return &out, nil
}

func (r *MemoryRepository) Disable(ctx context.Context, sub string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.users[sub]
	if !ok {
		return ErrNotFound
	}
	c.Enabled = false
	c.Methods = []string{}
	return nil
}

func (r *MemoryRepository) Enable(ctx context.Context, sub, method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.users[sub]
	if !ok {
		return ErrNotFound
	}
	c.Enabled = true
	for _, m := range c.Methods {
		if m == method {
			return nil
		}
	}
	c.Methods = append(c.Methods, method)
	return nil
}

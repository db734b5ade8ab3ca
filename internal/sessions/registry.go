package sessions

import (
	"context"
	"sync"
)

// Registry tracks the live session ids owned by each user. A session id maps
// to exactly one user; List for an unknown user returns an empty slice.
// Implementations must be safe for concurrent use across requests.
type Registry interface {
	Register(ctx context.Context, userID, sessionID string) error
	List(ctx context.Context, userID string) ([]string, error)
	Remove(ctx context.Context, userID, sessionID string) error
	RemoveAll(ctx context.Context, userID string) error
}

// MemoryRegistry is a process-local Registry guarded by a RWMutex. Suitable
// for single-instance deployments and unit tests; use RedisRegistry when the
// service runs with more than one replica.
type MemoryRegistry struct {
	mu    sync.RWMutex
	byUser map[string]map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{byUser: make(map[string]map[string]struct{})}
}

func (r *MemoryRegistry) Register(ctx context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byUser[userID] = set
	}
	set[sessionID] = struct{}{}
	return nil
}

func (r *MemoryRegistry) List(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byUser[userID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}

func (r *MemoryRegistry) Remove(ctx context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.byUser[userID]; ok {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(r.byUser, userID)
		}
	}
	return nil
}

func (r *MemoryRegistry) RemoveAll(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

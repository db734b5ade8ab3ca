package trending

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps usage records in memory and computes the ranking as
// a pure function over them. Used by unit tests and the standalone trending
// service when no MongoDB is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []UsageRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Record(ctx context.Context, postID string, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, n := range names {
		r.records = append(r.records, UsageRecord{Name: n, PostID: postID, CreatedAt: now})
	}
	return nil
}

func (r *MemoryRepository) Top(ctx context.Context, limit int) ([]Tag, error) {
	r.mu.RLock()
	counts := make(map[string]int64, len(r.records))
	for _, rec := range r.records {
		counts[rec.Name]++
	}
	r.mu.RUnlock()

	out := make([]Tag, 0, len(counts))
	for name, n := range counts {
		out = append(out, Tag{Name: name, PostsCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostsCount != out[j].PostsCount {
			return out[i].PostsCount > out[j].PostsCount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

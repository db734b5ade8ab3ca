package trending

import (
	"context"
	"errors"

	"github.com/flocknet/flocknet/backend/go-services/pkg/metrics"
)

// ErrInvalidLimit is returned for a non-positive limit, before any storage access.
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// DefaultLimit is used when a caller does not specify a limit.
const DefaultLimit = 10

// Service computes the trending hashtag ranking. Each call is a full
// recomputation over the current corpus; no state is kept between calls, so
// concurrent calls never block each other.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Top returns the limit most-used hashtags. An empty corpus yields an empty
// slice, not an error. Reads are all-or-nothing: any storage failure
// propagates and no partial ranking is returned.
func (s *Service) Top(ctx context.Context, limit int) ([]Tag, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	tags, err := s.repo.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []Tag{}
	}
	metrics.TrendingComputations.Inc()
	return tags, nil
}

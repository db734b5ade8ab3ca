package twofactor

import (
	"context"

	"github.com/flocknet/flocknet/backend/go-services/pkg/metrics"
)

// Service wraps repository operations with validation. Callers are expected
// to be authenticated as the user they act on; that contract is enforced by
// the auth middleware before requests reach this package.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Status returns the user's current two-factor configuration.
func (s *Service) Status(ctx context.Context, sub string) (*Config, error) {
	return s.repo.Get(ctx, sub)
}

// Disable turns two-factor off and clears all enrolled methods in one
// persisted write. Session state is intentionally untouched: disabling 2FA
// does not revoke live sessions.
func (s *Service) Disable(ctx context.Context, sub string) error {
	if err := s.repo.Disable(ctx, sub); err != nil {
		return err
	}
	metrics.TwoFactorUpdates.WithLabelValues("disable").Inc()
	return nil
}

// Enable turns two-factor on and enrolls the given verification method.
// The method is validated before any storage access.
func (s *Service) Enable(ctx context.Context, sub, method string) error {
	if !validMethod(method) {
		return ErrInvalidMethod
	}
	if err := s.repo.Enable(ctx, sub, method); err != nil {
		return err
	}
	metrics.TwoFactorUpdates.WithLabelValues("enable").Inc()
	return nil
}

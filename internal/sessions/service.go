package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service wraps repository operations with business logic and keeps the
// per-user registry of live session ids in step with the refresh store.
type Service struct {
	repo     Repository
	registry Registry
}

// NewService creates a session service. registry may be nil when the caller
// does not need per-user session listing (e.g. the standalone trending service).
func NewService(r Repository, reg Registry) *Service {
	return &Service{repo: r, registry: reg}
}

// CreateSession stores a new refresh session, registers it for the user and
// returns the refresh token (which doubles as the session id).
func (s *Service) CreateSession(ctx context.Context, sub string, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	r := hex.EncodeToString(b)
	sess := &Session{
		RefreshToken: r,
		Sub:          sub,
		ExpiresAt:    time.Now().UTC().Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	if s.registry != nil {
		if err := s.registry.Register(ctx, sub, r); err != nil {
			// roll back the refresh record so registry and store stay in step
			_ = s.repo.DeleteByRefresh(ctx, r)
			return "", err
		}
	}
	return r, nil
}

// ValidateRefresh returns the session if refresh token is valid and not expired
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	sess, err := s.repo.GetByRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		// cleanup expired session
		_ = s.repo.DeleteByRefresh(ctx, refresh)
		if s.registry != nil {
			_ = s.registry.Remove(ctx, sess.Sub, refresh)
		}
		return nil, nil
	}
	return sess, nil
}

// DeleteRefresh removes a refresh session and deregisters it for its owner.
func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	if s.registry != nil {
		if sess, err := s.repo.GetByRefresh(ctx, refresh); err == nil && sess != nil {
			_ = s.registry.Remove(ctx, sess.Sub, refresh)
		}
	}
	return s.repo.DeleteByRefresh(ctx, refresh)
}

// ListActive returns the live session ids for the given user. Unknown users
// yield an empty slice, never an error.
func (s *Service) ListActive(ctx context.Context, sub string) ([]string, error) {
	if s.registry == nil {
		return []string{}, nil
	}
	return s.registry.List(ctx, sub)
}

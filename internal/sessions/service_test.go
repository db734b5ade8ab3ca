package sessions

import (
	"context"
	"testing"
	"time"
)

// fake repo for testing
type fakeRepo struct {
	store map[string]*Session
}

func (f *fakeRepo) Create(ctx context.Context, s *Session) error {
	if f.store == nil {
		f.store = map[string]*Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}
func (f *fakeRepo) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	if f.store == nil {
		return nil, nil
	}
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}
func (f *fakeRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	if f.store == nil {
		return nil
	}
	delete(f.store, refresh)
	return nil
}

func TestCreateAndValidateSession(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, NewMemoryRegistry())
	ctx := context.Background()
	r, err := svc.CreateSession(ctx, "sub-1", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if r == "" {
		t.Fatalf("expected refresh token")
	}
	// validate
	sess, err := svc.ValidateRefresh(ctx, r)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if sess == nil || sess.Sub != "sub-1" {
		t.Fatalf("unexpected session: %v", sess)
	}
	// delete
	if err := svc.DeleteRefresh(ctx, r); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	sess2, _ := svc.ValidateRefresh(ctx, r)
	if sess2 != nil {
		t.Fatalf("expected session removed")
	}
}

func TestListActive_TracksLoginsAndLogouts(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, NewMemoryRegistry())
	ctx := context.Background()

	// no logins yet -> empty
	ids, err := svc.ListActive(ctx, "sub-1")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no sessions, got %v", ids)
	}

	r1, err := svc.CreateSession(ctx, "sub-1", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	r2, err := svc.CreateSession(ctx, "sub-1", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	ids, err = svc.ListActive(ctx, "sub-1")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 sessions, got %v", ids)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[r1] || !seen[r2] {
		t.Fatalf("expected {%s,%s}, got %v", r1, r2, ids)
	}

	// logout drops only the session that logged out
	if err := svc.DeleteRefresh(ctx, r1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	ids, _ = svc.ListActive(ctx, "sub-1")
	if len(ids) != 1 || ids[0] != r2 {
		t.Fatalf("expected only %s, got %v", r2, ids)
	}
}

func TestValidateRefresh_ExpiredSessionDeregistered(t *testing.T) {
	repo := &fakeRepo{}
	reg := NewMemoryRegistry()
	svc := NewService(repo, reg)
	ctx := context.Background()

	// insert an already-expired session directly and register it
	s := &Session{RefreshToken: "old", Sub: "sub-9", ExpiresAt: time.Now().UTC().Add(-time.Minute)}
	_ = repo.Create(ctx, s)
	_ = reg.Register(ctx, "sub-9", "old")

	got, err := svc.ValidateRefresh(ctx, "old")
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session treated as missing")
	}
	ids, _ := svc.ListActive(ctx, "sub-9")
	if len(ids) != 0 {
		t.Fatalf("expected expired session removed from registry, got %v", ids)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/flocknet/flocknet/backend/go-services/internal/config"
	"github.com/flocknet/flocknet/backend/go-services/internal/sessions"
	"github.com/flocknet/flocknet/backend/go-services/internal/twofactor"
	"github.com/flocknet/flocknet/backend/go-services/pkg/middleware"
)

// identityMiddleware stamps a fixed identity on the request, standing in for
// the verified-token middleware in unit tests.
func identityMiddleware(sub string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("identity", middleware.Identity{Sub: sub, Email: sub + "@example.com"})
		c.Next()
	}
}

func newSecurityRouter(t *testing.T, sub string, sSvc *sessions.Service, tfSvc *twofactor.Service) *gin.Engine {
	t.Helper()
	r := gin.New()
	h := NewSecurityHandler(&config.Config{}, sSvc, tfSvc)
	authed := r.Group("/api/v1")
	if sub != "" {
		authed.Use(identityMiddleware(sub))
	}
	h.Register(authed)
	return r
}

func TestListSessions_EmptyForFreshUser(t *testing.T) {
	sSvc := sessions.NewService(&fakeSessionsRepo{}, sessions.NewMemoryRegistry())
	r := newSecurityRouter(t, "sub-1", sSvc, twofactor.NewService(twofactor.NewMemoryRepository()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sessions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Sessions)
	require.Empty(t, got.Sessions)
}

func TestListSessions_ReturnsAllLiveSessions(t *testing.T) {
	sSvc := sessions.NewService(&fakeSessionsRepo{}, sessions.NewMemoryRegistry())
	ctx := context.Background()
	s1, err := sSvc.CreateSession(ctx, "sub-1", time.Hour)
	require.NoError(t, err)
	s2, err := sSvc.CreateSession(ctx, "sub-1", time.Hour)
	require.NoError(t, err)
	// another user's session must not leak into the list
	_, err = sSvc.CreateSession(ctx, "sub-2", time.Hour)
	require.NoError(t, err)

	r := newSecurityRouter(t, "sub-1", sSvc, twofactor.NewService(twofactor.NewMemoryRepository()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sessions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.ElementsMatch(t, []string{s1, s2}, got.Sessions)
}

func TestListSessions_Unauthenticated(t *testing.T) {
	sSvc := sessions.NewService(&fakeSessionsRepo{}, sessions.NewMemoryRegistry())
	r := newSecurityRouter(t, "", sSvc, twofactor.NewService(twofactor.NewMemoryRepository()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sessions", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDisableTwoFactor_Success(t *testing.T) {
	repo := twofactor.NewMemoryRepository()
	repo.Seed("sub-1", twofactor.Config{Enabled: true, Methods: []string{twofactor.MethodEmailOTP}})
	tfSvc := twofactor.NewService(repo)
	sSvc := sessions.NewService(&fakeSessionsRepo{}, sessions.NewMemoryRegistry())

	// a live session must survive the disable
	_, err := sSvc.CreateSession(context.Background(), "sub-1", time.Hour)
	require.NoError(t, err)

	r := newSecurityRouter(t, "sub-1", sSvc, tfSvc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/2fa/disable", nil))

	require.Equal(t, http.StatusOK, w.Code)

	cfg, err := tfSvc.Status(context.Background(), "sub-1")
	require.NoError(t, err)
	require.False(t, cfg.Enabled)
	require.Empty(t, cfg.Methods)

	// disabling 2FA does not revoke sessions
	ids, err := sSvc.ListActive(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, ids, 1)
}

func TestDisableTwoFactor_UnknownUser(t *testing.T) {
	tfSvc := twofactor.NewService(twofactor.NewMemoryRepository())
	sSvc := sessions.NewService(&fakeSessionsRepo{}, sessions.NewMemoryRegistry())

	r := newSecurityRouter(t, "nobody", sSvc, tfSvc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/2fa/disable", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuditTrail_EmptyWithoutStore(t *testing.T) {
	sSvc := sessions.NewService(&fakeSessionsRepo{}, sessions.NewMemoryRegistry())
	r := newSecurityRouter(t, "sub-1", sSvc, twofactor.NewService(twofactor.NewMemoryRepository()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/security/audit", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Events []map[string]interface{} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Events)
	require.Empty(t, got.Events)
}

func TestEnableTwoFactor_ValidatesMethod(t *testing.T) {
	repo := twofactor.NewMemoryRepository()
	repo.Seed("sub-1", twofactor.Config{})
	tfSvc := twofactor.NewService(repo)
	sSvc := sessions.NewService(&fakeSessionsRepo{}, sessions.NewMemoryRegistry())
	r := newSecurityRouter(t, "sub-1", sSvc, tfSvc)

	// bad method -> 400, nothing stored
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/2fa/enable", strings.NewReader(`{"method":"carrierPigeon"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// good method -> 200 and visible via status
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("POST", "/api/v1/2fa/enable", strings.NewReader(`{"method":"emailOtp"}`))
	req2.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w2, req2)
	require.Equal(t, http.StatusOK, w2.Code)

	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest("GET", "/api/v1/2fa", nil))
	require.Equal(t, http.StatusOK, w3.Code)
	var cfg twofactor.Config
	require.NoError(t, json.Unmarshal(w3.Body.Bytes(), &cfg))
	require.True(t, cfg.Enabled)
	require.Equal(t, []string{"emailOtp"}, cfg.Methods)
}

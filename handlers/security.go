package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flocknet/flocknet/backend/go-services/internal/audit"
	"github.com/flocknet/flocknet/backend/go-services/internal/config"
	"github.com/flocknet/flocknet/backend/go-services/internal/sessions"
	"github.com/flocknet/flocknet/backend/go-services/internal/twofactor"
	"github.com/flocknet/flocknet/backend/go-services/pkg/logger"
	"github.com/flocknet/flocknet/backend/go-services/pkg/middleware"
)

// SecurityHandler exposes the authenticated session list and the per-user
// two-factor configuration. Authentication is enforced by the auth middleware
// wrapping these routes; a request without a resolved identity never reaches
// the service calls.
type SecurityHandler struct {
	cfg          *config.Config
	sessionsSvc  *sessions.Service
	twofactorSvc *twofactor.Service
}

func NewSecurityHandler(cfg *config.Config, s *sessions.Service, tf *twofactor.Service) *SecurityHandler {
	return &SecurityHandler{cfg: cfg, sessionsSvc: s, twofactorSvc: tf}
}

// Register routes under the (already authenticated) group
func (h *SecurityHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/sessions", h.ListSessions)
	rg.GET("/2fa", h.TwoFactorStatus)
	rg.POST("/2fa/enable", h.EnableTwoFactor)
	rg.POST("/2fa/disable", h.DisableTwoFactor)
	rg.GET("/security/audit", h.AuditTrail)
}

// ListSessions returns the caller's live session ids. A user with no tracked
// sessions gets an empty list, not an error.
func (h *SecurityHandler) ListSessions(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	ids, err := h.sessionsSvc.ListActive(c.Request.Context(), id.Sub)
	if err != nil {
		logger.Errorf("session list failed for %s: %v", id.Sub, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": ids})
}

// TwoFactorStatus returns the caller's current two-factor configuration.
func (h *SecurityHandler) TwoFactorStatus(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	cfg, err := h.twofactorSvc.Status(c.Request.Context(), id.Sub)
	if err != nil {
		if errors.Is(err, twofactor.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logger.Errorf("2fa status failed for %s: %v", id.Sub, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load two-factor status"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// EnableTwoFactor turns 2FA on for the caller and enrolls a verification method.
func (h *SecurityHandler) EnableTwoFactor(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req struct {
		Method string `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.twofactorSvc.Enable(c.Request.Context(), id.Sub, req.Method); err != nil {
		switch {
		case errors.Is(err, twofactor.ErrInvalidMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verification method"})
		case errors.Is(err, twofactor.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			logger.Errorf("2fa enable failed for %s: %v", id.Sub, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enable two-factor"})
		}
		return
	}
	h.writeAudit(c, id.Sub, audit.EventTwoFactorEnabled, req.Method)
	c.JSON(http.StatusOK, gin.H{"message": "two-factor enabled"})
}

// DisableTwoFactor turns 2FA off and clears all enrolled methods in one write.
// Live sessions are deliberately left untouched.
func (h *SecurityHandler) DisableTwoFactor(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if err := h.twofactorSvc.Disable(c.Request.Context(), id.Sub); err != nil {
		if errors.Is(err, twofactor.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logger.Errorf("2fa disable failed for %s: %v", id.Sub, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disable two-factor"})
		return
	}
	h.writeAudit(c, id.Sub, audit.EventTwoFactorDisabled, "")
	c.JSON(http.StatusOK, gin.H{"message": "two-factor disabled"})
}

// AuditTrail returns the caller's recent security events, newest first. An
// unconfigured audit store yields an empty list.
func (h *SecurityHandler) AuditTrail(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.cfg == nil || h.cfg.MongoDB.URI == "" {
		c.JSON(http.StatusOK, gin.H{"events": []audit.Entry{}})
		return
	}
	events, err := audit.LoadRecent(c.Request.Context(), h.cfg.MongoDB.URI, h.cfg.MongoDB.Database, id.Sub, 50)
	if err != nil {
		logger.Errorf("audit load failed for %s: %v", id.Sub, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit trail"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// writeAudit records a security event best-effort: a failed audit write never
// fails the request that triggered it.
func (h *SecurityHandler) writeAudit(c *gin.Context, sub, event, detail string) {
	if h.cfg == nil || h.cfg.MongoDB.URI == "" {
		return
	}
	e := &audit.Entry{UserID: sub, Event: event, Detail: detail}
	if err := audit.Save(c.Request.Context(), h.cfg.MongoDB.URI, h.cfg.MongoDB.Database, e); err != nil {
		logger.Warnf("audit write failed for %s (%s): %v", sub, event, err)
	}
}

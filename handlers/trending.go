package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flocknet/flocknet/backend/go-services/internal/trending"
	"github.com/flocknet/flocknet/backend/go-services/pkg/logger"
)

// TrendingHandler serves the public trending hashtags endpoint.
type TrendingHandler struct {
	svc          *trending.Service
	defaultLimit int
}

func NewTrendingHandler(svc *trending.Service, defaultLimit int) *TrendingHandler {
	if defaultLimit <= 0 {
		defaultLimit = trending.DefaultLimit
	}
	return &TrendingHandler{svc: svc, defaultLimit: defaultLimit}
}

func (h *TrendingHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/hashtags/trending", h.Trending)
}

// Trending returns the top-N hashtags by usage. The limit query parameter is
// optional; a non-numeric or non-positive value is rejected before any
// storage access.
func (h *TrendingHandler) Trending(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	tags, err := h.svc.Top(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, trending.ErrInvalidLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		logger.Errorf("trending aggregation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute trending hashtags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trending": tags})
}

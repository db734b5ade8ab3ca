package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flocknet/flocknet/backend/go-services/internal/posts"
	"github.com/flocknet/flocknet/backend/go-services/pkg/logger"
	"github.com/flocknet/flocknet/backend/go-services/pkg/middleware"
)

// PostsHandler serves the minimal posts API: create (authenticated), list and
// read. Creation is what feeds hashtag usage records into trending.
type PostsHandler struct {
	svc *posts.Service
}

func NewPostsHandler(svc *posts.Service) *PostsHandler {
	return &PostsHandler{svc: svc}
}

// Register wires routes: reads on rg, create on the authenticated group.
func (h *PostsHandler) Register(rg, authed *gin.RouterGroup) {
	rg.GET("/posts", h.List)
	rg.GET("/posts/:id", h.Get)
	authed.POST("/posts", h.Create)
}

type createPostRequest struct {
	Text     string `json:"text" binding:"required"`
	MediaKey string `json:"mediaKey"`
}

func (h *PostsHandler) Create(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Create(c.Request.Context(), id.Sub, req.Text, req.MediaKey)
	if err != nil {
		if errors.Is(err, posts.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "post text must not be empty"})
			return
		}
		logger.Errorf("post create failed for %s: %v", id.Sub, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PostsHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		logger.Errorf("post lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load post"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostsHandler) List(c *gin.Context) {
	all, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("post list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": all})
}

package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flocknet/flocknet/backend/go-services/internal/storage"
	"github.com/flocknet/flocknet/backend/go-services/pkg/logger"
	"github.com/flocknet/flocknet/backend/go-services/pkg/middleware"
)

// MediaHandler accepts avatar/attachment uploads and stores them in MinIO.
type MediaHandler struct {
	store *storage.MediaStorage
}

func NewMediaHandler(store *storage.MediaStorage) *MediaHandler {
	return &MediaHandler{store: store}
}

func (h *MediaHandler) Register(authed *gin.RouterGroup) {
	authed.POST("/media", h.Upload)
}

// Upload stores the multipart "file" field under a per-user key and returns
// the key plus a short-lived presigned GET URL.
func (h *MediaHandler) Upload(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store media"})
		return
	}
	key := path.Join("media", id.Sub, hex.EncodeToString(b)+path.Ext(fh.Filename))
	contentType := fh.Header.Get("Content-Type")
	if err := h.store.Upload(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("media upload failed for %s: %v", id.Sub, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store media"})
		return
	}
	url, err := h.store.PresignedURL(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		// the object is stored; return the key even when the URL could not be signed
		logger.Warnf("presign failed for %s: %v", key, err)
		c.JSON(http.StatusCreated, gin.H{"key": key})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key, "url": url})
}

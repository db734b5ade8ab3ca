package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flocknet/flocknet/backend/go-services/handlers"
	"github.com/flocknet/flocknet/backend/go-services/internal/database"
	"github.com/flocknet/flocknet/backend/go-services/internal/trending"
	"github.com/flocknet/flocknet/backend/go-services/pkg/logger"
)

// Standalone trending service: serves GET /api/v1/hashtags/trending on its
// own port so the ranking endpoint can be scaled independently of auth.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("TRENDING_SERVICE_PORT")
	if port == "" {
		port = "5011"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Prefer the shared hashtag_usage collection when MONGODB_URI is provided.
	var repo trending.Repository
	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			logger.Warnf("cannot connect to MongoDB (%v), using memory-backed repo", err)
			repo = trending.NewMemoryRepository()
		} else {
			col := client.Database(os.Getenv("MONGODB_DATABASE")).Collection("hashtag_usage")
			repo = trending.NewMongoRepository(col)
		}
	} else {
		repo = trending.NewMemoryRepository()
	}

	h := handlers.NewTrendingHandler(trending.NewService(repo), trending.DefaultLimit)
	h.Register(r.Group("/api/v1"))

	logger.Infof("trending service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

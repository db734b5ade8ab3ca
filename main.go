package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/flocknet/flocknet/backend/go-services/handlers"
	"github.com/flocknet/flocknet/backend/go-services/internal/config"
	"github.com/flocknet/flocknet/backend/go-services/internal/database"
	"github.com/flocknet/flocknet/backend/go-services/internal/oidc"
	"github.com/flocknet/flocknet/backend/go-services/internal/posts"
	"github.com/flocknet/flocknet/backend/go-services/internal/sessions"
	"github.com/flocknet/flocknet/backend/go-services/internal/storage"
	"github.com/flocknet/flocknet/backend/go-services/internal/trending"
	"github.com/flocknet/flocknet/backend/go-services/internal/twofactor"
	"github.com/flocknet/flocknet/backend/go-services/internal/users"
	"github.com/flocknet/flocknet/backend/go-services/pkg/logger"
	"github.com/flocknet/flocknet/backend/go-services/pkg/metrics"
	"github.com/flocknet/flocknet/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// shared runtime vars used by handlers/readiness
	var verifier middleware.Verifier
	var userSvc *users.Service
	var sessionsSvc *sessions.Service

	// Connect to Redis early so blacklist, session registry and the
	// rate-limiter can use it when configured
	var importedRedis *redis.Client
	if cfg.Redis.Host != "" {
		importedRedis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := importedRedis.Ping(context.Background()).Err(); err == nil {
			sessions.SetBlacklistClient(importedRedis)
			logger.Infof("Connected to Redis (early): %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis early (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			importedRedis = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && importedRedis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(importedRedis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		if sessionsSvc == nil {
			deps["storage"] = false
			ready = false
		} else {
			deps["storage"] = true
			deps["users"] = (userSvc != nil)
		}

		// if Keycloak URL was configured we expect a verifier (or ALLOW_INSECURE_TOKEN)
		if cfg.Keycloak.URL != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = importedRedis != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	ctx := context.Background()

	// Keycloak OIDC verifier for protected endpoints
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" && cfg.Keycloak.Realm != "" {
		issuer := strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	} else if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		// older deployments may expose the realm path in the URL
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak.URL, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier (fallback): %v", err)
		} else {
			verifier = ver
		}
	}

	// Optional insecure verifier for integration tests: parse token claims
	// without signature verification
	if verifier == nil && strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN"))) == "true" {
		logger.Warn("enabling insecure OIDC verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}

	// Session registry: Redis-backed when available so the live-session list
	// is shared across replicas
	var registry sessions.Registry
	if importedRedis != nil {
		registry = sessions.NewRedisRegistry(importedRedis, "")
	} else {
		registry = sessions.NewMemoryRegistry()
	}

	// Prefer Redis for refresh-session storage (fast, TTL-native)
	if importedRedis != nil {
		srepo := sessions.NewRedisRepository(importedRedis, "session:")
		sessionsSvc = sessions.NewService(srepo, registry)
		logger.Infof("Using Redis for session storage")
	}

	// MongoDB-backed services. When Redis already provides sessions, Mongo
	// still carries users, two-factor state, posts and hashtag usage.
	var twofactorSvc *twofactor.Service
	var trendingSvc *trending.Service
	var postsSvc *posts.Service
	if cfg.MongoDB.URI != "" {
		// retry/backoff to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)

			usersCol := db.Collection("users")
			userSvc = users.NewService(users.NewMongoUserRepository(usersCol))
			// two-factor state lives on the same users collection
			twofactorSvc = twofactor.NewService(twofactor.NewMongoRepository(usersCol))

			usageRepo := trending.NewMongoRepository(db.Collection("hashtag_usage"))
			trendingSvc = trending.NewService(usageRepo)
			postsSvc = posts.NewService(posts.NewMongoRepository(db.Collection("posts")), usageRepo)

			if sessionsSvc == nil {
				srepo := sessions.NewMongoRepository(db.Collection("sessions"))
				sessionsSvc = sessions.NewService(srepo, registry)
			}
		}
	}

	// memory fallbacks keep the API usable in local development without Mongo
	if trendingSvc == nil {
		usageRepo := trending.NewMemoryRepository()
		trendingSvc = trending.NewService(usageRepo)
		postsSvc = posts.NewService(posts.NewMemoryRepository(), usageRepo)
		logger.Warnf("MongoDB unavailable: posts and trending use in-memory storage")
	}

	if userSvc != nil && sessionsSvc != nil {
		h := handlers.NewAuthHandler(cfg, userSvc, sessionsSvc)
		h.Register(r.Group("/"))
	} else {
		logger.Warnf("auth handlers not registered because user/sessions services are unavailable")
	}

	handlers.RegisterSwagger(r)

	api := r.Group("/api/v1")
	authed := r.Group("/api/v1")
	if verifier != nil {
		authed.Use(middleware.AuthMiddleware(verifier))

		if sessionsSvc != nil && twofactorSvc != nil {
			handlers.NewSecurityHandler(cfg, sessionsSvc, twofactorSvc).Register(authed)
		}

		authed.GET("/me", func(c *gin.Context) {
			claims, _ := c.Get("claims")
			if userSvc != nil {
				if cm, ok := claims.(map[string]interface{}); ok {
					u, err := userSvc.UpsertFromClaims(c.Request.Context(), cm)
					if err == nil && u != nil {
						c.JSON(http.StatusOK, gin.H{"user": u})
						return
					}
				}
			}
			// fallback: return claims
			c.JSON(http.StatusOK, gin.H{"claims": claims})
		})
	} else {
		api.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "OIDC not configured"})
		})
	}

	handlers.NewTrendingHandler(trendingSvc, cfg.Trending.DefaultLimit).Register(api)
	handlers.NewPostsHandler(postsSvc).Register(api, authed)

	// media uploads require MinIO; skip registration when not configured
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		store, err := storage.NewMediaStorage(mcfg)
		if err != nil {
			logger.Warnf("media storage unavailable: %v", err)
		} else if verifier != nil {
			handlers.NewMediaHandler(store).Register(authed)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Config summary: keycloak=%v mongo=%v redis=%v jwt_secret_set=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.JWT.Secret != "")
	logger.Infof("Starting flocknet service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"debatebot/config"
	"debatebot/controllers"
	"debatebot/db"
	"debatebot/internal/ratelimit"
	"debatebot/middlewares"
	"debatebot/models"
	"debatebot/routes"
	"debatebot/services"
	"debatebot/store"
	"debatebot/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.URI != "" {
		if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		log.Println("Connected to MongoDB")
	}

	window := time.Duration(cfg.RateLimit.RefillSeconds) * time.Second
	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("Connected to Redis, using shared rate limiting")
		limiter = ratelimit.NewFixedWindow(rdb, cfg.RateLimit.Capacity, window)
	} else {
		limiter = ratelimit.NewTokenBucket(cfg.RateLimit.Capacity, window)
	}

	sessions := store.NewMemoryStore()
	hub := websocket.NewHub()

	svc := services.NewDebateService(sessions, services.NewGeminiClient(cfg.Gemini.ApiKey))
	svc.Notify = hub.Broadcast
	if cfg.Database.URI != "" {
		svc.Archive = func(t models.DebateTranscript) {
			db.SaveTranscript(t)
		}
	}

	router := setupRouter(limiter, svc, hub, sessions)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(limiter ratelimit.Limiter, svc *services.DebateService, hub *websocket.Hub, sessions store.SessionStore) *gin.Engine {
	router := gin.Default()

	// Public demo: all origins, methods, and headers are allowed.
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
	}))

	router.Use(middlewares.RateLimitMiddleware(limiter))

	routes.SetupDebateRoutes(router, controllers.NewDebateController(svc), hub, sessions)
	return router
}

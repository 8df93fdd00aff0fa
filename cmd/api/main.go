package main

import (
	"context"
	"log"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/auth"
	"github.com/01moynul/yourqueen-golang/internal/cache"
	"github.com/01moynul/yourqueen-golang/internal/config"
	"github.com/01moynul/yourqueen-golang/internal/database"
	"github.com/01moynul/yourqueen-golang/internal/handlers"
	"github.com/01moynul/yourqueen-golang/internal/orders"
	"github.com/01moynul/yourqueen-golang/internal/routes"
	"github.com/01moynul/yourqueen-golang/internal/store"
	"github.com/gin-gonic/gin"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// 1. --- Main Database Connection ---
	db, err := database.OpenDB(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to primary database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(ctx, db)
	cancel()
	if err != nil {
		log.Fatalf("Failed to apply database schema: %v", err)
	}

	// 2. --- Redis (optional: stats cache + rate limit) ---
	rdb, err := database.OpenRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// --- Application Setup ---
	mysqlStore := store.New(db)
	app := &handlers.Handlers{
		Store:  mysqlStore,
		Orders: orders.NewService(mysqlStore),
		Stats:  cache.NewStatsCache(rdb, cfg.StatsCacheTTL),
		Tokens: auth.NewManager(cfg.JWTSecret, cfg.JWTTTL),
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		FrontendURL:     cfg.FrontendURL,
		Redis:           rdb,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	// --- Start Server ---
	log.Printf("Starting YourQueen API server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// Health Check Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"car-loan-calculator/internal/config"
	"car-loan-calculator/internal/handlers"
	"car-loan-calculator/internal/services/cache"
	"car-loan-calculator/internal/services/database"
	"car-loan-calculator/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	ctx := context.Background()
	handler := handlers.NewHealthHandler(cfg.Stage)

	// A missing dependency is reported by the check itself, not at startup.
	if db, err := database.New(ctx, cfg); err != nil {
		utils.GetLogger().Warn("Database not reachable", zap.Error(err))
		handler.SetStatus("database", "not configured")
	} else {
		defer db.Close()
		handler.AddCheck("database", db)
	}

	if cfg.CacheEnabled() {
		if redisCache, err := cache.NewRedisCache(ctx, cfg); err != nil {
			utils.GetLogger().Warn("Redis not reachable", zap.Error(err))
			handler.SetStatus("cache", "disconnected")
		} else {
			defer redisCache.Close()
			handler.AddCheck("cache", redisCache)
		}
	}

	lambda.Start(handler.Handle)
}

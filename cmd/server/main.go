// Package main provides the HTTP server for the car loan calculator.
// Without a reachable database or Redis it runs in demo mode on in-memory
// storage.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"car-loan-calculator/internal/config"
	"car-loan-calculator/internal/format"
	"car-loan-calculator/internal/handlers"
	"car-loan-calculator/internal/listing"
	"car-loan-calculator/internal/services/cache"
	"car-loan-calculator/internal/services/carloan"
	"car-loan-calculator/internal/services/database"
	s3service "car-loan-calculator/internal/services/s3"
	"car-loan-calculator/internal/services/ses"
	"car-loan-calculator/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.Named("server")

	ctx := context.Background()
	health := handlers.NewHealthHandler(cfg.Stage)

	store, closeStore := openStore(ctx, cfg, health, logger)
	defer closeStore()

	scheduleCache, closeCache := openCache(ctx, cfg, health, logger)
	defer closeCache()

	service := carloan.NewService(store, scheduleCache)
	calculator := handlers.NewLoanCalculator(format.NewFormatter(cfg.Locale))

	var exporter handlers.ScheduleExporter
	var mailer handlers.SummaryMailer
	if cfg.S3Bucket != "" {
		if svc, err := s3service.NewService(ctx, cfg); err != nil {
			logger.Warn("Schedule export disabled", zap.Error(err))
		} else {
			exporter = svc
		}
	}
	if cfg.SESSenderEmail != "" {
		if svc, err := ses.NewService(ctx, cfg); err != nil {
			logger.Warn("Email disabled", zap.Error(err))
		} else {
			mailer = svc
		}
	}

	limiter := handlers.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	router := &handlers.Router{
		Health:     health,
		Calculator: calculator,
		Cars:       handlers.NewCarHandler(service, calculator, exporter, mailer),
		Listing:    handlers.NewListingHandler(listing.NewParser()),
		Limiter:    limiter,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Car Loan Calculator API Server",
			zap.String("addr", server.Addr),
			zap.String("stage", cfg.Stage),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("Server failed", zap.Error(err))
		return
	case <-quit:
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// openStore connects to PostgreSQL and falls back to memory in demo mode.
func openStore(ctx context.Context, cfg *config.Config, health *handlers.HealthHandler, logger *zap.Logger) (carloan.CarStore, func()) {
	db, err := database.New(ctx, cfg)
	if err != nil {
		logger.Warn("Could not connect to database, running in demo mode", zap.Error(err))
		health.SetStatus("database", "in-memory")
		return carloan.NewMemoryStore(), func() {}
	}

	if err := db.Migrate(ctx); err != nil {
		logger.Warn("Schema migration failed", zap.Error(err))
	}
	health.AddCheck("database", db)

	return database.NewCarRepository(db), db.Close
}

// openCache connects to Redis when configured and falls back to memory.
func openCache(ctx context.Context, cfg *config.Config, health *handlers.HealthHandler, logger *zap.Logger) (cache.Cache, func()) {
	if cfg.CacheEnabled() {
		redisCache, err := cache.NewRedisCache(ctx, cfg)
		if err == nil {
			health.AddCheck("cache", redisCache)
			return redisCache, func() { _ = redisCache.Close() }
		}
		logger.Warn("Could not connect to Redis, using in-memory cache", zap.Error(err))
	}

	health.SetStatus("cache", "in-memory")
	return cache.NewMemoryCache(cfg.CacheTTL), func() {}
}

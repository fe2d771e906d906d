//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"car-loan-calculator/internal/config"
	"car-loan-calculator/internal/services/cache"
	"car-loan-calculator/internal/services/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🔍 Testing Connections...")
	fmt.Println()

	fmt.Println("1️⃣  Checking Environment Variables:")
	checkEnvVar("AWS_REGION")
	checkEnvVar("S3_BUCKET")
	checkEnvVar("DATABASE_URL")
	checkEnvVar("REDIS_ADDR")
	checkEnvVar("SES_SENDER_EMAIL")
	fmt.Println()

	fmt.Println("2️⃣  Testing Database Connection:")
	testDatabaseConnection(cfg)
	fmt.Println()

	fmt.Println("3️⃣  Testing Redis Connection:")
	testRedisConnection(cfg)
	fmt.Println()

	fmt.Println("✅ Connection tests complete!")
}

func checkEnvVar(name string) {
	value := os.Getenv(name)
	if value == "" {
		fmt.Printf("   ❌ %s: NOT SET\n", name)
		return
	}
	masked := value
	if len(value) > 12 && name == "DATABASE_URL" {
		masked = value[:8] + "..." + value[len(value)-4:]
	}
	fmt.Printf("   ✅ %s: %s\n", name, masked)
}

func testDatabaseConnection(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		fmt.Printf("   ❌ Database connection failed: %v\n", err)
		return
	}
	defer db.Close()

	fmt.Println("   ✅ Database connection successful!")

	var tableCount int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = 'cars'
	`).Scan(&tableCount)
	if err == nil {
		fmt.Printf("   📊 Tables found: %d/1 (cars)\n", tableCount)
	}
}

func testRedisConnection(cfg *config.Config) {
	if !cfg.CacheEnabled() {
		fmt.Println("   ⚠️  REDIS_ADDR not set, the server will use the in-memory cache")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisCache, err := cache.NewRedisCache(ctx, cfg)
	if err != nil {
		fmt.Printf("   ❌ Redis connection failed: %v\n", err)
		return
	}
	defer redisCache.Close()

	fmt.Println("   ✅ Redis connection successful!")
}

//go:build ignore
// +build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"car-loan-calculator/internal/config"
	"car-loan-calculator/internal/format"
	"car-loan-calculator/internal/services/cache"
	"car-loan-calculator/internal/services/carloan"
	"car-loan-calculator/internal/services/database"
)

func main() {
	seed := flag.Bool("demo", false, "insert the demo cars after migrating")
	flag.Parse()

	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("📡 Connecting to PostgreSQL...")
	db, err := database.New(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database successfully!")
	fmt.Println()

	fmt.Println("🚀 Applying cars schema...")
	if err := db.Migrate(ctx); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Schema applied!")
	fmt.Println()

	repo := database.NewCarRepository(db)

	if *seed {
		fmt.Println("📦 Inserting demo cars...")
		svc := carloan.NewService(repo, cache.NewMemoryCache(time.Minute))
		if _, err := svc.SeedDemo(ctx); err != nil {
			fmt.Printf("❌ Failed to insert demo cars: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("🔍 Verifying database setup...")
	cars, err := repo.List(ctx)
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not list cars: %v\n", err)
	} else {
		fmt.Printf("   📦 Cars in database: %d\n", len(cars))
		for i, car := range cars {
			fmt.Printf("   %d. %s (%d): %s / month\n", i+1, car.Name, car.Year, format.Currency(car.MonthlyPayment))
		}
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Test the connection: go run scripts/test_connection.go")
	fmt.Println("  2. Start the API: go run ./cmd/server")
}

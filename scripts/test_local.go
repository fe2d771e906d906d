//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"car-loan-calculator/internal/amortization"
	"car-loan-calculator/internal/format"
	"car-loan-calculator/internal/services/cache"
	"car-loan-calculator/internal/services/carloan"
)

func main() {
	fmt.Println("=== Car Loan Calculator - Local Test ===")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := carloan.NewService(carloan.NewMemoryStore(), cache.NewMemoryCache(time.Hour))

	fmt.Println("📦 Adding demo cars...")
	cars, err := svc.SeedDemo(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to add demo cars: %v\n", err)
		os.Exit(1)
	}

	for _, car := range cars {
		fmt.Printf("   🚗 %s: loan %s, %s / month, interest %s\n",
			car.Name,
			format.Currency(car.LoanAmount),
			format.Currency(car.MonthlyPayment),
			format.Currency(car.TotalInterest),
		)
	}

	fmt.Println()
	fmt.Println("💸 Early payment of 500 000 ₽ after one year:")
	for _, strategy := range amortization.ValidStrategies() {
		result, err := svc.EarlyPayment(ctx, cars[0].ID, 12, 500000, strategy)
		if err != nil {
			fmt.Printf("   ❌ %s: %v\n", strategy, err)
			continue
		}
		switch strategy {
		case amortization.StrategyReduceTerm:
			fmt.Printf("   %s: %d months shorter, saves %s\n", strategy, result.SavedPeriods, format.Currency(result.SavedInterest))
		case amortization.StrategyReducePayment:
			fmt.Printf("   %s: new payment %s, saves %s\n", strategy, format.Currency(result.NewMonthlyPayment), format.Currency(result.SavedInterest))
		}
	}

	fmt.Println()
	fmt.Println("⚖️  Comparison:")
	cmp, err := svc.Compare(ctx, nil)
	if err != nil {
		fmt.Printf("❌ Comparison failed: %v\n", err)
		os.Exit(1)
	}
	names := make(map[string]string, len(cmp.Cars))
	for _, c := range cmp.Cars {
		names[c.ID] = c.Name
	}
	fmt.Printf("   Lowest monthly payment: %s\n", names[cmp.LowestMonthly])
	fmt.Printf("   Lowest overpayment:     %s\n", names[cmp.LowestInterest])
	fmt.Printf("   Newest:                 %s\n", names[cmp.Newest])

	fmt.Println()
	fmt.Println("🎉 Local test completed!")
}

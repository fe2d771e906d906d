// Loan calculation Lambda entry point
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"car-loan-calculator/internal/config"
	"car-loan-calculator/internal/format"
	"car-loan-calculator/internal/handlers"
	"car-loan-calculator/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	calculator := handlers.NewLoanCalculator(format.NewFormatter(cfg.Locale))
	handler := handlers.NewCalculateLambdaHandler(calculator)

	lambda.Start(handler.Handle)
}

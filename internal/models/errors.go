// Package models defines the data structures for the car loan calculator.
package models

import (
	"errors"
	"math"
	"strings"
)

// Common errors
var (
	ErrEmptyCarName        = errors.New("car name cannot be empty")
	ErrInvalidYear         = errors.New("year must be between 1900 and 2100")
	ErrInvalidMileage      = errors.New("mileage cannot be negative")
	ErrInvalidPrice        = errors.New("price must be positive")
	ErrInvalidDownPayment  = errors.New("down payment must be between 0 and the price")
	ErrInvalidInterestRate = errors.New("interest rate must be between 0 and 100")
	ErrInvalidLoanTerm     = errors.New("loan term must be between 1 and 30 years")
	ErrCarNotFound         = errors.New("car not found")
	ErrNotEnoughCars       = errors.New("at least two cars are required for comparison")
)

// Limits accepted from the form layer.
const (
	MinYear          = 1900
	MaxYear          = 2100
	MaxInterestRate  = 100.0
	MaxLoanTermYears = 30
)

// ValidateCarCreate validates car creation data.
func ValidateCarCreate(c *CarCreate) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCarName
	}

	if c.Year < MinYear || c.Year > MaxYear {
		return ErrInvalidYear
	}

	if c.Mileage < 0 {
		return ErrInvalidMileage
	}

	if !isFinite(c.Price) || c.Price <= 0 {
		return ErrInvalidPrice
	}

	// A down payment equal to the price leaves nothing to finance.
	if !isFinite(c.DownPayment) || c.DownPayment < 0 || c.DownPayment >= c.Price {
		return ErrInvalidDownPayment
	}

	if !isFinite(c.InterestRate) || c.InterestRate < 0 || c.InterestRate > MaxInterestRate {
		return ErrInvalidInterestRate
	}

	if c.LoanTermYears < 1 || c.LoanTermYears > MaxLoanTermYears {
		return ErrInvalidLoanTerm
	}

	return nil
}

// IsValidationError reports whether err is one of the car validation errors.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyCarName, ErrInvalidYear, ErrInvalidMileage, ErrInvalidPrice,
		ErrInvalidDownPayment, ErrInvalidInterestRate, ErrInvalidLoanTerm,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

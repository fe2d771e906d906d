// Package amortization computes fixed-installment loan schedules and
// recalculates them after an early principal payment.
package amortization

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned when an input violates its constraint or
// leads to an undefined result.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateTerms(principal, annualRatePercent float64, periods int) error {
	if !isFinite(principal) || principal <= 0 {
		return invalidArgument("principal must be positive, got %v", principal)
	}
	if !isFinite(annualRatePercent) || annualRatePercent < 0 {
		return invalidArgument("annual rate cannot be negative, got %v", annualRatePercent)
	}
	if periods < 1 || periods > MaxPeriods {
		return invalidArgument("number of periods must be between 1 and %d, got %d", MaxPeriods, periods)
	}
	return nil
}

func validateEarlyPayment(req EarlyPaymentRequest) error {
	if !isFinite(req.CurrentBalance) || req.CurrentBalance <= 0 {
		return invalidArgument("current balance must be positive, got %v", req.CurrentBalance)
	}
	if !isFinite(req.CurrentMonthlyPayment) || req.CurrentMonthlyPayment <= 0 {
		return invalidArgument("current monthly payment must be positive, got %v", req.CurrentMonthlyPayment)
	}
	if !isFinite(req.AnnualRatePercent) || req.AnnualRatePercent < 0 {
		return invalidArgument("annual rate cannot be negative, got %v", req.AnnualRatePercent)
	}
	if req.RemainingPeriods < 1 {
		return invalidArgument("remaining periods must be at least 1, got %d", req.RemainingPeriods)
	}
	if !isFinite(req.ExtraAmount) || req.ExtraAmount <= 0 {
		return invalidArgument("extra amount must be positive, got %v", req.ExtraAmount)
	}
	if req.ExtraAmount > req.CurrentBalance {
		return invalidArgument("extra amount %v exceeds current balance %v", req.ExtraAmount, req.CurrentBalance)
	}
	if !req.Strategy.IsValid() {
		return invalidArgument("unknown early payment strategy %q", req.Strategy)
	}
	return nil
}

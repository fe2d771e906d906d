// Package amortization computes fixed-installment loan schedules and
// recalculates them after an early principal payment.
package amortization

import "math"

// periodTolerance absorbs float noise before rounding a period count up,
// so an exact 52.0000000001 does not become 53.
const periodTolerance = 1e-9

// CalculateEarlyPayment applies req.ExtraAmount to the outstanding balance
// and recomputes the loan under req.Strategy.
func CalculateEarlyPayment(req EarlyPaymentRequest) (*EarlyPaymentResult, error) {
	if err := validateEarlyPayment(req); err != nil {
		return nil, err
	}

	r := MonthlyRate(req.AnnualRatePercent)
	newBalance := req.CurrentBalance - req.ExtraAmount
	originalOutflow := req.CurrentMonthlyPayment * float64(req.RemainingPeriods)

	switch req.Strategy {
	case StrategyReduceTerm:
		newTerm, err := remainingTerm(newBalance, req.CurrentMonthlyPayment, r)
		if err != nil {
			return nil, err
		}
		saved := req.RemainingPeriods - newTerm
		if saved < 0 {
			return nil, invalidArgument("payment %v repays balance %v in %d periods, more than the %d remaining",
				req.CurrentMonthlyPayment, newBalance, newTerm, req.RemainingPeriods)
		}
		return &EarlyPaymentResult{
			Strategy:       req.Strategy,
			ExtraAmount:    req.ExtraAmount,
			NewTermPeriods: newTerm,
			SavedPeriods:   saved,
			SavedInterest:  originalOutflow - req.CurrentMonthlyPayment*float64(newTerm) - req.ExtraAmount,
		}, nil

	default:
		newPayment := 0.0
		if newBalance > 0 {
			newPayment = AnnuityPayment(newBalance, r, req.RemainingPeriods)
		}
		if !isFinite(newPayment) {
			return nil, invalidArgument("payment is undefined for balance %v over %d periods", newBalance, req.RemainingPeriods)
		}
		return &EarlyPaymentResult{
			Strategy:          req.Strategy,
			ExtraAmount:       req.ExtraAmount,
			NewMonthlyPayment: newPayment,
			SavedInterest:     originalOutflow - newPayment*float64(req.RemainingPeriods) - req.ExtraAmount,
		}, nil
	}
}

// remainingTerm solves the annuity equation for the number of payments of
// size payment needed to repay balance at monthly rate r.
func remainingTerm(balance, payment, r float64) (int, error) {
	if balance <= 0 {
		return 0, nil
	}
	if r == 0 {
		return int(math.Ceil(balance/payment - periodTolerance)), nil
	}

	// The payment must exceed the interest accrued on the balance, otherwise
	// the logarithm argument is not positive and the loan never amortizes.
	ratio := balance * r / payment
	if ratio >= 1 {
		return 0, invalidArgument("payment %v does not cover monthly interest %v on balance %v",
			payment, balance*r, balance)
	}

	periods := -math.Log1p(-ratio) / math.Log1p(r)
	if !isFinite(periods) {
		return 0, invalidArgument("remaining term is undefined for balance %v", balance)
	}
	return int(math.Ceil(periods - periodTolerance)), nil
}

// Package amortization computes fixed-installment loan schedules and
// recalculates them after an early principal payment.
package amortization

import "math"

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 100 / MonthsPerYear
}

// AnnuityPayment returns the fixed installment that repays principal over
// periods payments at the monthly rate r. A zero rate degenerates to an
// even split of the principal.
func AnnuityPayment(principal, r float64, periods int) float64 {
	n := float64(periods)
	if r == 0 {
		return principal / n
	}
	factor := math.Pow(1+r, n)
	return principal * r * factor / (factor - 1)
}

// CalculateLoan computes the fixed monthly payment, the totals and the
// period-by-period schedule for a loan of termYears years.
func CalculateLoan(principal, annualRatePercent float64, termYears int) (*LoanCalculation, error) {
	if termYears < 1 {
		return nil, invalidArgument("term must be at least 1 year, got %d", termYears)
	}
	if termYears > MaxPeriods/MonthsPerYear {
		return nil, invalidArgument("term must be at most %d years, got %d", MaxPeriods/MonthsPerYear, termYears)
	}
	return CalculateLoanMonths(principal, annualRatePercent, termYears*MonthsPerYear)
}

// CalculateTerms is CalculateLoan for a LoanTerms value.
func CalculateTerms(terms LoanTerms) (*LoanCalculation, error) {
	return CalculateLoan(terms.Principal, terms.AnnualRatePercent, terms.TermYears)
}

// CalculateLoanMonths is CalculateLoan with the term expressed in months.
func CalculateLoanMonths(principal, annualRatePercent float64, months int) (*LoanCalculation, error) {
	if err := validateTerms(principal, annualRatePercent, months); err != nil {
		return nil, err
	}

	r := MonthlyRate(annualRatePercent)
	payment := AnnuityPayment(principal, r, months)
	if !isFinite(payment) {
		return nil, invalidArgument("payment is undefined for principal %v at %v%% over %d months",
			principal, annualRatePercent, months)
	}

	schedule := make([]PeriodEntry, 0, months)
	balance := principal

	for period := 1; period <= months; period++ {
		interest := balance * r
		principalPortion := payment - interest
		balance -= principalPortion

		schedule = append(schedule, PeriodEntry{
			Period:           period,
			Payment:          payment,
			Principal:        principalPortion,
			Interest:         interest,
			RemainingBalance: math.Max(0, balance),
		})
	}

	totalPayment := payment * float64(months)

	return &LoanCalculation{
		MonthlyPayment: payment,
		TotalPayment:   totalPayment,
		TotalInterest:  totalPayment - principal,
		Schedule:       schedule,
	}, nil
}

// BalanceAfter returns the outstanding balance once paidPeriods regular
// payments of calc have been made. Zero paid periods yields the original
// principal.
func BalanceAfter(calc *LoanCalculation, paidPeriods int) (float64, error) {
	if calc == nil || len(calc.Schedule) == 0 {
		return 0, invalidArgument("empty loan schedule")
	}
	if paidPeriods < 0 || paidPeriods > len(calc.Schedule) {
		return 0, invalidArgument("paid periods must be between 0 and %d, got %d", len(calc.Schedule), paidPeriods)
	}
	if paidPeriods == 0 {
		first := calc.Schedule[0]
		return first.RemainingBalance + first.Principal, nil
	}
	return calc.Schedule[paidPeriods-1].RemainingBalance, nil
}

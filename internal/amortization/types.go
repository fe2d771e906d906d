// Package amortization computes fixed-installment loan schedules and
// recalculates them after an early principal payment.
package amortization

import (
	"strings"

	"github.com/goccy/go-json"
)

// MonthsPerYear is the fixed number of payment periods in a year.
const MonthsPerYear = 12

// MaxPeriods caps the schedule length at a century of monthly payments.
const MaxPeriods = 100 * MonthsPerYear

// Strategy selects how an early payment is applied to the remaining loan.
type Strategy string

const (
	// StrategyReduceTerm keeps the payment and shortens the remaining term.
	StrategyReduceTerm Strategy = "reduce_term"
	// StrategyReducePayment keeps the remaining term and lowers the payment.
	StrategyReducePayment Strategy = "reduce_payment"
)

// ValidStrategies returns all supported early payment strategies.
func ValidStrategies() []Strategy {
	return []Strategy{StrategyReduceTerm, StrategyReducePayment}
}

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	for _, valid := range ValidStrategies() {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseStrategy converts user input such as "reduce-term" or "ReducePayment"
// into a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	switch normalized {
	case "reduce_term", "reduceterm", "term":
		return StrategyReduceTerm, nil
	case "reduce_payment", "reducepayment", "payment":
		return StrategyReducePayment, nil
	}
	return "", invalidArgument("unknown early payment strategy %q", value)
}

// LoanTerms are the parameters of a fixed-installment loan.
type LoanTerms struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         int     `json:"term_years"`
}

// Periods returns the number of monthly payments.
func (t LoanTerms) Periods() int {
	return t.TermYears * MonthsPerYear
}

// PeriodEntry is one row of an amortization schedule.
type PeriodEntry struct {
	Period           int     `json:"period"`
	Payment          float64 `json:"payment"`
	Principal        float64 `json:"principal"`
	Interest         float64 `json:"interest"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// LoanCalculation is the full result of a loan calculation.
type LoanCalculation struct {
	MonthlyPayment float64       `json:"monthly_payment"`
	TotalPayment   float64       `json:"total_payment"`
	TotalInterest  float64       `json:"total_interest"`
	Schedule       []PeriodEntry `json:"schedule"`
}

// Periods returns the length of the schedule.
func (c *LoanCalculation) Periods() int {
	return len(c.Schedule)
}

// EarlyPaymentRequest describes a lump-sum prepayment against an existing loan.
type EarlyPaymentRequest struct {
	CurrentBalance        float64  `json:"current_balance"`
	CurrentMonthlyPayment float64  `json:"current_monthly_payment"`
	AnnualRatePercent     float64  `json:"annual_rate_percent"`
	RemainingPeriods      int      `json:"remaining_periods"`
	ExtraAmount           float64  `json:"extra_amount"`
	Strategy              Strategy `json:"strategy"`
}

// EarlyPaymentResult is the outcome of applying an early payment.
// NewTermPeriods and SavedPeriods are set for StrategyReduceTerm,
// NewMonthlyPayment for StrategyReducePayment.
type EarlyPaymentResult struct {
	Strategy          Strategy `json:"strategy"`
	ExtraAmount       float64  `json:"extra_amount"`
	SavedInterest     float64  `json:"saved_interest"`
	NewTermPeriods    int      `json:"new_term_periods,omitempty"`
	SavedPeriods      int      `json:"saved_periods,omitempty"`
	NewMonthlyPayment float64  `json:"new_monthly_payment,omitempty"`
}

// MarshalJSON always writes the fields of the active strategy, zero or not,
// and leaves out those of the other one.
func (r EarlyPaymentResult) MarshalJSON() ([]byte, error) {
	if r.Strategy == StrategyReduceTerm {
		return json.Marshal(struct {
			Strategy       Strategy `json:"strategy"`
			ExtraAmount    float64  `json:"extra_amount"`
			SavedInterest  float64  `json:"saved_interest"`
			NewTermPeriods int      `json:"new_term_periods"`
			SavedPeriods   int      `json:"saved_periods"`
		}{r.Strategy, r.ExtraAmount, r.SavedInterest, r.NewTermPeriods, r.SavedPeriods})
	}
	return json.Marshal(struct {
		Strategy          Strategy `json:"strategy"`
		ExtraAmount       float64  `json:"extra_amount"`
		SavedInterest     float64  `json:"saved_interest"`
		NewMonthlyPayment float64  `json:"new_monthly_payment"`
	}{r.Strategy, r.ExtraAmount, r.SavedInterest, r.NewMonthlyPayment})
}

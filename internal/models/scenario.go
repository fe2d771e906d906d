// Package models defines the data structures for the car loan calculator.
package models

// LoanScenario is a preset combination of rate, term and down payment share.
type LoanScenario struct {
	Name               string  `json:"name"`
	InterestRate       float64 `json:"interest_rate"`
	LoanTermYears      int     `json:"loan_term_years"`
	DownPaymentPercent float64 `json:"down_payment_percent"`
}

// DefaultLoanScenarios returns the economy, standard and long presets.
func DefaultLoanScenarios() []LoanScenario {
	return []LoanScenario{
		{Name: "economy", InterestRate: 9.5, LoanTermYears: 3, DownPaymentPercent: 30},
		{Name: "standard", InterestRate: 12.0, LoanTermYears: 5, DownPaymentPercent: 20},
		{Name: "long", InterestRate: 15.0, LoanTermYears: 7, DownPaymentPercent: 10},
	}
}

// ScenarioResult is a scenario evaluated for a given price.
type ScenarioResult struct {
	LoanScenario
	Price          float64 `json:"price"`
	DownPayment    float64 `json:"down_payment"`
	LoanAmount     float64 `json:"loan_amount"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

// Comparison names the best car for each metric.
type Comparison struct {
	Cars               []CarSummary `json:"cars"`
	LowestPrice        string       `json:"lowest_price"`
	LowestMonthly      string       `json:"lowest_monthly_payment"`
	LowestTotalPayment string       `json:"lowest_total_payment"`
	LowestInterest     string       `json:"lowest_total_interest"`
	LowestMileage      string       `json:"lowest_mileage"`
	Newest             string       `json:"newest"`
}

package handlers

import (
	"net/http"

	"car-loan-calculator/internal/amortization"
	"car-loan-calculator/internal/format"
	"car-loan-calculator/internal/models"
)

// CalculateLoanRequest is the body of POST /api/loan/calculate.
type CalculateLoanRequest struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         int     `json:"term_years"`
	IncludeSchedule   bool    `json:"include_schedule"`
}

// LoanDisplay holds amounts formatted for the configured locale.
type LoanDisplay struct {
	MonthlyPayment string `json:"monthly_payment"`
	TotalPayment   string `json:"total_payment"`
	TotalInterest  string `json:"total_interest"`
}

// CalculateLoanResponse carries unrounded results plus display strings.
type CalculateLoanResponse struct {
	MonthlyPayment float64                    `json:"monthly_payment"`
	TotalPayment   float64                    `json:"total_payment"`
	TotalInterest  float64                    `json:"total_interest"`
	Periods        int                        `json:"periods"`
	Display        LoanDisplay                `json:"display"`
	Schedule       []amortization.PeriodEntry `json:"schedule,omitempty"`
}

// EarlyPaymentDisplay holds early-payment amounts formatted for display.
type EarlyPaymentDisplay struct {
	SavedInterest     string `json:"saved_interest"`
	NewMonthlyPayment string `json:"new_monthly_payment,omitempty"`
}

// EarlyPaymentResponse wraps an early-payment result.
type EarlyPaymentResponse struct {
	Result  *amortization.EarlyPaymentResult `json:"result"`
	Display EarlyPaymentDisplay              `json:"display"`
}

// LoanCalculator serves the stateless calculation endpoints.
type LoanCalculator struct {
	formatter *format.Formatter
}

// NewLoanCalculator creates a calculator rendering amounts with formatter.
func NewLoanCalculator(formatter *format.Formatter) *LoanCalculator {
	if formatter == nil {
		formatter = format.NewFormatter("ru-RU")
	}
	return &LoanCalculator{formatter: formatter}
}

// Calculate runs the annuity calculation for req. Terms are held to the
// same limit as saved cars.
func (c *LoanCalculator) Calculate(req CalculateLoanRequest) (*CalculateLoanResponse, error) {
	if req.TermYears > models.MaxLoanTermYears {
		return nil, models.ErrInvalidLoanTerm
	}
	calc, err := amortization.CalculateLoan(req.Principal, req.AnnualRatePercent, req.TermYears)
	if err != nil {
		return nil, err
	}

	resp := &CalculateLoanResponse{
		MonthlyPayment: calc.MonthlyPayment,
		TotalPayment:   calc.TotalPayment,
		TotalInterest:  calc.TotalInterest,
		Periods:        calc.Periods(),
		Display:        c.loanDisplay(calc),
	}
	if req.IncludeSchedule {
		resp.Schedule = calc.Schedule
	}
	return resp, nil
}

// EarlyPayment parses the strategy leniently and applies the prepayment.
func (c *LoanCalculator) EarlyPayment(req amortization.EarlyPaymentRequest) (*EarlyPaymentResponse, error) {
	strategy, err := amortization.ParseStrategy(string(req.Strategy))
	if err != nil {
		return nil, err
	}
	req.Strategy = strategy

	result, err := amortization.CalculateEarlyPayment(req)
	if err != nil {
		return nil, err
	}
	return c.earlyPaymentResponse(result), nil
}

func (c *LoanCalculator) loanDisplay(calc *amortization.LoanCalculation) LoanDisplay {
	return LoanDisplay{
		MonthlyPayment: c.formatter.Currency(calc.MonthlyPayment),
		TotalPayment:   c.formatter.Currency(calc.TotalPayment),
		TotalInterest:  c.formatter.Currency(calc.TotalInterest),
	}
}

func (c *LoanCalculator) earlyPaymentResponse(result *amortization.EarlyPaymentResult) *EarlyPaymentResponse {
	display := EarlyPaymentDisplay{SavedInterest: c.formatter.Currency(result.SavedInterest)}
	if result.Strategy == amortization.StrategyReducePayment {
		display.NewMonthlyPayment = c.formatter.Currency(result.NewMonthlyPayment)
	}
	return &EarlyPaymentResponse{Result: result, Display: display}
}

// HandleCalculate serves POST /api/loan/calculate.
func (c *LoanCalculator) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateLoanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := c.Calculate(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

// HandleEarlyPayment serves POST /api/loan/early-payment.
func (c *LoanCalculator) HandleEarlyPayment(w http.ResponseWriter, r *http.Request) {
	var req amortization.EarlyPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := c.EarlyPayment(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

// Package models defines the data structures for the car loan calculator.
package models

import (
	"time"

	"car-loan-calculator/internal/amortization"
)

// Car represents a car under consideration together with its loan parameters
// and the cached results of the last loan calculation.
type Car struct {
	ID             string    `json:"id" db:"id"`
	URL            string    `json:"url,omitempty" db:"url"`
	Name           string    `json:"name" db:"name"`
	Year           int       `json:"year" db:"year"`
	Mileage        int       `json:"mileage" db:"mileage"`
	Price          float64   `json:"price" db:"price"`
	DownPayment    float64   `json:"down_payment" db:"down_payment"`
	LoanAmount     float64   `json:"loan_amount" db:"loan_amount"`
	InterestRate   float64   `json:"interest_rate" db:"interest_rate"`
	LoanTermYears  int       `json:"loan_term_years" db:"loan_term_years"`
	ImageURL       string    `json:"image_url,omitempty" db:"image_url"`
	MonthlyPayment float64   `json:"monthly_payment" db:"monthly_payment"`
	TotalPayment   float64   `json:"total_payment" db:"total_payment"`
	TotalInterest  float64   `json:"total_interest" db:"total_interest"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CarCreate represents the data needed to add a new car.
type CarCreate struct {
	URL           string  `json:"url,omitempty"`
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Year          int     `json:"year" validate:"required,gte=1900"`
	Mileage       int     `json:"mileage" validate:"gte=0"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	DownPayment   float64 `json:"down_payment" validate:"gte=0"`
	InterestRate  float64 `json:"interest_rate" validate:"gte=0"`
	LoanTermYears int     `json:"loan_term_years" validate:"required,gte=1"`
	ImageURL      string  `json:"image_url,omitempty"`
}

// CarUpdate holds a partial update. Nil fields are left unchanged.
type CarUpdate struct {
	URL           *string  `json:"url,omitempty"`
	Name          *string  `json:"name,omitempty"`
	Year          *int     `json:"year,omitempty"`
	Mileage       *int     `json:"mileage,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	DownPayment   *float64 `json:"down_payment,omitempty"`
	InterestRate  *float64 `json:"interest_rate,omitempty"`
	LoanTermYears *int     `json:"loan_term_years,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
}

// CarSummary is a lightweight view for listing and comparison.
type CarSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Year           int     `json:"year"`
	Price          float64 `json:"price"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

// NewCar builds a Car from creation data. The loan amount is the price less
// the down payment; loan results are left for the caller to fill in.
func NewCar(id string, c *CarCreate, now time.Time) *Car {
	return &Car{
		ID:            id,
		URL:           c.URL,
		Name:          c.Name,
		Year:          c.Year,
		Mileage:       c.Mileage,
		Price:         c.Price,
		DownPayment:   c.DownPayment,
		LoanAmount:    c.Price - c.DownPayment,
		InterestRate:  c.InterestRate,
		LoanTermYears: c.LoanTermYears,
		ImageURL:      c.ImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Apply merges a partial update into the car and recomputes the loan amount.
func (c *Car) Apply(u *CarUpdate, now time.Time) {
	if u.URL != nil {
		c.URL = *u.URL
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Year != nil {
		c.Year = *u.Year
	}
	if u.Mileage != nil {
		c.Mileage = *u.Mileage
	}
	if u.Price != nil {
		c.Price = *u.Price
	}
	if u.DownPayment != nil {
		c.DownPayment = *u.DownPayment
	}
	if u.InterestRate != nil {
		c.InterestRate = *u.InterestRate
	}
	if u.LoanTermYears != nil {
		c.LoanTermYears = *u.LoanTermYears
	}
	if u.ImageURL != nil {
		c.ImageURL = *u.ImageURL
	}
	c.LoanAmount = c.Price - c.DownPayment
	c.UpdatedAt = now
}

// ToCreate returns the user-editable fields of the car.
func (c *Car) ToCreate() *CarCreate {
	return &CarCreate{
		URL:           c.URL,
		Name:          c.Name,
		Year:          c.Year,
		Mileage:       c.Mileage,
		Price:         c.Price,
		DownPayment:   c.DownPayment,
		InterestRate:  c.InterestRate,
		LoanTermYears: c.LoanTermYears,
		ImageURL:      c.ImageURL,
	}
}

// Terms returns the loan parameters of the car.
func (c *Car) Terms() amortization.LoanTerms {
	return amortization.LoanTerms{
		Principal:         c.LoanAmount,
		AnnualRatePercent: c.InterestRate,
		TermYears:         c.LoanTermYears,
	}
}

// ApplyCalculation caches the totals of a loan calculation on the car.
func (c *Car) ApplyCalculation(calc *amortization.LoanCalculation) {
	c.MonthlyPayment = calc.MonthlyPayment
	c.TotalPayment = calc.TotalPayment
	c.TotalInterest = calc.TotalInterest
}

// ToSummary converts a Car to CarSummary.
func (c *Car) ToSummary() CarSummary {
	return CarSummary{
		ID:             c.ID,
		Name:           c.Name,
		Year:           c.Year,
		Price:          c.Price,
		MonthlyPayment: c.MonthlyPayment,
		TotalInterest:  c.TotalInterest,
	}
}

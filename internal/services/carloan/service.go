// Package carloan manages car records and their loan calculations.
package carloan

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"car-loan-calculator/internal/amortization"
	"car-loan-calculator/internal/models"
	"car-loan-calculator/internal/services/cache"
	"car-loan-calculator/internal/utils"
)

// Service keeps car records and their cached loan results consistent.
// Loan results are always recomputed from scratch when parameters change.
type Service struct {
	store  CarStore
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a new car loan service.
func NewService(store CarStore, c cache.Cache) *Service {
	return &Service{
		store:  store,
		cache:  c,
		logger: utils.Named("carloan"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// AddCar validates the car, computes its loan and stores both.
func (s *Service) AddCar(ctx context.Context, input *models.CarCreate) (*models.Car, error) {
	if err := models.ValidateCarCreate(input); err != nil {
		return nil, err
	}

	car := models.NewCar(s.newID(), input, s.now())
	calc, err := amortization.CalculateTerms(car.Terms())
	if err != nil {
		return nil, fmt.Errorf("failed to calculate loan: %w", err)
	}
	car.ApplyCalculation(calc)

	if err := s.store.Create(ctx, car); err != nil {
		return nil, err
	}
	s.cacheSchedule(ctx, car.ID, calc)

	s.logger.Info("Car added",
		zap.String("car_id", car.ID),
		zap.String("name", car.Name),
		zap.Float64("loan_amount", car.LoanAmount),
		zap.Float64("monthly_payment", car.MonthlyPayment),
	)

	return car, nil
}

// UpdateCar merges a partial update and recomputes the loan.
func (s *Service) UpdateCar(ctx context.Context, id string, update *models.CarUpdate) (*models.Car, error) {
	car, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	car.Apply(update, s.now())
	if err := models.ValidateCarCreate(car.ToCreate()); err != nil {
		return nil, err
	}

	calc, err := amortization.CalculateTerms(car.Terms())
	if err != nil {
		return nil, fmt.Errorf("failed to calculate loan: %w", err)
	}
	car.ApplyCalculation(calc)

	if err := s.store.Update(ctx, car); err != nil {
		return nil, err
	}
	s.cacheSchedule(ctx, car.ID, calc)

	s.logger.Info("Car updated",
		zap.String("car_id", car.ID),
		zap.Float64("monthly_payment", car.MonthlyPayment),
	)

	return car, nil
}

// GetCar returns a car by ID.
func (s *Service) GetCar(ctx context.Context, id string) (*models.Car, error) {
	return s.store.GetByID(ctx, id)
}

// ListCars returns all cars.
func (s *Service) ListCars(ctx context.Context) ([]*models.Car, error) {
	return s.store.List(ctx)
}

// DeleteCar removes a car and its cached schedule.
func (s *Service) DeleteCar(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.evictSchedule(ctx, id)

	s.logger.Info("Car deleted", zap.String("car_id", id))
	return nil
}

// ClearCars removes every car.
func (s *Service) ClearCars(ctx context.Context) (int64, error) {
	cars, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, car := range cars {
		s.evictSchedule(ctx, car.ID)
	}

	s.logger.Info("Cars cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}

// Schedule returns the full amortization schedule of a car, served from the
// cache when possible.
func (s *Service) Schedule(ctx context.Context, id string) (*models.Car, *amortization.LoanCalculation, error) {
	car, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if payload, ok := s.cache.Get(ctx, cache.ScheduleKey(id)); ok {
		var calc amortization.LoanCalculation
		if err := json.Unmarshal([]byte(payload), &calc); err == nil && calc.Periods() == car.Terms().Periods() && calc.MonthlyPayment == car.MonthlyPayment {
			return car, &calc, nil
		}
		s.logger.Warn("Discarding stale cached schedule", zap.String("car_id", id))
	}

	calc, err := amortization.CalculateTerms(car.Terms())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to calculate loan: %w", err)
	}
	s.cacheSchedule(ctx, id, calc)

	return car, calc, nil
}

// EarlyPayment simulates paying extra against a car's loan once paidPeriods
// regular installments have been made.
func (s *Service) EarlyPayment(
	ctx context.Context,
	id string,
	paidPeriods int,
	extra float64,
	strategy amortization.Strategy,
) (*amortization.EarlyPaymentResult, error) {
	car, calc, err := s.Schedule(ctx, id)
	if err != nil {
		return nil, err
	}

	balance, err := amortization.BalanceAfter(calc, paidPeriods)
	if err != nil {
		return nil, err
	}

	result, err := amortization.CalculateEarlyPayment(amortization.EarlyPaymentRequest{
		CurrentBalance:        balance,
		CurrentMonthlyPayment: calc.MonthlyPayment,
		AnnualRatePercent:     car.InterestRate,
		RemainingPeriods:      calc.Periods() - paidPeriods,
		ExtraAmount:           extra,
		Strategy:              strategy,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Early payment simulated",
		zap.String("car_id", id),
		zap.String("strategy", string(strategy)),
		zap.Float64("extra", extra),
		zap.Float64("saved_interest", result.SavedInterest),
	)

	return result, nil
}

// Compare loads the given cars (all cars when ids is empty) and names the
// best one for each metric. Ties go to the car listed first.
func (s *Service) Compare(ctx context.Context, ids []string) (*models.Comparison, error) {
	var cars []*models.Car
	if len(ids) == 0 {
		all, err := s.store.List(ctx)
		if err != nil {
			return nil, err
		}
		cars = all
	} else {
		for _, id := range ids {
			car, err := s.store.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			cars = append(cars, car)
		}
	}

	if len(cars) < 2 {
		return nil, models.ErrNotEnoughCars
	}

	cmp := &models.Comparison{Cars: make([]models.CarSummary, 0, len(cars))}
	best := func(better func(a, b *models.Car) bool) string {
		winner := cars[0]
		for _, car := range cars[1:] {
			if better(car, winner) {
				winner = car
			}
		}
		return winner.ID
	}

	for _, car := range cars {
		cmp.Cars = append(cmp.Cars, car.ToSummary())
	}
	cmp.LowestPrice = best(func(a, b *models.Car) bool { return a.Price < b.Price })
	cmp.LowestMonthly = best(func(a, b *models.Car) bool { return a.MonthlyPayment < b.MonthlyPayment })
	cmp.LowestTotalPayment = best(func(a, b *models.Car) bool { return a.TotalPayment < b.TotalPayment })
	cmp.LowestInterest = best(func(a, b *models.Car) bool { return a.TotalInterest < b.TotalInterest })
	cmp.LowestMileage = best(func(a, b *models.Car) bool { return a.Mileage < b.Mileage })
	cmp.Newest = best(func(a, b *models.Car) bool { return a.Year > b.Year })

	return cmp, nil
}

// Scenarios evaluates the preset loan scenarios for a car price.
func (s *Service) Scenarios(price float64) ([]models.ScenarioResult, error) {
	scenarios := models.DefaultLoanScenarios()
	results := make([]models.ScenarioResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		downPayment := price * scenario.DownPaymentPercent / 100
		loanAmount := price - downPayment

		calc, err := amortization.CalculateLoan(loanAmount, scenario.InterestRate, scenario.LoanTermYears)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		results = append(results, models.ScenarioResult{
			LoanScenario:   scenario,
			Price:          price,
			DownPayment:    downPayment,
			LoanAmount:     loanAmount,
			MonthlyPayment: calc.MonthlyPayment,
			TotalPayment:   calc.TotalPayment,
			TotalInterest:  calc.TotalInterest,
		})
	}

	return results, nil
}

// SeedDemo adds the demo cars in one batch.
func (s *Service) SeedDemo(ctx context.Context) ([]*models.Car, error) {
	now := s.now()
	cars := make([]*models.Car, 0, len(DemoCars()))
	calcs := make([]*amortization.LoanCalculation, 0, len(DemoCars()))

	for i, input := range DemoCars() {
		// distinct timestamps keep the demo order stable when listing
		car := models.NewCar(s.newID(), input, now.Add(time.Duration(i)*time.Millisecond))
		calc, err := amortization.CalculateTerms(car.Terms())
		if err != nil {
			return nil, fmt.Errorf("failed to calculate demo loan for %s: %w", car.Name, err)
		}
		car.ApplyCalculation(calc)
		cars = append(cars, car)
		calcs = append(calcs, calc)
	}

	if err := s.store.BulkCreate(ctx, cars); err != nil {
		return nil, err
	}
	for i, car := range cars {
		s.cacheSchedule(ctx, car.ID, calcs[i])
	}

	s.logger.Info("Demo cars added", zap.Int("count", len(cars)))
	return cars, nil
}

// cacheSchedule is best effort; a failed write only costs a recomputation.
func (s *Service) cacheSchedule(ctx context.Context, id string, calc *amortization.LoanCalculation) {
	payload, err := json.Marshal(calc)
	if err != nil {
		s.logger.Warn("Failed to encode schedule", zap.String("car_id", id), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, cache.ScheduleKey(id), string(payload)); err != nil {
		s.logger.Warn("Failed to cache schedule", zap.String("car_id", id), zap.Error(err))
	}
}

func (s *Service) evictSchedule(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, cache.ScheduleKey(id)); err != nil {
		s.logger.Warn("Failed to evict schedule", zap.String("car_id", id), zap.Error(err))
	}
}

// Package database provides PostgreSQL persistence for car records.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"car-loan-calculator/internal/models"
)

const carColumns = `id, url, name, year, mileage, price, down_payment, loan_amount,
	interest_rate, loan_term_years, image_url, monthly_payment, total_payment,
	total_interest, created_at, updated_at`

const insertCar = `
	INSERT INTO cars (` + carColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

// CarRepository handles car database operations.
type CarRepository struct {
	db *DB
}

// NewCarRepository creates a new car repository.
func NewCarRepository(db *DB) *CarRepository {
	return &CarRepository{db: db}
}

func carArgs(car *models.Car) []interface{} {
	return []interface{}{
		car.ID,
		car.URL,
		car.Name,
		car.Year,
		car.Mileage,
		car.Price,
		car.DownPayment,
		car.LoanAmount,
		car.InterestRate,
		car.LoanTermYears,
		car.ImageURL,
		car.MonthlyPayment,
		car.TotalPayment,
		car.TotalInterest,
		car.CreatedAt,
		car.UpdatedAt,
	}
}

// Create inserts a new car.
func (r *CarRepository) Create(ctx context.Context, car *models.Car) error {
	if _, err := r.db.ExecContext(ctx, insertCar, carArgs(car)...); err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

// BulkCreate inserts cars in a single transaction.
func (r *CarRepository) BulkCreate(ctx context.Context, cars []*models.Car) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, car := range cars {
			if _, err := tx.Exec(ctx, insertCar, carArgs(car)...); err != nil {
				return fmt.Errorf("failed to create car %s: %w", car.Name, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a car by its ID, returning models.ErrCarNotFound when
// there is none.
func (r *CarRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`

	car, err := scanCar(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	return car, nil
}

// List returns all cars, oldest first.
func (r *CarRepository) List(ctx context.Context) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	var cars []*models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cars: %w", err)
	}

	return cars, nil
}

// Update overwrites every column of an existing car.
func (r *CarRepository) Update(ctx context.Context, car *models.Car) error {
	query := `
		UPDATE cars SET
			url = $2, name = $3, year = $4, mileage = $5, price = $6,
			down_payment = $7, loan_amount = $8, interest_rate = $9,
			loan_term_years = $10, image_url = $11, monthly_payment = $12,
			total_payment = $13, total_interest = $14, updated_at = $15
		WHERE id = $1`

	args := carArgs(car)
	// created_at is never rewritten
	args = append(args[:14], car.UpdatedAt)

	affected, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	if affected == 0 {
		return models.ErrCarNotFound
	}
	return nil
}

// Delete removes a car.
func (r *CarRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	if affected == 0 {
		return models.ErrCarNotFound
	}
	return nil
}

// DeleteAll removes every car and returns how many were deleted.
func (r *CarRepository) DeleteAll(ctx context.Context) (int64, error) {
	affected, err := r.db.ExecContext(ctx, `DELETE FROM cars`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cars: %w", err)
	}
	return affected, nil
}

func scanCar(row pgx.Row) (*models.Car, error) {
	var car models.Car
	err := row.Scan(
		&car.ID,
		&car.URL,
		&car.Name,
		&car.Year,
		&car.Mileage,
		&car.Price,
		&car.DownPayment,
		&car.LoanAmount,
		&car.InterestRate,
		&car.LoanTermYears,
		&car.ImageURL,
		&car.MonthlyPayment,
		&car.TotalPayment,
		&car.TotalInterest,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// Package database provides PostgreSQL persistence for car records.
package database

import (
	"context"
	"fmt"
)

// Schema creates the cars table. Loan results are stored next to the loan
// parameters and recomputed whenever a parameter changes.
const Schema = `
CREATE TABLE IF NOT EXISTS cars (
	id               TEXT PRIMARY KEY,
	url              TEXT NOT NULL DEFAULT '',
	name             TEXT NOT NULL,
	year             INTEGER NOT NULL,
	mileage          INTEGER NOT NULL DEFAULT 0,
	price            DOUBLE PRECISION NOT NULL CHECK (price > 0),
	down_payment     DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (down_payment >= 0),
	loan_amount      DOUBLE PRECISION NOT NULL CHECK (loan_amount > 0),
	interest_rate    DOUBLE PRECISION NOT NULL CHECK (interest_rate >= 0),
	loan_term_years  INTEGER NOT NULL CHECK (loan_term_years >= 1),
	image_url        TEXT NOT NULL DEFAULT '',
	monthly_payment  DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_payment    DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_interest   DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cars_created_at ON cars (created_at);
`

// Migrate applies Schema.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

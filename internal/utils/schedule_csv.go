// Package utils provides logging and export helpers for the car loan calculator.
package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"car-loan-calculator/internal/amortization"
	"car-loan-calculator/internal/format"
)

// ScheduleColumns is the header row of an exported schedule.
var ScheduleColumns = []string{
	"period",
	"payment",
	"principal",
	"interest",
	"remaining_balance",
}

// WriteScheduleCSV writes the schedule of calc as CSV with amounts rounded
// to kopecks.
func WriteScheduleCSV(w io.Writer, calc *amortization.LoanCalculation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ScheduleColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, entry := range calc.Schedule {
		record := []string{
			strconv.Itoa(entry.Period),
			formatAmount(entry.Payment),
			formatAmount(entry.Principal),
			formatAmount(entry.Interest),
			formatAmount(entry.RemainingBalance),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write period %d: %w", entry.Period, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(format.Round2(v), 'f', 2, 64)
}

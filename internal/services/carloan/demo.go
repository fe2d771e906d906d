// Package carloan manages car records and their loan calculations.
package carloan

import "car-loan-calculator/internal/models"

// DemoCars are sample listings used to populate an empty garage.
func DemoCars() []*models.CarCreate {
	return []*models.CarCreate{
		{
			Name:          "BMW X5 2020",
			Year:          2020,
			Mileage:       45000,
			Price:         4_500_000,
			DownPayment:   1_000_000,
			InterestRate:  12.5,
			LoanTermYears: 5,
			URL:           "https://auto.ru/cars/bmw/x5/used/sale/1234567890/",
		},
		{
			Name:          "Mercedes-Benz C-Class 2019",
			Year:          2019,
			Mileage:       32000,
			Price:         3_200_000,
			DownPayment:   800_000,
			InterestRate:  11.8,
			LoanTermYears: 4,
			URL:           "https://auto.ru/cars/mercedes/c_klasse/used/sale/0987654321/",
		},
		{
			Name:          "Audi A4 2021",
			Year:          2021,
			Mileage:       15000,
			Price:         3_800_000,
			DownPayment:   1_200_000,
			InterestRate:  13.2,
			LoanTermYears: 6,
			URL:           "https://auto.ru/cars/audi/a4/used/sale/5678901234/",
		},
	}
}

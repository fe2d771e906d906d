package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"car-loan-calculator/internal/amortization"
	"car-loan-calculator/internal/models"
	"car-loan-calculator/internal/services/carloan"
	s3service "car-loan-calculator/internal/services/s3"
	"car-loan-calculator/internal/services/ses"
	"car-loan-calculator/internal/utils"
)

// ScheduleExporter uploads a schedule and returns a download link.
type ScheduleExporter interface {
	ExportSchedule(ctx context.Context, carID string, calc *amortization.LoanCalculation) (*s3service.ExportResult, error)
}

// SummaryMailer sends the loan summary of a car.
type SummaryMailer interface {
	SendLoanSummary(ctx context.Context, params ses.LoanSummaryParams) (*ses.SendEmailResult, error)
}

// CarHandler serves the car endpoints.
type CarHandler struct {
	service    *carloan.Service
	calculator *LoanCalculator
	exporter   ScheduleExporter
	mailer     SummaryMailer
	logger     *zap.Logger
}

// NewCarHandler creates a car handler. exporter and mailer may be nil, in
// which case the export and email endpoints answer 503.
func NewCarHandler(service *carloan.Service, calculator *LoanCalculator, exporter ScheduleExporter, mailer SummaryMailer) *CarHandler {
	return &CarHandler{
		service:    service,
		calculator: calculator,
		exporter:   exporter,
		mailer:     mailer,
		logger:     utils.Named("http.cars"),
	}
}

// ScheduleResponse is the body of GET /api/cars/{id}/schedule.
type ScheduleResponse struct {
	Car         *models.Car                   `json:"car"`
	Display     LoanDisplay                   `json:"display"`
	Calculation *amortization.LoanCalculation `json:"calculation"`
}

// CarEarlyPaymentRequest is the body of POST /api/cars/{id}/early-payment.
type CarEarlyPaymentRequest struct {
	PaidPeriods int     `json:"paid_periods"`
	ExtraAmount float64 `json:"extra_amount"`
	Strategy    string  `json:"strategy"`
}

// EmailRequest is the body of POST /api/cars/{id}/email.
type EmailRequest struct {
	Email          string `json:"email"`
	AttachSchedule bool   `json:"attach_schedule"`
}

// EmailResponse reports a sent summary.
type EmailResponse struct {
	MessageID   string `json:"message_id"`
	ScheduleURL string `json:"schedule_url,omitempty"`
}

// List serves GET /api/cars.
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.ListCars(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, cars)
}

// Create serves POST /api/cars.
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CarCreate
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, err)
		return
	}

	car, err := h.service.AddCar(r.Context(), &input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, car)
}

// Get serves GET /api/cars/{id}.
func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	car, err := h.service.GetCar(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, car)
}

// Update serves PUT /api/cars/{id}.
func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update models.CarUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, err)
		return
	}

	car, err := h.service.UpdateCar(r.Context(), r.PathValue("id"), &update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, car)
}

// Delete serves DELETE /api/cars/{id}.
func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCar(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Car deleted"})
}

// Clear serves DELETE /api/cars.
func (h *CarHandler) Clear(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.ClearCars(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "All cars deleted",
		Data:    map[string]int64{"deleted": deleted},
	})
}

// Schedule serves GET /api/cars/{id}/schedule. With ?format=csv the
// schedule is streamed as a CSV attachment.
func (h *CarHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	car, calc, err := h.service.Schedule(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", s3service.CSVContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="schedule-`+car.ID+`.csv"`)
		if err := utils.WriteScheduleCSV(w, calc); err != nil {
			h.logger.Error("Failed to stream schedule", zap.String("car_id", car.ID), zap.Error(err))
		}
		return
	}

	writeData(w, http.StatusOK, ScheduleResponse{
		Car:         car,
		Display:     h.calculator.loanDisplay(calc),
		Calculation: calc,
	})
}

// EarlyPayment serves POST /api/cars/{id}/early-payment.
func (h *CarHandler) EarlyPayment(w http.ResponseWriter, r *http.Request) {
	var req CarEarlyPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	strategy, err := amortization.ParseStrategy(req.Strategy)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.EarlyPayment(r.Context(), r.PathValue("id"), req.PaidPeriods, req.ExtraAmount, strategy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, h.calculator.earlyPaymentResponse(result))
}

// Export serves POST /api/cars/{id}/export.
func (h *CarHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeStatus(w, http.StatusServiceUnavailable, "schedule export is not configured")
		return
	}

	car, calc, err := h.service.Schedule(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.exporter.ExportSchedule(r.Context(), car.ID, calc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// Email serves POST /api/cars/{id}/email.
func (h *CarHandler) Email(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		writeStatus(w, http.StatusServiceUnavailable, "email is not configured")
		return
	}

	var req EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	car, calc, err := h.service.Schedule(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var scheduleURL string
	if req.AttachSchedule && h.exporter != nil {
		export, err := h.exporter.ExportSchedule(r.Context(), car.ID, calc)
		if err != nil {
			// the summary is still useful without the link
			h.logger.Warn("Schedule export for email failed", zap.String("car_id", car.ID), zap.Error(err))
		} else {
			scheduleURL = export.URL
		}
	}

	sent, err := h.mailer.SendLoanSummary(r.Context(), ses.BuildLoanSummaryParams(req.Email, car, scheduleURL))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, EmailResponse{MessageID: sent.MessageID, ScheduleURL: scheduleURL})
}

// Compare serves GET /api/compare?ids=a,b. Without ids every car is compared.
func (h *CarHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	cmp, err := h.service.Compare(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, cmp)
}

// Scenarios serves GET /api/scenarios?price=.
func (h *CarHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	price, err := strconv.ParseFloat(r.URL.Query().Get("price"), 64)
	if err != nil || price <= 0 {
		writeError(w, models.ErrInvalidPrice)
		return
	}

	results, err := h.service.Scenarios(price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, results)
}

// SeedDemo serves POST /api/demo.
func (h *CarHandler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.SeedDemo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, cars)
}

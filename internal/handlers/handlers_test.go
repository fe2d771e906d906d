package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-loan-calculator/internal/amortization"
	"car-loan-calculator/internal/format"
	"car-loan-calculator/internal/listing"
	"car-loan-calculator/internal/models"
	"car-loan-calculator/internal/services/cache"
	"car-loan-calculator/internal/services/carloan"
	s3service "car-loan-calculator/internal/services/s3"
	"car-loan-calculator/internal/services/ses"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fakeExporter struct {
	err   error
	calls int
}

func (f *fakeExporter) ExportSchedule(_ context.Context, carID string, calc *amortization.LoanCalculation) (*s3service.ExportResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &s3service.ExportResult{
		URL:  "https://bucket.example.com/schedules/" + carID + ".csv",
		Key:  "schedules/" + carID + ".csv",
		Size: len(calc.Schedule),
	}, nil
}

type fakeMailer struct {
	params ses.LoanSummaryParams
	err    error
}

func (f *fakeMailer) SendLoanSummary(_ context.Context, params ses.LoanSummaryParams) (*ses.SendEmailResult, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailResult{MessageID: "msg-1", SentAt: time.Now()}, nil
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func newTestRouter(exporter ScheduleExporter, mailer SummaryMailer) http.Handler {
	svc := carloan.NewService(carloan.NewMemoryStore(), cache.NewMemoryCache(time.Hour))
	calculator := NewLoanCalculator(format.NewFormatter("ru-RU"))
	rt := &Router{
		Health:     NewHealthHandler("test"),
		Calculator: calculator,
		Cars:       NewCarHandler(svc, calculator, exporter, mailer),
		Listing:    NewListingHandler(listing.NewParserWithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })),
	}
	return rt.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func createCar(t *testing.T, h http.Handler, name string, price, downPayment, rate float64, years int) *models.Car {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"year":2021,"mileage":30000,"price":%v,"down_payment":%v,"interest_rate":%v,"loan_term_years":%d}`,
		name, price, downPayment, rate, years)
	w, env := do(t, h, http.MethodPost, "/api/cars", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var car models.Car
	decodeData(t, env, &car)
	return &car
}

func TestCalculateLoan(t *testing.T) {
	h := newTestRouter(nil, nil)

	w, env := do(t, h, http.MethodPost, "/api/loan/calculate",
		`{"principal":2500000,"annual_rate_percent":12,"term_years":5,"include_schedule":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var resp CalculateLoanResponse
	decodeData(t, env, &resp)
	assert.InDelta(t, 55611.12, resp.MonthlyPayment, 0.01)
	assert.InDelta(t, 836667.15, resp.TotalInterest, 0.01)
	assert.Equal(t, 60, resp.Periods)
	assert.Len(t, resp.Schedule, 60)
	assert.Equal(t, format.Currency(resp.MonthlyPayment), resp.Display.MonthlyPayment)
}

func TestCalculateLoan_WithoutSchedule(t *testing.T) {
	h := newTestRouter(nil, nil)

	w, env := do(t, h, http.MethodPost, "/api/loan/calculate",
		`{"principal":1200000,"annual_rate_percent":0,"term_years":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CalculateLoanResponse
	decodeData(t, env, &resp)
	assert.InDelta(t, 100000, resp.MonthlyPayment, 1e-9)
	assert.Empty(t, resp.Schedule)
}

func TestCalculateLoan_BadRequests(t *testing.T) {
	h := newTestRouter(nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"zero principal", `{"principal":0,"annual_rate_percent":12,"term_years":5}`},
		{"negative rate", `{"principal":1000,"annual_rate_percent":-1,"term_years":5}`},
		{"zero term", `{"principal":1000,"annual_rate_percent":12,"term_years":0}`},
		{"term past the car limit", `{"principal":1000,"annual_rate_percent":12,"term_years":31}`},
		{"huge zero-rate term", `{"principal":1000,"annual_rate_percent":0,"term_years":100000000}`},
		{"malformed body", `{"principal":`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, h, http.MethodPost, "/api/loan/calculate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestCalculateLoan_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/loan/calculate", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestEarlyPayment_Stateless(t *testing.T) {
	h := newTestRouter(nil, nil)

	body := `{"current_balance":2469388.88,"current_monthly_payment":55611.12,"annual_rate_percent":12,
		"remaining_periods":59,"extra_amount":500000,"strategy":"reduce-term"}`
	w, env := do(t, h, http.MethodPost, "/api/loan/early-payment", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp EarlyPaymentResponse
	decodeData(t, env, &resp)
	require.NotNil(t, resp.Result)
	assert.Equal(t, amortization.StrategyReduceTerm, resp.Result.Strategy)
	assert.Equal(t, 53, resp.Result.NewTermPeriods)
	assert.Equal(t, 6, resp.Result.SavedPeriods)
	assert.Empty(t, resp.Display.NewMonthlyPayment)

	body = strings.Replace(body, "reduce-term", "ReducePayment", 1)
	w, env = do(t, h, http.MethodPost, "/api/loan/early-payment", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, env, &resp)
	assert.InDelta(t, 51107.08, resp.Result.NewMonthlyPayment, 0.01)
	assert.NotEmpty(t, resp.Display.NewMonthlyPayment)

	body = strings.Replace(body, "ReducePayment", "skip", 1)
	w, _ = do(t, h, http.MethodPost, "/api/loan/early-payment", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEarlyPayment_ZeroFieldsKept(t *testing.T) {
	h := newTestRouter(nil, nil)

	body := `{"current_balance":100000,"current_monthly_payment":10000,"annual_rate_percent":12,
		"remaining_periods":11,"extra_amount":100000,"strategy":"reduce_term"}`
	w, env := do(t, h, http.MethodPost, "/api/loan/early-payment", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var raw struct {
		Result map[string]interface{} `json:"result"`
	}
	decodeData(t, env, &raw)
	require.Contains(t, raw.Result, "new_term_periods")
	assert.Equal(t, 0.0, raw.Result["new_term_periods"])
	assert.Equal(t, 11.0, raw.Result["saved_periods"])
	assert.NotContains(t, raw.Result, "new_monthly_payment")

	body = strings.Replace(body, "reduce_term", "reduce_payment", 1)
	w, env = do(t, h, http.MethodPost, "/api/loan/early-payment", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	raw.Result = nil
	decodeData(t, env, &raw)
	require.Contains(t, raw.Result, "new_monthly_payment")
	assert.Equal(t, 0.0, raw.Result["new_monthly_payment"])
	assert.NotContains(t, raw.Result, "new_term_periods")
}

func TestCars_CRUD(t *testing.T) {
	h := newTestRouter(nil, nil)

	car := createCar(t, h, "Audi A4", 3500000, 500000, 11.9, 6)
	assert.NotEmpty(t, car.ID)
	assert.Equal(t, 3000000.0, car.LoanAmount)
	assert.InDelta(t, 52467.52, car.MonthlyPayment, 0.01)

	w, env := do(t, h, http.MethodGet, "/api/cars/"+car.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.Car
	decodeData(t, env, &fetched)
	assert.Equal(t, car.Name, fetched.Name)

	w, env = do(t, h, http.MethodPut, "/api/cars/"+car.ID, `{"loan_term_years":3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Car
	decodeData(t, env, &updated)
	assert.Equal(t, 3, updated.LoanTermYears)
	assert.Greater(t, updated.MonthlyPayment, car.MonthlyPayment)

	w, env = do(t, h, http.MethodGet, "/api/cars", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cars []models.Car
	decodeData(t, env, &cars)
	assert.Len(t, cars, 1)

	w, _ = do(t, h, http.MethodDelete, "/api/cars/"+car.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/cars/"+car.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrCarNotFound.Error(), env.Error)
}

func TestCars_CreateValidation(t *testing.T) {
	h := newTestRouter(nil, nil)

	w, env := do(t, h, http.MethodPost, "/api/cars",
		`{"name":"Lada","year":2020,"price":1000000,"down_payment":1000000,"interest_rate":10,"loan_term_years":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrInvalidDownPayment.Error(), env.Error)

	w, _ = do(t, h, http.MethodPut, "/api/cars/missing", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCars_Schedule(t *testing.T) {
	h := newTestRouter(nil, nil)
	car := createCar(t, h, "Mercedes C-Class", 3200000, 800000, 9.9, 4)

	w, env := do(t, h, http.MethodGet, "/api/cars/"+car.ID+"/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ScheduleResponse
	decodeData(t, env, &resp)
	require.NotNil(t, resp.Calculation)
	assert.Len(t, resp.Calculation.Schedule, 48)
	assert.Equal(t, car.ID, resp.Car.ID)

	w, _ = do(t, h, http.MethodGet, "/api/cars/"+car.ID+"/schedule?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, s3service.CSVContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), car.ID)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 49)
}

func TestCars_EarlyPayment(t *testing.T) {
	h := newTestRouter(nil, nil)
	car := createCar(t, h, "Audi A4", 3500000, 500000, 11.9, 6)

	w, env := do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/early-payment",
		`{"paid_periods":12,"extra_amount":500000,"strategy":"term"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp EarlyPaymentResponse
	decodeData(t, env, &resp)
	assert.Greater(t, resp.Result.SavedPeriods, 0)
	assert.Greater(t, resp.Result.SavedInterest, 0.0)

	w, _ = do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/early-payment",
		`{"paid_periods":12,"extra_amount":-1,"strategy":"term"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/cars/missing/early-payment",
		`{"paid_periods":1,"extra_amount":1,"strategy":"term"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCars_ExportAndEmail(t *testing.T) {
	exporter := &fakeExporter{}
	mailer := &fakeMailer{}
	h := newTestRouter(exporter, mailer)
	car := createCar(t, h, "BMW X5", 4500000, 1000000, 12.5, 5)

	w, env := do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/export", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var export s3service.ExportResult
	decodeData(t, env, &export)
	assert.Equal(t, 60, export.Size)

	w, env = do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/email",
		`{"email":"buyer@example.com","attach_schedule":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sent EmailResponse
	decodeData(t, env, &sent)
	assert.Equal(t, "msg-1", sent.MessageID)
	assert.Equal(t, export.URL, sent.ScheduleURL)
	assert.Equal(t, "buyer@example.com", mailer.params.To)
	assert.Equal(t, "BMW X5", mailer.params.CarName)
	assert.Equal(t, 2, exporter.calls)

	mailer.err = fmt.Errorf("%w: %q", ses.ErrInvalidRecipient, "bad")
	w, _ = do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/email", `{"email":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCars_EmailSurvivesExportFailure(t *testing.T) {
	exporter := &fakeExporter{err: errors.New("bucket missing")}
	mailer := &fakeMailer{}
	h := newTestRouter(exporter, mailer)
	car := createCar(t, h, "BMW X5", 4500000, 1000000, 12.5, 5)

	w, env := do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/export", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Error)

	w, env = do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/email",
		`{"email":"buyer@example.com","attach_schedule":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var sent EmailResponse
	decodeData(t, env, &sent)
	assert.Empty(t, sent.ScheduleURL)
}

func TestCars_ExportNotConfigured(t *testing.T) {
	h := newTestRouter(nil, nil)
	car := createCar(t, h, "BMW X5", 4500000, 1000000, 12.5, 5)

	w, _ := do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/export", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/cars/"+car.ID+"/email", `{"email":"buyer@example.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCompareAndDemo(t *testing.T) {
	h := newTestRouter(nil, nil)

	w, _ := do(t, h, http.MethodGet, "/api/compare", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := do(t, h, http.MethodPost, "/api/demo", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var demo []models.Car
	decodeData(t, env, &demo)
	require.Len(t, demo, 3)

	w, env = do(t, h, http.MethodGet, "/api/compare", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cmp models.Comparison
	decodeData(t, env, &cmp)
	assert.Len(t, cmp.Cars, 3)
	assert.NotEmpty(t, cmp.LowestMonthly)

	w, env = do(t, h, http.MethodGet, "/api/compare?ids="+demo[0].ID+",%20"+demo[1].ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, env, &cmp)
	assert.Len(t, cmp.Cars, 2)

	w, _ = do(t, h, http.MethodGet, "/api/compare?ids="+demo[0].ID+",missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, h, http.MethodDelete, "/api/cars", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":3}`, string(env.Data))
}

func TestScenarios(t *testing.T) {
	h := newTestRouter(nil, nil)

	w, env := do(t, h, http.MethodGet, "/api/scenarios?price=3000000", "")
	require.Equal(t, http.StatusOK, w.Code)
	var results []models.ScenarioResult
	decodeData(t, env, &results)
	require.Len(t, results, 3)
	assert.Equal(t, "economy", results[0].Name)
	assert.Equal(t, 2100000.0, results[0].LoanAmount)

	for _, target := range []string{"/api/scenarios", "/api/scenarios?price=abc", "/api/scenarios?price=-5"} {
		w, _ = do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestListingParse(t *testing.T) {
	h := newTestRouter(nil, nil)

	w, env := do(t, h, http.MethodPost, "/api/listing/parse",
		`{"url":"https://auto.ru/cars/bmw/x5/used/?year_from=2020&price_to=4500000"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ListingResponse
	decodeData(t, env, &resp)
	assert.True(t, resp.Supported)
	require.NotNil(t, resp.Listing)
	assert.Equal(t, "bmw x5", resp.Listing.Name)
	assert.Equal(t, 2020, resp.Listing.Year)
	assert.Equal(t, 4500000.0, resp.Listing.Price)

	page := `<html><head><meta property=\"og:title\" content=\"Kia Rio 2019\"></head></html>`
	w, env = do(t, h, http.MethodPost, "/api/listing/parse",
		`{"url":"https://auto.ru/cars/","html":"`+page+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = ListingResponse{}
	decodeData(t, env, &resp)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, "Kia Rio 2019", resp.Meta.Title)
	assert.Equal(t, "Kia Rio 2019", resp.Listing.Name)
	assert.Equal(t, 2024, resp.Listing.Year)

	w, env = do(t, h, http.MethodPost, "/api/listing/parse", `{"url":"https://www.drom.ru/auto/"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = ListingResponse{}
	decodeData(t, env, &resp)
	assert.True(t, resp.Supported)
	assert.Nil(t, resp.Listing)
}

func TestHealth(t *testing.T) {
	health := NewHealthHandler("test")
	health.AddCheck("database", stubChecker{})
	health.SetStatus("cache", "in-memory")

	w := httptest.NewRecorder()
	health.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.Components["database"])
	assert.Equal(t, "in-memory", resp.Components["cache"])

	health.AddCheck("redis", stubChecker{err: errors.New("connection refused")})
	w = httptest.NewRecorder()
	health.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "disconnected", resp.Components["redis"])
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrCarNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", models.ErrCarNotFound), http.StatusNotFound},
		{models.ErrInvalidLoanTerm, http.StatusBadRequest},
		{models.ErrNotEnoughCars, http.StatusBadRequest},
		{fmt.Errorf("%w: principal", amortization.ErrInvalidArgument), http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}

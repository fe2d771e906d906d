package handlers

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"car-loan-calculator/internal/utils"
)

// Router bundles the handlers served by the API.
type Router struct {
	Health     *HealthHandler
	Calculator *LoanCalculator
	Cars       *CarHandler
	Listing    *ListingHandler
	Limiter    *RateLimiter
}

// Handler registers every route and wraps the mux with CORS and request
// logging. Calculation endpoints are rate limited when a limiter is set.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	limit := func(h http.HandlerFunc) http.Handler {
		if rt.Limiter == nil {
			return h
		}
		return RateLimitMiddleware(rt.Limiter, h)
	}

	// Health check
	mux.Handle("GET /health", rt.Health)
	mux.Handle("GET /api/health", rt.Health)

	// Stateless calculations
	mux.Handle("POST /api/loan/calculate", limit(rt.Calculator.HandleCalculate))
	mux.Handle("POST /api/loan/early-payment", limit(rt.Calculator.HandleEarlyPayment))

	// Cars
	mux.HandleFunc("GET /api/cars", rt.Cars.List)
	mux.HandleFunc("POST /api/cars", rt.Cars.Create)
	mux.HandleFunc("DELETE /api/cars", rt.Cars.Clear)
	mux.HandleFunc("GET /api/cars/{id}", rt.Cars.Get)
	mux.HandleFunc("PUT /api/cars/{id}", rt.Cars.Update)
	mux.HandleFunc("DELETE /api/cars/{id}", rt.Cars.Delete)
	mux.HandleFunc("GET /api/cars/{id}/schedule", rt.Cars.Schedule)
	mux.Handle("POST /api/cars/{id}/early-payment", limit(rt.Cars.EarlyPayment))
	mux.Handle("POST /api/cars/{id}/export", limit(rt.Cars.Export))
	mux.Handle("POST /api/cars/{id}/email", limit(rt.Cars.Email))

	// Comparison
	mux.HandleFunc("GET /api/compare", rt.Cars.Compare)
	mux.Handle("GET /api/scenarios", limit(rt.Cars.Scenarios))

	mux.HandleFunc("POST /api/listing/parse", rt.Listing.Parse)
	mux.HandleFunc("POST /api/demo", rt.Cars.SeedDemo)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return LoggingMiddleware(c.Handler(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	logger := utils.Named("http")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

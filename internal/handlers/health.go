package handlers

import (
	"context"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
)

// HealthChecker is implemented by the database and cache clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks   map[string]HealthChecker
	fallback map[string]string
	stage    string
	now      func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stage string) *HealthHandler {
	return &HealthHandler{
		checks:   make(map[string]HealthChecker),
		fallback: make(map[string]string),
		stage:    stage,
		now:      time.Now,
	}
}

// AddCheck registers a dependency probed on every request.
func (h *HealthHandler) AddCheck(name string, checker HealthChecker) {
	h.checks[name] = checker
}

// SetStatus records a component that is not probed, such as an in-memory
// fallback.
func (h *HealthHandler) SetStatus(name, status string) {
	h.fallback[name] = status
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Service    string            `json:"service"`
	Version    string            `json:"version"`
	Stage      string            `json:"stage"`
	Components map[string]string `json:"components,omitempty"`
}

// Check probes every registered dependency.
func (h *HealthHandler) Check(ctx context.Context) HealthResponse {
	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  h.now().UTC().Format(time.RFC3339),
		Service:    "car-loan-calculator",
		Version:    getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:      h.stage,
		Components: make(map[string]string, len(h.checks)+len(h.fallback)),
	}

	for name, status := range h.fallback {
		response.Components[name] = status
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := h.checks[name].HealthCheck(checkCtx)
		cancel()

		if err != nil {
			response.Components[name] = "disconnected"
			response.Status = "degraded"
		} else {
			response.Components[name] = "connected"
		}
	}

	return response
}

func (h *HealthHandler) statusCode(response HealthResponse) int {
	if response.Status != "healthy" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// ServeHTTP serves GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := h.Check(r.Context())
	writeJSON(w, h.statusCode(response), response)
}

// Handle processes health check requests from API Gateway.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response := h.Check(ctx)
	body, _ := json.Marshal(response)

	return events.APIGatewayProxyResponse{
		StatusCode: h.statusCode(response),
		Headers:    lambdaHeaders(),
		Body:       string(body),
	}, nil
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

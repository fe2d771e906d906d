package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"car-loan-calculator/internal/amortization"
	"car-loan-calculator/internal/utils"
)

// CalculateLambdaHandler exposes the stateless calculations through API
// Gateway. Paths ending in /early-payment run the early-payment
// calculation; everything else runs the loan calculation.
type CalculateLambdaHandler struct {
	calculator *LoanCalculator
	logger     *zap.Logger
}

// NewCalculateLambdaHandler creates the Lambda handler.
func NewCalculateLambdaHandler(calculator *LoanCalculator) *CalculateLambdaHandler {
	return &CalculateLambdaHandler{
		calculator: calculator,
		logger:     utils.Named("lambda.calculate"),
	}
}

func lambdaHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "POST,OPTIONS",
		"Content-Type":                 "application/json",
	}
}

// Handle processes the API Gateway request.
func (h *CalculateLambdaHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    lambdaHeaders(),
		}, nil
	}
	if request.HTTPMethod != http.MethodPost {
		return lambdaResponse(http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"}), nil
	}

	body := []byte(request.Body)
	var (
		data interface{}
		err  error
	)

	if strings.HasSuffix(strings.TrimRight(request.Path, "/"), "/early-payment") {
		var req amortization.EarlyPaymentRequest
		if err = unmarshalBody(body, &req); err == nil {
			data, err = h.calculator.EarlyPayment(req)
		}
	} else {
		var req CalculateLoanRequest
		if err = unmarshalBody(body, &req); err == nil {
			data, err = h.calculator.Calculate(req)
		}
	}

	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Calculation failed", zap.String("path", request.Path), zap.Error(err))
		}
		return lambdaResponse(status, Response{Success: false, Error: errorMessage(status, err)}), nil
	}

	return lambdaResponse(http.StatusOK, Response{Success: true, Data: data}), nil
}

func lambdaResponse(status int, payload Response) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(payload)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    lambdaHeaders(),
		Body:       string(body),
	}
}

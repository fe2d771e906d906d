// Package handlers provides HTTP and Lambda handlers for the car loan calculator.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"car-loan-calculator/internal/amortization"
	"car-loan-calculator/internal/models"
	"car-loan-calculator/internal/services/ses"
	"car-loan-calculator/internal/utils"
)

// maxBodyBytes limits request bodies, including pasted listing pages.
const maxBodyBytes = 2 << 20

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

var errBadRequestBody = errors.New("invalid request body")

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrCarNotFound):
		return http.StatusNotFound
	case errors.Is(err, amortization.ErrInvalidArgument),
		models.IsValidationError(err),
		errors.Is(err, models.ErrNotEnoughCars),
		errors.Is(err, ses.ErrInvalidRecipient),
		errors.Is(err, errBadRequestBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides internal failures from clients.
func errorMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		utils.Named("http").Warn("Failed to write response", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		utils.Named("http").Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, Response{Success: false, Error: errorMessage(status, err)})
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return unmarshalBody(data, dst)
}

func unmarshalBody(data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}

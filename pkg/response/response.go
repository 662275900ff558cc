package response

import (
	"encoding/json"
	"net/http"

	"github.com/diagnosis/shelter-loyalty/pkg/logger"
)

// Envelope is the JSON shape of a successful response. Data is always present, possibly null.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// failure omits "data" entirely.
type failure struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    string       `json:"code,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Details string       `json:"details,omitempty"`
}

const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
	CodeUnavailable   = "SERVICE_UNAVAILABLE"
)

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, statusCode int, data any, message string) {
	writeJSON(w, statusCode, Envelope{Success: true, Data: data, Message: message})
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, failure{Message: message, Code: code})
}

// WriteErrorWithDetails includes raw error text; callers only use it in development mode.
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, message, code, details string) {
	writeJSON(w, statusCode, failure{Message: message, Code: code, Details: details})
}

func Invalid(w http.ResponseWriter, message string, fields []FieldError) {
	writeJSON(w, http.StatusBadRequest, failure{Message: message, Code: CodeInvalidInput, Errors: fields})
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

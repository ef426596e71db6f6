package httputil

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/redmonkez12/favorite-movies-api/internal/validation"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondMessage sends {"message": msg}.
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, MessageResponse{Message: message}, statusCode)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// RespondValidationError reports field-level validation failures as a 400.
// It returns false when err carries no validation errors so callers can fall
// through to their own mapping.
func RespondValidationError(w http.ResponseWriter, err error) bool {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return false
	}
	RespondJSON(w, ErrorResponse{
		Error:  "validation failed",
		Code:   CodeValidationFailed,
		Fields: verrs,
	}, http.StatusBadRequest)
	return true
}

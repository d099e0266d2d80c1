package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the error envelope shared by every endpoint.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// RespondJSON serializes data and writes it with the given status code.
// The body is marshaled before the header goes out, so an encoding
// failure still yields a clean 500 instead of a truncated 200.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal response body: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	body = append(body, '\n')
	if _, err := w.Write(body); err != nil {
		log.Printf("Failed to write response body: %v", err)
	}
}

// RespondError writes a plain error envelope.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondValidationError reports field-level failures as a 422,
// one message per offending field.
func RespondValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	RespondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "Request validation failed",
		Code:    "validation_error",
		Details: fieldErrors,
	})
}

// Package respond writes JSON bodies and maps service errors to status codes.
package respond

import (
	"agent-market/internal/logger"
	"agent-market/internal/service"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

// Status writes an error body with an explicit status and message. cause, when
// set, is reported as details.
func Status(w http.ResponseWriter, status int, message string, cause error) {
	resp := ErrorResponse{Error: message, Code: status}
	if cause != nil {
		resp.Details = cause.Error()
	}
	JSON(w, status, resp)
}

// Error maps a service error to its status code. Unclassified errors are
// logged and reported as a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).WithError(err).Error("Request failed")
		Status(w, status, "Internal server error", nil)
		return
	}
	Status(w, status, service.Message(err), nil)
}

// StatusFor returns the HTTP status for an error kind
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// MaxBodyBytes caps request bodies. It leaves room for the largest chat
// message and agent system prompt in multi-byte UTF-8.
const MaxBodyBytes = 1 << 20

// Decode reads a JSON request body of at most MaxBodyBytes into v
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// BadBody reports a Decode failure: 413 when the body was too large, 400 otherwise
func BadBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Status(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
		return
	}
	Status(w, http.StatusBadRequest, "Invalid request body", err)
}

package httpapi

import (
	"net/http"

	"github.com/goccy/go-json"
)

// response is the uniform JSON envelope every endpoint replies with.
type response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *respError `json:"error,omitempty"`
}

type respError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Machine-readable error codes.
const (
	codeValidation    = "VALIDATION_ERROR"
	codeUnauthorized  = "UNAUTHORIZED"
	codeNotFound      = "NOT_FOUND"
	codeConflict      = "CONFLICT"
	codeTooLarge      = "PAYLOAD_TOO_LARGE"
	codeNotConfigured = "INTEGRATION_NOT_CONFIGURED"
	codeUpstream      = "UPSTREAM_ERROR"
	codeInternal      = "INTERNAL_ERROR"
)

func respondSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, response{Success: false, Error: &respError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

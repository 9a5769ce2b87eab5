package handlers

import (
	"encoding/json"
	"net/http"
)

// Error codes surfaced to API clients.
const (
	codeValidationError   = "validation_error"
	codeInvitationPending = "invitation_pending"
	codeEmailExists       = "email_exists"
	codeInvalidOrExpired  = "invalid_or_expired"
	codeInternalError     = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code, Field: field})
}

package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope for every non-GraphQL response. It mirrors the
// success/message shape the operations return.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// WriteSuccessResponse writes a 200 envelope carrying data.
func WriteSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// WriteErrorResponseWithCode writes a failure envelope with a machine-readable code.
func WriteErrorResponseWithCode(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, APIResponse{Success: false, Message: message, Code: code})
}

// WriteBadRequestResponse writes a 400 envelope.
func WriteBadRequestResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

// WriteUnauthorizedResponse writes a 401 envelope.
func WriteUnauthorizedResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusUnauthorized, "UNAUTHENTICATED", message)
}

// WriteNotFoundResponse writes a 404 envelope.
func WriteNotFoundResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusNotFound, "NOT_FOUND", message)
}

// WriteTooManyRequestsResponse writes a 429 envelope.
func WriteTooManyRequestsResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusTooManyRequests, "RATE_LIMITED", message)
}

// WriteInternalServerErrorResponse writes a 500 envelope.
func WriteInternalServerErrorResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusInternalServerError, "INTERNAL", message)
}

// ParseJSONBody decodes the request body into v.
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

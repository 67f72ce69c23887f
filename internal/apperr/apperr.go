package apperr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is an application error carrying its HTTP mapping. Handlers catch
// these at the boundary and write them as JSON; everything else becomes a
// generic 500.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorResponse is the JSON response format for errors
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// WriteJSON writes the error as JSON response
func (e *Error) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: e})
}

// ============================================================
// ERROR CONSTRUCTORS
// ============================================================

// Validation errors (400)

func BadRequest(message string) *Error {
	return &Error{
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidURL(details string) *Error {
	return &Error{
		Code:       "INVALID_URL",
		Message:    "The provided URL is invalid",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidJSON(details string) *Error {
	return &Error{
		Code:       "INVALID_JSON",
		Message:    "Invalid JSON in request body",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func MissingField(field string) *Error {
	return &Error{
		Code:       "MISSING_FIELD",
		Message:    fmt.Sprintf("Required field '%s' is missing", field),
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidCode(details string) *Error {
	return &Error{
		Code:       "INVALID_CODE",
		Message:    "The provided short code is invalid",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

// Not found (404)

func LinkNotFound(code string) *Error {
	return &Error{
		Code:       "LINK_NOT_FOUND",
		Message:    fmt.Sprintf("Link '%s' not found", code),
		StatusCode: http.StatusNotFound,
	}
}

// Conflict (409)

func CodeTaken(code string) *Error {
	return &Error{
		Code:       "CODE_TAKEN",
		Message:    fmt.Sprintf("Short code '%s' is already in use", code),
		StatusCode: http.StatusConflict,
	}
}

// Rate limit (429)

func RateLimitExceeded() *Error {
	return &Error{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please try again later",
		StatusCode: http.StatusTooManyRequests,
	}
}

// Server errors (500)

func Internal(details string) *Error {
	return &Error{
		Code:       "INTERNAL_ERROR",
		Message:    "An internal server error occurred",
		Details:    details,
		StatusCode: http.StatusInternalServerError,
	}
}

func StoreFailure() *Error {
	return &Error{
		Code:       "STORE_ERROR",
		Message:    "A storage error occurred",
		StatusCode: http.StatusInternalServerError,
	}
}

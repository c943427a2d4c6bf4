package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorCode represents machine-readable error codes
type ErrorCode string

const (
	// General error codes
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"

	// Validation error codes
	ErrCodeValidation  ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidJSON ErrorCode = "INVALID_JSON"
	ErrCodeInvalidRole ErrorCode = "INVALID_ROLE"

	// Criteria extraction error codes
	ErrCodeInvalidCriteria ErrorCode = "INVALID_CRITERIA"
	ErrCodeMissingProperty ErrorCode = "MISSING_PROPERTY"
	ErrCodeUnbalancedGroup ErrorCode = "UNBALANCED_GROUP"
	ErrCodeInvalidBenefit  ErrorCode = "INVALID_BENEFIT"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error     string            `json:"error"`                // HTTP status text
	Message   string            `json:"message"`              // Human-readable description
	Code      ErrorCode         `json:"code"`                 // Machine-readable error code
	Fields    map[string]string `json:"fields,omitempty"`     // Field-level errors
	RequestID string            `json:"request_id,omitempty"` // Request ID for debugging
}

// NewErrorResponse creates a new error response
func NewErrorResponse(statusCode int, code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    code,
	}
}

// WithFields adds field-level errors to the response
func (e *ErrorResponse) WithFields(fields map[string]string) *ErrorResponse {
	e.Fields = fields
	return e
}

// writeErrorResponse writes a structured error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, errResp *ErrorResponse) {
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		errResp.RequestID = reqID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errResp)
}

// ValidationError creates a validation error response with field-level details
func ValidationError(w http.ResponseWriter, r *http.Request, message string, fields map[string]string) {
	errResp := NewErrorResponse(http.StatusBadRequest, ErrCodeValidation, message).
		WithFields(fields)
	writeErrorResponse(w, r, http.StatusBadRequest, errResp)
}

// BadRequestError creates a bad request error response
func BadRequestError(w http.ResponseWriter, r *http.Request, code ErrorCode, message string) {
	writeErrorResponse(w, r, http.StatusBadRequest, NewErrorResponse(http.StatusBadRequest, code, message))
}

// UnprocessableError creates a 422 response for semantically invalid input,
// e.g. criteria that fails extraction.
func UnprocessableError(w http.ResponseWriter, r *http.Request, code ErrorCode, message string) {
	writeErrorResponse(w, r, http.StatusUnprocessableEntity, NewErrorResponse(http.StatusUnprocessableEntity, code, message))
}

// NotFoundError creates a not found error response
func NotFoundError(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorResponse(w, r, http.StatusNotFound, NewErrorResponse(http.StatusNotFound, ErrCodeNotFound, message))
}

// InternalError creates an internal server error response
func InternalError(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorResponse(w, r, http.StatusInternalServerError, NewErrorResponse(http.StatusInternalServerError, ErrCodeInternal, message))
}

package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	// 404 Not Found
	ErrNotFound        = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrDatasetNotFound = New(http.StatusNotFound, "DATASET_NOT_FOUND", "Unknown dataset")

	// 422 Unprocessable Entity
	ErrDatasetEmpty = New(http.StatusUnprocessableEntity, "DATASET_EMPTY", "Selected dataset has no rows")
)

// ErrValidation creates a validation error for a specific field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		"VALIDATION_ERROR",
		message,
		[]ValidationError{{Field: field, Message: message}},
	)
}

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// InvalidPivotSpec creates an invalid pivot spec error carrying the
// reason for inline display
func InvalidPivotSpec(err error) *APIError {
	return New(http.StatusUnprocessableEntity, "INVALID_PIVOT_SPEC", err.Error())
}

// InvalidFilterExpr creates an invalid filter expression error carrying
// the reason for inline display
func InvalidFilterExpr(err error) *APIError {
	return New(http.StatusBadRequest, "INVALID_FILTER_EXPR", err.Error())
}

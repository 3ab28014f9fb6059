package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// ServiceUnavailable reports a dependency or the hub itself as unavailable.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable,
		fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		http.StatusServiceUnavailable).WithDetail("service", service)
}

// Timeout reports an operation that did not complete in time.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, "The request took too long. Please try again.",
		http.StatusGatewayTimeout).WithDetail("operation", operation)
}

// RateLimited reports a client sending too many requests.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.",
		http.StatusTooManyRequests)
}

// NotFound reports an unknown route or resource.
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource),
		http.StatusNotFound).WithDetail("resource", resource)
}

// InvalidInput reports a malformed field or body.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation reports one or more struct validation failures.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// MissingField reports a required field that was empty or absent.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("Missing required field: %s", field),
		http.StatusBadRequest).WithDetail("field", field)
}

// PayloadTooLarge reports a request body over the configured limit.
func PayloadTooLarge(limit int64) *AppError {
	return New(ErrCodePayloadTooLarge, "Request body is too large.",
		http.StatusRequestEntityTooLarge).WithDetail("limit_bytes", limit)
}

// Unsupported reports a connection that cannot carry the requested stream.
func Unsupported(feature string) *AppError {
	return New(ErrCodeUnsupported, fmt.Sprintf("%s is not supported by this connection.", feature),
		http.StatusInternalServerError).WithDetail("feature", feature)
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.",
		http.StatusInternalServerError).WithCause(cause)
}

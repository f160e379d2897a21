package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorCategoryNetwork    ErrorCategory = "network"
	ErrorCategoryDatabase   ErrorCategory = "database"
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryNotFound   ErrorCategory = "not_found"
	ErrorCategoryRender     ErrorCategory = "render"
)

// ServiceError represents a standardized error with additional context
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	Details     interface{}   `json:"details,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Cause       error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		ServiceName: serviceName,
		Operation:   operation,
		Cause:       cause,
	}
}

// WithDetails adds additional details to the error
func (e *ServiceError) WithDetails(details interface{}) *ServiceError {
	e.Details = details
	return e
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"service_name":     e.ServiceName,
		"operation":        e.Operation,
		"details":          e.Details,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}

// HTTPStatus maps the error category to the status code the API layer
// should respond with.
func (e *ServiceError) HTTPStatus() int {
	switch e.Category {
	case ErrorCategoryNetwork:
		return 503
	case ErrorCategoryNotFound:
		return 404
	case ErrorCategoryValidation:
		return 422
	default:
		return 500
	}
}

// NewUpstreamError builds the error returned whenever an external data
// source cannot be reached or answers with a failure.
func NewUpstreamError(serviceName, operation, source string, cause error) *ServiceError {
	return NewServiceError(
		ErrorCategoryNetwork,
		"UPSTREAM_UNAVAILABLE",
		"External data source unavailable",
		serviceName,
		operation,
		cause,
	).WithDetails(fmt.Sprintf("Could not fetch data from %s", source))
}

// NewNotFoundError builds the error returned on lookup and delete misses.
func NewNotFoundError(serviceName, operation string) *ServiceError {
	return NewServiceError(
		ErrorCategoryNotFound,
		"COUNTRY_NOT_FOUND",
		"Country not found",
		serviceName,
		operation,
		nil,
	)
}

// NewValidationError builds the error rejecting malformed country data
// before it reaches the persistence layer.
func NewValidationError(serviceName, operation, message string) *ServiceError {
	return NewServiceError(
		ErrorCategoryValidation,
		"INVALID_COUNTRY",
		message,
		serviceName,
		operation,
		nil,
	)
}

// NewDatabaseError wraps a failed store operation.
func NewDatabaseError(serviceName, operation string, cause error) *ServiceError {
	return NewServiceError(
		ErrorCategoryDatabase,
		"DB_ERROR",
		"Database operation failed",
		serviceName,
		operation,
		cause,
	)
}

// AsServiceError extracts a ServiceError from an error chain, if present.
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// IsCategory reports whether err is a ServiceError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	svcErr, ok := AsServiceError(err)
	return ok && svcErr.Category == category
}

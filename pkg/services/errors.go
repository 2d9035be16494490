// Package services implements the business operations behind the HTTP API:
// workflow CRUD with settings validation, and read access to the scheduler
// queue and the delivery ledger.
package services

import (
	"errors"
	"fmt"

	"github.com/eunits/bookflow/pkg/persistence"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUnknownTrigger   = errors.New("unknown trigger type")
	ErrUnknownAction    = errors.New("unknown action type")
	ErrInvalidSettings  = errors.New("invalid workflow settings")
	ErrIntervalRequired = errors.New("deferred triggers require an interval")
	ErrWorkflowNil      = errors.New("workflow cannot be nil")

	// Not-found errors (404), re-exported from the store.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
	ErrTaskNotFound     = persistence.ErrTaskNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrUnknownTrigger) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, ErrIntervalRequired) ||
		errors.Is(err, ErrWorkflowNil)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrTaskNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

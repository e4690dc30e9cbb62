// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/flowcanvas/pkg/forms"
	"github.com/dukex/flowcanvas/pkg/graph"
	"github.com/dukex/flowcanvas/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidStatus  = errors.New("invalid workflow status")

	// Not Found Errors (404 Not Found).
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
	ErrNodeNotFound     = graph.ErrNodeNotFound

	// Business Logic Conflicts (409 Conflict).
	ErrWorkflowNotActive = errors.New("workflow is not active")
	ErrNoActiveWorkflows = errors.New("no active workflows")
)

// Error codes carried by ServiceError.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeWorkflowNotFound  = "WORKFLOW_NOT_FOUND"
	CodeNodeNotFound      = "NODE_NOT_FOUND"
	CodeWorkflowNotActive = "WORKFLOW_NOT_ACTIVE"
	CodeNoActiveWorkflows = "NO_ACTIVE_WORKFLOWS"
	CodeGraphInvariant    = "GRAPH_INVARIANT"
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
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, forms.ErrValidation)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrWorkflowNotActive) ||
		errors.Is(err, ErrNoActiveWorkflows) ||
		errors.Is(err, graph.ErrInvariantViolation)
}

// IsNotFoundError checks if an error refers to a missing workflow or node.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrNodeNotFound)
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

// wrap classifies err into a ServiceError for op. Errors that are neither client errors nor
// already classified are wrapped with fmt.Errorf and surface as internal errors.
func wrap(op string, err error) error {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}

	switch {
	case errors.Is(err, ErrWorkflowNotFound):
		return &ServiceError{Op: op, Code: CodeWorkflowNotFound, Err: err}
	case errors.Is(err, ErrNodeNotFound):
		return &ServiceError{Op: op, Code: CodeNodeNotFound, Err: err}
	case IsValidationError(err):
		return &ServiceError{Op: op, Code: CodeValidation, Err: err}
	case errors.Is(err, graph.ErrInvariantViolation):
		return &ServiceError{Op: op, Code: CodeGraphInvariant, Err: err}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

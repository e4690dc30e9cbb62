package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation indicates a mutation that would break a graph invariant.
	// Callers should prevent these through input constraints.
	ErrInvariantViolation = errors.New("graph invariant violation")

	// ErrDuplicateNode indicates a node id already present in the workflow.
	ErrDuplicateNode = fmt.Errorf("duplicate node id: %w", ErrInvariantViolation)

	// ErrInvalidEdge indicates a self-loop or an edge pointing at an unknown node.
	ErrInvalidEdge = fmt.Errorf("invalid edge: %w", ErrInvariantViolation)

	// ErrNodeNotFound indicates an operation on a stale or removed node id.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNilWorkflow indicates the store was handed a nil workflow.
	ErrNilWorkflow = errors.New("workflow cannot be nil")
)

// Error wraps graph errors with the operation and ids involved.
type Error struct {
	Op         string // Operation name, e.g. "Connect"
	WorkflowID string
	NodeID     string
	TargetID   string // Edge target, when applicable
	Err        error
}

func (e *Error) Error() string {
	if e.TargetID != "" {
		return fmt.Sprintf("%s operation failed for edge %s->%s in workflow %s: %v",
			e.Op, e.NodeID, e.TargetID, e.WorkflowID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for node %s in workflow %s: %v", e.Op, e.NodeID, e.WorkflowID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsNotFound checks if an error indicates a missing node.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsInvariantViolation checks if an error indicates a broken graph invariant.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

package models

import (
	"maps"
	"time"
)

// ExecutionStatus defines the possible states of a workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// WorkflowExecution records one (simulated) run of a workflow.
type WorkflowExecution struct {
	ID         string          `json:"id"`
	WorkflowID string          `json:"workflow_id"`
	Status     ExecutionStatus `json:"status"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    *time.Time      `json:"end_time"`
	Results    map[string]any  `json:"results"`
}

// Clone returns a copy of the execution that shares nothing mutable with e.
func (e *WorkflowExecution) Clone() *WorkflowExecution {
	if e == nil {
		return nil
	}

	clone := *e

	if e.EndTime != nil {
		end := *e.EndTime
		clone.EndTime = &end
	}

	clone.Results = maps.Clone(e.Results)

	return &clone
}

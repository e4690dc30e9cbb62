package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/persistence"
)

// ExecutionRepository stores executions under executions/<workflow id>/<execution id>.json.
type ExecutionRepository struct {
	root string
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (er *ExecutionRepository) dir(workflowID string) string {
	return filepath.Join(er.root, "executions", workflowID)
}

// Save writes an execution record to the file system.
func (er *ExecutionRepository) Save(_ context.Context, execution *models.WorkflowExecution) error {
	if execution == nil {
		return persistence.NewWorkflowError("SaveExecution", "", persistence.ErrInvalidWorkflow)
	}

	if err := validateID(execution.WorkflowID); err != nil {
		return persistence.NewWorkflowError("SaveExecution", execution.WorkflowID, fmt.Errorf("%w: %w", persistence.ErrInvalidWorkflow, err))
	}

	if err := validateID(execution.ID); err != nil {
		return fmt.Errorf("invalid execution id %q: %w", execution.ID, err)
	}

	dir := er.dir(execution.WorkflowID)

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", execution.ID, err)
	}

	err = os.WriteFile(filepath.Join(dir, execution.ID+".json"), data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write execution %s: %w", execution.ID, err)
	}

	return nil
}

// ListByWorkflow loads the executions of a workflow, newest first.
func (er *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	if err := validateID(workflowID); err != nil {
		return nil, persistence.NewWorkflowError("ListExecutions", workflowID, persistence.ErrWorkflowNotFound)
	}

	dir := er.dir(workflowID)

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	executions := make([]*models.WorkflowExecution, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		body, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to read execution %s: %w", file, err)
		}

		var execution models.WorkflowExecution
		if err := json.Unmarshal(body, &execution); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution %s: %w", file, err)
		}

		executions = append(executions, &execution)
	}

	persistence.SortExecutions(executions)

	return executions, nil
}

// DeleteByWorkflow removes every execution of a workflow.
func (er *ExecutionRepository) DeleteByWorkflow(_ context.Context, workflowID string) error {
	if err := validateID(workflowID); err != nil {
		return nil
	}

	err := os.RemoveAll(er.dir(workflowID))
	if err != nil {
		return fmt.Errorf("failed to delete executions of workflow %s: %w", workflowID, err)
	}

	return nil
}

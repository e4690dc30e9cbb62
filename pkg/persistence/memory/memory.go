// Package memory provides an in-process persistence implementation. It backs the editor's mock
// data store and the tests.
package memory

import (
	"context"
	"sync"

	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/persistence"
)

// Persistence implements persistence.Persistence on top of maps.
type Persistence struct {
	workflows  *WorkflowRepository
	executions *ExecutionRepository
}

// NewPersistence creates an empty store.
func NewPersistence() *Persistence {
	return &Persistence{
		workflows:  &WorkflowRepository{workflows: make(map[string]*models.Workflow)},
		executions: &ExecutionRepository{executions: make(map[string][]*models.WorkflowExecution)},
	}
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflows
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executions
}

// HealthCheck always succeeds.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// WorkflowRepository keeps deep copies of workflows so callers never share graph state.
type WorkflowRepository struct {
	mu        sync.RWMutex
	workflows map[string]*models.Workflow
}

func (r *WorkflowRepository) List(_ context.Context, opts persistence.ListOptions) ([]*models.Workflow, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*models.Workflow, 0, len(r.workflows))
	for _, workflow := range r.workflows {
		all = append(all, workflow.Clone())
	}

	return opts.Apply(all), nil
}

func (r *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflow, ok := r.workflows[id]
	if !ok {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	return workflow.Clone(), nil
}

func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if workflow == nil || workflow.ID == "" {
		return persistence.NewWorkflowError("Save", "", persistence.ErrInvalidWorkflow)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.workflows[workflow.ID] = workflow.Clone()

	return nil
}

func (r *WorkflowRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workflows[id]; !ok {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	delete(r.workflows, id)

	return nil
}

// ExecutionRepository keeps execution records grouped by workflow.
type ExecutionRepository struct {
	mu         sync.RWMutex
	executions map[string][]*models.WorkflowExecution
}

func (r *ExecutionRepository) Save(_ context.Context, execution *models.WorkflowExecution) error {
	if execution == nil || execution.ID == "" || execution.WorkflowID == "" {
		return persistence.NewWorkflowError("SaveExecution", "", persistence.ErrInvalidWorkflow)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.executions[execution.WorkflowID]
	for i, existing := range list {
		if existing.ID == execution.ID {
			list[i] = execution.Clone()

			return nil
		}
	}

	r.executions[execution.WorkflowID] = append(list, execution.Clone())

	return nil
}

func (r *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.executions[workflowID]
	result := make([]*models.WorkflowExecution, 0, len(list))

	for _, execution := range list {
		result = append(result, execution.Clone())
	}

	persistence.SortExecutions(result)

	return result, nil
}

func (r *ExecutionRepository) DeleteByWorkflow(_ context.Context, workflowID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.executions, workflowID)

	return nil
}

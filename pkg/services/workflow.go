package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dukex/flowcanvas/pkg/eventbus"
	"github.com/dukex/flowcanvas/pkg/events"
	"github.com/dukex/flowcanvas/pkg/forms"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/otelhelper"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Workflow handles workflow-level operations: listing, editing metadata, status and execution.
type Workflow struct {
	base
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, publisher eventbus.EventPublisher, opts ...Option) *Workflow {
	return &Workflow{
		base: newBase("workflow-service", persistence, publisher, opts),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListRequest contains options for listing workflows.
type ListRequest struct {
	Status    *models.WorkflowStatus
	SortBy    string
	SortOrder string
}

// List returns workflow summaries, optionally filtered by status.
func (w *Workflow) List(ctx context.Context, req ListRequest) ([]models.WorkflowSummary, error) {
	ctx, span := w.span(ctx, "workflow.list", "")
	defer span.End()

	if req.Status != nil && !req.Status.IsValid() {
		return nil, w.fail(span, "List", NewValidationError("List", CodeValidation, "unknown status "+string(*req.Status), ErrInvalidStatus))
	}

	workflows, err := w.persistence.WorkflowRepository().List(ctx, persistence.ListOptions{
		Status:    req.Status,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrInvalidListOptions) {
			return nil, w.fail(span, "List", NewValidationError("List", CodeValidation, err.Error(), ErrInvalidRequest))
		}

		return nil, w.fail(span, "List", err)
	}

	summaries := make([]models.WorkflowSummary, 0, len(workflows))
	for _, workflow := range workflows {
		summaries = append(summaries, workflow.Summary())
	}

	return summaries, nil
}

// FetchByID returns a workflow with its graph.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	ctx, span := w.span(ctx, "workflow.fetch", id)
	defer span.End()

	workflow, err := w.load(ctx, id)
	if err != nil {
		return nil, w.fail(span, "FetchByID", err)
	}

	return workflow, nil
}

// Create validates the form and stores a new, empty, inactive workflow.
func (w *Workflow) Create(ctx context.Context, form forms.WorkflowForm) (*models.Workflow, error) {
	ctx, span := w.span(ctx, "workflow.create", "")
	defer span.End()

	workflow, err := form.Build(w.store.Now())
	if err != nil {
		return nil, w.fail(span, "Create", err)
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, workflow.ID))

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, w.fail(span, "Create", err)
	}

	w.logger.InfoContext(ctx, "Workflow created", "workflow_id", workflow.ID, "name", workflow.Name)
	w.publish(ctx, workflow.ID, events.WorkflowCreated{BaseEvent: w.event(events.WorkflowCreatedEvent, workflow)})

	return workflow, nil
}

// UpdateWorkflowRequest changes workflow metadata. Nil fields are left as they are.
type UpdateWorkflowRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update changes the name or description of a workflow. The new values follow the same rules as
// a new workflow's.
func (w *Workflow) Update(ctx context.Context, id string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	ctx, span := w.span(ctx, "workflow.update", id)
	defer span.End()

	var fields []string

	workflow, err := w.mutate(ctx, id, func(workflow *models.Workflow) (bool, error) {
		form := forms.WorkflowForm{Name: workflow.Name, Description: workflow.Description}
		if req.Name != nil {
			form.Name = *req.Name
		}

		if req.Description != nil {
			form.Description = *req.Description
		}

		if err := form.Validate(); err != nil {
			return false, err
		}

		if form.Name != workflow.Name {
			fields = append(fields, "name")
		}

		if form.Description != workflow.Description {
			fields = append(fields, "description")
		}

		if len(fields) == 0 {
			return false, nil
		}

		workflow.Name = form.Name
		workflow.Description = form.Description
		workflow.UpdatedAt = w.store.Now()

		return true, nil
	})
	if err != nil {
		return nil, w.fail(span, "Update", err)
	}

	if len(fields) > 0 {
		w.publish(ctx, id, events.WorkflowUpdated{BaseEvent: w.event(events.WorkflowUpdatedEvent, workflow), Fields: fields})
	}

	return workflow, nil
}

// Delete removes a workflow and its execution history.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	ctx, span := w.span(ctx, "workflow.delete", id)
	defer span.End()

	unlock := w.locker.Lock(id)
	defer unlock()

	workflow, err := w.load(ctx, id)
	if err != nil {
		return w.fail(span, "Delete", err)
	}

	if err := w.persistence.WorkflowRepository().Delete(ctx, id); err != nil {
		return w.fail(span, "Delete", err)
	}

	if err := w.persistence.ExecutionRepository().DeleteByWorkflow(ctx, id); err != nil {
		w.logger.WarnContext(ctx, "Failed to delete execution history", "workflow_id", id, "error", err)
	}

	w.logger.InfoContext(ctx, "Workflow deleted", "workflow_id", id)
	w.publish(ctx, id, events.WorkflowDeleted{BaseEvent: w.event(events.WorkflowDeletedEvent, workflow)})

	return nil
}

// ToggleStatus activates an inactive or failed workflow and deactivates an active one.
func (w *Workflow) ToggleStatus(ctx context.Context, id string) (*models.Workflow, error) {
	ctx, span := w.span(ctx, "workflow.toggle_status", id)
	defer span.End()

	workflow, err := w.mutate(ctx, id, func(workflow *models.Workflow) (bool, error) {
		if workflow.IsActive() {
			workflow.Status = models.WorkflowStatusInactive
		} else {
			workflow.Status = models.WorkflowStatusActive
		}

		return true, nil
	})
	if err != nil {
		return nil, w.fail(span, "ToggleStatus", err)
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowStatusKey, string(workflow.Status)))
	w.publish(ctx, id, events.WorkflowStatusToggled{
		BaseEvent: w.event(events.WorkflowStatusToggledEvent, workflow),
		Status:    workflow.Status,
	})

	return workflow, nil
}

// Execute runs an active workflow. Execution is simulated: it records a completed execution and
// the run time. Workflows that are not active are refused and left untouched.
func (w *Workflow) Execute(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	ctx, span := w.span(ctx, "workflow.execute", id)
	defer span.End()

	unlock := w.locker.Lock(id)
	defer unlock()

	workflow, err := w.load(ctx, id)
	if err != nil {
		return nil, w.fail(span, "Execute", err)
	}

	if !workflow.IsActive() {
		w.publish(ctx, id, events.WorkflowExecutionRefused{
			BaseEvent: w.event(events.WorkflowExecutionRefusedEvent, workflow),
			Reason:    events.RefusalInactive,
		})

		return nil, w.fail(span, "Execute", &ServiceError{
			Op:      "Execute",
			Code:    CodeWorkflowNotActive,
			Message: "workflow " + id + " is " + string(workflow.Status),
			Err:     ErrWorkflowNotActive,
		})
	}

	execution, err := w.run(ctx, workflow, w.store.Now())
	if err != nil {
		return nil, w.fail(span, "Execute", err)
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, execution.ID))

	return execution, nil
}

// run records an execution of workflow at now and publishes it. The caller holds the lock.
func (w *Workflow) run(ctx context.Context, workflow *models.Workflow, now time.Time) (*models.WorkflowExecution, error) {
	end := now
	execution := &models.WorkflowExecution{
		ID:         uuid.NewString(),
		WorkflowID: workflow.ID,
		Status:     models.ExecutionStatusCompleted,
		StartTime:  now,
		EndTime:    &end,
		Results: map[string]any{
			"nodes": len(workflow.Nodes),
			"edges": len(workflow.Edges()),
		},
	}

	lastRun := now
	workflow.LastRun = &lastRun

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, err
	}

	if err := w.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "Workflow executed", "workflow_id", workflow.ID, "execution_id", execution.ID)
	w.publish(ctx, workflow.ID, events.WorkflowExecuted{
		BaseEvent:   w.event(events.WorkflowExecutedEvent, workflow),
		ExecutionID: execution.ID,
	})

	return execution, nil
}

// ExecuteAllResult reports a bulk execution.
type ExecuteAllResult struct {
	Executed    int                         `json:"executed"`
	WorkflowIDs []string                    `json:"workflow_ids"`
	Executions  []*models.WorkflowExecution `json:"executions"`
}

// ExecuteAll runs every active workflow with one shared run time. It is refused when no workflow
// is active.
func (w *Workflow) ExecuteAll(ctx context.Context) (*ExecuteAllResult, error) {
	ctx, span := w.span(ctx, "workflow.execute_all", "")
	defer span.End()

	active := models.WorkflowStatusActive

	candidates, err := w.persistence.WorkflowRepository().List(ctx, persistence.ListOptions{Status: &active})
	if err != nil {
		return nil, w.fail(span, "ExecuteAll", err)
	}

	now := w.store.Now()
	result := &ExecuteAllResult{
		WorkflowIDs: make([]string, 0, len(candidates)),
		Executions:  make([]*models.WorkflowExecution, 0, len(candidates)),
	}

	for _, candidate := range candidates {
		execution, err := w.executeIfActive(ctx, candidate.ID, now)
		if err != nil {
			return nil, w.fail(span, "ExecuteAll", err)
		}

		if execution == nil {
			continue
		}

		result.WorkflowIDs = append(result.WorkflowIDs, candidate.ID)
		result.Executions = append(result.Executions, execution)
	}

	result.Executed = len(result.WorkflowIDs)

	if result.Executed == 0 {
		w.publish(ctx, "", events.WorkflowExecutionRefused{
			BaseEvent: w.event(events.WorkflowExecutionRefusedEvent, nil),
			Reason:    events.RefusalNoActiveWorkflows,
		})

		return nil, w.fail(span, "ExecuteAll", &ServiceError{
			Op:      "ExecuteAll",
			Code:    CodeNoActiveWorkflows,
			Message: "there are no active workflows",
			Err:     ErrNoActiveWorkflows,
		})
	}

	span.SetAttributes(attribute.StringSlice(otelhelper.WorkflowIDKey, result.WorkflowIDs))
	w.publish(ctx, "", events.WorkflowsExecutedAll{
		BaseEvent:   w.event(events.WorkflowsExecutedAllEvent, nil),
		WorkflowIDs: slices.Clone(result.WorkflowIDs),
	})

	return result, nil
}

// executeIfActive re-reads a workflow under its lock and runs it if it is still active. It returns
// nil when the workflow was deleted or deactivated in the meantime.
func (w *Workflow) executeIfActive(ctx context.Context, id string, now time.Time) (*models.WorkflowExecution, error) {
	unlock := w.locker.Lock(id)
	defer unlock()

	workflow, err := w.load(ctx, id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return nil, nil
		}

		return nil, err
	}

	if !workflow.IsActive() {
		return nil, nil
	}

	return w.run(ctx, workflow, now)
}

// Executions lists the executions of a workflow, newest first.
func (w *Workflow) Executions(ctx context.Context, id string) ([]*models.WorkflowExecution, error) {
	ctx, span := w.span(ctx, "workflow.executions", id)
	defer span.End()

	if _, err := w.load(ctx, id); err != nil {
		return nil, w.fail(span, "Executions", err)
	}

	executions, err := w.persistence.ExecutionRepository().ListByWorkflow(ctx, id)
	if err != nil {
		return nil, w.fail(span, "Executions", err)
	}

	return executions, nil
}

// Package persistence provides the storage abstraction for workflows and their execution records.
package persistence

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/flowcanvas/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// WorkflowRepository stores whole workflows, graph included. Implementations hand out copies,
// so callers must Save to persist a change.
type WorkflowRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores workflow execution records.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.WorkflowExecution) error
	// ListByWorkflow returns the executions of a workflow, newest first.
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error)
	DeleteByWorkflow(ctx context.Context, workflowID string) error
}

const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByName      = "name"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// ListOptions filters and orders workflow listings. Zero values list everything by creation
// time, oldest first.
type ListOptions struct {
	Status    *models.WorkflowStatus
	SortBy    string
	SortOrder string
}

// Normalize fills in defaults and rejects unknown sort settings.
func (o *ListOptions) Normalize() error {
	if o.SortBy == "" {
		o.SortBy = SortByCreatedAt
	}

	if o.SortOrder == "" {
		o.SortOrder = SortOrderAsc
	}

	switch o.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByName:
	default:
		return fmt.Errorf("%w: sort field %q", ErrInvalidListOptions, o.SortBy)
	}

	switch o.SortOrder {
	case SortOrderAsc, SortOrderDesc:
	default:
		return fmt.Errorf("%w: sort order %q", ErrInvalidListOptions, o.SortOrder)
	}

	if o.Status != nil && !o.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidWorkflowStatus, *o.Status)
	}

	return nil
}

// Apply filters and sorts workflows according to normalized options. Ties keep id order.
func (o ListOptions) Apply(workflows []*models.Workflow) []*models.Workflow {
	filtered := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if o.Status != nil && workflow.Status != *o.Status {
			continue
		}

		filtered = append(filtered, workflow)
	}

	slices.SortFunc(filtered, func(a, b *models.Workflow) int {
		var c int

		switch o.SortBy {
		case SortByUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		case SortByName:
			c = strings.Compare(a.Name, b.Name)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}

		if o.SortOrder == SortOrderDesc {
			c = -c
		}

		return cmp.Or(c, strings.Compare(a.ID, b.ID))
	})

	return filtered
}

// SortExecutions orders executions newest first.
func SortExecutions(executions []*models.WorkflowExecution) {
	slices.SortFunc(executions, func(a, b *models.WorkflowExecution) int {
		return cmp.Or(b.StartTime.Compare(a.StartTime), strings.Compare(b.ID, a.ID))
	})
}

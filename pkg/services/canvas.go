package services

import (
	"context"
	"sync"

	"github.com/dukex/flowcanvas/pkg/canvas"
	"github.com/dukex/flowcanvas/pkg/eventbus"
	"github.com/dukex/flowcanvas/pkg/events"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/otelhelper"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/dukex/flowcanvas/pkg/render"
	"github.com/dukex/flowcanvas/pkg/viewport"
	"go.opentelemetry.io/otel/attribute"
)

// View is the state of an open canvas.
type View struct {
	WorkflowID string            `json:"workflow_id"`
	Mode       canvas.Mode       `json:"mode"`
	Viewport   viewport.Viewport `json:"viewport"`
	Scene      render.Scene      `json:"scene"`
	Result     *canvas.Result    `json:"result,omitempty"`
}

// Canvas keeps one interaction session per open workflow and persists the edits they make.
type Canvas struct {
	base

	mu       sync.Mutex
	sessions map[string]*canvas.Canvas
}

// NewCanvas creates a new canvas service.
func NewCanvas(persistence persistence.Persistence, publisher eventbus.EventPublisher, opts ...Option) *Canvas {
	return &Canvas{
		base:     newBase("canvas-service", persistence, publisher, opts),
		sessions: make(map[string]*canvas.Canvas),
	}
}

// session returns the session of a workflow, rebound to its latest stored version. Sessions of
// deleted workflows are closed. The caller holds the workflow lock.
func (c *Canvas) session(ctx context.Context, workflowID string) (*canvas.Canvas, error) {
	workflow, err := c.load(ctx, workflowID)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			c.Close(workflowID)
		}

		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[workflowID]
	if !ok {
		session = canvas.New(workflow, c.store, canvas.WithLogger(c.logger.With("workflow_id", workflowID)))
		c.sessions[workflowID] = session

		return session, nil
	}

	session.Rebind(workflow)

	return session, nil
}

func (c *Canvas) view(workflowID string, session *canvas.Canvas) *View {
	return &View{
		WorkflowID: workflowID,
		Mode:       session.State().Mode(),
		Viewport:   *session.Viewport(),
		Scene:      session.Scene(),
	}
}

// View opens the canvas of a workflow if needed and returns its current state.
func (c *Canvas) View(ctx context.Context, workflowID string) (*View, error) {
	ctx, span := c.span(ctx, "canvas.view", workflowID)
	defer span.End()

	unlock := c.locker.Lock(workflowID)
	defer unlock()

	session, err := c.session(ctx, workflowID)
	if err != nil {
		return nil, c.fail(span, "View", err)
	}

	return c.view(workflowID, session), nil
}

// Dispatch feeds one pointer event to the canvas of a workflow. Edits the event commits are saved
// and published before it returns.
func (c *Canvas) Dispatch(ctx context.Context, workflowID string, event canvas.Event) (*View, error) {
	ctx, span := c.span(ctx, "canvas.dispatch", workflowID, attribute.String(otelhelper.EventKindKey, string(event.Kind)))
	defer span.End()

	unlock := c.locker.Lock(workflowID)
	defer unlock()

	session, err := c.session(ctx, workflowID)
	if err != nil {
		return nil, c.fail(span, "Dispatch", err)
	}

	result := session.Handle(event)
	if result.Err != nil {
		return nil, c.fail(span, "Dispatch", result.Err)
	}

	if result.Mutated() {
		workflow := session.Workflow()

		if err := c.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
			return nil, c.fail(span, "Dispatch", err)
		}

		c.publishResult(ctx, workflow, result)
	}

	view := c.view(workflowID, session)
	view.Result = &result

	return view, nil
}

func (c *Canvas) publishResult(ctx context.Context, workflow *models.Workflow, result canvas.Result) {
	switch result.Mutation {
	case canvas.MutationMoved:
		node, _ := workflow.NodeByID(result.NodeID)
		if node == nil {
			return
		}

		c.publish(ctx, workflow.ID, events.NodeMoved{
			BaseEvent: c.event(events.NodeMovedEvent, workflow),
			NodeID:    result.NodeID,
			Position:  node.Position,
		})
	case canvas.MutationConnected, canvas.MutationDisconnected:
		c.publish(ctx, workflow.ID, events.ConnectionToggled{
			BaseEvent: c.event(events.ConnectionToggledEvent, workflow),
			SourceID:  result.NodeID,
			TargetID:  result.TargetID,
			Connected: result.Mutation == canvas.MutationConnected,
		})
	case canvas.MutationNone:
	}
}

// ZoomIn zooms the canvas of a workflow in one step.
func (c *Canvas) ZoomIn(ctx context.Context, workflowID string) (*View, error) {
	return c.adjust(ctx, "ZoomIn", workflowID, (*canvas.Canvas).ZoomIn)
}

// ZoomOut zooms the canvas of a workflow out one step.
func (c *Canvas) ZoomOut(ctx context.Context, workflowID string) (*View, error) {
	return c.adjust(ctx, "ZoomOut", workflowID, (*canvas.Canvas).ZoomOut)
}

// ResetView restores the default zoom and pan of a workflow's canvas.
func (c *Canvas) ResetView(ctx context.Context, workflowID string) (*View, error) {
	return c.adjust(ctx, "ResetView", workflowID, (*canvas.Canvas).ResetView)
}

func (c *Canvas) adjust(ctx context.Context, op, workflowID string, fn func(*canvas.Canvas)) (*View, error) {
	ctx, span := c.span(ctx, "canvas.viewport", workflowID)
	defer span.End()

	unlock := c.locker.Lock(workflowID)
	defer unlock()

	session, err := c.session(ctx, workflowID)
	if err != nil {
		return nil, c.fail(span, op, err)
	}

	fn(session)

	return c.view(workflowID, session), nil
}

// Close drops the session of a workflow. It reports whether one was open.
func (c *Canvas) Close(workflowID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.sessions[workflowID]
	delete(c.sessions, workflowID)

	return ok
}

// Sessions returns the number of open sessions.
func (c *Canvas) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.sessions)
}

// Package canvas implements the pointer interaction model of the workflow editor: panning the
// viewport, dragging nodes and drawing connections, kept consistent with the workflow graph.
//
// A Canvas is not safe for concurrent use. It is meant to be driven from a single event loop.
package canvas

import (
	"log/slog"
	"maps"
	"math"

	"github.com/dukex/flowcanvas/pkg/graph"
	"github.com/dukex/flowcanvas/pkg/log"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/render"
	"github.com/dukex/flowcanvas/pkg/viewport"
)

// Canvas tracks the interaction state for one open workflow.
type Canvas struct {
	workflow *models.Workflow
	store    *graph.Store
	viewport *viewport.Viewport
	state    State
	// overlay holds in-progress drag positions, layered over committed node positions.
	overlay map[string]models.Position
	logger  *slog.Logger
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithViewport sets the initial viewport.
func WithViewport(vp *viewport.Viewport) Option {
	return func(c *Canvas) {
		c.viewport = vp
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Canvas) {
		c.logger = logger
	}
}

// New creates an idle canvas over workflow. All graph mutations go through store.
func New(workflow *models.Workflow, store *graph.Store, opts ...Option) *Canvas {
	c := &Canvas{
		workflow: workflow,
		store:    store,
		viewport: viewport.New(),
		state:    Idle{},
		overlay:  make(map[string]models.Position),
		logger:   log.WithModule("canvas"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Workflow returns the workflow the canvas edits.
func (c *Canvas) Workflow() *models.Workflow {
	return c.workflow
}

// State returns the current interaction state.
func (c *Canvas) State() State {
	return c.state
}

// Viewport returns the canvas viewport.
func (c *Canvas) Viewport() *viewport.Viewport {
	return c.viewport
}

// Overlay returns a copy of the in-progress node positions.
func (c *Canvas) Overlay() map[string]models.Position {
	return maps.Clone(c.overlay)
}

// ZoomIn zooms in one step.
func (c *Canvas) ZoomIn() {
	c.viewport.ZoomIn()
}

// ZoomOut zooms out one step.
func (c *Canvas) ZoomOut() {
	c.viewport.ZoomOut()
}

// ResetView restores the default zoom and pan.
func (c *Canvas) ResetView() {
	c.viewport.Reset()
}

// Rebind swaps in a freshly loaded copy of the workflow, keeping the interaction state.
// Interactions that reference a node which no longer exists are settled to Idle.
func (c *Canvas) Rebind(workflow *models.Workflow) {
	c.workflow = workflow

	for id := range c.overlay {
		if !workflow.HasNode(id) {
			delete(c.overlay, id)
		}
	}

	switch s := c.state.(type) {
	case Dragging:
		if !workflow.HasNode(s.NodeID) {
			c.settle()
		}
	case Connecting:
		if !workflow.HasNode(s.SourceID) {
			c.settle()
		}
	}
}

// ResolvedPosition returns where a node is drawn: its live drag position if one exists,
// otherwise its committed position.
func (c *Canvas) ResolvedPosition(nodeID string) (models.Position, bool) {
	if pos, ok := c.overlay[nodeID]; ok {
		return pos, true
	}

	node, _ := c.workflow.NodeByID(nodeID)
	if node == nil {
		return models.Position{}, false
	}

	return node.Position, true
}

func (c *Canvas) resolve(node *models.Node) models.Position {
	if pos, ok := c.overlay[node.ID]; ok {
		return pos
	}

	return node.Position
}

// RubberBand returns the in-progress connection line in world coordinates, or nil when no
// connection is being drawn.
func (c *Canvas) RubberBand() *render.Line {
	s, ok := c.state.(Connecting)
	if !ok {
		return nil
	}

	pos, ok := c.ResolvedPosition(s.SourceID)
	if !ok {
		return nil
	}

	return &render.Line{
		From: render.SourceAnchor(pos),
		To:   c.viewport.ScreenToWorld(s.Cursor),
	}
}

// Scene renders the canvas through the render adapter.
func (c *Canvas) Scene() render.Scene {
	return render.Build(c.workflow, c.viewport, c.resolve, c.RubberBand())
}

// HitTest classifies the element under a screen point. Handles take precedence over node
// bodies, and later nodes are drawn on top of earlier ones.
func (c *Canvas) HitTest(p viewport.Point) Target {
	world := c.viewport.ScreenToWorld(p)

	for i := len(c.workflow.Nodes) - 1; i >= 0; i-- {
		node := c.workflow.Nodes[i]
		pos := c.resolve(node)

		if distance(world, render.SourceAnchor(pos)) <= render.HandleRadius {
			return Target{Kind: TargetSourceHandle, NodeID: node.ID}
		}

		if distance(world, render.TargetAnchor(pos)) <= render.HandleRadius {
			return Target{Kind: TargetTargetHandle, NodeID: node.ID}
		}

		if render.NodeRect(pos).Contains(world) {
			return Target{Kind: TargetNode, NodeID: node.ID}
		}
	}

	return Target{Kind: TargetCanvas}
}

func distance(a, b viewport.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Handle feeds one pointer event through the state machine.
func (c *Canvas) Handle(event Event) Result {
	if event.Kind == PointerDown && event.Target.Kind == "" {
		event.Target = c.HitTest(event.Point)
	}

	var result Result

	switch s := c.state.(type) {
	case Idle:
		result = c.handleIdle(event)
	case Panning:
		result = c.handlePanning(s, event)
	case Dragging:
		result = c.handleDragging(s, event)
	case Connecting:
		result = c.handleConnecting(s, event)
	}

	if result.Mutation == "" {
		result.Mutation = MutationNone
	}

	result.Mode = c.state.Mode()

	return result
}

func (c *Canvas) handleIdle(event Event) Result {
	if event.Kind != PointerDown {
		return Result{}
	}

	switch event.Target.Kind {
	case TargetCanvas:
		c.state = Panning{Last: event.Point}
	case TargetNode:
		node, _ := c.workflow.NodeByID(event.Target.NodeID)
		if node == nil {
			c.logger.Debug("Ignoring drag of unknown node", "node_id", event.Target.NodeID)

			return Result{}
		}

		c.state = Dragging{NodeID: node.ID, Start: event.Point, Origin: node.Position}
	case TargetSourceHandle:
		if !c.workflow.HasNode(event.Target.NodeID) {
			c.logger.Debug("Ignoring connection from unknown node", "node_id", event.Target.NodeID)

			return Result{}
		}

		c.state = Connecting{SourceID: event.Target.NodeID, Cursor: event.Point}
	case TargetTargetHandle:
		// Connections start from source handles only.
	}

	return Result{}
}

func (c *Canvas) handlePanning(s Panning, event Event) Result {
	switch event.Kind {
	case PointerMove:
		delta := event.Point.Sub(s.Last)
		c.viewport.PanBy(c.viewport.ScreenDeltaToWorld(delta))
		c.state = Panning{Last: event.Point}
	case PointerUp, PointerLeave:
		c.state = Idle{}
	case PointerDown:
	}

	return Result{}
}

func (c *Canvas) handleDragging(s Dragging, event Event) Result {
	switch event.Kind {
	case PointerMove:
		if !c.workflow.HasNode(s.NodeID) {
			c.settle()

			return Result{}
		}

		delta := c.viewport.ScreenDeltaToWorld(event.Point.Sub(s.Start))
		c.overlay[s.NodeID] = s.Origin.Add(delta.X, delta.Y)
	case PointerUp, PointerLeave:
		return c.commitDrag(s)
	case PointerDown:
	}

	return Result{}
}

// commitDrag writes the live position of the dragged node into the graph and returns to Idle.
func (c *Canvas) commitDrag(s Dragging) Result {
	live, moved := c.overlay[s.NodeID]
	c.settle()

	if !moved {
		return Result{}
	}

	node, _ := c.workflow.NodeByID(s.NodeID)
	if node == nil {
		c.logger.Debug("Dropping drag of removed node", "node_id", s.NodeID)

		return Result{}
	}

	if node.Position == live {
		return Result{}
	}

	if err := c.store.MoveNode(c.workflow, s.NodeID, live); err != nil {
		return c.failure(err)
	}

	return Result{Mutation: MutationMoved, NodeID: s.NodeID}
}

func (c *Canvas) handleConnecting(s Connecting, event Event) Result {
	switch event.Kind {
	case PointerMove:
		c.state = Connecting{SourceID: s.SourceID, Cursor: event.Point}
	case PointerLeave:
		c.settle()
	case PointerDown:
		switch event.Target.Kind {
		case TargetCanvas:
			c.settle()
		case TargetTargetHandle:
			if event.Target.NodeID == s.SourceID {
				return Result{}
			}

			c.settle()

			connected, err := c.store.ToggleConnection(c.workflow, s.SourceID, event.Target.NodeID)
			if err != nil {
				return c.failure(err)
			}

			mutation := MutationDisconnected
			if connected {
				mutation = MutationConnected
			}

			return Result{Mutation: mutation, NodeID: s.SourceID, TargetID: event.Target.NodeID}
		case TargetNode, TargetSourceHandle:
		}
	case PointerUp:
	}

	return Result{}
}

// settle drops any transient interaction state and returns to Idle.
func (c *Canvas) settle() {
	clear(c.overlay)
	c.state = Idle{}
}

// failure reports an error from the graph store. Missing nodes are stale references and are
// swallowed.
func (c *Canvas) failure(err error) Result {
	if graph.IsNotFound(err) {
		c.logger.Debug("Ignoring stale node reference", "error", err)

		return Result{}
	}

	c.logger.Warn("Canvas mutation rejected", "error", err)

	return Result{Err: err}
}

package services

import (
	"testing"

	"github.com/dukex/flowcanvas/pkg/canvas"
	"github.com/dukex/flowcanvas/pkg/events"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointer(kind canvas.EventKind, x, y float64, target canvas.TargetKind, nodeID string) canvas.Event {
	return canvas.Event{
		Kind:   kind,
		Point:  viewport.Point{X: x, Y: y},
		Target: canvas.Target{Kind: target, NodeID: nodeID},
	}
}

func TestCanvas_View(t *testing.T) {
	t.Parallel()

	p, bus, opts := seeded(t)
	service := NewCanvas(p, bus, opts...)

	view, err := service.View(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", view.WorkflowID)
	assert.Equal(t, canvas.ModeIdle, view.Mode)
	assert.InDelta(t, viewport.DefaultZoom, view.Viewport.Zoom, 1e-9)
	assert.Len(t, view.Scene.Nodes, 3)
	assert.Len(t, view.Scene.Edges, 2)
	assert.Equal(t, 1, service.Sessions())

	_, err = service.View(t.Context(), "missing")
	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, 1, service.Sessions())
}

func TestCanvas_Dispatch_DragPersists(t *testing.T) {
	t.Parallel()

	p, bus, opts := seeded(t)
	service := NewCanvas(p, bus, opts...)

	view, err := service.Dispatch(t.Context(), "1", pointer(canvas.PointerDown, 110, 110, canvas.TargetNode, "node2"))
	require.NoError(t, err)
	assert.Equal(t, canvas.ModeDragging, view.Mode)

	_, err = service.Dispatch(t.Context(), "1", pointer(canvas.PointerMove, 160, 140, "", ""))
	require.NoError(t, err)

	// Nothing is stored until the pointer is released.
	stored, err := p.WorkflowRepository().GetByID(t.Context(), "1")
	require.NoError(t, err)

	node, _ := stored.NodeByID("node2")
	assert.Equal(t, models.Position{X: 400, Y: 100}, node.Position)

	view, err = service.Dispatch(t.Context(), "1", pointer(canvas.PointerUp, 160, 140, "", ""))
	require.NoError(t, err)
	require.NotNil(t, view.Result)
	assert.Equal(t, canvas.MutationMoved, view.Result.Mutation)
	assert.Equal(t, canvas.ModeIdle, view.Mode)

	stored, err = p.WorkflowRepository().GetByID(t.Context(), "1")
	require.NoError(t, err)

	node, _ = stored.NodeByID("node2")
	assert.Equal(t, models.Position{X: 450, Y: 130}, node.Position)
	assert.Equal(t, stampTime, stored.UpdatedAt)

	published := bus.Published()
	require.Len(t, published, 1)

	moved, ok := published[0].(events.NodeMoved)
	require.True(t, ok)
	assert.Equal(t, "node2", moved.NodeID)
	assert.Equal(t, models.Position{X: 450, Y: 130}, moved.Position)
}

func TestCanvas_Dispatch_ConnectPersists(t *testing.T) {
	t.Parallel()

	p, bus, opts := seeded(t)
	service := NewCanvas(p, bus, opts...)

	_, err := service.Dispatch(t.Context(), "1", pointer(canvas.PointerDown, 0, 0, canvas.TargetSourceHandle, "node1"))
	require.NoError(t, err)

	view, err := service.Dispatch(t.Context(), "1", pointer(canvas.PointerDown, 700, 130, canvas.TargetTargetHandle, "node3"))
	require.NoError(t, err)
	assert.Equal(t, canvas.MutationConnected, view.Result.Mutation)

	stored, err := p.WorkflowRepository().GetByID(t.Context(), "1")
	require.NoError(t, err)

	source, _ := stored.NodeByID("node1")
	assert.True(t, source.HasConnection("node3"))

	published := bus.Published()
	require.Len(t, published, 1)

	toggled, ok := published[0].(events.ConnectionToggled)
	require.True(t, ok)
	assert.True(t, toggled.Connected)
	assert.Equal(t, "node1", toggled.SourceID)
	assert.Equal(t, "node3", toggled.TargetID)
}

func TestCanvas_Dispatch_PanDoesNotSave(t *testing.T) {
	t.Parallel()

	p, bus, opts := seeded(t)
	service := NewCanvas(p, bus, opts...)

	_, err := service.Dispatch(t.Context(), "1", pointer(canvas.PointerDown, 10, 10, canvas.TargetCanvas, ""))
	require.NoError(t, err)

	view, err := service.Dispatch(t.Context(), "1", pointer(canvas.PointerMove, 40, 30, "", ""))
	require.NoError(t, err)
	assert.Equal(t, viewport.Point{X: 30, Y: 20}, view.Viewport.Pan)

	view, err = service.Dispatch(t.Context(), "1", pointer(canvas.PointerUp, 40, 30, "", ""))
	require.NoError(t, err)
	assert.False(t, view.Result.Mutated())
	assert.Empty(t, bus.Published())
}

func TestCanvas_Zoom(t *testing.T) {
	t.Parallel()

	p, bus, opts := seeded(t)
	service := NewCanvas(p, bus, opts...)

	view, err := service.ZoomIn(t.Context(), "1")
	require.NoError(t, err)
	assert.Greater(t, view.Viewport.Zoom, viewport.DefaultZoom)

	for range 20 {
		view, err = service.ZoomOut(t.Context(), "1")
		require.NoError(t, err)
	}

	assert.InDelta(t, viewport.MinZoom, view.Viewport.Zoom, 1e-9)

	view, err = service.ResetView(t.Context(), "1")
	require.NoError(t, err)
	assert.InDelta(t, viewport.DefaultZoom, view.Viewport.Zoom, 1e-9)
	assert.Equal(t, viewport.Point{}, view.Viewport.Pan)
}

func TestCanvas_DeletedWorkflowClosesSession(t *testing.T) {
	t.Parallel()

	p, bus, opts := seeded(t)
	locker := NewLocker()
	opts = append(opts, WithLocker(locker))

	canvasService := NewCanvas(p, bus, opts...)
	workflowService := NewWorkflow(p, bus, opts...)

	_, err := canvasService.View(t.Context(), "2")
	require.NoError(t, err)
	require.Equal(t, 1, canvasService.Sessions())

	require.NoError(t, workflowService.Delete(t.Context(), "2"))

	_, err = canvasService.Dispatch(t.Context(), "2", pointer(canvas.PointerDown, 0, 0, canvas.TargetCanvas, ""))
	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, 0, canvasService.Sessions())
}

func TestCanvas_Close(t *testing.T) {
	t.Parallel()

	p, bus, opts := seeded(t)
	service := NewCanvas(p, bus, opts...)

	_, err := service.View(t.Context(), "1")
	require.NoError(t, err)

	assert.True(t, service.Close("1"))
	assert.False(t, service.Close("1"))
	assert.Equal(t, 0, service.Sessions())
}

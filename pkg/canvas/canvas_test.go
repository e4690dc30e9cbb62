package canvas_test

import (
	"testing"
	"time"

	"github.com/dukex/flowcanvas/pkg/canvas"
	"github.com/dukex/flowcanvas/pkg/graph"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/testutil"
	"github.com/dukex/flowcanvas/pkg/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stampTime = time.Date(2025, 4, 2, 14, 30, 0, 0, time.UTC)

func newCanvas(t *testing.T, opts ...canvas.Option) (*canvas.Canvas, *models.Workflow) {
	t.Helper()

	workflow := testutil.CreateLinearWorkflow("wf")
	store := graph.NewStore(graph.WithClock(func() time.Time { return stampTime }))

	return canvas.New(workflow, store, opts...), workflow
}

func pt(x, y float64) viewport.Point {
	return viewport.Point{X: x, Y: y}
}

func down(p viewport.Point, kind canvas.TargetKind, nodeID string) canvas.Event {
	return canvas.Event{Kind: canvas.PointerDown, Point: p, Target: canvas.Target{Kind: kind, NodeID: nodeID}}
}

func move(p viewport.Point) canvas.Event {
	return canvas.Event{Kind: canvas.PointerMove, Point: p}
}

func up(p viewport.Point) canvas.Event {
	return canvas.Event{Kind: canvas.PointerUp, Point: p}
}

func leave(p viewport.Point) canvas.Event {
	return canvas.Event{Kind: canvas.PointerLeave, Point: p}
}

func TestCanvas_InitialState(t *testing.T) {
	t.Parallel()

	c, _ := newCanvas(t)

	assert.Equal(t, canvas.ModeIdle, c.State().Mode())
	assert.Empty(t, c.Overlay())
	assert.Nil(t, c.RubberBand())
}

func TestCanvas_Panning(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t)
	c.Viewport().SetZoom(2)

	result := c.Handle(down(pt(500, 500), canvas.TargetCanvas, ""))
	assert.Equal(t, canvas.ModePanning, result.Mode)

	c.Handle(move(pt(600, 480)))
	c.Handle(move(pt(700, 460)))

	// 200 screen units at zoom 2 is 100 world units.
	assert.Equal(t, viewport.Point{X: 100, Y: -20}, c.Viewport().Pan)

	result = c.Handle(up(pt(700, 460)))
	assert.Equal(t, canvas.ModeIdle, result.Mode)
	assert.False(t, result.Mutated())
	assert.Equal(t, testutil.FixedTime, workflow.UpdatedAt)

	c.Handle(down(pt(0, 0), canvas.TargetCanvas, ""))
	result = c.Handle(leave(pt(-10, 0)))
	assert.Equal(t, canvas.ModeIdle, result.Mode)
}

func TestCanvas_DragNode(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t)

	result := c.Handle(down(pt(450, 150), canvas.TargetNode, "node2"))
	require.Equal(t, canvas.ModeDragging, result.Mode)

	c.Handle(move(pt(470, 150)))
	c.Handle(move(pt(500, 150)))

	// The live position is an overlay; the graph is untouched until pointer-up.
	node2, _ := workflow.NodeByID("node2")
	assert.InDelta(t, 400.0, node2.Position.X, 1e-9)
	assert.Equal(t, testutil.FixedTime, workflow.UpdatedAt)

	live, ok := c.ResolvedPosition("node2")
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 450, Y: 100}, live)
	assert.InDelta(t, 450.0, c.Scene().Nodes[1].Rect.X, 1e-9)

	result = c.Handle(up(pt(500, 150)))
	assert.Equal(t, canvas.ModeIdle, result.Mode)
	assert.Equal(t, canvas.MutationMoved, result.Mutation)
	assert.Equal(t, "node2", result.NodeID)

	assert.InDelta(t, 450.0, node2.Position.X, 1e-9)
	assert.InDelta(t, 100.0, node2.Position.Y, 1e-9)
	assert.Equal(t, stampTime, workflow.UpdatedAt)
	assert.Empty(t, c.Overlay())

	node1, _ := workflow.NodeByID("node1")
	assert.Equal(t, []string{"node2"}, node1.Connections)
}

func TestCanvas_DragNode_ScalesWithZoom(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t, canvas.WithViewport(&viewport.Viewport{Zoom: 0.5}))

	c.Handle(down(pt(250, 75), canvas.TargetNode, "node2"))
	c.Handle(move(pt(275, 85)))
	c.Handle(leave(pt(275, 85)))

	node2, _ := workflow.NodeByID("node2")
	assert.Equal(t, models.Position{X: 450, Y: 120}, node2.Position)
	assert.Equal(t, canvas.ModeIdle, c.State().Mode())
}

func TestCanvas_DragWithoutMoveDoesNotStamp(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t)

	c.Handle(down(pt(450, 150), canvas.TargetNode, "node2"))
	result := c.Handle(up(pt(450, 150)))

	assert.False(t, result.Mutated())
	assert.Equal(t, testutil.FixedTime, workflow.UpdatedAt)
}

func TestCanvas_DragOfRemovedNodeIsSilent(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t)
	store := graph.NewStore()

	c.Handle(down(pt(450, 150), canvas.TargetNode, "node2"))
	c.Handle(move(pt(480, 150)))

	require.NoError(t, store.RemoveNode(workflow, "node2"))

	result := c.Handle(up(pt(480, 150)))
	require.NoError(t, result.Err)
	assert.False(t, result.Mutated())
	assert.Equal(t, canvas.ModeIdle, result.Mode)

	// Pointer-down on an id that no longer exists stays idle.
	result = c.Handle(down(pt(0, 0), canvas.TargetNode, "node2"))
	assert.Equal(t, canvas.ModeIdle, result.Mode)
}

func TestCanvas_ToggleConnection(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t)
	node1, _ := workflow.NodeByID("node1")

	gesture := func() canvas.Result {
		result := c.Handle(down(pt(300, 150), canvas.TargetSourceHandle, "node1"))
		require.Equal(t, canvas.ModeConnecting, result.Mode)

		c.Handle(move(pt(600, 200)))
		c.Handle(up(pt(600, 200)))
		require.Equal(t, canvas.ModeConnecting, c.State().Mode())

		return c.Handle(down(pt(700, 150), canvas.TargetTargetHandle, "node3"))
	}

	result := gesture()
	assert.Equal(t, canvas.MutationConnected, result.Mutation)
	assert.Equal(t, canvas.ModeIdle, result.Mode)
	assert.Equal(t, []string{"node2", "node3"}, node1.Connections)
	assert.Equal(t, stampTime, workflow.UpdatedAt)

	result = gesture()
	assert.Equal(t, canvas.MutationDisconnected, result.Mutation)
	assert.Equal(t, "node1", result.NodeID)
	assert.Equal(t, "node3", result.TargetID)
	assert.Equal(t, []string{"node2"}, node1.Connections)
}

func TestCanvas_Connecting_SelfTargetIsIgnored(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t)

	c.Handle(down(pt(600, 150), canvas.TargetSourceHandle, "node2"))
	result := c.Handle(down(pt(400, 150), canvas.TargetTargetHandle, "node2"))

	assert.Equal(t, canvas.ModeConnecting, result.Mode)
	assert.False(t, result.Mutated())

	node2, _ := workflow.NodeByID("node2")
	assert.NotContains(t, node2.Connections, "node2")
}

func TestCanvas_Connecting_Cancel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event canvas.Event
		mode  canvas.Mode
	}{
		{name: "pointer-down on empty canvas", event: down(pt(1500, 900), canvas.TargetCanvas, ""), mode: canvas.ModeIdle},
		{name: "pointer leaves the canvas", event: leave(pt(-5, -5)), mode: canvas.ModeIdle},
		{name: "pointer-down on a node body is ignored", event: down(pt(450, 150), canvas.TargetNode, "node2"), mode: canvas.ModeConnecting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, workflow := newCanvas(t)

			c.Handle(down(pt(300, 150), canvas.TargetSourceHandle, "node1"))
			result := c.Handle(tt.event)

			assert.Equal(t, tt.mode, result.Mode)
			assert.False(t, result.Mutated())
			assert.Equal(t, testutil.FixedTime, workflow.UpdatedAt)
		})
	}
}

func TestCanvas_RubberBand(t *testing.T) {
	t.Parallel()

	c, _ := newCanvas(t, canvas.WithViewport(&viewport.Viewport{Zoom: 2}))

	c.Handle(down(pt(600, 300), canvas.TargetSourceHandle, "node1"))
	c.Handle(move(pt(1000, 500)))

	band := c.RubberBand()
	require.NotNil(t, band)
	assert.Equal(t, viewport.Point{X: 300, Y: 150}, band.From)
	assert.Equal(t, viewport.Point{X: 500, Y: 250}, band.To)

	scene := c.Scene()
	require.NotNil(t, scene.RubberBand)
	assert.Equal(t, viewport.Point{X: 1000, Y: 500}, scene.RubberBand.To)
}

func TestCanvas_HitTest(t *testing.T) {
	t.Parallel()

	c, _ := newCanvas(t)

	tests := []struct {
		name     string
		point    viewport.Point
		expected canvas.Target
	}{
		{name: "empty canvas", point: pt(50, 50), expected: canvas.Target{Kind: canvas.TargetCanvas}},
		{name: "node body", point: pt(200, 120), expected: canvas.Target{Kind: canvas.TargetNode, NodeID: "node1"}},
		{name: "source handle", point: pt(302, 152), expected: canvas.Target{Kind: canvas.TargetSourceHandle, NodeID: "node1"}},
		{name: "target handle", point: pt(398, 148), expected: canvas.Target{Kind: canvas.TargetTargetHandle, NodeID: "node2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.HitTest(tt.point))
		})
	}
}

func TestCanvas_HandleResolvesTargetByHitTest(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t)

	c.Handle(canvas.Event{Kind: canvas.PointerDown, Point: pt(300, 150)})
	require.Equal(t, canvas.ModeConnecting, c.State().Mode())

	result := c.Handle(canvas.Event{Kind: canvas.PointerDown, Point: pt(700, 150)})
	assert.Equal(t, canvas.MutationConnected, result.Mutation)

	node1, _ := workflow.NodeByID("node1")
	assert.True(t, node1.HasConnection("node3"))
}

func TestCanvas_Rebind(t *testing.T) {
	t.Parallel()

	c, workflow := newCanvas(t)

	c.Handle(down(pt(450, 150), canvas.TargetNode, "node2"))
	c.Handle(move(pt(500, 150)))

	fresh := workflow.Clone()
	require.NoError(t, graph.NewStore().RemoveNode(fresh, "node2"))

	c.Rebind(fresh)

	assert.Equal(t, canvas.ModeIdle, c.State().Mode())
	assert.Empty(t, c.Overlay())
	assert.Same(t, fresh, c.Workflow())
}

func TestCanvas_ZoomPassThrough(t *testing.T) {
	t.Parallel()

	c, _ := newCanvas(t)

	c.ZoomIn()
	assert.InDelta(t, 1.1, c.Viewport().Zoom, 1e-12)

	c.ZoomOut()
	c.ZoomOut()
	assert.InDelta(t, 0.9, c.Viewport().Zoom, 1e-12)

	c.Viewport().PanBy(viewport.Point{X: 10, Y: 10})
	c.ResetView()
	assert.InDelta(t, 1.0, c.Viewport().Zoom, 1e-12)
	assert.Equal(t, viewport.Point{}, c.Viewport().Pan)
}

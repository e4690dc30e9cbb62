// Package render turns graph and viewport state into screen-space geometry: a box per node and a
// cubic Bezier curve per edge. It holds no state.
package render

import (
	"fmt"
	"math"

	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/viewport"
)

const (
	NodeWidth  = 200.0
	NodeHeight = 100.0

	// HandleRadius is the hot-zone radius of a connection handle, in world units.
	HandleRadius = 10.0

	// CurveFactor and CurveCap shape the horizontal control offset of edge curves:
	// offset = min(|dx| * CurveFactor, CurveCap), in world units.
	CurveFactor = 0.4
	CurveCap    = 150.0
)

// PositionResolver returns the position a node should be drawn at. It lets callers layer
// in-progress drag positions over committed ones.
type PositionResolver func(node *models.Node) models.Position

// CommittedPosition draws every node at its stored position.
func CommittedPosition(node *models.Node) models.Position {
	return node.Position
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p viewport.Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// NodeBox is the screen-space box of one node.
type NodeBox struct {
	ID          string          `json:"id"`
	Type        models.NodeType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Rect        Rect            `json:"rect"`
}

// EdgeCurve is a cubic Bezier from the source's right-center anchor to the target's left-center
// anchor, in screen space.
type EdgeCurve struct {
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	From     viewport.Point `json:"from"`
	C1       viewport.Point `json:"c1"`
	C2       viewport.Point `json:"c2"`
	To       viewport.Point `json:"to"`
}

// Path returns the curve as an SVG path.
func (e EdgeCurve) Path() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		e.From.X, e.From.Y, e.C1.X, e.C1.Y, e.C2.X, e.C2.Y, e.To.X, e.To.Y)
}

// Line is a straight segment in screen space.
type Line struct {
	From viewport.Point `json:"from"`
	To   viewport.Point `json:"to"`
}

// Scene is everything needed to draw the canvas.
type Scene struct {
	Viewport   viewport.Viewport `json:"viewport"`
	Nodes      []NodeBox         `json:"nodes"`
	Edges      []EdgeCurve       `json:"edges"`
	RubberBand *Line             `json:"rubber_band,omitempty"`
}

// NodeRect returns the world-space box of a node drawn at pos.
func NodeRect(pos models.Position) Rect {
	return Rect{X: pos.X, Y: pos.Y, W: NodeWidth, H: NodeHeight}
}

// SourceAnchor is the right-center point of a node drawn at pos, where outgoing edges start.
func SourceAnchor(pos models.Position) viewport.Point {
	return viewport.Point{X: pos.X + NodeWidth, Y: pos.Y + NodeHeight/2}
}

// TargetAnchor is the left-center point of a node drawn at pos, where incoming edges end.
func TargetAnchor(pos models.Position) viewport.Point {
	return viewport.Point{X: pos.X, Y: pos.Y + NodeHeight/2}
}

// Curve builds the world-space Bezier between two anchors.
func Curve(from, to viewport.Point) (c1, c2 viewport.Point) {
	offset := math.Min(math.Abs(to.X-from.X)*CurveFactor, CurveCap)

	return viewport.Point{X: from.X + offset, Y: from.Y}, viewport.Point{X: to.X - offset, Y: to.Y}
}

// Build computes the scene for w as seen through vp. band, when non-nil, is the in-progress
// connection line in world coordinates.
func Build(w *models.Workflow, vp *viewport.Viewport, resolve PositionResolver, band *Line) Scene {
	if resolve == nil {
		resolve = CommittedPosition
	}

	scene := Scene{
		Viewport: *vp,
		Nodes:    make([]NodeBox, 0, len(w.Nodes)),
		Edges:    make([]EdgeCurve, 0),
	}

	positions := make(map[string]models.Position, len(w.Nodes))

	for _, node := range w.Nodes {
		pos := resolve(node)
		positions[node.ID] = pos

		world := NodeRect(pos)
		topLeft := vp.WorldToScreen(viewport.Point{X: world.X, Y: world.Y})

		scene.Nodes = append(scene.Nodes, NodeBox{
			ID:          node.ID,
			Type:        node.Type,
			Name:        node.Name,
			Description: node.Description,
			Rect:        Rect{X: topLeft.X, Y: topLeft.Y, W: world.W * vp.Scale(), H: world.H * vp.Scale()},
		})
	}

	for _, edge := range w.Edges() {
		from := SourceAnchor(positions[edge.SourceID])
		to := TargetAnchor(positions[edge.TargetID])
		c1, c2 := Curve(from, to)

		scene.Edges = append(scene.Edges, EdgeCurve{
			SourceID: edge.SourceID,
			TargetID: edge.TargetID,
			From:     vp.WorldToScreen(from),
			C1:       vp.WorldToScreen(c1),
			C2:       vp.WorldToScreen(c2),
			To:       vp.WorldToScreen(to),
		})
	}

	if band != nil {
		scene.RubberBand = &Line{From: vp.WorldToScreen(band.From), To: vp.WorldToScreen(band.To)}
	}

	return scene
}

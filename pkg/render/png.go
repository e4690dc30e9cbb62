package render

import (
	"fmt"
	"io"

	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/fogleman/gg"
)

const (
	backgroundColor = "#f8fafc"
	edgeColor       = "#94a3b8"
	nodeFillColor   = "#ffffff"
	textColor       = "#0f172a"
)

// Border colours per node type, as shown in the editor.
var nodeBorderColors = map[models.NodeType]string{
	models.NodeTypeTrigger:   "#3b82f6",
	models.NodeTypeAction:    "#22c55e",
	models.NodeTypeCondition: "#f59e0b",
}

func borderColor(t models.NodeType) string {
	if c, ok := nodeBorderColors[t]; ok {
		return c
	}

	return "#6b7280"
}

// PNG rasterises the scene into a width x height image and writes it to out.
func PNG(scene Scene, width, height int, out io.Writer) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(backgroundColor)
	dc.Clear()

	zoom := scene.Viewport.Scale()

	dc.SetHexColor(edgeColor)
	dc.SetLineWidth(2 * zoom)

	for _, edge := range scene.Edges {
		dc.MoveTo(edge.From.X, edge.From.Y)
		dc.CubicTo(edge.C1.X, edge.C1.Y, edge.C2.X, edge.C2.Y, edge.To.X, edge.To.Y)
		dc.Stroke()
		dc.DrawCircle(edge.To.X, edge.To.Y, 3*zoom)
		dc.Fill()
	}

	if band := scene.RubberBand; band != nil {
		dc.SetDash(6*zoom, 4*zoom)
		dc.DrawLine(band.From.X, band.From.Y, band.To.X, band.To.Y)
		dc.Stroke()
		dc.SetDash()
	}

	for _, node := range scene.Nodes {
		r := node.Rect

		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 6*zoom)
		dc.SetHexColor(nodeFillColor)
		dc.FillPreserve()
		dc.SetHexColor(borderColor(node.Type))
		dc.SetLineWidth(2 * zoom)
		dc.Stroke()

		dc.SetHexColor(textColor)
		dc.DrawStringAnchored(node.Name, r.X+r.W/2, r.Y+r.H/2, 0.5, 0.5)
	}

	if err := dc.EncodePNG(out); err != nil {
		return fmt.Errorf("failed to encode canvas image: %w", err)
	}

	return nil
}

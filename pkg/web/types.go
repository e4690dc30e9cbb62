// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/dukex/flowcanvas/pkg/canvas"
	"github.com/dukex/flowcanvas/pkg/viewport"
)

// Default size of the canvas PNG.
const (
	DefaultImageWidth  = 1200
	DefaultImageHeight = 800
)

// PositionRequest represents the request body for moving a node.
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// ConnectionRequest represents the request body for the connection endpoints.
type ConnectionRequest struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// TargetRequest names the element under the pointer. It is resolved by hit testing when omitted.
type TargetRequest struct {
	Kind   string `json:"kind"    validate:"required,oneof=canvas node source_handle target_handle"`
	NodeID string `json:"node_id" validate:"required_unless=Kind canvas"`
}

// CanvasEventRequest represents a pointer event sent to a workflow canvas, in screen coordinates.
type CanvasEventRequest struct {
	Kind   string         `json:"kind"   validate:"required,oneof=pointer_down pointer_move pointer_up pointer_leave"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Target *TargetRequest `json:"target"`
}

// Event converts the request into a canvas event.
func (r CanvasEventRequest) Event() canvas.Event {
	event := canvas.Event{
		Kind:  canvas.EventKind(r.Kind),
		Point: viewport.Point{X: r.X, Y: r.Y},
	}

	if r.Target != nil {
		event.Target = canvas.Target{Kind: canvas.TargetKind(r.Target.Kind), NodeID: r.Target.NodeID}
	}

	return event
}

// ImageQuery represents the query parameters of the canvas PNG.
type ImageQuery struct {
	Width  int `query:"width"  validate:"min=100,max=4096"`
	Height int `query:"height" validate:"min=100,max=4096"`
}

// ConnectionResponse reports whether an edge exists after a toggle.
type ConnectionResponse struct {
	SourceID  string `json:"source_id"`
	TargetID  string `json:"target_id"`
	Connected bool   `json:"connected"`
}

package canvas

import "github.com/dukex/flowcanvas/pkg/viewport"

// EventKind is the pointer event type.
type EventKind string

const (
	PointerDown  EventKind = "pointer_down"
	PointerMove  EventKind = "pointer_move"
	PointerUp    EventKind = "pointer_up"
	PointerLeave EventKind = "pointer_leave"
)

// TargetKind is what lies under the pointer.
type TargetKind string

const (
	TargetCanvas       TargetKind = "canvas"
	TargetNode         TargetKind = "node"
	TargetSourceHandle TargetKind = "source_handle"
	TargetTargetHandle TargetKind = "target_handle"
)

// Target identifies the element under the pointer. NodeID is empty for TargetCanvas.
type Target struct {
	Kind   TargetKind `json:"kind"`
	NodeID string     `json:"node_id,omitempty"`
}

// Event is a pointer event in screen coordinates. A zero Target is resolved by hit testing.
type Event struct {
	Kind   EventKind      `json:"kind"   validate:"required,oneof=pointer_down pointer_move pointer_up pointer_leave"`
	Point  viewport.Point `json:"point"`
	Target Target         `json:"target"`
}

// MutationKind describes what an event changed in the graph.
type MutationKind string

const (
	MutationNone         MutationKind = "none"
	MutationMoved        MutationKind = "moved"
	MutationConnected    MutationKind = "connected"
	MutationDisconnected MutationKind = "disconnected"
)

// Result reports the outcome of one event to the caller.
type Result struct {
	Mode     Mode         `json:"mode"`
	Mutation MutationKind `json:"mutation"`
	NodeID   string       `json:"node_id,omitempty"`
	TargetID string       `json:"target_id,omitempty"`
	Err      error        `json:"-"`
}

// Mutated reports whether the event changed the graph.
func (r Result) Mutated() bool {
	return r.Mutation != MutationNone
}

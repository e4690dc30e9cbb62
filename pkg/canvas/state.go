package canvas

import (
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/viewport"
)

// Mode names the current pointer interaction.
type Mode string

const (
	ModeIdle       Mode = "idle"
	ModePanning    Mode = "panning"
	ModeDragging   Mode = "dragging"
	ModeConnecting Mode = "connecting"
)

// State is one of Idle, Panning, Dragging or Connecting. Only one interaction can be in
// progress at a time.
type State interface {
	Mode() Mode
	state()
}

// Idle waits for a pointer-down.
type Idle struct{}

// Panning moves the viewport with the pointer.
type Panning struct {
	Last viewport.Point // Last pointer position, screen units
}

// Dragging moves one node. The live position lives in the canvas overlay until pointer-up.
type Dragging struct {
	NodeID string
	Start  viewport.Point  // Pointer position at pointer-down, screen units
	Origin models.Position // Committed node position at pointer-down
}

// Connecting draws a rubber band from SourceID's handle to the pointer.
type Connecting struct {
	SourceID string
	Cursor   viewport.Point // Pointer position, screen units
}

func (Idle) Mode() Mode       { return ModeIdle }
func (Panning) Mode() Mode    { return ModePanning }
func (Dragging) Mode() Mode   { return ModeDragging }
func (Connecting) Mode() Mode { return ModeConnecting }

func (Idle) state()       {}
func (Panning) state()    {}
func (Dragging) state()   {}
func (Connecting) state() {}

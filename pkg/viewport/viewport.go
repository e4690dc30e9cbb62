// Package viewport models the pan/zoom transform between screen and canvas (world) coordinates.
//
// One convention is used everywhere: translate, then scale.
//
//	screen = (world + pan) * zoom + origin
//	world  = (screen - origin) / zoom - pan
package viewport

import "math"

const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	DefaultZoom = 1.0
	ZoomStep    = 0.1

	// WorldWidth and WorldHeight bound the drawable canvas area in world units.
	WorldWidth  = 2000.0
	WorldHeight = 1000.0
)

// Point is a 2D point or vector. Whether it is in screen or world units depends on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p * k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Viewport holds the zoom factor, the pan offset (world units) and the screen offset of the
// canvas element.
type Viewport struct {
	Zoom   float64 `json:"zoom"`
	Pan    Point   `json:"pan"`
	Origin Point   `json:"origin"`
}

// New returns a viewport at the default zoom with no pan.
func New() *Viewport {
	return &Viewport{Zoom: DefaultZoom}
}

// WithOrigin returns a viewport whose screen origin is at origin.
func WithOrigin(origin Point) *Viewport {
	return &Viewport{Zoom: DefaultZoom, Origin: origin}
}

// Scale returns the zoom factor the transforms apply. A zero, negative or NaN zoom, as found in
// a zero Viewport, counts as DefaultZoom.
func (v *Viewport) Scale() float64 {
	if v.Zoom > 0 {
		return v.Zoom
	}

	return DefaultZoom
}

// ScreenToWorld converts a screen point to world coordinates.
func (v *Viewport) ScreenToWorld(p Point) Point {
	return p.Sub(v.Origin).Scale(1 / v.Scale()).Sub(v.Pan)
}

// WorldToScreen converts a world point to screen coordinates.
func (v *Viewport) WorldToScreen(p Point) Point {
	return p.Add(v.Pan).Scale(v.Scale()).Add(v.Origin)
}

// ScreenDeltaToWorld converts a screen-space displacement into world units.
func (v *Viewport) ScreenDeltaToWorld(d Point) Point {
	return d.Scale(1 / v.Scale())
}

// PanBy accumulates a displacement already expressed in world units.
func (v *Viewport) PanBy(delta Point) {
	v.Pan = v.Pan.Add(delta)
}

// ZoomIn increases the zoom by one step, up to MaxZoom.
func (v *Viewport) ZoomIn() {
	v.SetZoom(v.Zoom + ZoomStep)
}

// ZoomOut decreases the zoom by one step, down to MinZoom.
func (v *Viewport) ZoomOut() {
	v.SetZoom(v.Zoom - ZoomStep)
}

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom]. Values are rounded to two decimals so
// repeated steps do not accumulate floating point drift.
func (v *Viewport) SetZoom(zoom float64) {
	if math.IsNaN(zoom) {
		zoom = DefaultZoom
	}

	zoom = math.Round(zoom*100) / 100
	v.Zoom = math.Min(MaxZoom, math.Max(MinZoom, zoom))
}

// Reset restores the default zoom and clears the pan. The origin is kept.
func (v *Viewport) Reset() {
	v.Zoom = DefaultZoom
	v.Pan = Point{}
}

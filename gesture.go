package panotour

import "math"

// DefaultDragThreshold is how far, in pixels, a pressed pointer may travel
// before the gesture counts as a camera drag instead of a tap.
const DefaultDragThreshold = 5.0

// GestureTracker tells taps from drag-to-look gestures for a single pointer.
type GestureTracker struct {
	threshold float64

	down     bool
	modality Modality
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	dragging bool
}

func NewGestureTracker(threshold float64) *GestureTracker {
	return &GestureTracker{threshold: threshold}
}

func (g *GestureTracker) Down(x, y float64, m Modality) {
	g.down = true
	g.modality = m
	g.startX, g.startY = x, y
	g.lastX, g.lastY = x, y
	g.dragging = false
}

// Move records pointer movement and returns the movement since the previous
// event while the gesture is a drag.
func (g *GestureTracker) Move(x, y float64) (dx, dy float64, dragging bool) {
	if !g.down {
		g.lastX, g.lastY = x, y
		return 0, 0, false
	}
	if !g.dragging && g.beyondThreshold(x, y) {
		g.dragging = true
	}
	dx, dy = x-g.lastX, y-g.lastY
	g.lastX, g.lastY = x, y
	if !g.dragging {
		return 0, 0, false
	}
	return dx, dy, true
}

// Up ends the gesture and reports whether it was a tap. A release with no
// matching press counts as a tap.
func (g *GestureTracker) Up(x, y float64) (tap bool) {
	if !g.down {
		return true
	}
	tap = !g.dragging && !g.beyondThreshold(x, y)
	g.down = false
	g.dragging = false
	return tap
}

func (g *GestureTracker) Dragging() bool {
	return g.dragging
}

func (g *GestureTracker) Pressed() bool {
	return g.down
}

func (g *GestureTracker) Modality() Modality {
	return g.modality
}

func (g *GestureTracker) beyondThreshold(x, y float64) bool {
	dx := x - g.startX
	dy := y - g.startY
	return math.Sqrt(dx*dx+dy*dy) > g.threshold
}

package panotour

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

type MarkerKind int

const (
	NavigationMarker MarkerKind = iota
	InfoMarker
)

func (k MarkerKind) String() string {
	if k == InfoMarker {
		return "info"
	}
	return "navigation"
}

type HoverState int

const (
	Idle HoverState = iota
	Hovering
)

func (s HoverState) String() string {
	if s == Hovering {
		return "hovering"
	}
	return "idle"
}

// Marker is the runtime object for one hotspot or infospot of the panorama
// currently on screen. Its world position is fixed at creation; the scale,
// color and rotation are animated every frame and never affect picking.
type Marker struct {
	Kind MarkerKind

	// Target and Label are set for navigation markers.
	Target int
	Label  string
	// Info is set for info markers.
	Info *Infospot

	Hover           HoverState
	PulsePhase      float64
	InitialRotation float64

	Scale    float64
	Color    mgl64.Vec3
	Rotation float64

	position mgl64.Vec3
}

func (m *Marker) Position() mgl64.Vec3 {
	return m.position
}

// RGBA returns the current animated color.
func (m *Marker) RGBA() color.RGBA {
	return color.RGBA{
		R: channel(m.Color[0]),
		G: channel(m.Color[1]),
		B: channel(m.Color[2]),
		A: 255,
	}
}

func channel(c float64) uint8 {
	return uint8(clamp(int(c*255+0.5), 0, 255))
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// MarkerSet is every marker of the loaded panorama.
type MarkerSet struct {
	Navigation []*Marker
	Info       []*Marker
}

// All returns navigation markers followed by info markers.
func (s MarkerSet) All() []*Marker {
	all := make([]*Marker, 0, len(s.Navigation)+len(s.Info))
	all = append(all, s.Navigation...)
	return append(all, s.Info...)
}

func (s MarkerSet) Len() int {
	return len(s.Navigation) + len(s.Info)
}

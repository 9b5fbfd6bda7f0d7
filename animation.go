package panotour

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Animator drives the per-frame hover state and the smoothed visual
// attributes of markers.
type Animator struct {
	cfg    AnimationConfig
	normal mgl64.Vec3
	hover  mgl64.Vec3
}

func NewAnimator(cfg AnimationConfig) (*Animator, error) {
	normal, err := ParseHexColor(cfg.NormalColor)
	if err != nil {
		return nil, err
	}
	hover, err := ParseHexColor(cfg.HoverColor)
	if err != nil {
		return nil, err
	}
	return &Animator{cfg: cfg, normal: normal, hover: hover}, nil
}

// Reset puts a freshly created marker in its resting look.
func (a *Animator) Reset(m *Marker) {
	m.Hover = Idle
	m.Scale = a.cfg.NormalScale
	m.Color = a.normal
	m.Rotation = 0
}

// Update runs one frame at time t (seconds). hovered is the marker under the
// pointer, or nil; every other marker goes back to idle.
func (a *Animator) Update(t float64, hovered *Marker, markers []*Marker) {
	for _, m := range markers {
		if m == hovered {
			m.Hover = Hovering
		} else {
			m.Hover = Idle
		}
		a.Step(m, t)
	}
}

// Step moves one marker a frame closer to the look implied by its hover state.
func (a *Animator) Step(m *Marker, t float64) {
	var (
		scale    float64
		col      mgl64.Vec3
		rotation float64
	)
	if m.Hover == Hovering {
		scale = a.cfg.HoverScale
		col = a.hover
	} else {
		scale = a.cfg.NormalScale * a.Pulse(m, t)
		col = a.normal
		rotation = math.Sin(t*a.cfg.RotationSpeed+m.InitialRotation) * a.cfg.RotationAmount
	}

	lf := a.cfg.LerpFactor
	m.Scale += (scale - m.Scale) * lf
	m.Color = m.Color.Add(col.Sub(m.Color).Mul(lf))
	m.Rotation += (rotation - m.Rotation) * lf
}

// Pulse is the idle scale multiplier at time t.
func (a *Animator) Pulse(m *Marker, t float64) float64 {
	return 1 + math.Sin(t*a.cfg.PulseSpeed+m.PulsePhase)*a.cfg.PulseAmount
}

// Bump gives immediate click feedback; smoothing brings the scale back.
func (a *Animator) Bump(m *Marker) {
	if a.cfg.ClickBump > 0 {
		m.Scale *= a.cfg.ClickBump
	}
}

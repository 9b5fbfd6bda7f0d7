package panotour

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half line from Origin along the unit vector Dir.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

const nearPlane = 0.1

// Camera is the viewer at the centre of the panorama. With zero yaw and pitch
// it looks down -Z with +Y up; positive yaw turns towards -X, positive pitch
// looks up.
type Camera struct {
	yaw, pitch float64
	fov        float64
	aspect     float64

	minFOV, maxFOV float64
	yawLimit       float64
	pitchLimit     float64
}

// NewCamera creates a camera for a viewport with the given aspect ratio.
// Angles in cfg are in degrees; a yaw limit of 180 or more means unlimited.
func NewCamera(cfg CameraConfig, aspect float64) *Camera {
	return &Camera{
		fov:        cfg.FOV,
		aspect:     aspect,
		minFOV:     cfg.MinFOV,
		maxFOV:     cfg.MaxFOV,
		yawLimit:   degreesToRadians(cfg.YawLimit),
		pitchLimit: degreesToRadians(cfg.PitchLimit),
	}
}

func degreesToRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

func (c *Camera) Yaw() float64   { return c.yaw }
func (c *Camera) Pitch() float64 { return c.pitch }
func (c *Camera) FOV() float64   { return c.fov }

func (c *Camera) SetAspect(aspect float64) {
	if aspect > 0 {
		c.aspect = aspect
	}
}

// AddAngle turns the camera by the given pitch and yaw (radians), clamped to
// the configured limits.
func (c *Camera) AddAngle(pitch, yaw float64) {
	c.SetAngles(c.pitch+pitch, c.yaw+yaw)
}

func (c *Camera) SetAngles(pitch, yaw float64) {
	c.pitch = mgl64.Clamp(pitch, -c.pitchLimit, c.pitchLimit)
	if c.yawLimit < math.Pi {
		c.yaw = mgl64.Clamp(yaw, -c.yawLimit, c.yawLimit)
	} else {
		c.yaw = math.Remainder(yaw, 2*math.Pi)
	}
}

// Zoom narrows (negative delta) or widens the field of view in degrees.
func (c *Camera) Zoom(delta float64) {
	lo, hi := c.minFOV, c.maxFOV
	if lo <= 0 || hi <= lo {
		return
	}
	c.fov = mgl64.Clamp(c.fov+delta, lo, hi)
}

// LookAt points the camera at p.
func (c *Camera) LookAt(p mgl64.Vec3) {
	horizontal := math.Hypot(p.X(), p.Z())
	if horizontal == 0 && p.Y() == 0 {
		return
	}
	c.SetAngles(math.Atan2(p.Y(), horizontal), math.Atan2(-p.X(), -p.Z()))
}

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DY(c.yaw).Mul3(mgl64.Rotate3DX(c.pitch))
}

// Forward is the unit view direction.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.rotation().Mul3x1(mgl64.Vec3{0, 0, -1})
}

func (c *Camera) tanHalfFOV() float64 {
	return math.Tan(degreesToRadians(c.fov) / 2)
}

// PickRay returns the ray through a normalized device coordinate
// (x right, y up, both in [-1,1]).
func (c *Camera) PickRay(ndc mgl64.Vec2) Ray {
	t := c.tanHalfFOV()
	local := mgl64.Vec3{ndc.X() * t * c.aspect, ndc.Y() * t, -1}
	return Ray{Dir: c.rotation().Mul3x1(local).Normalize()}
}

// Project maps a world point to normalized device coordinates. ok is false for
// points behind the near plane.
func (c *Camera) Project(p mgl64.Vec3) (ndc mgl64.Vec2, depth float64, ok bool) {
	return c.ProjectView(c.ToView(p))
}

// ToView transforms a world point into camera space, where the camera looks
// down -Z.
func (c *Camera) ToView(p mgl64.Vec3) mgl64.Vec3 {
	return c.rotation().Transpose().Mul3x1(p)
}

// ProjectView is Project for a point already in camera space.
func (c *Camera) ProjectView(q mgl64.Vec3) (ndc mgl64.Vec2, depth float64, ok bool) {
	depth = -q.Z()
	if depth < nearPlane {
		return mgl64.Vec2{}, depth, false
	}
	t := c.tanHalfFOV()
	return mgl64.Vec2{q.X() / depth / (t * c.aspect), q.Y() / depth / t}, depth, true
}

// NearPlane is the closest depth Project accepts.
func NearPlane() float64 {
	return nearPlane
}

// PixelsPerUnit is the on-screen size of one world unit at the given depth for
// a viewport of the given pixel height.
func (c *Camera) PixelsPerUnit(depth float64, viewportHeight int) float64 {
	if depth <= 0 {
		return 0
	}
	return float64(viewportHeight) / 2 / (depth * c.tanHalfFOV())
}

// ToNDC converts a pixel position in a w×h viewport to normalized device
// coordinates.
func ToNDC(x, y float64, w, h int) mgl64.Vec2 {
	if w <= 0 || h <= 0 {
		return mgl64.Vec2{}
	}
	return mgl64.Vec2{
		x/float64(w)*2 - 1,
		-(y/float64(h)*2 - 1),
	}
}

// FromNDC is the inverse of ToNDC.
func FromNDC(ndc mgl64.Vec2, w, h int) (x, y float64) {
	return (ndc.X() + 1) / 2 * float64(w), (1 - ndc.Y()) / 2 * float64(h)
}

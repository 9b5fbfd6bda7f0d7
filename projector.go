package panotour

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// surfaceAspect is the cylinder height as a multiple of its radius.
const surfaceAspect = 1.2

// SurfaceHeight is the height of the viewing cylinder for a given radius.
func SurfaceHeight(radius float64) float64 {
	return radius * surfaceAspect
}

// Project maps a normalized image coordinate onto a vertical cylinder of the
// given radius centred on the origin. The horizontal axis is mirrored
// (phi = (1-u)·2π) because the panorama is viewed from the inside; authored
// content coordinates depend on this exact convention.
func Project(u, v, radius float64) mgl64.Vec3 {
	phi := (1 - u) * 2 * math.Pi
	return mgl64.Vec3{
		radius * math.Sin(phi),
		SurfaceHeight(radius) * (v - 0.5),
		radius * math.Cos(phi),
	}
}

// ProjectUV is Project for a UV value.
func ProjectUV(p UV, radius float64) mgl64.Vec3 {
	return Project(p.U, p.V, radius)
}

package viewer

import "github.com/go-gl/mathgl/mgl64"

// surfaceClipDepth is where surface polygons are cut. It sits well in front
// of the camera's near plane so clipped vertices always project.
const surfaceClipDepth = 1.0

// clipVertex is a surface vertex in camera space with its texture position.
type clipVertex struct {
	pos  mgl64.Vec3
	u, v float64
}

func viewDepth(v clipVertex) float64 {
	return -v.pos.Z()
}

// clipNear keeps the part of a convex polygon at depth near or beyond.
// Vertices exactly on the plane are kept.
func clipNear(poly []clipVertex, near float64) []clipVertex {
	if len(poly) == 0 {
		return nil
	}

	out := make([]clipVertex, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevIn := viewDepth(prev) >= near
	for _, cur := range poly {
		curIn := viewDepth(cur) >= near
		if curIn != prevIn {
			out = append(out, intersectNear(prev, cur, near))
		}
		if curIn {
			out = append(out, cur)
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// intersectNear returns the point where the edge a-b crosses depth near,
// with its texture position interpolated.
func intersectNear(a, b clipVertex, near float64) clipVertex {
	da, db := viewDepth(a), viewDepth(b)
	t := (near - da) / (db - da)
	return clipVertex{
		pos: a.pos.Add(b.pos.Sub(a.pos).Mul(t)),
		u:   a.u + (b.u-a.u)*t,
		v:   a.v + (b.v-a.v)*t,
	}
}

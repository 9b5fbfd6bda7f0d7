package viewer

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/smasonuk/panotour"
)

// panoramaSurface paints the current panorama on the inside of an open
// cylinder around the camera.
type panoramaSurface struct {
	cfg panotour.SurfaceConfig
	cam *panotour.Camera
	log zerolog.Logger

	ref string
	img *ebiten.Image

	batches []meshBatch
}

type meshBatch struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

func newPanoramaSurface(cfg panotour.SurfaceConfig, cam *panotour.Camera, log zerolog.Logger) *panoramaSurface {
	return &panoramaSurface{cfg: cfg, cam: cam, log: log}
}

func (s *panoramaSurface) ApplyImage(ref string, img image.Image) {
	if s.img != nil {
		s.img.Deallocate()
	}
	s.img = ebiten.NewImageFromImage(img)
	s.ref = ref
	s.log.Debug().Str("ref", ref).Msg("Surface texture replaced")
}

// LookAt turns the camera, so navigation can aim at the first hotspot.
func (s *panoramaSurface) LookAt(p mgl64.Vec3) {
	s.cam.LookAt(p)
}

func (s *panoramaSurface) Draw(screen *ebiten.Image) {
	if s.img == nil {
		return
	}
	b := screen.Bounds()
	tex := s.img.Bounds()
	s.batches = buildSurfaceMesh(s.batches[:0], s.cfg, s.cam, b.Dx(), b.Dy(), tex.Dx(), tex.Dy())

	op := &ebiten.DrawTrianglesOptions{}
	op.Filter = ebiten.FilterLinear
	for _, batch := range s.batches {
		screen.DrawTriangles(batch.vertices, batch.indices, s.img, op)
	}
}

// buildSurfaceMesh tessellates the cylinder into screen-space triangles for a
// w×h viewport and a texture of texW×texH pixels. Quads are clipped against
// the camera and fanned out like any convex polygon.
func buildSurfaceMesh(batches []meshBatch, cfg panotour.SurfaceConfig, cam *panotour.Camera, w, h, texW, texH int) []meshBatch {
	ws, hs := cfg.WidthSegments, cfg.HeightSegments
	if ws <= 0 || hs <= 0 {
		return batches
	}

	corner := func(u, v float64) clipVertex {
		return clipVertex{pos: cam.ToView(panotour.Project(u, v, cfg.Radius)), u: u, v: v}
	}

	cur := meshBatch{}
	quad := make([]clipVertex, 4)
	for i := 0; i < ws; i++ {
		u0 := float64(i) / float64(ws)
		u1 := float64(i+1) / float64(ws)
		for j := 0; j < hs; j++ {
			v0 := float64(j) / float64(hs)
			v1 := float64(j+1) / float64(hs)

			quad[0] = corner(u0, v0)
			quad[1] = corner(u1, v0)
			quad[2] = corner(u1, v1)
			quad[3] = corner(u0, v1)
			poly := clipNear(quad, surfaceClipDepth)
			if len(poly) < 3 {
				continue
			}

			if len(cur.vertices)+len(poly) > math.MaxUint16 {
				batches = append(batches, cur)
				cur = meshBatch{}
			}

			base := uint16(len(cur.vertices))
			for _, cv := range poly {
				// Clipping keeps every vertex past the near plane.
				ndc, _, _ := cam.ProjectView(cv.pos)
				x, y := panotour.FromNDC(ndc, w, h)
				cur.vertices = append(cur.vertices, ebiten.Vertex{
					DstX:   float32(x),
					DstY:   float32(y),
					SrcX:   float32(cv.u * float64(texW)),
					SrcY:   float32((1 - cv.v) * float64(texH)),
					ColorR: 1,
					ColorG: 1,
					ColorB: 1,
					ColorA: 1,
				})
			}
			for k := 2; k < len(poly); k++ {
				cur.indices = append(cur.indices, base, base+uint16(k-1), base+uint16(k))
			}
		}
	}
	if len(cur.indices) > 0 {
		batches = append(batches, cur)
	}
	return batches
}

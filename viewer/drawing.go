package viewer

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/smasonuk/panotour"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	whiteSub   *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

const markerSides = 24

var markerOutlineColor = color.RGBA{R: 30, G: 30, B: 30, A: 200}

func fillConvexPolygon(screen *ebiten.Image, xp, yp []float32, clr color.RGBA) {
	if len(xp) < 3 {
		return
	}

	indices := make([]uint16, 0, (len(xp)-2)*3)
	for i := 2; i < len(xp); i++ {
		indices = append(indices, 0, uint16(i-1), uint16(i))
	}

	vertices := make([]ebiten.Vertex, len(xp))
	cr, cg, cb, ca := colorComponents(clr)
	for i := range xp {
		vertices[i] = ebiten.Vertex{
			DstX:   xp[i],
			DstY:   yp[i],
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(vertices, indices, whiteSub, op)
}

// drawPolygonOutline strokes the closed outline through the given points.
func drawPolygonOutline(screen *ebiten.Image, xp, yp []float32, strokeWidth float32, clr color.RGBA) {
	if len(xp) < 2 {
		return
	}

	var path vector.Path
	path.MoveTo(xp[0], yp[0])
	for i := 1; i < len(xp); i++ {
		path.LineTo(xp[i], yp[i])
	}
	path.Close()

	vertices, indices := path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{
		Width: strokeWidth,
	})

	cr, cg, cb, ca := colorComponents(clr)
	for i := range vertices {
		vertices[i].ColorR = cr
		vertices[i].ColorG = cg
		vertices[i].ColorB = cb
		vertices[i].ColorA = ca
		vertices[i].SrcX = 1
		vertices[i].SrcY = 1
	}

	screen.DrawTriangles(vertices, indices, whiteSub, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func colorComponents(clr color.RGBA) (r, g, b, a float32) {
	return float32(clr.R) / 255, float32(clr.G) / 255, float32(clr.B) / 255, float32(clr.A) / 255
}

// markerShape returns the screen outline of a marker without an icon: a disc
// for navigation markers and a diamond turned by the marker's rotation for
// info markers.
func markerShape(kind panotour.MarkerKind, cx, cy, radius, rotation float64) (xp, yp []float32) {
	sides := markerSides
	start := 0.0
	if kind == panotour.InfoMarker {
		sides = 4
		start = rotation
	}

	xp = make([]float32, sides)
	yp = make([]float32, sides)
	for i := 0; i < sides; i++ {
		a := start + 2*math.Pi*float64(i)/float64(sides)
		xp[i] = float32(cx + radius*math.Cos(a))
		yp[i] = float32(cy + radius*math.Sin(a))
	}
	return xp, yp
}

// markerScreen returns where and how large a marker appears in a w×h
// viewport. ok is false when it is behind the camera.
func markerScreen(cam *panotour.Camera, m *panotour.Marker, w, h int) (cx, cy, radius float64, ok bool) {
	ndc, depth, ok := cam.Project(m.Position())
	if !ok {
		return 0, 0, 0, false
	}
	cx, cy = panotour.FromNDC(ndc, w, h)
	radius = m.Scale / 2 * cam.PixelsPerUnit(depth, h)
	return cx, cy, radius, true
}

func drawMarker(screen *ebiten.Image, cam *panotour.Camera, m *panotour.Marker, icon *ebiten.Image) {
	b := screen.Bounds()
	cx, cy, radius, ok := markerScreen(cam, m, b.Dx(), b.Dy())
	if !ok || radius <= 0 {
		return
	}
	clr := m.RGBA()

	if icon != nil {
		ib := icon.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-float64(ib.Dx())/2, -float64(ib.Dy())/2)
		op.GeoM.Scale(2*radius/float64(ib.Dx()), 2*radius/float64(ib.Dy()))
		op.GeoM.Rotate(m.Rotation)
		op.GeoM.Translate(cx, cy)
		op.ColorScale.ScaleWithColor(clr)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(icon, op)
		return
	}

	xp, yp := markerShape(m.Kind, cx, cy, radius, m.Rotation)
	fillConvexPolygon(screen, xp, yp, clr)
	drawPolygonOutline(screen, xp, yp, 1.5, markerOutlineColor)
}

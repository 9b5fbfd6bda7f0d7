package viewer

import (
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/smasonuk/panotour"
)

// Glyph size of the ebitenutil debug font.
const (
	debugCharWidth  = 6
	debugCharHeight = 16
)

type label struct {
	text string
	pos  mgl64.Vec3
}

// labelLayer draws hotspot captions anchored to world positions.
type labelLayer struct {
	cam    *panotour.Camera
	labels []label
}

func newLabelLayer(cam *panotour.Camera) *labelLayer {
	return &labelLayer{cam: cam}
}

func (l *labelLayer) ClearLabels() {
	l.labels = l.labels[:0]
}

func (l *labelLayer) AddLabel(text string, pos mgl64.Vec3) {
	l.labels = append(l.labels, label{text: text, pos: pos})
}

// anchor returns the top-left pixel of a label centred on its world position.
func (l *labelLayer) anchor(lb label, w, h int) (x, y int, ok bool) {
	ndc, _, ok := l.cam.Project(lb.pos)
	if !ok {
		return 0, 0, false
	}
	fx, fy := panotour.FromNDC(ndc, w, h)
	x = int(fx) - utf8.RuneCountInString(lb.text)*debugCharWidth/2
	y = int(fy) - debugCharHeight/2
	return x, y, true
}

func (l *labelLayer) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	for _, lb := range l.labels {
		if x, y, ok := l.anchor(lb, b.Dx(), b.Dy()); ok {
			ebitenutil.DebugPrintAt(screen, lb.text, x, y)
		}
	}
}

package viewer

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	navButtonSize   = 48
	navButtonMargin = 16
)

var navButtonColor = color.RGBA{R: 20, G: 20, B: 20, A: 160}

// navButtons returns the backward and forward buttons, in the bottom-left and
// bottom-right corners of a w×h screen.
func navButtons(w, h int) (prev, next image.Rectangle) {
	top := h - navButtonMargin - navButtonSize
	prev = image.Rect(navButtonMargin, top, navButtonMargin+navButtonSize, top+navButtonSize)
	next = image.Rect(w-navButtonMargin-navButtonSize, top, w-navButtonMargin, top+navButtonSize)
	return prev, next
}

// navButtonAt returns -1 over the backward button, 1 over the forward button
// and 0 elsewhere.
func navButtonAt(x, y float64, w, h int) int {
	pt := image.Pt(int(x), int(y))
	prev, next := navButtons(w, h)
	switch {
	case pt.In(prev):
		return -1
	case pt.In(next):
		return 1
	}
	return 0
}

func drawNavButtons(screen *ebiten.Image) {
	b := screen.Bounds()
	prev, next := navButtons(b.Dx(), b.Dy())
	for _, btn := range []struct {
		r    image.Rectangle
		text string
	}{{prev, "<"}, {next, ">"}} {
		vector.DrawFilledRect(screen, float32(btn.r.Min.X), float32(btn.r.Min.Y),
			float32(btn.r.Dx()), float32(btn.r.Dy()), navButtonColor, false)
		ebitenutil.DebugPrintAt(screen, btn.text,
			btn.r.Min.X+(navButtonSize-debugCharWidth)/2, btn.r.Min.Y+(navButtonSize-debugCharHeight)/2)
	}
}

// cursorTracker reports real mouse movement. The first reading only sets the
// baseline, so a cursor parked at the origin on a touch device is ignored.
type cursorTracker struct {
	x, y  int
	known bool
}

func (c *cursorTracker) moved(x, y int) bool {
	if !c.known {
		c.x, c.y, c.known = x, y, true
		return false
	}
	if x == c.x && y == c.y {
		return false
	}
	c.x, c.y = x, y
	return true
}

package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/smasonuk/panotour"
)

var (
	overlayColor = color.RGBA{A: 180}
	panelColor   = color.RGBA{R: 24, G: 24, B: 28, A: 240}
)

// closeButtonSize is the side of the close box in the panel's top-right corner.
const closeButtonSize = 32

type modalAction int

const (
	modalNone modalAction = iota
	modalClose
	modalPrev
	modalNext
)

// modalPanel is the panel area for a w×h screen.
func modalPanel(w, h int) image.Rectangle {
	return image.Rect(w/10, h/10, w-w/10, h-h/10)
}

func closeButton(panel image.Rectangle) image.Rectangle {
	return image.Rect(panel.Max.X-closeButtonSize, panel.Min.Y, panel.Max.X, panel.Min.Y+closeButtonSize)
}

// modalTapAction maps a tap or click to what the modal does with it. The
// backdrop and the close box close it; the left and right halves of the panel
// move the carousel.
func modalTapAction(x, y float64, w, h int) modalAction {
	pt := image.Pt(int(x), int(y))
	panel := modalPanel(w, h)
	switch {
	case !pt.In(panel), pt.In(closeButton(panel)):
		return modalClose
	case pt.X < panel.Min.X+panel.Dx()/2:
		return modalPrev
	default:
		return modalNext
	}
}

// infoModal shows infospot content over the panorama. It owns the carousel
// position; images are fetched through the asset loader when it opens.
type infoModal struct {
	loader panotour.AssetLoader
	log    zerolog.Logger

	open    bool
	content panotour.InfoContent
	index   int
	cancel  context.CancelFunc

	mu      sync.Mutex
	decoded map[string]image.Image
	images  map[string]*ebiten.Image
}

func newInfoModal(loader panotour.AssetLoader, log zerolog.Logger) *infoModal {
	return &infoModal{
		loader:  loader,
		log:     log,
		decoded: make(map[string]image.Image),
		images:  make(map[string]*ebiten.Image),
	}
}

func (m *infoModal) PresentInfo(c panotour.InfoContent) {
	m.Close()
	m.release()
	m.content = c
	m.index = 0
	m.open = true

	if m.loader == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	for _, ref := range c.Images {
		m.loader.Load(ctx, ref, func(img image.Image, err error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					m.log.Warn().Err(err).Str("ref", ref).Msg("Infospot image not loaded")
				}
				return
			}
			m.decoded[ref] = img
		})
	}
}

// release drops the images of the previous infospot.
func (m *infoModal) release() {
	m.mu.Lock()
	clear(m.decoded)
	m.mu.Unlock()
	for ref, img := range m.images {
		img.Deallocate()
		delete(m.images, ref)
	}
}

func (m *infoModal) Open() bool {
	return m.open
}

func (m *infoModal) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.open = false
}

// Tap handles a tap or click at x,y on a w×h screen.
func (m *infoModal) Tap(x, y float64, w, h int) {
	switch modalTapAction(x, y, w, h) {
	case modalClose:
		m.Close()
	case modalPrev:
		m.PrevImage()
	case modalNext:
		m.NextImage()
	}
}

func (m *infoModal) NextImage() {
	if n := len(m.content.Images); n > 0 {
		m.index = (m.index + 1) % n
	}
}

func (m *infoModal) PrevImage() {
	if n := len(m.content.Images); n > 0 {
		m.index = (m.index - 1 + n) % n
	}
}

// CurrentImage is the reference shown by the carousel, or "".
func (m *infoModal) CurrentImage() string {
	if len(m.content.Images) == 0 {
		return ""
	}
	return m.content.Images[m.index]
}

func (m *infoModal) image(ref string) *ebiten.Image {
	if img, ok := m.images[ref]; ok {
		return img
	}
	m.mu.Lock()
	src, ok := m.decoded[ref]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	img := ebiten.NewImageFromImage(src)
	m.images[ref] = img
	return img
}

func (m *infoModal) Draw(screen *ebiten.Image) {
	if !m.open {
		return
	}
	b := screen.Bounds()
	vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()), overlayColor, false)

	panel := modalPanel(b.Dx(), b.Dy())
	px, py := float32(panel.Min.X), float32(panel.Min.Y)
	pw, ph := float32(panel.Dx()), float32(panel.Dy())
	vector.DrawFilledRect(screen, px, py, pw, ph, panelColor, false)
	cb := closeButton(panel)
	ebitenutil.DebugPrintAt(screen, "X", cb.Min.X+(closeButtonSize-debugCharWidth)/2, cb.Min.Y+(closeButtonSize-debugCharHeight)/2)

	x, y := int(px)+16, int(py)+16
	ebitenutil.DebugPrintAt(screen, m.content.Title, x, y)
	y += debugCharHeight * 2

	if ref := m.CurrentImage(); ref != "" {
		box := image.Rect(x, y, int(px+pw)-16, int(py+ph*0.65))
		if img := m.image(ref); img != nil {
			drawFitted(screen, img, box)
		} else {
			ebitenutil.DebugPrintAt(screen, "Loading "+ref, box.Min.X, box.Min.Y)
		}
		if n := len(m.content.Images); n > 1 {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("< %d/%d >", m.index+1, n), box.Min.X, box.Max.Y+4)
		}
		y = box.Max.Y + debugCharHeight*2
	}

	for _, line := range wrapText(m.content.Description, int(pw-32)/debugCharWidth) {
		ebitenutil.DebugPrintAt(screen, line, x, y)
		y += debugCharHeight
	}
	if m.content.Video != "" {
		ebitenutil.DebugPrintAt(screen, "Video: "+m.content.Video, x, y+debugCharHeight)
	}
	ebitenutil.DebugPrintAt(screen, "Esc or tap outside to close", x, int(py+ph)-debugCharHeight-8)
}

// drawFitted draws img scaled to fit inside box, keeping its aspect ratio.
func drawFitted(screen, img *ebiten.Image, box image.Rectangle) {
	ib := img.Bounds()
	if ib.Dx() == 0 || ib.Dy() == 0 {
		return
	}
	scale := min(float64(box.Dx())/float64(ib.Dx()), float64(box.Dy())/float64(ib.Dy()))
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(
		float64(box.Min.X)+(float64(box.Dx())-float64(ib.Dx())*scale)/2,
		float64(box.Min.Y)+(float64(box.Dy())-float64(ib.Dy())*scale)/2,
	)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

// wrapText breaks s into lines of at most width characters at spaces.
// Words longer than width get a line of their own.
func wrapText(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var line strings.Builder
		for _, word := range strings.Fields(para) {
			if line.Len() > 0 && line.Len()+1+len(word) > width {
				lines = append(lines, line.String())
				line.Reset()
			}
			if line.Len() > 0 {
				line.WriteByte(' ')
			}
			line.WriteString(word)
		}
		if line.Len() > 0 {
			lines = append(lines, line.String())
		}
	}
	return lines
}

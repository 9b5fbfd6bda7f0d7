// Package viewer runs a tour session in an ebiten window.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"io/fs"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/smasonuk/panotour"
)

// zoomStep is the field of view change in degrees per wheel notch.
const zoomStep = 2.0

type Game struct {
	cfg panotour.Config
	log zerolog.Logger

	session *panotour.Session
	camera  *panotour.Camera
	surface *panoramaSurface
	labels  *labelLayer
	modal   *infoModal
	audio   *audioPlayer

	width, height int

	touching   bool
	touchID    ebiten.TouchID
	cursor     cursorTracker
	buttonHeld bool

	icons  map[panotour.MarkerKind]*ebiten.Image
	cancel context.CancelFunc
	status string
}

// NewGame builds the window side of a session. Panoramas and icons come from
// loader and background audio is read from assets.
func NewGame(cfg panotour.Config, tour *panotour.Tour, loader panotour.AssetLoader, assets fs.FS, log zerolog.Logger) (*Game, error) {
	log.Info().Msg("Initializing viewer...")

	g := &Game{
		cfg:    cfg,
		log:    log,
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
		icons:  make(map[panotour.MarkerKind]*ebiten.Image),
	}
	g.camera = panotour.NewCamera(cfg.Camera, float64(g.width)/float64(max(g.height, 1)))
	g.surface = newPanoramaSurface(cfg.Surface, g.camera, log)
	g.labels = newLabelLayer(g.camera)
	g.modal = newInfoModal(loader, log)
	g.audio = newAudioPlayer(audio.NewContext(sampleRate), assets, log)

	session, err := panotour.NewSession(panotour.SessionDeps{
		Tour:      tour,
		Config:    cfg,
		Engine:    panotour.NewRayEngine(g.camera, cfg.Markers.HitRadius),
		Loader:    loader,
		Surface:   g.surface,
		Audio:     g.audio,
		Presenter: g.modal,
		Labels:    g.labels,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	g.session = session

	log.Info().Int("panoramas", tour.Len()).Msg("Initialization Complete.")
	return g, nil
}

// Start loads the marker icons and opens the panorama named by the address
// path.
func (g *Game) Start(address string) error {
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.session.LoadIcons(ctx)
	return g.session.Start(address)
}

func (g *Game) Session() *panotour.Session {
	return g.session
}

func (g *Game) Update() error {
	if g.modal.Open() {
		g.updateModal()
	} else {
		g.updateKeys()
		g.updateTouch()
		if !g.touching {
			g.updateMouse()
		}
	}

	if err := g.session.Update(time.Now()); err != nil {
		g.status = err.Error()
	}

	if g.session.Hovered() != nil {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
	return nil
}

func (g *Game) updateModal() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.modal.Close()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.modal.NextImage()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.modal.PrevImage()
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		x, y := ebiten.CursorPosition()
		g.modal.Tap(float64(x), float64(y), g.width, g.height)
	default:
		for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
			x, y := inpututil.TouchPositionInPreviousTick(id)
			g.modal.Tap(float64(x), float64(y), g.width, g.height)
			if !g.modal.Open() {
				break
			}
		}
	}
}

func (g *Game) updateKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight), inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		g.step(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft), inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.step(-1)
	}
}

// step moves to the next (1) or previous (-1) panorama in tour order.
func (g *Game) step(dir int) {
	var err error
	if dir > 0 {
		err = g.session.Next()
	} else {
		err = g.session.Prev()
	}
	if err != nil {
		g.status = err.Error()
	}
}

func (g *Game) updateMouse() {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if dir := navButtonAt(fx, fy, g.width, g.height); dir != 0 {
			g.buttonHeld = true
			g.step(dir)
		} else {
			g.session.PointerDown(fx, fy, panotour.Mouse)
		}
	}
	if g.cursor.moved(x, y) && !g.buttonHeld {
		if dx, dy, dragging := g.session.PointerMove(fx, fy); dragging {
			g.rotate(dx, dy)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.buttonHeld {
			g.buttonHeld = false
		} else {
			g.picked(g.session.PointerUp(fx, fy, panotour.Mouse))
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.camera.Zoom(-wy * zoomStep)
	}
}

func (g *Game) updateTouch() {
	if !g.touching {
		ids := inpututil.AppendJustPressedTouchIDs(nil)
		if len(ids) == 0 {
			return
		}
		x, y := ebiten.TouchPosition(ids[0])
		if dir := navButtonAt(float64(x), float64(y), g.width, g.height); dir != 0 {
			g.step(dir)
			return
		}
		g.touching = true
		g.touchID = ids[0]
		g.session.PointerDown(float64(x), float64(y), panotour.Touch)
		return
	}

	if inpututil.IsTouchJustReleased(g.touchID) {
		x, y := inpututil.TouchPositionInPreviousTick(g.touchID)
		g.touching = false
		g.picked(g.session.PointerUp(float64(x), float64(y), panotour.Touch))
		return
	}
	x, y := ebiten.TouchPosition(g.touchID)
	if dx, dy, dragging := g.session.PointerMove(float64(x), float64(y)); dragging {
		g.rotate(dx, dy)
	}
}

// rotate turns the camera so the panorama follows the pointer.
func (g *Game) rotate(dx, dy float64) {
	rate := g.cfg.Camera.RotateRate * math.Pi / 180
	g.camera.AddAngle(dy*rate, dx*rate)
}

func (g *Game) picked(m *panotour.Marker, err error) {
	if err != nil {
		g.status = err.Error()
		return
	}
	if m != nil {
		g.status = ""
	}
}

func (g *Game) icon(kind panotour.MarkerKind) *ebiten.Image {
	if img, ok := g.icons[kind]; ok {
		return img
	}
	src, ok := g.session.Icon(kind)
	if !ok {
		return nil
	}
	img := ebiten.NewImageFromImage(src)
	g.icons[kind] = img
	return img
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.surface.Draw(screen)
	for _, m := range g.session.Markers().All() {
		drawMarker(screen, g.camera, m, g.icon(m.Kind))
	}
	g.labels.Draw(screen)
	drawNavButtons(screen)
	g.drawStatus(screen)
	g.modal.Draw(screen)
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	nav := g.session.Navigator()
	var line string
	switch {
	case nav.State() == panotour.StateLoading && nav.Pending() != nil:
		line = fmt.Sprintf("Loading %s...", nav.Pending().Name)
	case nav.Degraded():
		line = nav.LastError().Error()
	case g.status != "":
		line = g.status
	case nav.Current() != nil:
		line = fmt.Sprintf("(%d) %s", nav.Current().ID, nav.Current().Name)
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.2f\n%s", ebiten.ActualFPS(), line))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.session.SetViewport(g.width, g.height)
		g.camera.SetAspect(float64(g.width) / float64(max(g.height, 1)))
	}
	return outsideWidth, outsideHeight
}

// Close stops loads in flight and the background audio.
func (g *Game) Close() {
	if g.cancel != nil {
		g.cancel()
	}
	g.modal.Close()
	g.session.Close()
	g.audio.Close()
}

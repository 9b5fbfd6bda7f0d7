package panotour

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// InfoContent is what an info marker shows when picked.
type InfoContent struct {
	Title       string
	Description string
	Images      []string
	Video       string
}

// Presenter shows infospot content, typically in a modal.
type Presenter interface {
	PresentInfo(c InfoContent)
}

// SessionDeps wires a session to its host. Audio, Presenter, Labels and Rand
// may be nil.
type SessionDeps struct {
	Tour      *Tour
	Config    Config
	Engine    Engine
	Loader    AssetLoader
	Surface   Surface
	Audio     AudioChanger
	Presenter Presenter
	Labels    LabelSink
	Rand      *rand.Rand
	Logger    zerolog.Logger
}

// Session is one running tour: the current panorama, its markers and the
// pointer interaction on top of them. Everything but the loader callbacks
// runs on the host's logic thread.
type Session struct {
	tour      *Tour
	cfg       Config
	log       zerolog.Logger
	loader    AssetLoader
	presenter Presenter

	nav      *Navigator
	factory  *MarkerFactory
	animator *Animator
	resolver *PickResolver
	gestures *GestureTracker

	width, height int
	pointerX      float64
	pointerY      float64
	pointerSeen   bool
	modality      Modality
	hovered       *Marker
	started       time.Time

	iconMu   sync.RWMutex
	icons    map[MarkerKind]image.Image
	iconErrs []error
}

func NewSession(deps SessionDeps) (*Session, error) {
	if deps.Tour == nil {
		return nil, errors.New("session needs a tour")
	}
	animator, err := NewAnimator(deps.Config.Animation)
	if err != nil {
		return nil, err
	}

	factory := NewMarkerFactory(deps.Tour, deps.Config.Markers, animator, deps.Rand, deps.Labels, deps.Logger)
	s := &Session{
		tour:      deps.Tour,
		cfg:       deps.Config,
		log:       deps.Logger,
		loader:    deps.Loader,
		presenter: deps.Presenter,
		factory:   factory,
		animator:  animator,
		resolver:  NewPickResolver(deps.Engine, factory, deps.Config.Pick),
		gestures:  NewGestureTracker(deps.Config.Pick.DragThreshold),
		nav:       NewNavigator(deps.Tour, deps.Loader, deps.Surface, deps.Audio, factory, deps.Config.Navigation, deps.Logger),
		width:     deps.Config.Window.Width,
		height:    deps.Config.Window.Height,
		icons:     make(map[MarkerKind]image.Image),
	}
	return s, nil
}

// Start opens the panorama named by the address path, or the configured
// default. A link to a panorama that does not exist opens the first one.
func (s *Session) Start(address string) error {
	id := PanoramaIDFromPath(address, s.cfg.Navigation.DefaultPanorama)
	err := s.nav.Activate(id)
	if errors.Is(err, ErrUnresolvedTarget) {
		first := s.tour.At(0).ID
		s.log.Warn().Int("panorama", id).Int("fallback", first).Msg("Deep link does not name a panorama")
		err = s.nav.Activate(first)
	}
	return err
}

func (s *Session) SetViewport(width, height int) {
	s.width, s.height = width, height
}

// PointerMove records the pointer position. While the pointer is pressed and
// has moved past the drag threshold it returns the drag delta in pixels.
// Movement without a press can only come from a mouse.
func (s *Session) PointerMove(x, y float64) (dx, dy float64, dragging bool) {
	s.pointerX, s.pointerY = x, y
	s.pointerSeen = true
	if !s.gestures.Pressed() {
		s.modality = Mouse
	}
	return s.gestures.Move(x, y)
}

func (s *Session) PointerDown(x, y float64, m Modality) {
	s.pointerX, s.pointerY = x, y
	s.pointerSeen = true
	s.modality = m
	s.gestures.Down(x, y, m)
}

// PointerUp ends a gesture. A tap picks the marker under the pointer: a
// navigation marker starts moving to its target and an info marker is handed
// to the presenter. The picked marker is returned, or nil after a drag or a
// miss.
func (s *Session) PointerUp(x, y float64, m Modality) (*Marker, error) {
	s.pointerX, s.pointerY = x, y
	s.modality = m
	if !s.gestures.Up(x, y) {
		return nil, nil
	}

	picked := s.resolver.Resolve(ToNDC(x, y, s.width, s.height), m)
	if picked == nil {
		return nil, nil
	}
	s.animator.Bump(picked)

	switch picked.Kind {
	case NavigationMarker:
		s.log.Debug().Int("target", picked.Target).Str("input", m.String()).Msg("Hotspot picked")
		return picked, s.nav.Activate(picked.Target)
	case InfoMarker:
		if s.presenter != nil && picked.Info != nil {
			s.presenter.PresentInfo(picked.Info.Content())
		}
	}
	return picked, nil
}

// Update runs one frame: finished loads are applied, the hovered marker is
// picked again from the last pointer position and markers are animated.
func (s *Session) Update(now time.Time) error {
	if s.started.IsZero() {
		s.started = now
	}
	err := s.nav.Update(now)

	s.hovered = nil
	if s.pointerSeen && s.modality == Mouse && !s.gestures.Dragging() {
		s.hovered = s.resolver.Resolve(ToNDC(s.pointerX, s.pointerY, s.width, s.height), Mouse)
	}
	s.animator.Update(now.Sub(s.started).Seconds(), s.hovered, s.factory.Markers().All())
	return err
}

func (s *Session) Next() error {
	return s.nav.Next()
}

func (s *Session) Prev() error {
	return s.nav.Prev()
}

func (s *Session) Navigator() *Navigator {
	return s.nav
}

func (s *Session) Markers() MarkerSet {
	return s.factory.Markers()
}

// Hovered is the marker under the mouse, or nil. Hosts show a pointing
// cursor while it is set.
func (s *Session) Hovered() *Marker {
	return s.hovered
}

func (s *Session) Dragging() bool {
	return s.gestures.Dragging()
}

// LoadIcons starts loading the marker icons. A marker whose icon is missing
// is still drawn and pickable.
func (s *Session) LoadIcons(ctx context.Context) {
	refs := map[MarkerKind]string{
		NavigationMarker: s.cfg.Assets.HotspotIcon,
		InfoMarker:       s.cfg.Assets.InfospotIcon,
	}
	for kind, ref := range refs {
		if ref == "" {
			continue
		}
		kind, ref := kind, ref
		s.loader.Load(ctx, ref, func(img image.Image, err error) {
			s.iconMu.Lock()
			defer s.iconMu.Unlock()
			if err != nil {
				missing := &Error{Kind: KindMissingIcon, Ref: ref, Err: err}
				s.iconErrs = append(s.iconErrs, missing)
				s.log.Error().Err(missing).Str("marker", kind.String()).Msg("Icon not loaded")
				return
			}
			s.icons[kind] = img
		})
	}
}

// Icon returns the icon for a marker kind once it has loaded.
func (s *Session) Icon(kind MarkerKind) (image.Image, bool) {
	s.iconMu.RLock()
	defer s.iconMu.RUnlock()
	img, ok := s.icons[kind]
	return img, ok
}

func (s *Session) IconErrors() []error {
	s.iconMu.RLock()
	defer s.iconMu.RUnlock()
	return append([]error(nil), s.iconErrs...)
}

// Close cancels any load still running.
func (s *Session) Close() {
	s.nav.Close()
}

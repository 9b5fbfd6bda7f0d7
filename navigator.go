package panotour

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// AssetLoader fetches and decodes images. done is called exactly once per
// request, possibly on another goroutine.
type AssetLoader interface {
	Load(ctx context.Context, ref string, done func(image.Image, error))
}

// Surface is whatever the panorama image gets painted on.
type Surface interface {
	ApplyImage(ref string, img image.Image)
}

// Aimer is implemented by surfaces that can turn the view towards a point.
type Aimer interface {
	LookAt(p mgl64.Vec3)
}

// AudioChanger switches the background track. Failures are its own business.
type AudioChanger interface {
	ChangeAudio(ref string)
}

type State int

const (
	StateIdle State = iota
	StateLoading
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type completion struct {
	seq uint64
	img image.Image
	err error
}

// Navigator moves the session between panoramas. All methods except the
// loader callbacks must be called from the logic thread.
type Navigator struct {
	tour    *Tour
	loader  AssetLoader
	surface Surface
	audio   AudioChanger
	factory *MarkerFactory
	cfg     NavigationConfig
	log     zerolog.Logger

	state   State
	current *Panorama
	pending *Panorama

	seq      uint64
	attempt  int
	cancel   context.CancelFunc
	deadline time.Time
	retryAt  time.Time
	cause    error

	degraded bool
	lastErr  error

	mu   sync.Mutex
	done []completion
}

// NewNavigator creates an idle navigator. audio may be nil.
func NewNavigator(tour *Tour, loader AssetLoader, surface Surface, audio AudioChanger, factory *MarkerFactory, cfg NavigationConfig, log zerolog.Logger) *Navigator {
	return &Navigator{
		tour:    tour,
		loader:  loader,
		surface: surface,
		audio:   audio,
		factory: factory,
		cfg:     cfg,
		log:     log,
	}
}

func (n *Navigator) State() State {
	return n.state
}

// Current is the panorama on screen, or nil before the first load finished.
func (n *Navigator) Current() *Panorama {
	return n.current
}

// Pending is the panorama being loaded, or nil.
func (n *Navigator) Pending() *Panorama {
	return n.pending
}

// Degraded reports whether the last navigation failed and the viewer fell
// back to the previous panorama.
func (n *Navigator) Degraded() bool {
	return n.degraded
}

func (n *Navigator) LastError() error {
	return n.lastErr
}

// Activate starts loading panorama id. An unknown id changes nothing. A newer
// request always supersedes one still in flight.
func (n *Navigator) Activate(id int) error {
	p, ok := n.tour.Lookup(id)
	if !ok {
		n.log.Warn().Int("panorama", id).Msg("Hotspot target does not exist")
		return &Error{Kind: KindUnresolvedTarget, PanoramaID: id}
	}

	n.factory.Clear()
	n.pending = p
	n.state = StateLoading
	n.attempt = 0
	n.cause = nil
	n.retryAt = time.Time{}
	n.startLoad(time.Time{})
	return nil
}

func (n *Navigator) Next() error {
	return n.step(1)
}

func (n *Navigator) Prev() error {
	return n.step(-1)
}

func (n *Navigator) step(delta int) error {
	size := n.tour.Len()
	base := n.current
	if n.state == StateLoading && n.pending != nil {
		base = n.pending
	}

	var i int
	switch {
	case base != nil:
		i = (n.tour.IndexOf(base.ID) + delta + size) % size
	case delta < 0:
		i = size - 1
	}
	return n.Activate(n.tour.At(i).ID)
}

// startLoad begins one attempt for the pending panorama. A zero now defers the
// timeout deadline to the next Update.
func (n *Navigator) startLoad(now time.Time) {
	if n.cancel != nil {
		n.cancel()
	}
	n.seq++
	seq := n.seq

	ctx := context.Background()
	var cancel context.CancelFunc
	if n.cfg.LoadTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, n.cfg.LoadTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	n.cancel = cancel

	n.deadline = time.Time{}
	if !now.IsZero() && n.cfg.LoadTimeout > 0 {
		n.deadline = now.Add(n.cfg.LoadTimeout)
	}

	p := n.pending
	n.log.Info().
		Int("panorama", p.ID).
		Str("image", p.Image).
		Int("attempt", n.attempt+1).
		Msg("Loading panorama")

	n.loader.Load(ctx, p.Image, func(img image.Image, err error) {
		n.mu.Lock()
		n.done = append(n.done, completion{seq: seq, img: img, err: err})
		n.mu.Unlock()
	})
}

// Update applies finished loads and drives timeouts and retries. It returns
// an AssetLoadFailure error on the frame a navigation finally gives up.
func (n *Navigator) Update(now time.Time) error {
	n.mu.Lock()
	done := n.done
	n.done = nil
	n.mu.Unlock()

	var result error
	for _, c := range done {
		if c.seq != n.seq || n.state != StateLoading || !n.retryAt.IsZero() {
			continue
		}
		if c.err != nil {
			if err := n.fail(now, c.err); err != nil {
				result = err
			}
			continue
		}
		n.arrive(c.img)
	}

	if n.state != StateLoading {
		return result
	}

	if !n.retryAt.IsZero() {
		if !now.Before(n.retryAt) {
			n.retryAt = time.Time{}
			n.startLoad(now)
		}
		return result
	}

	if n.cfg.LoadTimeout > 0 {
		if n.deadline.IsZero() {
			n.deadline = now.Add(n.cfg.LoadTimeout)
		} else if now.After(n.deadline) {
			if err := n.fail(now, context.DeadlineExceeded); err != nil {
				result = err
			}
		}
	}
	return result
}

func (n *Navigator) arrive(img image.Image) {
	p := n.pending
	n.cancel()
	n.cancel = nil

	n.surface.ApplyImage(p.Image, img)
	if n.audio != nil && p.Audio != "" {
		n.audio.ChangeAudio(p.Audio)
	}
	set := n.factory.Rebuild(p)

	n.current = p
	n.pending = nil
	n.state = StateActive
	n.attempt = 0
	n.degraded = false
	n.lastErr = nil

	if aimer, ok := n.surface.(Aimer); ok && len(set.Navigation) > 0 {
		aimer.LookAt(set.Navigation[0].Position())
	}
	n.log.Info().Int("panorama", p.ID).Str("name", p.Name).Msg("Panorama active")
}

// fail handles one failed attempt. It schedules a retry or, when the attempts
// are used up, falls back and returns the failure.
func (n *Navigator) fail(now time.Time, cause error) error {
	p := n.pending
	n.cancel()
	n.cancel = nil
	// Anything still in flight for this attempt is now stale.
	n.seq++
	n.cause = cause

	if n.attempt < n.cfg.RetryAttempts {
		n.attempt++
		wait := n.backoff(n.attempt)
		n.retryAt = now.Add(wait)
		n.log.Warn().
			Err(cause).
			Int("panorama", p.ID).
			Int("attempt", n.attempt).
			Dur("backoff", wait).
			Msg("Panorama load failed, retrying")
		return nil
	}

	err := &Error{Kind: KindAssetLoadFailure, PanoramaID: p.ID, Ref: p.Image, Err: cause}
	n.degraded = true
	n.lastErr = err
	n.pending = nil
	n.attempt = 0
	n.retryAt = time.Time{}

	if n.current != nil {
		n.factory.Rebuild(n.current)
		n.state = StateActive
	} else {
		n.state = StateIdle
	}
	n.log.Error().Err(err).Msg("Giving up on panorama")
	return err
}

// backoff is the wait before retry number attempt (1-based).
func (n *Navigator) backoff(attempt int) time.Duration {
	wait := n.cfg.RetryBackoff
	for i := 1; i < attempt; i++ {
		wait *= 2
		if n.cfg.MaxBackoff > 0 && wait >= n.cfg.MaxBackoff {
			return n.cfg.MaxBackoff
		}
	}
	if n.cfg.MaxBackoff > 0 && wait > n.cfg.MaxBackoff {
		return n.cfg.MaxBackoff
	}
	return wait
}

// Close cancels any load in flight.
func (n *Navigator) Close() {
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

package panotour

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const float64EqualityThreshold = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

func vecAlmostEqual(a, b mgl64.Vec3) bool {
	return almostEqual(a.X(), b.X()) && almostEqual(a.Y(), b.Y()) && almostEqual(a.Z(), b.Z())
}

type loadRequest struct {
	ctx  context.Context
	ref  string
	done func(image.Image, error)
}

// fakeLoader keeps every request until the test completes it.
type fakeLoader struct {
	mu       sync.Mutex
	requests []loadRequest
}

func (l *fakeLoader) Load(ctx context.Context, ref string, done func(image.Image, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, loadRequest{ctx: ctx, ref: ref, done: done})
}

func (l *fakeLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

func (l *fakeLoader) request(i int) loadRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.requests[i]
}

func (l *fakeLoader) last() loadRequest {
	return l.request(l.count() - 1)
}

func (l *fakeLoader) succeed(i int) {
	l.request(i).done(testImage(), nil)
}

func (l *fakeLoader) fail(i int, err error) {
	l.request(i).done(nil, err)
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 8, 4))
}

// recorder is the surface, audio and label sink of a test session. It logs
// every call in order.
type recorder struct {
	calls   []string
	looked  []mgl64.Vec3
	labels  []string
	infos   []InfoContent
	applied int
}

func (r *recorder) ApplyImage(ref string, img image.Image) {
	r.applied++
	r.calls = append(r.calls, "apply:"+ref)
}

func (r *recorder) LookAt(p mgl64.Vec3) {
	r.looked = append(r.looked, p)
	r.calls = append(r.calls, "look")
}

func (r *recorder) ChangeAudio(ref string) {
	r.calls = append(r.calls, "audio:"+ref)
}

func (r *recorder) ClearLabels() {
	r.labels = nil
	r.calls = append(r.calls, "labels:clear")
}

func (r *recorder) AddLabel(text string, pos mgl64.Vec3) {
	r.labels = append(r.labels, text)
	r.calls = append(r.calls, "label:"+text)
}

func (r *recorder) PresentInfo(c InfoContent) {
	r.infos = append(r.infos, c)
}

func (r *recorder) reset() {
	r.calls = nil
}

// testPanoramas is a small tour: 1 links to 2 and 3, 2 is a dead end with no
// markers, and 3 links back to 1 and to a panorama that does not exist.
func testPanoramas() []Panorama {
	return []Panorama{
		{
			ID:    1,
			Name:  "Square",
			Image: "1.jpg",
			Audio: "1.ogg",
			Hotspots: []Hotspot{
				{Position: UV{U: 0.5, V: 0.5}, Target: 2},
				{Position: UV{U: 0.75, V: 0.5}, Target: 3, Label: "Courtyard"},
			},
			Infospots: []Infospot{
				{Position: UV{U: 0.25, V: 0.5}, Images: ImageList{"1a.jpg"}, Title: "Welcome"},
			},
		},
		{
			ID:    2,
			Name:  "Gate",
			Image: "2.jpg",
		},
		{
			ID:    3,
			Name:  "Courtyard",
			Image: "3.jpg",
			Audio: "3.ogg",
			Hotspots: []Hotspot{
				{Position: UV{U: 0.1, V: 0.4}, Target: 1},
				{Position: UV{U: 0.6, V: 0.4}, Target: 99},
			},
		},
	}
}

func testTour(t *testing.T) *Tour {
	t.Helper()
	tour, err := NewTour(testPanoramas())
	require.NoError(t, err)
	return tour
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Navigation.LoadTimeout = time.Second
	cfg.Navigation.RetryAttempts = 2
	cfg.Navigation.RetryBackoff = 100 * time.Millisecond
	cfg.Navigation.MaxBackoff = 150 * time.Millisecond
	return cfg
}

func newTestFactory(t *testing.T, tour *Tour, labels LabelSink) *MarkerFactory {
	t.Helper()
	cfg := testConfig()
	animator, err := NewAnimator(cfg.Animation)
	require.NoError(t, err)
	return NewMarkerFactory(tour, cfg.Markers, animator, rand.New(rand.NewSource(1)), labels, zerolog.Nop())
}

type navFixture struct {
	nav     *Navigator
	loader  *fakeLoader
	rec     *recorder
	factory *MarkerFactory
	now     time.Time
}

func newNavFixture(t *testing.T, cfg NavigationConfig) *navFixture {
	t.Helper()
	tour := testTour(t)
	rec := &recorder{}
	loader := &fakeLoader{}
	factory := newTestFactory(t, tour, rec)
	return &navFixture{
		nav:     NewNavigator(tour, loader, rec, rec, factory, cfg, zerolog.Nop()),
		loader:  loader,
		rec:     rec,
		factory: factory,
		now:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock and runs one frame.
func (f *navFixture) tick(d time.Duration) error {
	f.now = f.now.Add(d)
	return f.nav.Update(f.now)
}

// arrive activates id and completes its load successfully.
func (f *navFixture) arrive(t *testing.T, id int) {
	t.Helper()
	require.NoError(t, f.nav.Activate(id))
	f.loader.succeed(f.loader.count() - 1)
	require.NoError(t, f.tick(time.Millisecond))
	require.Equal(t, StateActive, f.nav.State())
	require.Equal(t, id, f.nav.Current().ID, fmt.Sprintf("expected to arrive at %d", id))
}

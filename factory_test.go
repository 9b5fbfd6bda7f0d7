package panotour

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildIsIdempotent(t *testing.T) {
	tour := testTour(t)
	rec := &recorder{}
	f := newTestFactory(t, tour, rec)
	p, _ := tour.Lookup(1)

	first := f.Rebuild(p)
	second := f.Rebuild(p)

	require.Equal(t, first.Len(), second.Len())
	assert.Len(t, second.Navigation, 2)
	assert.Len(t, second.Info, 1)
	for i := range first.Navigation {
		assert.True(t, vecAlmostEqual(first.Navigation[i].Position(), second.Navigation[i].Position()))
		assert.Equal(t, first.Navigation[i].Target, second.Navigation[i].Target)
	}
	assert.Equal(t, second, f.Markers())
	assert.Len(t, rec.labels, 2, "labels are not duplicated")
}

func TestRebuildPlacesMarkersOnTheirCylinders(t *testing.T) {
	tour := testTour(t)
	f := newTestFactory(t, tour, nil)
	p, _ := tour.Lookup(1)
	set := f.Rebuild(p)

	cfg := testConfig().Markers
	for i, m := range set.Navigation {
		want := ProjectUV(p.Hotspots[i].Position, cfg.HotspotRadius)
		assert.True(t, vecAlmostEqual(want, m.Position()))
		assert.Equal(t, NavigationMarker, m.Kind)
		assert.Nil(t, m.Info)
	}
	for i, m := range set.Info {
		want := ProjectUV(p.Infospots[i].Position, cfg.InfospotRadius)
		assert.True(t, vecAlmostEqual(want, m.Position()))
		assert.Equal(t, InfoMarker, m.Kind)
		require.NotNil(t, m.Info)
		assert.Equal(t, "Welcome", m.Info.Title)
	}
}

func TestRebuildKeepsUnresolvedHotspots(t *testing.T) {
	tour := testTour(t)
	f := newTestFactory(t, tour, nil)
	p, _ := tour.Lookup(3)

	set := f.Rebuild(p)

	require.Len(t, set.Navigation, 2)
	assert.Equal(t, 99, set.Navigation[1].Target)
	assert.Equal(t, "Scene 99", set.Navigation[1].Label)
}

func TestClearDropsEverything(t *testing.T) {
	tour := testTour(t)
	rec := &recorder{}
	f := newTestFactory(t, tour, rec)
	p, _ := tour.Lookup(1)
	f.Rebuild(p)

	f.Clear()

	assert.Equal(t, 0, f.Markers().Len())
	assert.Empty(t, rec.labels)
	assert.Equal(t, 0, f.Rebuild(nil).Len())
}

func TestLabelPlacement(t *testing.T) {
	tour := testTour(t)
	rec := &recorder{}
	cfg := testConfig()
	animator, err := NewAnimator(cfg.Animation)
	require.NoError(t, err)

	var positions []mgl64.Vec3
	sink := &positionSink{recorder: rec, positions: &positions}
	f := NewMarkerFactory(tour, cfg.Markers, animator, rand.New(rand.NewSource(1)), sink, zerolog.Nop())
	p, _ := tour.Lookup(1)
	set := f.Rebuild(p)

	require.Len(t, positions, 2)
	for i, m := range set.Navigation {
		want := m.Position().Add(mgl64.Vec3{0, cfg.Markers.LabelDrop, 0}).Mul(cfg.Markers.LabelScale)
		assert.True(t, vecAlmostEqual(want, positions[i]))
	}
}

func TestLabelsCanBeHidden(t *testing.T) {
	tour := testTour(t)
	rec := &recorder{}
	cfg := testConfig()
	cfg.Markers.ShowLabels = false
	animator, err := NewAnimator(cfg.Animation)
	require.NoError(t, err)
	f := NewMarkerFactory(tour, cfg.Markers, animator, nil, rec, zerolog.Nop())
	p, _ := tour.Lookup(1)

	set := f.Rebuild(p)

	assert.Empty(t, rec.labels)
	assert.Equal(t, "(2) Gate", set.Navigation[0].Label, "marker keeps its label text")
}

type positionSink struct {
	*recorder
	positions *[]mgl64.Vec3
}

func (s *positionSink) AddLabel(text string, pos mgl64.Vec3) {
	s.recorder.AddLabel(text, pos)
	*s.positions = append(*s.positions, pos)
}

func TestLabelFor(t *testing.T) {
	tour := testTour(t)
	f := newTestFactory(t, tour, nil)

	testCases := []struct {
		name    string
		hotspot Hotspot
		want    string
	}{
		{"Target name", Hotspot{Target: 3}, "(3) Courtyard"},
		{"Explicit label", Hotspot{Target: 3, Label: "Back"}, "Back"},
		{"Unknown target", Hotspot{Target: 42}, "Scene 42"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.LabelFor(tc.hotspot))
		})
	}
}

func TestMarkerPhasesAreSeeded(t *testing.T) {
	tour := testTour(t)
	p, _ := tour.Lookup(1)

	a := newTestFactory(t, tour, nil).Rebuild(p)
	b := newTestFactory(t, tour, nil).Rebuild(p)

	for i, m := range a.All() {
		other := b.All()[i]
		assert.Equal(t, m.PulsePhase, other.PulsePhase)
		assert.Equal(t, m.InitialRotation, other.InitialRotation)
		assert.GreaterOrEqual(t, m.PulsePhase, 0.0)
		assert.Less(t, m.PulsePhase, 2*math.Pi)
	}
}

func TestNewMarkersStartAtRest(t *testing.T) {
	tour := testTour(t)
	p, _ := tour.Lookup(1)
	cfg := testConfig().Animation

	for _, m := range newTestFactory(t, tour, nil).Rebuild(p).All() {
		assert.Equal(t, Idle, m.Hover)
		assert.Equal(t, cfg.NormalScale, m.Scale)
		assert.Equal(t, mgl64.Vec3{1, 1, 1}, m.Color)
	}
}

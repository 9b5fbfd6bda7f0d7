package panotour

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// LabelSink receives the overlay labels of navigation markers.
type LabelSink interface {
	ClearLabels()
	AddLabel(text string, pos mgl64.Vec3)
}

// MarkerFactory owns the markers of the current panorama. Every Rebuild or
// Clear drops all of them; nothing is pooled.
type MarkerFactory struct {
	tour     *Tour
	cfg      MarkerConfig
	animator *Animator
	rng      *rand.Rand
	labels   LabelSink
	log      zerolog.Logger

	current MarkerSet
}

// NewMarkerFactory creates a factory. rng seeds each marker's idle phase and
// may be nil, in which case a time-seeded source is used. labels may be nil.
func NewMarkerFactory(tour *Tour, cfg MarkerConfig, animator *Animator, rng *rand.Rand, labels LabelSink, log zerolog.Logger) *MarkerFactory {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &MarkerFactory{
		tour:     tour,
		cfg:      cfg,
		animator: animator,
		rng:      rng,
		labels:   labels,
		log:      log,
	}
}

func (f *MarkerFactory) Markers() MarkerSet {
	return f.current
}

// Clear destroys every marker and overlay label.
func (f *MarkerFactory) Clear() {
	f.current = MarkerSet{}
	if f.labels != nil {
		f.labels.ClearLabels()
	}
}

// Rebuild replaces the current markers with those of p.
func (f *MarkerFactory) Rebuild(p *Panorama) MarkerSet {
	f.Clear()
	if p == nil {
		return f.current
	}

	set := MarkerSet{
		Navigation: make([]*Marker, 0, len(p.Hotspots)),
		Info:       make([]*Marker, 0, len(p.Infospots)),
	}

	for _, h := range p.Hotspots {
		m := f.newMarker(NavigationMarker, ProjectUV(h.Position, f.cfg.HotspotRadius))
		m.Target = h.Target
		m.Label = f.LabelFor(h)
		set.Navigation = append(set.Navigation, m)

		if f.cfg.ShowLabels && f.labels != nil {
			pos := m.position.Add(mgl64.Vec3{0, f.cfg.LabelDrop, 0}).Mul(f.cfg.LabelScale)
			f.labels.AddLabel(m.Label, pos)
		}
	}

	for i := range p.Infospots {
		m := f.newMarker(InfoMarker, ProjectUV(p.Infospots[i].Position, f.cfg.InfospotRadius))
		m.Info = &p.Infospots[i]
		set.Info = append(set.Info, m)
	}

	f.current = set
	f.log.Debug().
		Int("panorama", p.ID).
		Int("hotspots", len(set.Navigation)).
		Int("infospots", len(set.Info)).
		Msg("Markers rebuilt")
	return set
}

// LabelFor renders the overlay text of a hotspot.
func (f *MarkerFactory) LabelFor(h Hotspot) string {
	if h.Label != "" {
		return h.Label
	}
	if target, ok := f.tour.Lookup(h.Target); ok {
		return fmt.Sprintf("(%d) %s", target.ID, target.Name)
	}
	return fmt.Sprintf("Scene %d", h.Target)
}

func (f *MarkerFactory) newMarker(kind MarkerKind, pos mgl64.Vec3) *Marker {
	m := &Marker{
		Kind:            kind,
		PulsePhase:      f.rng.Float64() * 2 * math.Pi,
		InitialRotation: f.rng.Float64() * 2 * math.Pi,
		position:        pos,
	}
	if f.animator != nil {
		f.animator.Reset(m)
	}
	return m
}

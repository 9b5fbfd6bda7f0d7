package panotour

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Per-modality pick tolerances in world units, added to a marker's hit radius.
// Touch input is imprecise, so its tolerance is always the larger one.
const (
	DefaultMouseTolerance = 0.25
	DefaultTouchTolerance = 2.5
)

// Modality is the kind of input device behind a pointer event.
type Modality int

const (
	Mouse Modality = iota
	Touch
)

func (m Modality) String() string {
	if m == Touch {
		return "touch"
	}
	return "mouse"
}

// Hit is one marker crossed by a pick ray.
type Hit struct {
	Marker   *Marker
	Distance float64
}

// Engine is the rendering-side half of picking.
type Engine interface {
	PickRay(ndc mgl64.Vec2) Ray
	// Intersect returns the candidates crossed by ray, nearest first.
	Intersect(ray Ray, candidates []*Marker, tolerance float64) []Hit
}

// SphereIntersector treats every marker as a sphere of HitRadius around its
// world position.
type SphereIntersector struct {
	HitRadius float64
}

func (s SphereIntersector) Intersect(ray Ray, candidates []*Marker, tolerance float64) []Hit {
	radius := s.HitRadius + tolerance
	var hits []Hit
	for _, m := range candidates {
		toMarker := m.position.Sub(ray.Origin)
		along := toMarker.Dot(ray.Dir)
		if along <= 0 {
			continue
		}
		if ray.At(along).Sub(m.position).Len() > radius {
			continue
		}
		hits = append(hits, Hit{Marker: m, Distance: along})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// RayEngine combines a camera with a sphere intersector.
type RayEngine struct {
	*Camera
	SphereIntersector
}

func NewRayEngine(cam *Camera, hitRadius float64) *RayEngine {
	return &RayEngine{Camera: cam, SphereIntersector: SphereIntersector{HitRadius: hitRadius}}
}

// MarkerSource yields the markers that can currently be picked.
type MarkerSource interface {
	Markers() MarkerSet
}

// PickResolver turns a pointer position into the marker the user means.
type PickResolver struct {
	engine  Engine
	markers MarkerSource
	cfg     PickConfig
}

func NewPickResolver(engine Engine, markers MarkerSource, cfg PickConfig) *PickResolver {
	return &PickResolver{engine: engine, markers: markers, cfg: cfg}
}

func (r *PickResolver) Tolerance(m Modality) float64 {
	if m == Touch {
		return r.cfg.TouchTolerance
	}
	return r.cfg.MouseTolerance
}

// Resolve returns the nearest marker under ndc, or nil.
func (r *PickResolver) Resolve(ndc mgl64.Vec2, m Modality) *Marker {
	candidates := r.markers.Markers().All()
	if len(candidates) == 0 {
		return nil
	}
	hits := r.engine.Intersect(r.engine.PickRay(ndc), candidates, r.Tolerance(m))
	if len(hits) == 0 {
		return nil
	}
	return hits[0].Marker
}

package panotour

import (
	"fmt"
)

// UV is a normalized position on a panoramic image, u and v in [0,1].
// v=0 is the bottom edge and v=1 the top.
type UV struct {
	U float64 `yaml:"u" json:"u"`
	V float64 `yaml:"v" json:"v"`
}

// Hotspot is a directed edge to another panorama. Target may name a panorama
// that does not exist; that is only detected when the hotspot is activated.
type Hotspot struct {
	Position UV     `yaml:"position" json:"position"`
	Target   int    `yaml:"target" json:"target"`
	Label    string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Infospot is a point of interest with attached media.
type Infospot struct {
	Position    UV        `yaml:"position" json:"position"`
	Images      ImageList `yaml:"image,omitempty" json:"image,omitempty"`
	Video       string    `yaml:"video,omitempty" json:"video,omitempty"`
	Title       string    `yaml:"title,omitempty" json:"title,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
}

// Content returns what a presenter needs to show this infospot.
func (i *Infospot) Content() InfoContent {
	return InfoContent{
		Title:       i.Title,
		Description: i.Description,
		Images:      i.Images.Refs(),
		Video:       i.Video,
	}
}

// Panorama is a single cylindrical scene, the node of the tour graph.
type Panorama struct {
	ID        int        `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Image     string     `yaml:"image" json:"image"`
	Audio     string     `yaml:"music,omitempty" json:"music,omitempty"`
	Hotspots  []Hotspot  `yaml:"hotspots,omitempty" json:"hotspots,omitempty"`
	Infospots []Infospot `yaml:"infospots,omitempty" json:"infospots,omitempty"`
}

// Tour is the immutable graph of panoramas. Iteration order is the order the
// panoramas were given in, which is also the order Next and Prev walk.
type Tour struct {
	panoramas []*Panorama
	byID      map[int]int
}

func NewTour(panoramas []Panorama) (*Tour, error) {
	if len(panoramas) == 0 {
		return nil, fmt.Errorf("tour has no panoramas")
	}

	t := &Tour{
		panoramas: make([]*Panorama, len(panoramas)),
		byID:      make(map[int]int, len(panoramas)),
	}
	for i := range panoramas {
		p := panoramas[i]
		if _, dup := t.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate panorama id %d", p.ID)
		}
		t.byID[p.ID] = i
		t.panoramas[i] = &p
	}
	return t, nil
}

func (t *Tour) Lookup(id int) (*Panorama, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return t.panoramas[i], true
}

func (t *Tour) Len() int {
	return len(t.panoramas)
}

func (t *Tour) At(index int) *Panorama {
	return t.panoramas[index]
}

// IndexOf returns the position of id in iteration order, or -1.
func (t *Tour) IndexOf(id int) int {
	i, ok := t.byID[id]
	if !ok {
		return -1
	}
	return i
}

type IssueKind int

const (
	IssueUnresolvedTarget IssueKind = iota
	IssueSelfLoop
	IssueUnreachable
	IssueMissingImage
)

func (k IssueKind) String() string {
	switch k {
	case IssueUnresolvedTarget:
		return "unresolved target"
	case IssueSelfLoop:
		return "self loop"
	case IssueUnreachable:
		return "unreachable"
	case IssueMissingImage:
		return "missing image"
	}
	return "unknown"
}

// Issue is an advisory finding about the tour content.
type Issue struct {
	PanoramaID int
	Kind       IssueKind
	Detail     string
}

func (i Issue) String() string {
	return fmt.Sprintf("panorama %d: %s: %s", i.PanoramaID, i.Kind, i.Detail)
}

// Validate reports content oddities. None of them stop the tour from working:
// dead ends, self loops and unreachable scenes all occur in real content.
// Reachability is measured from the first panorama.
func (t *Tour) Validate() []Issue {
	var issues []Issue
	for _, p := range t.panoramas {
		if p.Image == "" {
			issues = append(issues, Issue{PanoramaID: p.ID, Kind: IssueMissingImage, Detail: "no image"})
		}
		for i, h := range p.Hotspots {
			if h.Target == p.ID {
				issues = append(issues, Issue{PanoramaID: p.ID, Kind: IssueSelfLoop, Detail: fmt.Sprintf("hotspot %d", i)})
				continue
			}
			if _, ok := t.byID[h.Target]; !ok {
				issues = append(issues, Issue{
					PanoramaID: p.ID,
					Kind:       IssueUnresolvedTarget,
					Detail:     fmt.Sprintf("hotspot %d targets %d", i, h.Target),
				})
			}
		}
	}

	seen := make(map[int]bool, len(t.panoramas))
	queue := []int{t.panoramas[0].ID}
	seen[queue[0]] = true
	for len(queue) > 0 {
		p, _ := t.Lookup(queue[0])
		queue = queue[1:]
		for _, h := range p.Hotspots {
			if _, ok := t.byID[h.Target]; ok && !seen[h.Target] {
				seen[h.Target] = true
				queue = append(queue, h.Target)
			}
		}
	}
	for _, p := range t.panoramas {
		if !seen[p.ID] {
			issues = append(issues, Issue{PanoramaID: p.ID, Kind: IssueUnreachable, Detail: "no path from the first panorama"})
		}
	}
	return issues
}

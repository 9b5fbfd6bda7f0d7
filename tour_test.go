package panotour

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tourYAML = `
panoramas:
  - id: 1
    name: Square
    image: ./scenes/1.jpg
    music: ./audio/1.ogg
    hotspots:
      - position: {u: 0.4, v: 0.35}
        target: 2
        label: Start
    infospots:
      - position: {u: 0.3, v: 0.2}
        image: ./scenes/1/a.jpg
        title: Welcome
      - position: {u: 0.6, v: 0.2}
        image: [./scenes/1/b.jpg, "", ./scenes/1/c.jpg]
        video: ./video/1.mp4
  - id: 2
    name: Gate
    image: ./scenes/2.jpg
`

const tourJSON = `{
  "panoramas": [
    {
      "id": 1, "name": "Square", "image": "./scenes/1.jpg", "music": "./audio/1.ogg",
      "hotspots": [{"position": {"u": 0.4, "v": 0.35}, "target": 2, "label": "Start"}],
      "infospots": [
        {"position": {"u": 0.3, "v": 0.2}, "image": "./scenes/1/a.jpg", "title": "Welcome"},
        {"position": {"u": 0.6, "v": 0.2}, "image": ["./scenes/1/b.jpg", "", "./scenes/1/c.jpg"], "video": "./video/1.mp4"}
      ]
    },
    {"id": 2, "name": "Gate", "image": "./scenes/2.jpg"}
  ]
}`

func assertDecodedTour(t *testing.T, tour *Tour) {
	t.Helper()
	require.Equal(t, 2, tour.Len())

	p, ok := tour.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Square", p.Name)
	assert.Equal(t, "./audio/1.ogg", p.Audio)
	require.Len(t, p.Hotspots, 1)
	assert.Equal(t, UV{U: 0.4, V: 0.35}, p.Hotspots[0].Position)
	assert.Equal(t, "Start", p.Hotspots[0].Label)

	require.Len(t, p.Infospots, 2)
	assert.Equal(t, []string{"./scenes/1/a.jpg"}, p.Infospots[0].Images.Refs())
	assert.Equal(t, []string{"./scenes/1/b.jpg", "./scenes/1/c.jpg"}, p.Infospots[1].Images.Refs())

	content := p.Infospots[1].Content()
	assert.Equal(t, "./video/1.mp4", content.Video)
	assert.Len(t, content.Images, 2)
}

func TestDecodeTourYAML(t *testing.T) {
	tour, err := DecodeTourYAML(strings.NewReader(tourYAML))
	require.NoError(t, err)
	assertDecodedTour(t, tour)
}

func TestDecodeTourJSON(t *testing.T) {
	tour, err := DecodeTourJSON(strings.NewReader(tourJSON))
	require.NoError(t, err)
	assertDecodedTour(t, tour)
}

func TestDecodeTourRejectsBadImageField(t *testing.T) {
	_, err := DecodeTourYAML(strings.NewReader(`
panoramas:
  - id: 1
    image: a.jpg
    infospots:
      - image: {nested: true}
`))
	assert.Error(t, err)

	_, err = DecodeTourJSON(strings.NewReader(`{"panoramas": [{"id": 1, "infospots": [{"image": 3}]}]}`))
	assert.Error(t, err)
}

func TestLoadTour(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "tour.yml")
	jsonFile := filepath.Join(dir, "tour.json")
	require.NoError(t, os.WriteFile(yamlFile, []byte(tourYAML), 0644))
	require.NoError(t, os.WriteFile(jsonFile, []byte(tourJSON), 0644))

	for _, fileName := range []string{yamlFile, jsonFile} {
		tour, err := LoadTour(fileName)
		require.NoError(t, err, fileName)
		assertDecodedTour(t, tour)
	}

	_, err := LoadTour(filepath.Join(dir, "tour.txt"))
	assert.Error(t, err)

	txt := filepath.Join(dir, "tour.toml")
	require.NoError(t, os.WriteFile(txt, []byte("x = 1"), 0644))
	_, err = LoadTour(txt)
	assert.ErrorContains(t, err, "unsupported")
}

func TestNewTour(t *testing.T) {
	_, err := NewTour(nil)
	assert.Error(t, err)

	_, err = NewTour([]Panorama{{ID: 1}, {ID: 1}})
	assert.ErrorContains(t, err, "duplicate")

	tour := testTour(t)
	assert.Equal(t, 3, tour.Len())
	assert.Equal(t, 2, tour.At(1).ID)
	assert.Equal(t, 2, tour.IndexOf(3))
	assert.Equal(t, -1, tour.IndexOf(42))
	_, ok := tour.Lookup(42)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	panoramas := testPanoramas()
	panoramas = append(panoramas,
		Panorama{ID: 4, Name: "Island", Image: "4.jpg"},
		Panorama{ID: 5, Name: "Loop", Hotspots: []Hotspot{{Target: 5}}},
	)
	tour, err := NewTour(panoramas)
	require.NoError(t, err)

	kinds := map[int][]IssueKind{}
	for _, issue := range tour.Validate() {
		kinds[issue.PanoramaID] = append(kinds[issue.PanoramaID], issue.Kind)
	}

	assert.Equal(t, []IssueKind{IssueUnresolvedTarget}, kinds[3])
	assert.Equal(t, []IssueKind{IssueUnreachable}, kinds[4])
	assert.ElementsMatch(t, []IssueKind{IssueMissingImage, IssueSelfLoop, IssueUnreachable}, kinds[5])
	assert.Empty(t, kinds[1])
	assert.Empty(t, kinds[2], "dead ends are fine")
}

package panotour

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ImageList holds the images of an infospot. Content may author it either as a
// single string or as a list; empty entries are dropped.
type ImageList []string

func (l *ImageList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = ImageList{s}.compact()
		return nil
	case yaml.SequenceNode:
		var refs []string
		if err := value.Decode(&refs); err != nil {
			return err
		}
		*l = ImageList(refs).compact()
		return nil
	}
	return fmt.Errorf("image: expected string or list at line %d", value.Line)
}

func (l *ImageList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = ImageList{s}.compact()
		return nil
	}
	var refs []string
	if err := json.Unmarshal(data, &refs); err != nil {
		return fmt.Errorf("image: expected string or list: %w", err)
	}
	*l = ImageList(refs).compact()
	return nil
}

// Refs returns the non-empty image references.
func (l ImageList) Refs() []string {
	return []string(l.compact())
}

func (l ImageList) compact() ImageList {
	out := make(ImageList, 0, len(l))
	for _, ref := range l {
		if strings.TrimSpace(ref) != "" {
			out = append(out, ref)
		}
	}
	return out
}

type tourFile struct {
	Panoramas []Panorama `yaml:"panoramas" json:"panoramas"`
}

func DecodeTourYAML(r io.Reader) (*Tour, error) {
	var f tourFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode tour yaml: %w", err)
	}
	return NewTour(f.Panoramas)
}

func DecodeTourJSON(r io.Reader) (*Tour, error) {
	var f tourFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode tour json: %w", err)
	}
	return NewTour(f.Panoramas)
}

// LoadTour reads tour content from a .yaml/.yml or .json file.
func LoadTour(fileName string) (*Tour, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not open tour file %s: %w", fileName, err)
	}
	defer file.Close()

	var t *Tour
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		t, err = DecodeTourYAML(file)
	case ".json":
		t, err = DecodeTourJSON(file)
	default:
		return nil, fmt.Errorf("unsupported tour file extension %q", filepath.Ext(fileName))
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing tour file %s: %w", fileName, err)
	}
	return t, nil
}

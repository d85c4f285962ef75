// Package projectortest provides an in-memory map surface for tests.
package projectortest

import (
	"errors"
	"fmt"

	"mapstory-desktop/internal/layer"
	"mapstory-desktop/internal/projector"
)

// Layer is what Surface's constructors return.
type Layer struct {
	LayerName string
	Kind      layer.Kind
	Source    string
}

func (l *Layer) Name() string { return l.LayerName }

// Surface records every call in Calls, e.g. "add:roads", "center", "zoom".
// Constructors fail for any source listed in FailSources.
type Surface struct {
	Stack       []projector.Layer
	Calls       []string
	Center      [2]float64
	Zoom        int
	Fitted      *layer.Bounds
	FailSources map[string]bool
}

// NewSurface returns a surface holding only a base layer.
func NewSurface() *Surface {
	return &Surface{Stack: []projector.Layer{&Layer{LayerName: "base", Kind: layer.KindTile}}}
}

// OverlayNames lists the names above the base layer.
func (s *Surface) OverlayNames() []string {
	var names []string
	for _, l := range s.Stack[1:] {
		names = append(names, l.Name())
	}
	return names
}

func (s *Surface) build(name string, kind layer.Kind, source string) (projector.Layer, error) {
	if s.FailSources[source] {
		return nil, fmt.Errorf("cannot load %q", source)
	}
	return &Layer{LayerName: name, Kind: kind, Source: source}, nil
}

func (s *Surface) TileLayer(name, url string) (projector.Layer, error) {
	return s.build(name, layer.KindTile, url)
}

func (s *Surface) GeoJSONLayer(name, path string, data map[string]interface{}) (projector.Layer, error) {
	return s.build(name, layer.KindGeoJSON, path)
}

func (s *Surface) ImageLayer(name, url string, bounds layer.Bounds) (projector.Layer, error) {
	return s.build(name, layer.KindImage, url)
}

func (s *Surface) RasterLayer(name, path string, bounds *layer.Bounds) (projector.Layer, error) {
	return s.build(name, layer.KindRaster, path)
}

func (s *Surface) WMSLayer(name, url, layers string) (projector.Layer, error) {
	return s.build(name, layer.KindWMS, url)
}

func (s *Surface) VideoLayer(name, url string, bounds layer.Bounds) (projector.Layer, error) {
	return s.build(name, layer.KindVideo, url)
}

func (s *Surface) EarthEngineLayer(name, id string, visParams map[string]interface{}) (projector.Layer, error) {
	return s.build(name, layer.KindEarthEngine, id)
}

func (s *Surface) SetCenter(lat, lon float64) {
	s.Center = [2]float64{lat, lon}
	s.Calls = append(s.Calls, "center")
}

func (s *Surface) SetZoom(zoom int) {
	s.Zoom = zoom
	s.Calls = append(s.Calls, "zoom")
}

func (s *Surface) FitBounds(b layer.Bounds) {
	s.Fitted = &b
	s.Calls = append(s.Calls, "fit")
}

func (s *Surface) Layers() []projector.Layer {
	out := make([]projector.Layer, len(s.Stack))
	copy(out, s.Stack)
	return out
}

func (s *Surface) AddLayer(l projector.Layer) error {
	s.Stack = append(s.Stack, l)
	s.Calls = append(s.Calls, "add:"+l.Name())
	return nil
}

func (s *Surface) RemoveLayer(l projector.Layer) error {
	for i, cur := range s.Stack {
		if cur == l {
			s.Stack = append(s.Stack[:i], s.Stack[i+1:]...)
			s.Calls = append(s.Calls, "remove:"+l.Name())
			return nil
		}
	}
	return errors.New("layer not on map")
}

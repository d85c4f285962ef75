package projector

import (
	"fmt"

	"mapstory-desktop/internal/layer"
	"mapstory-desktop/internal/story"
)

// Handle is the map object scene code receives. It reaches the surface and
// nothing else.
type Handle struct {
	surface Surface
	p       *Projector
}

func NewHandle(surface Surface, p *Projector) *Handle {
	return &Handle{surface: surface, p: p}
}

// SetCenter and SetZoom hold scene code to the ranges a saved scene obeys.
func (h *Handle) SetCenter(lat, lon float64) error {
	center := story.LatLon{Lat: lat, Lon: lon}
	if !center.Valid() {
		return fmt.Errorf("%w: (%g, %g)", story.ErrInvalidCenter, lat, lon)
	}
	h.surface.SetCenter(lat, lon)
	return nil
}

func (h *Handle) SetZoom(zoom int) error {
	if zoom < story.MinZoom || zoom > story.MaxZoom {
		return fmt.Errorf("%w: %d not in %d-%d", story.ErrInvalidZoom, zoom, story.MinZoom, story.MaxZoom)
	}
	h.surface.SetZoom(zoom)
	return nil
}

func (h *Handle) FitBounds(south, west, north, east float64) error {
	b := layer.Bounds{{south, west}, {north, east}}
	if err := b.Validate(); err != nil {
		return err
	}
	h.surface.FitBounds(b)
	return nil
}

// LayerNames lists the layers on the map, base layer first.
func (h *Handle) LayerNames() []string {
	layers := h.surface.Layers()
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.Name()
	}
	return names
}

// RemoveLayer removes the topmost overlay called name. The base layer
// cannot be removed.
func (h *Handle) RemoveLayer(name string) (bool, error) {
	layers := h.surface.Layers()
	for i := len(layers) - 1; i >= 1; i-- {
		if layers[i].Name() == name {
			return true, h.surface.RemoveLayer(layers[i])
		}
	}
	return false, nil
}

func (h *Handle) AddTileLayer(url, name string) error {
	return h.p.place(layer.Definition{Kind: layer.KindTile, Source: url, Name: name})
}

func (h *Handle) AddWMSLayer(url, layers, name string) error {
	return h.p.place(layer.Definition{Kind: layer.KindWMS, Source: url, WMSLayers: layers, Name: name})
}

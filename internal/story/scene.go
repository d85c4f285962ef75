package story

import (
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"mapstory-desktop/internal/layer"
)

const (
	MinZoom = 1
	MaxZoom = 18
)

var (
	ErrInvalidCenter = errors.New("center out of range")
	ErrInvalidZoom   = errors.New("zoom out of range")
	ErrInvalidOrder  = errors.New("order must be a positive integer")
)

// LatLon is a map position. It serializes as a two-element [lat, lon] array.
type LatLon struct {
	Lat float64
	Lon float64
}

// Valid reports whether p is a finite position on the map. NaN fails every
// comparison below.
func (p LatLon) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p LatLon) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lon})
}

func (p *LatLon) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("center: expected [lat, lon], got %d values", len(pair))
	}
	p.Lat, p.Lon = pair[0], pair[1]
	return nil
}

// Meta holds every scene field the authoring form edits directly.
type Meta struct {
	Title      string `json:"title"`
	Caption    string `json:"caption"`
	Center     LatLon `json:"center"`
	Zoom       int    `json:"zoom"`
	Order      int    `json:"order"`
	CustomCode string `json:"customCode"`
}

// Validate checks the ranges a scene's view state must stay in.
func (m Meta) Validate() error {
	if !m.Center.Valid() {
		return fmt.Errorf("%w: (%g, %g)", ErrInvalidCenter, m.Center.Lat, m.Center.Lon)
	}
	if m.Zoom < MinZoom || m.Zoom > MaxZoom {
		return fmt.Errorf("%w: %d not in %d-%d", ErrInvalidZoom, m.Zoom, MinZoom, MaxZoom)
	}
	if m.Order < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidOrder, m.Order)
	}
	return nil
}

// Scene is one stop in a story: a view, a caption and the layers shown there.
type Scene struct {
	Title      string             `json:"title"`
	Order      int                `json:"order"`
	Center     LatLon             `json:"center"`
	Zoom       int                `json:"zoom"`
	Caption    string             `json:"caption"`
	Layers     []layer.Definition `json:"layers"`
	CustomCode string             `json:"customCode,omitempty"`
}

// NewScene bundles metadata with a private copy of layers.
func NewScene(meta Meta, layers []layer.Definition) Scene {
	return Scene{
		Title:      meta.Title,
		Order:      meta.Order,
		Center:     meta.Center,
		Zoom:       meta.Zoom,
		Caption:    meta.Caption,
		Layers:     CloneLayers(layers),
		CustomCode: meta.CustomCode,
	}
}

func (s Scene) Meta() Meta {
	return Meta{
		Title:      s.Title,
		Caption:    s.Caption,
		Center:     s.Center,
		Zoom:       s.Zoom,
		Order:      s.Order,
		CustomCode: s.CustomCode,
	}
}

// Clone returns a copy that shares no layer data with s.
func (s Scene) Clone() Scene {
	out := s
	out.Layers = CloneLayers(s.Layers)
	return out
}

// CloneLayers deep-copies defs and never returns nil.
func CloneLayers(defs []layer.Definition) []layer.Definition {
	out := make([]layer.Definition, len(defs))
	for i, d := range defs {
		out[i] = d.Clone()
	}
	return out
}

// DefaultTitle is used when a scene is saved without a title.
func DefaultTitle(n int) string {
	return fmt.Sprintf("Scene %d", n)
}

// SortScenes orders scenes by Order in place. Equal orders keep their
// relative position.
func SortScenes(scenes []Scene) {
	sort.SliceStable(scenes, func(i, j int) bool {
		return scenes[i].Order < scenes[j].Order
	})
}

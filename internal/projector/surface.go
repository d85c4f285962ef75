package projector

import "mapstory-desktop/internal/layer"

// Layer is an opaque handle to something placed on the map.
type Layer interface {
	Name() string
}

// Factory builds map primitives. Building does not place the layer; a
// constructor error means the definition cannot be shown on this surface.
type Factory interface {
	TileLayer(name, url string) (Layer, error)
	GeoJSONLayer(name, path string, data map[string]interface{}) (Layer, error)
	ImageLayer(name, url string, bounds layer.Bounds) (Layer, error)
	RasterLayer(name, path string, bounds *layer.Bounds) (Layer, error)
	WMSLayer(name, url, layers string) (Layer, error)
	VideoLayer(name, url string, bounds layer.Bounds) (Layer, error)
	EarthEngineLayer(name, id string, visParams map[string]interface{}) (Layer, error)
}

// Surface is the map widget. Layers()[0] is the protected base layer.
type Surface interface {
	Factory

	SetCenter(lat, lon float64)
	SetZoom(zoom int)
	FitBounds(b layer.Bounds)

	Layers() []Layer
	AddLayer(l Layer) error
	RemoveLayer(l Layer) error
}

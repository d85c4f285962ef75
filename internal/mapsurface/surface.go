// Package mapsurface is the map widget as seen from Go. It keeps the layer
// stack and viewport and mirrors every change to the webview as an event.
package mapsurface

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"mapstory-desktop/internal/basemap"
	"mapstory-desktop/internal/layer"
	"mapstory-desktop/internal/projector"
	"mapstory-desktop/pkg/geotiff"
)

// Events sent to the webview.
const (
	EventLayerAdd    = "map:layer:add"
	EventLayerRemove = "map:layer:remove"
	EventBasemap     = "map:basemap"
	EventCenter      = "map:center"
	EventZoom        = "map:zoom"
	EventFit         = "map:fit"
)

// Emitter delivers an event to the frontend, e.g. wails runtime.EventsEmit
// bound to the app context.
type Emitter func(event string, data ...interface{})

// Assets exposes local files over HTTP.
type Assets interface {
	URL(path string) (string, error)
}

// Payloads reads local files, typically through a cache.
type Payloads interface {
	Load(path string) ([]byte, error)
}

var ErrBaseLayer = errors.New("the base layer cannot be removed")

// Layer is what the webview needs to draw one layer.
type Layer struct {
	ID          string                 `json:"id"`
	LayerName   string                 `json:"name"`
	Kind        layer.Kind             `json:"kind"`
	URL         string                 `json:"url,omitempty"`
	Bounds      *layer.Bounds          `json:"bounds,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	WMSLayers   string                 `json:"wmsLayers,omitempty"`
	Format      string                 `json:"format,omitempty"`
	Transparent bool                   `json:"transparent,omitempty"`
	AssetID     string                 `json:"assetId,omitempty"`
	VisParams   map[string]interface{} `json:"visParams,omitempty"`
	Attribution string                 `json:"attribution,omitempty"`
	MaxZoom     int                    `json:"maxZoom,omitempty"`
}

func (l *Layer) Name() string { return l.LayerName }

// View is the viewport.
type View struct {
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
}

// State lets a reloaded webview rebuild the map.
type State struct {
	Layers []*Layer `json:"layers"`
	View   View     `json:"view"`
}

// Surface implements projector.Surface. Index 0 of the stack is the basemap.
type Surface struct {
	mu       sync.Mutex
	emit     Emitter
	assets   Assets
	payloads Payloads
	stack    []*Layer
	view     View
}

var _ projector.Surface = (*Surface)(nil)

// New returns a surface whose only layer is base.
func New(base basemap.Basemap, emit Emitter, assets Assets, payloads Payloads) *Surface {
	if emit == nil {
		emit = func(string, ...interface{}) {}
	}
	return &Surface{
		emit:     emit,
		assets:   assets,
		payloads: payloads,
		stack:    []*Layer{baseLayer(base)},
	}
}

func baseLayer(b basemap.Basemap) *Layer {
	return &Layer{
		ID:          uuid.NewString(),
		LayerName:   b.Name,
		Kind:        layer.KindTile,
		URL:         b.URL,
		Attribution: b.Attribution,
		MaxZoom:     b.MaxZoom,
	}
}

// SetBasemap swaps the base layer in place.
func (s *Surface) SetBasemap(b basemap.Basemap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack[0] = baseLayer(b)
	s.emit(EventBasemap, s.stack[0])
}

// State snapshots the stack and viewport.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Layers: append([]*Layer(nil), s.stack...), View: s.view}
}

func newLayer(name string, kind layer.Kind) *Layer {
	return &Layer{ID: uuid.NewString(), LayerName: name, Kind: kind}
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// resolve turns a source into something the webview can fetch.
func (s *Surface) resolve(source string) (string, error) {
	if isRemote(source) {
		return source, nil
	}
	if s.assets == nil {
		return "", fmt.Errorf("cannot serve local file %s", source)
	}
	return s.assets.URL(source)
}

// cloudURL rewrites bucket URIs to their public HTTPS form.
func cloudURL(source string) string {
	switch {
	case strings.HasPrefix(source, "gs://"):
		return "https://storage.googleapis.com/" + strings.TrimPrefix(source, "gs://")
	case strings.HasPrefix(source, "s3://"):
		bucket, key, _ := strings.Cut(strings.TrimPrefix(source, "s3://"), "/")
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
	}
	return source
}

func (s *Surface) TileLayer(name, url string) (projector.Layer, error) {
	if layer.Classify(url) != layer.KindTile {
		return nil, fmt.Errorf("%s is not a tile URL template", url)
	}
	l := newLayer(name, layer.KindTile)
	l.URL = url
	return l, nil
}

func (s *Surface) GeoJSONLayer(name, path string, data map[string]interface{}) (projector.Layer, error) {
	l := newLayer(name, layer.KindGeoJSON)
	switch {
	case data != nil:
		l.Data = data
	case isRemote(path):
		l.URL = path
	default:
		if s.payloads == nil {
			return nil, fmt.Errorf("cannot read %s", path)
		}
		raw, err := s.payloads.Load(path)
		if err != nil {
			return nil, err
		}
		if _, err := layer.ParseGeoJSON(raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		l.Data = doc
	}
	return l, nil
}

func (s *Surface) ImageLayer(name, url string, bounds layer.Bounds) (projector.Layer, error) {
	resolved, err := s.resolve(url)
	if err != nil {
		return nil, err
	}
	l := newLayer(name, layer.KindImage)
	l.URL = resolved
	l.Bounds = &bounds
	return l, nil
}

func (s *Surface) RasterLayer(name, path string, bounds *layer.Bounds) (projector.Layer, error) {
	l := newLayer(name, layer.KindRaster)
	if bounds != nil {
		b := *bounds
		l.Bounds = &b
	}

	switch {
	case layer.IsCloudStorage(path):
		l.URL = cloudURL(path)
	case isRemote(path):
		l.URL = path
	default:
		if l.Bounds == nil {
			b, err := localExtent(path)
			if err != nil {
				return nil, err
			}
			l.Bounds = &b
		}
		resolved, err := s.resolve(path)
		if err != nil {
			return nil, err
		}
		l.URL = resolved
	}
	return l, nil
}

// localExtent reads the footprint of a GeoTIFF on disk.
func localExtent(path string) (layer.Bounds, error) {
	f, err := os.Open(path)
	if err != nil {
		return layer.Bounds{}, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()

	ext, err := geotiff.ReadExtent(f)
	if err != nil {
		return layer.Bounds{}, fmt.Errorf("raster %s has no usable bounds: %w", path, err)
	}
	b := layer.Bounds{{ext.South, ext.West}, {ext.North, ext.East}}
	if err := b.Validate(); err != nil {
		return layer.Bounds{}, err
	}
	return b, nil
}

var getMapParams = map[string]bool{
	"service": true, "request": true, "version": true, "layers": true, "styles": true,
	"format": true, "transparent": true, "srs": true, "crs": true, "bbox": true,
	"width": true, "height": true,
}

func (s *Surface) WMSLayer(name, rawURL, layers string) (projector.Layer, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid WMS URL %q", rawURL)
	}
	// The map widget appends its own GetMap parameters; vendor ones such as
	// MapServer's map= stay.
	q := u.Query()
	for key := range q {
		if getMapParams[strings.ToLower(key)] {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	l := newLayer(name, layer.KindWMS)
	l.URL = u.String()
	l.WMSLayers = layers
	l.Format = "image/png"
	l.Transparent = true
	return l, nil
}

func (s *Surface) VideoLayer(name, url string, bounds layer.Bounds) (projector.Layer, error) {
	resolved, err := s.resolve(url)
	if err != nil {
		return nil, err
	}
	l := newLayer(name, layer.KindVideo)
	l.URL = resolved
	l.Bounds = &bounds
	return l, nil
}

func (s *Surface) EarthEngineLayer(name, id string, visParams map[string]interface{}) (projector.Layer, error) {
	l := newLayer(name, layer.KindEarthEngine)
	l.AssetID = id
	l.VisParams = visParams
	return l, nil
}

func (s *Surface) SetCenter(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Center = [2]float64{lat, lon}
	s.emit(EventCenter, s.view.Center)
}

func (s *Surface) SetZoom(zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom = zoom
	s.emit(EventZoom, zoom)
}

func (s *Surface) FitBounds(b layer.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Center = [2]float64{(b.South() + b.North()) / 2, (b.West() + b.East()) / 2}
	s.emit(EventFit, b)
}

// SyncView records a viewport change made by the user in the webview.
func (s *Surface) SyncView(lat, lon float64, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = View{Center: [2]float64{lat, lon}, Zoom: zoom}
}

func (s *Surface) Layers() []projector.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.stack, func(l *Layer, _ int) projector.Layer { return l })
}

func (s *Surface) AddLayer(pl projector.Layer) error {
	l, ok := pl.(*Layer)
	if !ok {
		return fmt.Errorf("layer %q was not built by this surface", pl.Name())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack = append(s.stack, l)
	s.emit(EventLayerAdd, l)
	return nil
}

func (s *Surface) RemoveLayer(pl projector.Layer) error {
	l, ok := pl.(*Layer)
	if !ok {
		return fmt.Errorf("layer %q was not built by this surface", pl.Name())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := lo.IndexOf(s.stack, l)
	switch {
	case i < 0:
		return fmt.Errorf("layer %q is not on the map", l.LayerName)
	case i == 0:
		return ErrBaseLayer
	}
	s.stack = append(s.stack[:i], s.stack[i+1:]...)
	s.emit(EventLayerRemove, l.ID)
	return nil
}

// Package projector renders scenes onto a map surface.
//
// Every render is clear-and-replace: all overlays above the base layer are
// removed, the new layers are placed in order, then the viewport is moved
// (center first, then zoom) so anything the viewport triggers sees the final
// layer set. A layer that cannot be built or placed is logged and skipped.
// Scene code runs last and its failure never undoes the render.
package projector

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"mapstory-desktop/internal/layer"
	"mapstory-desktop/internal/story"
)

// LayerRenderError reports one layer that could not be shown.
type LayerRenderError struct {
	Layer string
	Kind  layer.Kind
	Err   error
}

func (e *LayerRenderError) Error() string {
	return fmt.Sprintf("layer %q (%s): %v", e.Layer, e.Kind, e.Err)
}

func (e *LayerRenderError) Unwrap() error {
	return e.Err
}

// CodeRunner executes scene code with a single map handle in scope.
type CodeRunner interface {
	Run(ctx context.Context, code string, handle interface{}) error
}

// View is the viewport half of a scene.
type View struct {
	Center story.LatLon
	Zoom   int
}

// Report summarizes a render.
type Report struct {
	Added   []string
	Failed  []*LayerRenderError
	Removed int
	CodeErr error
}

type Projector struct {
	surface Surface
	runner  CodeRunner
	logger  logrus.FieldLogger
}

// New returns a projector over surface. runner may be nil, in which case
// scene code is skipped with a warning.
func New(surface Surface, runner CodeRunner, logger logrus.FieldLogger) *Projector {
	return &Projector{surface: surface, runner: runner, logger: logger}
}

// RenderScene shows sc: its layers, its viewport, then its code.
func (p *Projector) RenderScene(ctx context.Context, sc story.Scene) Report {
	report := p.RenderLayers(sc.Layers, View{Center: sc.Center, Zoom: sc.Zoom})
	if sc.CustomCode != "" {
		report.CodeErr = p.RunCode(ctx, sc.CustomCode)
	}
	p.logger.WithFields(logrus.Fields{
		"scene":  sc.Title,
		"layers": len(report.Added),
		"failed": len(report.Failed),
	}).Info("Rendered scene")
	return report
}

// RenderLayers shows an arbitrary layer list at view. The authoring preview
// uses it for the in-progress buffer.
func (p *Projector) RenderLayers(defs []layer.Definition, view View) Report {
	report := Report{Removed: p.Clear()}

	for _, def := range defs {
		if err := p.place(def); err != nil {
			rerr := &LayerRenderError{Layer: def.Name, Kind: def.Kind, Err: err}
			report.Failed = append(report.Failed, rerr)
			p.logger.WithFields(logrus.Fields{
				"layer": def.Name,
				"kind":  def.Kind,
			}).Errorf("Skipping layer: %v", err)
			continue
		}
		report.Added = append(report.Added, def.Name)
	}

	p.surface.SetCenter(view.Center.Lat, view.Center.Lon)
	p.surface.SetZoom(view.Zoom)
	return report
}

// Clear removes every overlay, leaving the base layer, and returns how many
// were removed.
func (p *Projector) Clear() int {
	layers := p.surface.Layers()
	removed := 0
	for i := len(layers) - 1; i >= 1; i-- {
		if err := p.surface.RemoveLayer(layers[i]); err != nil {
			p.logger.WithField("layer", layers[i].Name()).Warnf("Failed to remove layer: %v", err)
			continue
		}
		removed++
	}
	return removed
}

// RunCode executes code against the map handle. Failures are logged and
// returned for display; they are never fatal.
func (p *Projector) RunCode(ctx context.Context, code string) error {
	if p.runner == nil {
		p.logger.Warn("Scene code skipped: no script runner configured")
		return nil
	}
	if err := p.runner.Run(ctx, code, NewHandle(p.surface, p)); err != nil {
		p.logger.Errorf("Scene code failed: %v", err)
		return err
	}
	return nil
}

// Materialize builds the primitive for def without placing it.
func (p *Projector) Materialize(def layer.Definition) (Layer, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	f := p.surface
	switch def.Kind {
	case layer.KindTile:
		return f.TileLayer(def.Name, def.Source)
	case layer.KindGeoJSON:
		return f.GeoJSONLayer(def.Name, def.Source, def.InlineData)
	case layer.KindImage:
		return f.ImageLayer(def.Name, def.Source, *def.Bounds)
	case layer.KindRaster:
		return f.RasterLayer(def.Name, def.Source, def.Bounds)
	case layer.KindWMS:
		return f.WMSLayer(def.Name, def.Source, def.WMSLayers)
	case layer.KindVideo:
		return f.VideoLayer(def.Name, def.Source, *def.Bounds)
	case layer.KindEarthEngine:
		return f.EarthEngineLayer(def.Name, def.EEID, def.VisParams)
	}
	return nil, fmt.Errorf("no primitive for kind %q", def.Kind)
}

func (p *Projector) place(def layer.Definition) error {
	l, err := p.Materialize(def)
	if err != nil {
		return err
	}
	return p.surface.AddLayer(l)
}

// FitLayer moves the viewport to a layer's bounds, padded slightly. Drawn
// layers without bounds use the extent of their geometry.
func (p *Projector) FitLayer(def layer.Definition) error {
	if def.Bounds != nil {
		p.surface.FitBounds(def.Bounds.Padded(layer.ZoomMargin))
		return nil
	}
	if def.InlineData != nil {
		b, err := layer.DataBounds(def.InlineData)
		if err != nil {
			return fmt.Errorf("layer %q: %w", def.Name, err)
		}
		p.surface.FitBounds(b.Padded(layer.ZoomMargin))
		return nil
	}
	return fmt.Errorf("layer %q has no bounds", def.Name)
}

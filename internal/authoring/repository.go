// Package authoring owns the working set of scenes and the form that builds
// them. A Repository is not safe for concurrent use; callers serialize
// top-level handlers so each one sees and leaves a consistent state.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"mapstory-desktop/internal/layer"
	"mapstory-desktop/internal/projector"
	"mapstory-desktop/internal/story"
)

var ErrIndexOutOfRange = errors.New("scene index out of range")

// Renderer is the part of the projector the repository drives.
type Renderer interface {
	RenderScene(ctx context.Context, sc story.Scene) projector.Report
	RenderLayers(defs []layer.Definition, view projector.View) projector.Report
	RunCode(ctx context.Context, code string) error
	FitLayer(def layer.Definition) error
}

type entry struct {
	scene story.Scene
	seq   uint64
}

type Repository struct {
	entries []entry
	nextSeq uint64

	buffer  []layer.Definition
	form    Form
	builder layer.Builder

	renderer Renderer
	logger   logrus.FieldLogger
}

// New returns an empty repository whose form starts at view.
func New(renderer Renderer, logger logrus.FieldLogger, view projector.View) *Repository {
	r := &Repository{renderer: renderer, logger: logger}
	r.form.Meta = story.Meta{Center: view.Center, Zoom: view.Zoom, Order: 1}
	r.form.resetLayerFields()
	return r
}

func (r *Repository) Len() int {
	return len(r.entries)
}

// Scenes returns copies of every scene in order.
func (r *Repository) Scenes() []story.Scene {
	return lo.Map(r.entries, func(e entry, _ int) story.Scene {
		return e.scene.Clone()
	})
}

// Scene returns a copy of the scene at index.
func (r *Repository) Scene(index int) (story.Scene, error) {
	if err := r.checkIndex(index, "read"); err != nil {
		return story.Scene{}, err
	}
	return r.entries[index].scene.Clone(), nil
}

func (r *Repository) Form() Form {
	return r.form
}

// SetMeta records direct edits to the form's scene fields. Stored scenes are
// untouched until UpdateScene.
func (r *Repository) SetMeta(meta story.Meta) {
	r.form.Meta = meta
}

// SetView records the map viewport as the form's center and zoom.
func (r *Repository) SetView(view projector.View) {
	r.form.Meta.Center = view.Center
	r.form.Meta.Zoom = view.Zoom
}

func (r *Repository) SourceChanged(source string) layer.Kind {
	return r.form.SourceChanged(source)
}

func (r *Repository) SelectKind(k layer.Kind) {
	r.form.SelectKind(k)
}

// Buffer returns a copy of the in-progress layer list.
func (r *Repository) Buffer() []layer.Definition {
	return story.CloneLayers(r.buffer)
}

// BuildLayer validates form input and appends the result to the buffer.
// When in.Kind is blank the form's selector decides, which means the
// classifier's guess unless the author picked a kind by hand.
func (r *Repository) BuildLayer(in layer.Input) (layer.Definition, error) {
	if in.Kind == "" {
		in.Kind = r.form.SourceChanged(in.Source)
	}
	def, err := r.builder.Build(in)
	if err != nil {
		return layer.Definition{}, err
	}
	if err := r.AddLayer(def); err != nil {
		return layer.Definition{}, err
	}
	return def, nil
}

// AddDrawnLayer appends a geojson layer built from a geometry drawn on the map.
func (r *Repository) AddDrawnLayer(name string, data []byte) (layer.Definition, error) {
	if name == "" {
		name = r.builder.NextName(layer.KindGeoJSON)
	}
	def, err := layer.FromDrawing(name, data)
	if err != nil {
		return layer.Definition{}, err
	}
	if err := r.AddLayer(def); err != nil {
		return layer.Definition{}, err
	}
	return def, nil
}

// AddLayer appends def to the in-progress buffer. Saved scenes are not touched.
func (r *Repository) AddLayer(def layer.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.buffer = append(r.buffer, def.Clone())
	r.form.resetLayerFields()
	r.logger.WithFields(logrus.Fields{"layer": def.Name, "kind": def.Kind}).Info("Added layer")
	return nil
}

// RemoveLayer drops the most recently added buffer layer called name.
func (r *Repository) RemoveLayer(name string) bool {
	_, i, ok := lo.FindLastIndexOf(r.buffer, func(d layer.Definition) bool {
		return d.Name == name
	})
	if !ok {
		return false
	}
	r.buffer = append(r.buffer[:i], r.buffer[i+1:]...)
	r.logger.WithField("layer", name).Info("Removed layer")
	return true
}

func (r *Repository) ClearLayers() {
	r.buffer = nil
}

// SaveScene bundles meta and the buffer into a new scene, then resets the
// form for the next one. It returns the new scene's index.
func (r *Repository) SaveScene(meta story.Meta) (int, error) {
	if err := meta.Validate(); err != nil {
		return -1, err
	}
	if meta.Title == "" {
		meta.Title = r.defaultTitle()
	}

	seq := r.nextSeq
	r.nextSeq++
	r.entries = append(r.entries, entry{scene: story.NewScene(meta, r.buffer), seq: seq})
	r.sort()

	r.buffer = nil
	r.form.Meta = story.Meta{
		Center: meta.Center,
		Zoom:   meta.Zoom,
		Order:  r.NextOrder(),
	}
	r.form.resetLayerFields()

	index := r.indexOfSeq(seq)
	r.logger.WithFields(logrus.Fields{"scene": meta.Title, "index": index}).Info("Saved scene")
	return index, nil
}

// UpdateScene replaces the scene at index with meta and the current buffer.
// Nothing of the old scene is kept. It returns the scene's index after
// re-sorting.
func (r *Repository) UpdateScene(index int, meta story.Meta) (int, error) {
	if err := r.checkIndex(index, "update"); err != nil {
		return -1, err
	}
	if err := meta.Validate(); err != nil {
		return -1, err
	}
	if meta.Title == "" {
		meta.Title = story.DefaultTitle(index + 1)
	}

	seq := r.entries[index].seq
	r.entries[index].scene = story.NewScene(meta, r.buffer)
	r.sort()

	newIndex := r.indexOfSeq(seq)
	r.logger.WithFields(logrus.Fields{"scene": meta.Title, "index": newIndex}).Info("Updated scene")
	return newIndex, nil
}

// DeleteScene removes the scene at index. The form is left as it is.
func (r *Repository) DeleteScene(index int) error {
	if err := r.checkIndex(index, "delete"); err != nil {
		return err
	}
	title := r.entries[index].scene.Title
	r.entries = append(r.entries[:index], r.entries[index+1:]...)
	r.sort()
	r.logger.WithFields(logrus.Fields{"scene": title, "index": index}).Info("Deleted scene")
	return nil
}

// LoadScene stages a copy of the scene at index in the form and buffer.
func (r *Repository) LoadScene(index int) error {
	if err := r.checkIndex(index, "load"); err != nil {
		return err
	}
	sc := r.entries[index].scene
	r.form.Meta = sc.Meta()
	r.buffer = story.CloneLayers(sc.Layers)
	r.form.resetLayerFields()
	return nil
}

// SelectScene loads the scene at index and shows it on the map.
func (r *Repository) SelectScene(ctx context.Context, index int) (projector.Report, error) {
	if err := r.LoadScene(index); err != nil {
		return projector.Report{}, err
	}
	return r.renderer.RenderScene(ctx, r.entries[index].scene.Clone()), nil
}

// Preview shows the in-progress buffer at the form's viewport.
func (r *Repository) Preview() projector.Report {
	return r.renderer.RenderLayers(r.Buffer(), projector.View{
		Center: r.form.Meta.Center,
		Zoom:   r.form.Meta.Zoom,
	})
}

// RunCode runs the form's custom code against the map on request.
func (r *Repository) RunCode(ctx context.Context) error {
	if r.form.Meta.CustomCode == "" {
		return nil
	}
	return r.renderer.RunCode(ctx, r.form.Meta.CustomCode)
}

// ZoomToLayer fits the map to the bounds of the buffer layer called name.
func (r *Repository) ZoomToLayer(name string) error {
	def, _, ok := lo.FindLastIndexOf(r.buffer, func(d layer.Definition) bool {
		return d.Name == name
	})
	if !ok {
		return fmt.Errorf("no staged layer named %q", name)
	}
	return r.renderer.FitLayer(def)
}

// Replace swaps the whole working set, as when a story file is imported.
// The form and buffer are left alone.
func (r *Repository) Replace(scenes []story.Scene) error {
	for i, sc := range scenes {
		if err := sc.Meta().Validate(); err != nil {
			return fmt.Errorf("scene %d: %w", i+1, err)
		}
		for _, def := range sc.Layers {
			if err := def.Validate(); err != nil {
				return fmt.Errorf("scene %d layer %q: %w", i+1, def.Name, err)
			}
		}
	}

	entries := make([]entry, len(scenes))
	for i, sc := range scenes {
		entries[i] = entry{scene: sc.Clone(), seq: r.nextSeq}
		r.nextSeq++
	}
	r.entries = entries
	r.sort()
	r.form.Meta.Order = r.NextOrder()
	r.logger.WithField("scenes", len(scenes)).Info("Replaced scenes")
	return nil
}

// NextOrder is one past the highest order in use.
func (r *Repository) NextOrder() int {
	return lo.Reduce(r.entries, func(max int, e entry, _ int) int {
		if e.scene.Order > max {
			return e.scene.Order
		}
		return max
	}, 0) + 1
}

func (r *Repository) sort() {
	sort.SliceStable(r.entries, func(i, j int) bool {
		a, b := r.entries[i], r.entries[j]
		if a.scene.Order != b.scene.Order {
			return a.scene.Order < b.scene.Order
		}
		return a.seq < b.seq
	})
}

// defaultTitle numbers untitled scenes by insertion, skipping titles in use.
func (r *Repository) defaultTitle() string {
	for n := int(r.nextSeq) + 1; ; n++ {
		title := story.DefaultTitle(n)
		if !lo.ContainsBy(r.entries, func(e entry) bool { return e.scene.Title == title }) {
			return title
		}
	}
}

func (r *Repository) indexOfSeq(seq uint64) int {
	_, i, _ := lo.FindIndexOf(r.entries, func(e entry) bool {
		return e.seq == seq
	})
	return i
}

func (r *Repository) checkIndex(index int, op string) error {
	if index < 0 || index >= len(r.entries) {
		r.logger.WithFields(logrus.Fields{"index": index, "scenes": len(r.entries)}).
			Warnf("Cannot %s scene: index out of range", op)
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return nil
}

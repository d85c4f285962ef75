package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"mapstory-desktop/internal/authoring"
	"mapstory-desktop/internal/layer"
	"mapstory-desktop/internal/ows"
	"mapstory-desktop/internal/projector"
	"mapstory-desktop/internal/story"
)

// LayerInput is the layer half of the authoring form as typed by the author
type LayerInput struct {
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	Name      string `json:"name"`
	Bounds    string `json:"bounds"`
	EEID      string `json:"eeId"`
	VisParams string `json:"visParams"`
	WMSLayers string `json:"wmsLayers"`
}

// RenderResult summarizes what a render put on the map
type RenderResult struct {
	Added   []string `json:"added"`
	Failed  []string `json:"failed"`
	Removed int      `json:"removed"`
	CodeErr string   `json:"codeError,omitempty"`
}

func renderResult(r projector.Report) RenderResult {
	res := RenderResult{
		Added:   r.Added,
		Removed: r.Removed,
		Failed: lo.Map(r.Failed, func(e *projector.LayerRenderError, _ int) string {
			return e.Error()
		}),
	}
	if r.CodeErr != nil {
		res.CodeErr = r.CodeErr.Error()
	}
	return res
}

// ===================
// Form
// ===================

// ClassifySource guesses the layer kind of a source without touching the form
func (a *App) ClassifySource(source string) string {
	return layer.Classify(source).String()
}

// GetLayerKinds lists the values of the type selector
func (a *App) GetLayerKinds() []string {
	return lo.Map(layer.Kinds, func(k layer.Kind, _ int) string { return k.String() })
}

// GetForm returns the authoring form state
func (a *App) GetForm() authoring.Form {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Form()
}

// SourceChanged is called as the author types a layer source. It returns the
// type selector's new value.
func (a *App) SourceChanged(source string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.SourceChanged(source).String()
}

// SelectKind records a kind picked by hand in the type selector
func (a *App) SelectKind(kind string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	k := layer.ParseKind(kind)
	if k == layer.KindUnknown {
		return fmt.Errorf("unknown layer kind %q", kind)
	}
	a.repo.SelectKind(k)
	return nil
}

// SetSceneMeta stores the scene fields of the form
func (a *App) SetSceneMeta(meta story.Meta) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.repo.SetMeta(meta)
}

// UseCurrentView copies the map's viewport into the form
func (a *App) UseCurrentView() authoring.Form {
	a.mu.Lock()
	defer a.mu.Unlock()

	view := a.surface.State().View
	a.repo.SetView(projector.View{
		Center: story.LatLon{Lat: view.Center[0], Lon: view.Center[1]},
		Zoom:   view.Zoom,
	})
	return a.repo.Form()
}

// DiscoverLayers lists the layers a WMS or WMTS service offers so the author
// can pick a name or tile template. It does not hold the app lock while the
// request is in flight.
func (a *App) DiscoverLayers(serviceURL string) ([]ows.LayerInfo, error) {
	ctx, cancel := context.WithTimeout(a.context(), 20*time.Second)
	defer cancel()

	layers, err := ows.Fetch(ctx, http.DefaultClient, serviceURL)
	if err != nil {
		a.logger.Warnf("Cannot list layers of %s: %v", serviceURL, err)
		return nil, err
	}
	a.logger.Infof("Found %d layers at %s", len(layers), serviceURL)
	return layers, nil
}

// ===================
// Staged layers
// ===================

// AddLayer validates form input and stages the resulting layer
func (a *App) AddLayer(in LayerInput) (layer.Definition, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return layer.Definition{}, err
	}
	kind := layer.Kind("")
	if in.Kind != "" {
		kind = layer.ParseKind(in.Kind)
	}
	def, err := a.repo.BuildLayer(layer.Input{
		Kind:      kind,
		Source:    in.Source,
		Name:      in.Name,
		Bounds:    in.Bounds,
		EEID:      in.EEID,
		VisParams: in.VisParams,
		WMSLayers: in.WMSLayers,
	})
	if err != nil {
		a.logger.Errorf("Layer not added: %v", err)
		return layer.Definition{}, err
	}
	a.emit(EventFormChanged, a.repo.Form())
	return def, nil
}

// AddDrawnLayer stages a GeoJSON geometry drawn on the map
func (a *App) AddDrawnLayer(name, geojson string) (layer.Definition, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return layer.Definition{}, err
	}
	def, err := a.repo.AddDrawnLayer(name, []byte(geojson))
	if err != nil {
		a.logger.Errorf("Drawing not added: %v", err)
		return layer.Definition{}, err
	}
	return def, nil
}

// GetStagedLayers returns the layers that the next save will attach
func (a *App) GetStagedLayers() []layer.Definition {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Buffer()
}

// RemoveLayer unstages the last layer called name
func (a *App) RemoveLayer(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.RemoveLayer(name)
}

// ClearLayers empties the staging buffer
func (a *App) ClearLayers() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.repo.ClearLayers()
}

// ZoomToLayer fits the map to a staged layer's bounds
func (a *App) ZoomToLayer(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return err
	}
	if err := a.repo.ZoomToLayer(name); err != nil {
		a.logger.Warnf("Cannot zoom to layer: %v", err)
		return err
	}
	return nil
}

// Preview shows the staged layers at the form's viewport
func (a *App) Preview() (RenderResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return RenderResult{}, err
	}
	return renderResult(a.repo.Preview()), nil
}

// RunSceneCode runs the form's custom code against the map
func (a *App) RunSceneCode() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return err
	}
	return a.repo.RunCode(a.context())
}

// ===================
// Scenes
// ===================

// ListScenes returns every scene in presentation order
func (a *App) ListScenes() []story.Scene {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Scenes()
}

func (a *App) scenesChanged() {
	a.emit(EventScenesChanged, a.repo.Scenes())
	a.emit(EventFormChanged, a.repo.Form())
}

// SaveScene turns the form and the staged layers into a new scene
func (a *App) SaveScene(meta story.Meta) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return -1, err
	}
	index, err := a.repo.SaveScene(meta)
	if err != nil {
		a.logger.Errorf("Scene not saved: %v", err)
		return -1, err
	}
	a.scenesChanged()
	a.TrackEvent("scene_saved", map[string]interface{}{
		"layers": len(a.repo.Scenes()[index].Layers),
	})
	return index, nil
}

// UpdateScene replaces the scene at index with meta and the staged layers
func (a *App) UpdateScene(index int, meta story.Meta) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return -1, err
	}
	newIndex, err := a.repo.UpdateScene(index, meta)
	if err != nil {
		a.logger.Errorf("Scene not updated: %v", err)
		return -1, err
	}
	a.scenesChanged()
	return newIndex, nil
}

// DeleteScene removes the scene at index
func (a *App) DeleteScene(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return err
	}
	if err := a.repo.DeleteScene(index); err != nil {
		return err
	}
	a.scenesChanged()
	a.TrackEvent("scene_deleted", nil)
	return nil
}

// LoadScene copies the scene at index into the form for editing
func (a *App) LoadScene(index int) (authoring.Form, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return authoring.Form{}, err
	}
	if err := a.repo.LoadScene(index); err != nil {
		return authoring.Form{}, err
	}
	return a.repo.Form(), nil
}

// SelectScene loads the scene at index and shows it on the map
func (a *App) SelectScene(index int) (RenderResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authoring(); err != nil {
		return RenderResult{}, err
	}
	report, err := a.repo.SelectScene(a.context(), index)
	if err != nil {
		return RenderResult{}, err
	}
	a.emit(EventFormChanged, a.repo.Form())
	return renderResult(report), nil
}

// ===================
// Story files
// ===================

// ExportStory writes story.json to the configured export folder
func (a *App) ExportStory() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exportTo(a.settings.ExportDir)
}

// ExportStoryAs asks for a folder and writes story.json there
func (a *App) ExportStoryAs() (string, error) {
	a.mu.Lock()
	defaultDir := a.settings.ExportDir
	a.mu.Unlock()

	dir, err := a.chooseExportDir(defaultDir)
	if err != nil || dir == "" {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exportTo(dir)
}

func (a *App) exportTo(dir string) (string, error) {
	scenes := a.repo.Scenes()
	path, err := story.WriteFile(dir, scenes)
	if err != nil {
		a.logger.Errorf("Export failed: %v", err)
		return "", err
	}
	a.logger.Infof("Exported %d scenes to %s", len(scenes), path)
	a.TrackEvent("story_exported", map[string]interface{}{
		"scenes": len(scenes),
	})
	return path, nil
}

// ImportStory asks for a story file and replaces the scenes with its content
func (a *App) ImportStory() (int, error) {
	a.mu.Lock()
	err := a.authoring()
	defaultDir := a.settings.ExportDir
	a.mu.Unlock()
	if err != nil {
		return 0, err
	}

	path, err := a.chooseStoryFile(defaultDir)
	if err != nil || path == "" {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.importFrom(path)
}

func (a *App) importFrom(path string) (int, error) {
	if err := a.authoring(); err != nil {
		return 0, err
	}
	scenes, err := story.ReadFile(path)
	if err != nil {
		a.logger.Errorf("Import failed: %v", err)
		return 0, err
	}
	if err := a.repo.Replace(scenes); err != nil {
		a.logger.Errorf("Import failed: %v", err)
		return 0, err
	}
	a.logger.Infof("Imported %d scenes from %s", len(scenes), filepath.Base(path))
	a.scenesChanged()
	return len(scenes), nil
}

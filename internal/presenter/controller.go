// Package presenter switches the map between authoring and playback.
//
// Exactly one control surface owns the map at a time. Entering Presenting
// snapshots the scenes into a fresh story; leaving discards it.
package presenter

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"mapstory-desktop/internal/projector"
	"mapstory-desktop/internal/story"
)

type Mode int

const (
	Authoring Mode = iota
	Presenting
)

func (m Mode) String() string {
	if m == Presenting {
		return "presenting"
	}
	return "authoring"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

var (
	ErrNotPresenting = errors.New("not presenting")
	ErrNoScenes      = errors.New("story has no scenes")
)

// Renderer shows one scene.
type Renderer interface {
	RenderScene(ctx context.Context, sc story.Scene) projector.Report
}

// State is what the presentation controls display.
type State struct {
	Mode   Mode        `json:"mode"`
	Cursor int         `json:"cursor"`
	Total  int         `json:"total"`
	Scene  story.Scene `json:"scene"`
}

type Controller struct {
	mode     Mode
	story    *story.Story
	renderer Renderer
	logger   logrus.FieldLogger

	// onMode is called after every mode switch so the UI can swap controls.
	onMode func(Mode)
}

// New returns a controller in Authoring mode. onMode may be nil.
func New(renderer Renderer, logger logrus.FieldLogger, onMode func(Mode)) *Controller {
	return &Controller{mode: Authoring, renderer: renderer, logger: logger, onMode: onMode}
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// Present snapshots scenes, sorted by order, and shows the first one.
// Calling it while presenting restarts from a new snapshot.
func (c *Controller) Present(ctx context.Context, scenes []story.Scene) (State, error) {
	if len(scenes) == 0 {
		c.logger.Warn("Nothing to present: add a scene first")
		return c.state(), ErrNoScenes
	}
	c.story = story.New(scenes)
	c.setMode(Presenting)
	c.logger.WithField("scenes", c.story.Len()).Info("Presenting story")
	return c.show(ctx), nil
}

// Next advances one scene. On the last scene it re-renders in place.
func (c *Controller) Next(ctx context.Context) (State, error) {
	if c.mode != Presenting {
		return c.state(), ErrNotPresenting
	}
	c.story.Next()
	return c.show(ctx), nil
}

// Previous goes back one scene. On the first scene it re-renders in place.
func (c *Controller) Previous(ctx context.Context) (State, error) {
	if c.mode != Presenting {
		return c.state(), ErrNotPresenting
	}
	c.story.Previous()
	return c.show(ctx), nil
}

// Edit returns to Authoring. The map keeps the last presented scene.
func (c *Controller) Edit() State {
	if c.mode == Authoring {
		return c.state()
	}
	c.story = nil
	c.setMode(Authoring)
	c.logger.Info("Back to editing")
	return c.state()
}

func (c *Controller) State() State {
	return c.state()
}

func (c *Controller) show(ctx context.Context) State {
	if sc, ok := c.story.Current(); ok {
		c.renderer.RenderScene(ctx, sc)
	}
	return c.state()
}

func (c *Controller) state() State {
	st := State{Mode: c.mode}
	if c.story != nil {
		st.Cursor = c.story.Cursor()
		st.Total = c.story.Len()
		st.Scene, _ = c.story.Current()
	}
	return st
}

func (c *Controller) setMode(m Mode) {
	c.mode = m
	if c.onMode != nil {
		c.onMode(m)
	}
}

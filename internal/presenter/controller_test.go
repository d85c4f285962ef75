package presenter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"mapstory-desktop/internal/layer"
	"mapstory-desktop/internal/projector"
	"mapstory-desktop/internal/projector/projectortest"
	"mapstory-desktop/internal/story"
)

func threeScenes() []story.Scene {
	var out []story.Scene
	for i, name := range []string{"c", "a", "b"} {
		order := map[string]int{"a": 1, "b": 2, "c": 3}[name]
		out = append(out, story.NewScene(
			story.Meta{Title: name, Order: order, Zoom: i + 3},
			[]layer.Definition{{Kind: layer.KindTile, Source: "https://" + name + "/{z}/{x}/{y}.png", Name: name}},
		))
	}
	return out
}

func newController(t *testing.T) (*Controller, *projectortest.Surface, *[]Mode) {
	t.Helper()
	surface := projectortest.NewSurface()
	logger, _ := logtest.NewNullLogger()
	var modes []Mode
	c := New(projector.New(surface, nil, logger), logger, func(m Mode) { modes = append(modes, m) })
	return c, surface, &modes
}

func TestPresentNavigation(t *testing.T) {
	c, surface, _ := newController(t)
	ctx := context.Background()

	st, err := c.Present(ctx, threeScenes())
	if err != nil {
		t.Fatal(err)
	}
	if st.Cursor != 0 || st.Scene.Title != "a" || st.Total != 3 {
		t.Fatalf("initial state = %+v", st)
	}
	if got := surface.OverlayNames(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("overlays = %v", got)
	}

	st, _ = c.Previous(ctx)
	if st.Cursor != 0 {
		t.Errorf("Previous at start moved to %d", st.Cursor)
	}
	for i := 0; i < 3; i++ {
		st, _ = c.Next(ctx)
	}
	if st.Cursor != 2 || st.Scene.Title != "c" {
		t.Errorf("after three Next: %+v", st)
	}
	st, _ = c.Next(ctx)
	if st.Cursor != 2 {
		t.Errorf("fourth Next moved to %d", st.Cursor)
	}
	if got := surface.OverlayNames(); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("overlays = %v", got)
	}
}

func TestModeSwitching(t *testing.T) {
	c, surface, modes := newController(t)
	ctx := context.Background()

	if c.Mode() != Authoring {
		t.Fatal("controller must start in Authoring")
	}
	if _, err := c.Next(ctx); !errors.Is(err, ErrNotPresenting) {
		t.Errorf("Next while authoring = %v", err)
	}

	c.Present(ctx, threeScenes())
	c.Next(ctx)
	st := c.Edit()
	if st.Mode != Authoring || st.Total != 0 {
		t.Errorf("state after Edit = %+v", st)
	}
	if got := surface.OverlayNames(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("map should keep last presented scene, got %v", got)
	}

	st, _ = c.Present(ctx, threeScenes())
	if st.Cursor != 0 {
		t.Errorf("cursor carried across mode switch: %d", st.Cursor)
	}
	if want := []Mode{Presenting, Authoring, Presenting}; !reflect.DeepEqual(*modes, want) {
		t.Errorf("mode callbacks = %v, want %v", *modes, want)
	}
}

func TestPresentEmpty(t *testing.T) {
	c, _, modes := newController(t)
	if _, err := c.Present(context.Background(), nil); !errors.Is(err, ErrNoScenes) {
		t.Fatalf("err = %v", err)
	}
	if c.Mode() != Authoring || len(*modes) != 0 {
		t.Error("empty present must stay in Authoring")
	}
}

func TestPresentSnapshotIsIndependent(t *testing.T) {
	c, _, _ := newController(t)
	scenes := threeScenes()
	c.Present(context.Background(), scenes)

	scenes[1].Title = "renamed"
	scenes[1].Layers[0].Name = "renamed"

	st := c.State()
	if st.Scene.Title != "a" || st.Scene.Layers[0].Name != "a" {
		t.Errorf("story saw source mutation: %+v", st.Scene)
	}
}

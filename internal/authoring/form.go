package authoring

import (
	"mapstory-desktop/internal/layer"
	"mapstory-desktop/internal/story"
)

// Form mirrors the authoring form: the scene fields being edited and the
// layer type selector.
type Form struct {
	Meta story.Meta `json:"meta"`

	// Kind is the type selector's value. KindManual is set once the author
	// picks a kind by hand; from then on typing a source no longer changes it.
	Kind       layer.Kind `json:"kind"`
	KindManual bool       `json:"kindManual"`
}

// SourceChanged reacts to the author typing in the source field and returns
// the selector's value afterwards.
func (f *Form) SourceChanged(source string) layer.Kind {
	if !f.KindManual {
		f.Kind = layer.Classify(source)
	}
	return f.Kind
}

// SelectKind records an explicit choice in the type selector.
func (f *Form) SelectKind(k layer.Kind) {
	f.Kind = k
	f.KindManual = true
}

// resetLayerFields clears the selector after a layer has been added.
func (f *Form) resetLayerFields() {
	f.Kind = layer.KindUnknown
	f.KindManual = false
}

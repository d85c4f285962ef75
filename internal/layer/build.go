package layer

import (
	"fmt"
	"net/url"
	"strings"
)

// Input is the raw form state for one layer, exactly as typed.
type Input struct {
	Kind      Kind
	Source    string
	Name      string
	Bounds    string
	EEID      string
	VisParams string
	WMSLayers string
}

// Builder turns form input into validated definitions and hands out default
// names. The zero value is ready to use.
type Builder struct {
	seq int
}

// Build validates in and returns a complete Definition. It has no side
// effects apart from advancing the default-name counter on success.
func (b *Builder) Build(in Input) (Definition, error) {
	kind := in.Kind
	if kind == "" {
		kind = Classify(in.Source)
	}
	if kind == KindUnknown || ParseKind(string(kind)) == KindUnknown {
		return Definition{}, invalid(CodeUnsupportedKind, "cannot build a layer of kind %q", kind)
	}

	source := strings.TrimSpace(in.Source)
	eeID := strings.TrimSpace(in.EEID)
	if kind == KindEarthEngine && eeID == "" {
		eeID = source
	}
	if kind.RequiresSource() && source == "" {
		return Definition{}, invalid(CodeMissingSource, "%s layer needs a source", kind)
	}
	if kind == KindEarthEngine && eeID == "" {
		return Definition{}, invalid(CodeMissingSource, "earthengine layer needs an asset ID")
	}

	bounds, err := ParseBounds(in.Bounds)
	if err != nil {
		return Definition{}, err
	}
	if bounds == nil && kind.RequiresBounds() {
		return Definition{}, invalid(CodeInvalidBounds, "%s layer needs bounds", kind)
	}

	def := Definition{
		Kind:   kind,
		Source: source,
		Name:   strings.TrimSpace(in.Name),
		Bounds: bounds,
	}

	if kind == KindEarthEngine {
		params, err := ParseVisParams(in.VisParams)
		if err != nil {
			return Definition{}, err
		}
		def.EEID = eeID
		def.VisParams = params
	}

	if kind == KindWMS {
		def.WMSLayers = strings.TrimSpace(in.WMSLayers)
		if def.WMSLayers == "" {
			def.WMSLayers = wmsLayersFromURL(source)
		}
	}

	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	if def.Name == "" {
		def.Name = b.NextName(kind)
	}
	return def, nil
}

// NextName returns the next default name, e.g. "TILE-3".
func (b *Builder) NextName(kind Kind) string {
	b.seq++
	return fmt.Sprintf("%s-%d", strings.ToUpper(string(kind)), b.seq)
}

func wmsLayersFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	for key, values := range u.Query() {
		if strings.EqualFold(key, "layers") && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

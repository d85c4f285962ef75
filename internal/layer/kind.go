package layer

import "strings"

// Kind identifies which map primitive a layer definition materializes as.
type Kind string

const (
	KindTile        Kind = "tile"
	KindGeoJSON     Kind = "geojson"
	KindImage       Kind = "image"
	KindRaster      Kind = "raster"
	KindWMS         Kind = "wms"
	KindVideo       Kind = "video"
	KindEarthEngine Kind = "earthengine"
	KindUnknown     Kind = "unknown"
)

// Kinds lists every selectable kind in form order.
var Kinds = []Kind{KindTile, KindGeoJSON, KindImage, KindRaster, KindWMS, KindVideo, KindEarthEngine}

// ParseKind maps a form value to a Kind. Anything unrecognized is KindUnknown.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k
		}
	}
	return KindUnknown
}

// RequiresBounds reports whether a definition of this kind must carry bounds.
func (k Kind) RequiresBounds() bool {
	return k == KindImage || k == KindVideo
}

// RequiresSource reports whether a definition of this kind must carry a source.
func (k Kind) RequiresSource() bool {
	return k != KindEarthEngine
}

func (k Kind) String() string {
	return string(k)
}

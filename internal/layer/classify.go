package layer

import "strings"

// cloudStorageHosts are hosts whose object URLs are treated like plain file paths.
var cloudStorageHosts = []string{
	"storage.googleapis.com",
	".s3.amazonaws.com",
	"s3.amazonaws.com",
	".blob.core.windows.net",
}

// Classify infers the layer kind from a source URL or path.
// It never fails: input that matches no rule is KindUnknown.
//
// Rules are checked in order and the first match wins:
//
//	earthengine  "projects/..." or an asset ID with two or more '/' and no scheme
//	             (a final segment with a file extension makes it a path instead)
//	tile         contains {z}, {x} and {y}
//	wms          .tms/.wms/.cgi suffix, or service=wms / request=getmap
//	geojson      .geojson/.json suffix
//	raster       .tif/.tiff suffix, including cloud storage object URLs
//	image        .png/.jpg/.jpeg suffix
//	video        .mp4/.webm/.ogg suffix
func Classify(source string) Kind {
	s := strings.TrimSpace(source)
	if s == "" {
		return KindUnknown
	}
	lower := strings.ToLower(s)

	if strings.HasPrefix(s, "projects/") || looksLikeAssetID(s) {
		return KindEarthEngine
	}
	if strings.Contains(s, "{z}") && strings.Contains(s, "{x}") && strings.Contains(s, "{y}") {
		return KindTile
	}

	path := stripQuery(lower)
	switch {
	case hasAnySuffix(path, ".tms", ".wms", ".cgi"),
		strings.Contains(lower, "service=wms"),
		strings.Contains(lower, "request=getmap"):
		return KindWMS
	case hasAnySuffix(path, ".geojson", ".json"):
		return KindGeoJSON
	case hasAnySuffix(path, ".tif", ".tiff"):
		return KindRaster
	case hasAnySuffix(path, ".png", ".jpg", ".jpeg"):
		return KindImage
	case hasAnySuffix(path, ".mp4", ".webm", ".ogg"):
		return KindVideo
	}
	return KindUnknown
}

// IsCloudStorage reports whether source points into a recognized object store.
func IsCloudStorage(source string) bool {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "gs://") || strings.HasPrefix(lower, "s3://") {
		return true
	}
	for _, host := range cloudStorageHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// looksLikeAssetID matches IDs such as "users/someone/dem" or
// "COPERNICUS/S2_SR_HARMONIZED/20200101" that have no scheme and no extension.
func looksLikeAssetID(s string) bool {
	if strings.Count(s, "/") < 2 || strings.Contains(s, "://") || strings.Contains(s, "{") {
		return false
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, ".") || strings.HasPrefix(s, "~") {
		return false
	}
	last := s[strings.LastIndex(s, "/")+1:]
	return !strings.Contains(last, ".")
}

// stripQuery drops a query string or fragment so suffix checks see the path.
func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

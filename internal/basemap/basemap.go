// Package basemap lists the named background maps a story can sit on.
package basemap

import (
	"fmt"
	"sort"
)

// Default is used when settings name no basemap.
const Default = "OpenStreetMap.Mapnik"

// Basemap is a named XYZ tile service.
type Basemap struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom"`
}

const (
	esriAttribution   = "Tiles &copy; Esri"
	googleAttribution = "&copy; Google"
	stadiaAttribution = "&copy; Stadia Maps &copy; Stamen Design &copy; OpenStreetMap contributors"
)

func esri(service string) string {
	return fmt.Sprintf("https://server.arcgisonline.com/ArcGIS/rest/services/%s/MapServer/tile/{z}/{y}/{x}", service)
}

func google(lyrs string) string {
	return fmt.Sprintf("https://mt1.google.com/vt/lyrs=%s&x={x}&y={y}&z={z}", lyrs)
}

func stadia(style, ext string) string {
	return fmt.Sprintf("https://tiles.stadiamaps.com/tiles/%s/{z}/{x}/{y}.%s", style, ext)
}

var catalog = map[string]Basemap{
	"OpenStreetMap.Mapnik": {
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
		MaxZoom:     19,
	},
	"Stamen.Terrain":           {URL: stadia("stamen_terrain", "png"), Attribution: stadiaAttribution, MaxZoom: 18},
	"Stamen.TerrainBackground": {URL: stadia("stamen_terrain_background", "png"), Attribution: stadiaAttribution, MaxZoom: 18},
	"Stamen.Watercolor":        {URL: stadia("stamen_watercolor", "jpg"), Attribution: stadiaAttribution, MaxZoom: 16},
	"Esri.WorldImagery":        {URL: esri("World_Imagery"), Attribution: esriAttribution, MaxZoom: 19},
	"Esri.DeLorme":             {URL: esri("Specialty/DeLorme_World_Base_Map"), Attribution: esriAttribution, MaxZoom: 11},
	"Esri.NatGeoWorldMap":      {URL: esri("NatGeo_World_Map"), Attribution: esriAttribution, MaxZoom: 16},
	"Esri.WorldStreetMap":      {URL: esri("World_Street_Map"), Attribution: esriAttribution, MaxZoom: 19},
	"Esri.WorldTopoMap":        {URL: esri("World_Topo_Map"), Attribution: esriAttribution, MaxZoom: 19},
	"Esri.WorldGrayCanvas":     {URL: esri("Canvas/World_Light_Gray_Base"), Attribution: esriAttribution, MaxZoom: 16},
	"Esri.WorldShadedRelief":   {URL: esri("World_Shaded_Relief"), Attribution: esriAttribution, MaxZoom: 13},
	"Esri.WorldPhysical":       {URL: esri("World_Physical_Map"), Attribution: esriAttribution, MaxZoom: 8},
	"Esri.WorldTerrain":        {URL: esri("World_Terrain_Base"), Attribution: esriAttribution, MaxZoom: 13},
	"Google.Satellite":         {URL: google("s"), Attribution: googleAttribution, MaxZoom: 20},
	"Google.Street":            {URL: google("m"), Attribution: googleAttribution, MaxZoom: 20},
	"Google.Hybrid":            {URL: google("y"), Attribution: googleAttribution, MaxZoom: 20},
	"Google.Terrain":           {URL: google("p"), Attribution: googleAttribution, MaxZoom: 20},
}

// Lookup returns the basemap called name.
func Lookup(name string) (Basemap, error) {
	b, ok := catalog[name]
	if !ok {
		return Basemap{}, fmt.Errorf("unknown basemap: %s", name)
	}
	b.Name = name
	return b, nil
}

// Names lists every basemap, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

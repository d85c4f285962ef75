// Package ows reads OGC capabilities documents so authors can pick WMS layer
// names or WMTS tile templates instead of typing them.
package ows

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mapstory-desktop/internal/layer"
)

// maxDocument caps how much of a capabilities response is read
const maxDocument = 16 << 20

// LayerInfo represents one layer offered by a service
type LayerInfo struct {
	Kind        layer.Kind `json:"kind"`
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	// XYZ template for WMTS layers, usable as a tile layer source
	TemplateURL string `json:"templateUrl,omitempty"`
	Format      string `json:"format,omitempty"`
}

// WMS 1.1.1 (WMT_MS_Capabilities) and 1.3.0 (WMS_Capabilities) share this shape
type wmsCapabilities struct {
	Capability struct {
		Layer wmsLayer `xml:"Layer"`
	} `xml:"Capability"`
}

type wmsLayer struct {
	Name     string     `xml:"Name"`
	Title    string     `xml:"Title"`
	Abstract string     `xml:"Abstract"`
	Layers   []wmsLayer `xml:"Layer"`
}

// WMTS XML structures for parsing capabilities
type wmtsCapabilities struct {
	Contents struct {
		Layers []wmtsLayer `xml:"Layer"`
	} `xml:"Contents"`
}

type wmtsLayer struct {
	Title       string `xml:"http://www.opengis.net/ows/1.1 Title"`
	Abstract    string `xml:"http://www.opengis.net/ows/1.1 Abstract"`
	Identifier  string `xml:"http://www.opengis.net/ows/1.1 Identifier"`
	ResourceURL []struct {
		Format       string `xml:"format,attr"`
		ResourceType string `xml:"resourceType,attr"`
		Template     string `xml:"template,attr"`
	} `xml:"ResourceURL"`
}

// CapabilitiesURL adds the GetCapabilities request to a service URL unless
// the URL already names a request. Services default to WMS.
func CapabilitiesURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid service URL %q", raw)
	}
	q := u.Query()
	if hasParam(q, "request") {
		return u.String(), nil
	}
	if !hasParam(q, "service") {
		q.Set("service", "WMS")
	}
	q.Set("request", "GetCapabilities")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func hasParam(q url.Values, name string) bool {
	for key := range q {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// Fetch downloads and parses the capabilities of the service at raw
func Fetch(ctx context.Context, client *http.Client, raw string) ([]LayerInfo, error) {
	capsURL, err := CapabilitiesURL(raw)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, capsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch capabilities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch capabilities: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocument))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return Parse(data)
}

// Parse reads a WMS or WMTS capabilities document
func Parse(data []byte) ([]LayerInfo, error) {
	root, err := rootElement(data)
	if err != nil {
		return nil, err
	}

	var layers []LayerInfo
	switch root {
	case "WMT_MS_Capabilities", "WMS_Capabilities":
		var caps wmsCapabilities
		if err := xml.Unmarshal(data, &caps); err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}
		layers = collectWMS(caps.Capability.Layer, layers)
	case "Capabilities":
		var caps wmtsCapabilities
		if err := xml.Unmarshal(data, &caps); err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}
		layers = collectWMTS(caps.Contents.Layers)
	case "ServiceExceptionReport", "ExceptionReport":
		return nil, fmt.Errorf("service returned an exception report")
	default:
		return nil, fmt.Errorf("unrecognized capabilities document <%s>", root)
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("no layers found in capabilities")
	}
	return layers, nil
}

func rootElement(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("failed to parse XML: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// collectWMS flattens the layer tree; only named layers can be requested
func collectWMS(l wmsLayer, out []LayerInfo) []LayerInfo {
	if l.Name != "" {
		out = append(out, LayerInfo{
			Kind:        layer.KindWMS,
			Name:        l.Name,
			Title:       l.Title,
			Description: l.Abstract,
		})
	}
	for _, child := range l.Layers {
		out = collectWMS(child, out)
	}
	return out
}

func collectWMTS(src []wmtsLayer) []LayerInfo {
	var out []LayerInfo
	for _, l := range src {
		info := LayerInfo{
			Kind:        layer.KindTile,
			Name:        l.Identifier,
			Title:       l.Title,
			Description: l.Abstract,
		}
		for _, resource := range l.ResourceURL {
			if resource.ResourceType == "tile" {
				info.TemplateURL = ConvertTemplateToXYZ(resource.Template)
				info.Format = resource.Format
				break
			}
		}
		// Layers offered only through KVP GetTile have no template to show
		if info.TemplateURL != "" {
			out = append(out, info)
		}
	}
	return out
}

// ConvertTemplateToXYZ converts WMTS template URL to XYZ format
// Example: .../{TileMatrix}/{TileRow}/{TileCol}.jpg becomes .../{z}/{y}/{x}.jpg
func ConvertTemplateToXYZ(template string) string {
	result := strings.ReplaceAll(template, "{TileMatrix}", "{z}")
	result = strings.ReplaceAll(result, "{TileCol}", "{x}")
	result = strings.ReplaceAll(result, "{TileRow}", "{y}")
	return result
}

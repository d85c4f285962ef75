package story

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"mapstory-desktop/internal/layer"
)

// FileName is the name every exported story is written under.
const FileName = "story.json"

// Export writes scenes as a pretty-printed JSON array, one object per scene.
func Export(w io.Writer, scenes []Scene) error {
	out := make([]Scene, len(scenes))
	for i, s := range scenes {
		out[i] = s
		if out[i].Layers == nil {
			out[i].Layers = []layer.Definition{}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write story: %w", err)
	}
	return nil
}

// WriteFile exports scenes to FileName inside dir and returns the full path.
func WriteFile(dir string, scenes []Scene) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create story file: %w", err)
	}
	if err := Export(f, scenes); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close story file: %w", err)
	}
	return path, nil
}

// Read parses a story file written by Export. Layers are validated; the
// first invalid one fails the whole read.
func Read(r io.Reader) ([]Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read story: %w", err)
	}

	var scenes []Scene
	if err := json.Unmarshal(data, &scenes); err != nil {
		return nil, fmt.Errorf("failed to parse story: %w", err)
	}
	for i := range scenes {
		if scenes[i].Layers == nil {
			scenes[i].Layers = []layer.Definition{}
		}
		if err := scenes[i].Meta().Validate(); err != nil {
			return nil, fmt.Errorf("scene %d: %w", i+1, err)
		}
		for _, def := range scenes[i].Layers {
			if err := def.Validate(); err != nil {
				return nil, fmt.Errorf("scene %d layer %q: %w", i+1, def.Name, err)
			}
		}
	}
	return scenes, nil
}

// ReadFile reads a story file from disk.
func ReadFile(path string) ([]Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open story file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source supplies raw item records.
type Source interface {
	Load(ctx context.Context) ([]Item, error)
}

// Provider supplies a ready, aligned catalog.
type Provider interface {
	Provide(ctx context.Context) (*Catalog, error)
}

//go:embed seed.yaml
var seedYAML []byte

type itemFile struct {
	Items []Item `json:"items" yaml:"items"`
}

// SeedSource serves the built-in 30 item inventory.
type SeedSource struct{}

// Load parses the embedded seed file.
func (SeedSource) Load(_ context.Context) ([]Item, error) {
	return parseItems(seedYAML, ".yaml")
}

// FileSource reads items from a YAML or JSON file with a top-level "items" list.
type FileSource struct {
	Path string
}

// Load reads and parses the file.
func (f FileSource) Load(_ context.Context) ([]Item, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	items, err := parseItems(data, filepath.Ext(f.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return items, nil
}

func parseItems(data []byte, ext string) ([]Item, error) {
	var file itemFile
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q (use .yaml, .yml or .json)", ext)
	}

	for i := range file.Items {
		file.Items[i].Name = strings.TrimSpace(file.Items[i].Name)
		if file.Items[i].Name == "" {
			return nil, fmt.Errorf("item %d: empty name", file.Items[i].ID)
		}
	}
	return file.Items, nil
}

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSeedSource(t *testing.T) {
	items, err := SeedSource{}.Load(context.Background())
	if err != nil {
		t.Fatalf("SeedSource.Load failed: %v", err)
	}
	if len(items) != 30 {
		t.Fatalf("expected 30 seed items, got %d", len(items))
	}

	seen := make(map[int]bool)
	for _, it := range items {
		if seen[it.ID] {
			t.Errorf("duplicate seed id %d", it.ID)
		}
		seen[it.ID] = true
		if it.Name == "" || len(it.Tags) == 0 || it.Price <= 0 {
			t.Errorf("incomplete seed item: %+v", it)
		}
	}

	if items[0].Name != "Noise Cancelling Headphones" || items[0].Price != 150 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "items.yaml")
	os.WriteFile(yamlPath, []byte("items:\n  - id: 1\n    name: Mug\n    price: 9.5\n    tags: [coffee, kitchen]\n"), 0644)

	jsonPath := filepath.Join(dir, "items.json")
	os.WriteFile(jsonPath, []byte(`{"items":[{"id":2,"name":"Tea","price":4,"tags":["drink"]}]}`), 0644)

	items, err := FileSource{Path: yamlPath}.Load(context.Background())
	if err != nil {
		t.Fatalf("yaml load failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Mug" || items[0].Price != 9.5 || len(items[0].Tags) != 2 {
		t.Errorf("unexpected yaml items: %+v", items)
	}

	items, err = FileSource{Path: jsonPath}.Load(context.Background())
	if err != nil {
		t.Fatalf("json load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Errorf("unexpected json items: %+v", items)
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := (FileSource{Path: filepath.Join(dir, "missing.yaml")}).Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}

	txt := filepath.Join(dir, "items.txt")
	os.WriteFile(txt, []byte("items: []"), 0644)
	if _, err := (FileSource{Path: txt}).Load(context.Background()); err == nil {
		t.Error("expected error for unsupported extension")
	}

	noName := filepath.Join(dir, "noname.json")
	os.WriteFile(noName, []byte(`{"items":[{"id":1,"name":"  ","price":1}]}`), 0644)
	if _, err := (FileSource{Path: noName}).Load(context.Background()); err == nil {
		t.Error("expected error for blank item name")
	}
}

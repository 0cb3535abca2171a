package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NewFromDir loads the content inventory from a directory tree of YAML
// files, one item per file. A `<name>.notes.md` sidecar next to
// `<name>.yaml` becomes the item's long-form body.
func NewFromDir(rootDir string) (*MemoryStore, error) {
	store := NewMemoryStore()
	if err := store.ReloadFromDir(rootDir); err != nil {
		return nil, err
	}
	slog.Info("content catalog loaded", "items", store.Len(), "path", rootDir)
	return store, nil
}

// ReloadFromDir re-reads the directory and atomically replaces the
// inventory. Used by the admin reload endpoint after content approval.
func (s *MemoryStore) ReloadFromDir(rootDir string) error {
	items, err := loadDir(rootDir)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	s.Replace(items)
	return nil
}

func loadDir(rootDir string) ([]Item, error) {
	var items []Item

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		item, ok := loadItem(path)
		if !ok {
			return nil
		}
		item.Body = loadNotes(path)
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func loadItem(path string) (Item, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable catalog file", "path", path, "error", err)
		return Item{}, false
	}

	var item Item
	if err := yaml.Unmarshal(data, &item); err != nil {
		slog.Warn("skipping invalid catalog YAML", "path", path, "error", err)
		return Item{}, false
	}

	if item.ID == "" || item.Title == "" {
		return Item{}, false // not a content item file
	}
	return item, true
}

func loadNotes(itemPath string) string {
	base := strings.TrimSuffix(strings.TrimSuffix(itemPath, ".yaml"), ".yml")
	data, err := os.ReadFile(base + ".notes.md")
	if err != nil {
		return "" // no sidecar
	}
	return string(data)
}
